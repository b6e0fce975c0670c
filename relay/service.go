// Package relay ties the gateway together: the TCP accept loop, the
// per-connection protocol handler, the periodic drain loop, and the
// reload/shutdown lifecycle. Exactly one event source proceeds per loop
// iteration; connection handling itself runs in its own goroutine so a slow
// client never blocks accepts or the drain timer.
package relay

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.wm.local/mail/mailgate/audit"
	"gitlab.wm.local/mail/mailgate/config"
	"gitlab.wm.local/mail/mailgate/errors"
	"gitlab.wm.local/mail/mailgate/log"
	"gitlab.wm.local/mail/mailgate/metrics"
	"gitlab.wm.local/mail/mailgate/queue"
	"gitlab.wm.local/mail/mailgate/state"
	"gitlab.wm.local/mail/mailgate/transport/smtp"
)

// DefaultGracePeriod is how long lifecycle transitions wait for in-flight
// handlers and the drain loop to observe the paused execution flag.
const DefaultGracePeriod = 2 * time.Second

type Service struct {
	name    string
	version string

	cfgMu sync.RWMutex
	cfg   *config.AppConfig

	queue   *queue.MailQueue
	ledger  *queue.ErrorLedger
	drainer *Drainer
	metrics *metrics.Metrics

	// SenderFactory rebuilds the SMTP sender from freshly loaded config on
	// reload. When nil the existing sender is kept.
	SenderFactory func(config.SMTPConfig) smtp.Sender

	persist  *state.Persistence
	stateMu  sync.Mutex
	snapshot *state.Snapshot

	running atomic.Bool
	grace   time.Duration

	ln        net.Listener
	conns     chan net.Conn
	reloadC   chan struct{}
	shutdownC chan struct{}
	ready     chan struct{}
}

func New(name, version string, cfg *config.AppConfig, sender smtp.Sender, m *metrics.Metrics, persist *state.Persistence) *Service {
	q := queue.NewMailQueue()
	l := queue.NewErrorLedger(cfg.App.ErrorLogLimit)
	s := &Service{
		name:    name,
		version: version,
		cfg:     cfg,
		queue:   q,
		ledger:  l,
		metrics: m,
		drainer: &Drainer{
			Queue:   q,
			Ledger:  l,
			Sender:  sender,
			Audit:   audit.New(cfg.Audit),
			Metrics: m,
		},
		persist:   persist,
		snapshot:  persist.LoadOrInit(name, version, *cfg),
		grace:     DefaultGracePeriod,
		conns:     make(chan net.Conn),
		reloadC:   make(chan struct{}, 1),
		shutdownC: make(chan struct{}, 1),
		ready:     make(chan struct{}),
	}
	return s
}

// Reload requests a configuration reload; edges are coalesced while one is
// pending.
func (s *Service) Reload() {
	select {
	case s.reloadC <- struct{}{}:
	default:
	}
}

// Shutdown requests a graceful shutdown.
func (s *Service) Shutdown() {
	select {
	case s.shutdownC <- struct{}{}:
	default:
	}
}

// Addr returns the bound listen address once Run is serving.
func (s *Service) Addr() net.Addr {
	<-s.ready
	return s.ln.Addr()
}

func (s *Service) settings() config.AppSettings {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.App
}

// Run serves until Shutdown is requested or, in strict-reload mode, a
// reload fails.
func (s *Service) Run() error {
	ln, err := net.Listen("tcp", s.settings().Listen)
	if err != nil {
		return errors.Er(err, "relay: listen on %s", s.settings().Listen)
	}
	s.ln = ln
	defer ln.Close()
	close(s.ready)
	log.Infof("Listening on %s", ln.Addr())

	s.stateMu.Lock()
	s.snapshot.IsActive = true
	s.snapshot.Data = "Running"
	s.persist.Update(s.snapshot)
	s.stateMu.Unlock()
	s.running.Store(true)

	go s.acceptLoop()

	ticker := time.NewTicker(s.settings().LoopInterval())
	defer ticker.Stop()

	for {
		select {
		case conn := <-s.conns:
			go s.handle(conn)
		case <-s.reloadC:
			if err := s.reload(ticker); err != nil {
				return err
			}
		case <-s.shutdownC:
			s.windDown()
			return nil
		case <-ticker.C:
			s.drainer.Tick(s.settings())
		}
	}
}

func (s *Service) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			log.Debugf("accept loop exiting: %s", err)
			return
		}
		s.conns <- conn
	}
}

func (s *Service) reload(ticker *time.Ticker) error {
	log.Infof("Reload requested, pausing ingestion")
	s.running.Store(false)
	// best-effort quiescence wait for in-flight handlers and ticks
	time.Sleep(s.grace)

	s.stateMu.Lock()
	s.persist.Update(s.snapshot)
	s.stateMu.Unlock()

	g, err := s.queue.Acquire(s.settings().LockTimeout())
	if err != nil {
		log.Errorf("reload: failed to lock email queue: %s", err)
	} else {
		g.Clear()
		g.Release()
		s.metrics.QueueDepth.Set(0)
	}

	fresh := &config.AppConfig{}
	if err := config.LoadConfig(fresh); err != nil {
		if s.settings().StrictReload {
			return errors.Er(err, "relay: reload configuration")
		}
		log.Errorf("Error loading config, keeping previous configuration: %s", err)
		fresh = nil
	}
	if fresh != nil {
		s.cfgMu.Lock()
		s.cfg = fresh
		s.cfgMu.Unlock()
		if s.SenderFactory != nil {
			s.drainer.Sender = s.SenderFactory(fresh.SMTP)
		}
		s.drainer.Audit = audit.New(fresh.Audit)
		ticker.Reset(fresh.App.LoopInterval())
	}

	s.stateMu.Lock()
	s.cfgMu.RLock()
	cfg := *s.cfg
	s.cfgMu.RUnlock()
	s.snapshot = s.persist.LoadOrInit(s.name, s.version, cfg)
	s.snapshot.IsActive = true
	s.snapshot.Data = "Running"
	s.persist.Update(s.snapshot)
	s.stateMu.Unlock()

	s.running.Store(true)
	log.Infof("Reload complete")
	return nil
}

func (s *Service) windDown() {
	log.Infof("Shutdown requested")
	s.running.Store(false)
	time.Sleep(s.grace)
	s.stateMu.Lock()
	s.persist.WindDown(s.snapshot)
	s.stateMu.Unlock()
}

// countEvent bumps the event counter and writes the snapshot through, as
// every protocol branch must.
func (s *Service) countEvent() {
	s.stateMu.Lock()
	s.snapshot.EventCounter++
	s.persist.Update(s.snapshot)
	s.stateMu.Unlock()
}
