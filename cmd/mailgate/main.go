package main

import (
	"os"
	"os/signal"
	"syscall"

	"gitlab.wm.local/mail/mailgate/config"
	"gitlab.wm.local/mail/mailgate/log"
	"gitlab.wm.local/mail/mailgate/metrics"
	"gitlab.wm.local/mail/mailgate/relay"
	"gitlab.wm.local/mail/mailgate/state"
	"gitlab.wm.local/mail/mailgate/transport/smtp"
)

const (
	appName    = "mailgate"
	appVersion = "1.2.0"
)

func main() {
	cfg := &config.AppConfig{}
	if err := config.LoadConfig(cfg); err != nil {
		log.Fatalf("Failed to load configuration: %s", err)
	}
	log.Infof("Configuration loaded: %s", cfg)

	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		go m.Serve(cfg.Metrics.Listen)
	}

	persist := state.NewPersistence(cfg.App.StatePath)
	svc := relay.New(appName, appVersion, cfg, smtp.NewSender(cfg.SMTP), m, persist)
	svc.SenderFactory = func(c config.SMTPConfig) smtp.Sender { return smtp.NewSender(c) }

	go watchSignals(svc)

	if err := svc.Run(); err != nil {
		log.Fatalf("gateway exited: %s", err)
	}
}

// SIGHUP asks the gateway to clear its queue and reload configuration;
// SIGUSR1 (and the usual terminal signals) wind it down.
func watchSignals(svc *relay.Service) {
	reload := make(chan os.Signal, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	signal.Notify(shutdown, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-reload:
			log.Infof("Received SIGHUP, reloading...")
			svc.Reload()
		case sig := <-shutdown:
			log.Infof("Received %s, exiting...", sig)
			svc.Shutdown()
		}
	}
}
