// Package state persists the gateway's service state as a versioned JSON
// snapshot. The snapshot is written through after every protocol event and
// at every lifecycle transition, and read back at startup to resume the
// event counter.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gitlab.wm.local/mail/mailgate/config"
	"gitlab.wm.local/mail/mailgate/errors"
	"gitlab.wm.local/mail/mailgate/log"
)

// Snapshot is the persisted service state.
type Snapshot struct {
	Name              string           `json:"name"`
	Version           string           `json:"version"`
	Data              string           `json:"data"`
	LastUpdated       time.Time        `json:"last_updated"`
	EventCounter      uint64           `json:"event_counter"`
	IsActive          bool             `json:"is_active"`
	ErrorLog          []string         `json:"error_log"`
	Config            config.AppConfig `json:"config"`
	SystemApplication bool             `json:"system_application"`
}

// Persistence reads and writes snapshots at a fixed path. Saves are atomic
// (temp file plus rename) and serialized.
type Persistence struct {
	path string
	mu   sync.Mutex
}

func NewPersistence(path string) *Persistence {
	return &Persistence{path: path}
}

// LoadOrInit returns the previous snapshot if one exists, else a fresh one.
// In both cases the volatile fields are forced to their startup values:
// inactive, "Initializing" status, empty error log, and the live config.
func (p *Persistence) LoadOrInit(name, version string, cfg config.AppConfig) *Snapshot {
	s, err := p.load()
	if err != nil {
		log.Warnf("No previous state loaded, creating new one")
		log.Debugf("Error loading previous state: %s", err)
		s = &Snapshot{SystemApplication: true}
	} else {
		log.Infof("Loaded previous state data")
		log.Tracef("Previous state data: %+v", s)
	}
	s.Name = name
	s.Version = version
	s.IsActive = false
	s.Data = "Initializing"
	s.ErrorLog = nil
	s.Config = cfg
	s.LastUpdated = time.Now()
	return s
}

func (p *Persistence) load() (*Snapshot, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, errors.E(err)
	}
	s := &Snapshot{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, errors.Er(err, "state: parse snapshot %s", p.path)
	}
	return s, nil
}

// Save writes the snapshot to disk, stamping LastUpdated.
func (p *Persistence) Save(s *Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.LastUpdated = time.Now()
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.E(err)
	}
	tmp := p.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return errors.E(err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.E(err)
	}
	return errors.E(os.Rename(tmp, p.path))
}

// Update saves the snapshot and logs instead of failing; state write-through
// must never take down the serving path.
func (p *Persistence) Update(s *Snapshot) {
	if err := p.Save(s); err != nil {
		log.Errorf("failed to persist state: %s", err)
	}
}

// WindDown marks the snapshot inactive and persists it one last time before
// process exit.
func (p *Persistence) WindDown(s *Snapshot) {
	s.IsActive = false
	s.Data = "Shutdown"
	p.Update(s)
}
