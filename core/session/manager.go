package session

import (
	"sync"
	"time"

	"Bt1Cut/config"
	"Bt1Cut/core/timeline"
	"Bt1Cut/logger"
)

// Manager tracks the live editing sessions. Sessions are single-user and
// reaped after the configured idle TTL.
type Manager struct {
	cfg  *config.Config
	snap Snapshotter

	mu       sync.RWMutex
	sessions map[string]*Session

	done chan struct{}
}

// NewManager creates an empty session registry.
func NewManager(cfg *config.Config, snap Snapshotter) *Manager {
	return &Manager{
		cfg:      cfg,
		snap:     snap,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
}

// Open creates a session around the model, starts its loop and registers it.
// frameRate is the project's snap grid, zero for the configured default.
func (mgr *Manager) Open(userID int64, projectID string, frameRate float64, m *timeline.Model) *Session {
	s := New(userID, m, frameRate, mgr.cfg, mgr.snap)
	s.ProjectID = projectID

	mgr.mu.Lock()
	mgr.sessions[s.ID] = s
	mgr.mu.Unlock()

	go s.Run()
	logger.Info("editing session opened",
		logger.String("sessionId", s.ID),
		logger.Int64("userId", userID),
	)
	return s
}

// Get returns the session, or nil if unknown or already closed.
func (mgr *Manager) Get(id string) *Session {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.sessions[id]
}

// Close stops a session and drops it from the registry.
func (mgr *Manager) Close(id string) bool {
	mgr.mu.Lock()
	s, ok := mgr.sessions[id]
	if ok {
		delete(mgr.sessions, id)
	}
	mgr.mu.Unlock()

	if !ok {
		return false
	}
	s.Close()
	logger.Info("editing session closed", logger.String("sessionId", id))
	return true
}

// RunReaper closes idle sessions until Stop is called.
func (mgr *Manager) RunReaper() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-mgr.cfg.SessionIdleTTL)
			mgr.mu.Lock()
			var idle []*Session
			for id, s := range mgr.sessions {
				if s.IdleSince().Before(cutoff) {
					idle = append(idle, s)
					delete(mgr.sessions, id)
				}
			}
			mgr.mu.Unlock()

			for _, s := range idle {
				s.Close()
				logger.Info("idle session reaped", logger.String("sessionId", s.ID))
			}

		case <-mgr.done:
			return
		}
	}
}

// Stop shuts down the reaper and every live session.
func (mgr *Manager) Stop() {
	close(mgr.done)

	mgr.mu.Lock()
	sessions := make([]*Session, 0, len(mgr.sessions))
	for _, s := range mgr.sessions {
		sessions = append(sessions, s)
	}
	mgr.sessions = make(map[string]*Session)
	mgr.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
