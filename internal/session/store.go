// Package session owns the per-login state: the authenticated official and
// one set of page view-models, handed to handlers explicitly.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/go-migrant-health/internal/views"
)

type Session struct {
	ID        string
	Official  Official
	CreatedAt time.Time

	Dashboard *views.Dashboard
	Alerts    *views.Alerts
	List      *views.List
	Detail    *views.Detail
	Search    *views.Search
}

type Store struct {
	data   views.Data
	lookup views.PhoneLookup
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(data views.Data, lookup views.PhoneLookup) *Store {
	return &Store{
		data:     data,
		lookup:   lookup,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (s *Store) Create(official Official) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Official:  official,
		CreatedAt: s.now(),
		Dashboard: views.NewDashboard(s.data),
		Alerts:    views.NewAlerts(s.data),
		List:      views.NewList(s.data),
		Detail:    views.NewDetail(s.data),
		Search:    views.NewSearch(s.lookup),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions older than maxAge and returns how many were removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Janitor sweeps sessions older than maxAge every interval until ctx is done.
func (s *Store) Janitor(ctx context.Context, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(maxAge); n > 0 {
				slog.Info("expired sessions removed", "count", n, "active", s.Len())
			}
		}
	}
}
