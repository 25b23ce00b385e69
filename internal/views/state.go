// Package views holds the per-page state of a dashboard session. Every
// triggering event (mount, filter change, route change) starts a new
// generation; a result is only committed if no newer event started since,
// so a slow stale response can never overwrite fresher state.
package views

import (
	"sync"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

type State[T any] struct {
	Status     Status `json:"status"`
	Data       T      `json:"data"`
	Message    string `json:"message,omitempty"`
	Generation uint64 `json:"generation"`
}

// page stores the latest committed state of one view-model.
type page[T any] struct {
	mu     sync.Mutex
	latest uint64
	state  State[T]
}

// begin starts a new generation and marks the page as loading.
func (p *page[T]) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest++
	p.state = State[T]{Status: StatusLoading, Data: p.state.Data, Generation: p.latest}
	return p.latest
}

// commit replaces the state wholesale if gen is still the latest
// generation. It returns the state now held by the page and whether the
// commit was applied.
func (p *page[T]) commit(gen uint64, s State[T]) (State[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.latest {
		return p.state, false
	}
	s.Generation = gen
	p.state = s
	return p.state, true
}

func (p *page[T]) current() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
