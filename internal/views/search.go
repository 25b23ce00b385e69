package views

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/source"
)

type SearchData struct {
	Query   string          `json:"query"`
	Migrant *models.Migrant `json:"migrant,omitempty"`
}

type PhoneLookup interface {
	MigrantByPhone(ctx context.Context, phone string) (*models.Migrant, error)
}

// Search looks migrants up by phone. It talks to the source directly so a
// 404 can be shown as an inline error.
type Search struct {
	src  PhoneLookup
	page page[SearchData]
}

func NewSearch(src PhoneLookup) *Search {
	s := &Search{src: src}
	s.page.state = State[SearchData]{Status: StatusEmpty}
	return s
}

func (s *Search) State() State[SearchData] {
	return s.page.current()
}

// Run searches for phone. Blank input leaves the state untouched.
func (s *Search) Run(ctx context.Context, phone string) State[SearchData] {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return s.page.current()
	}

	gen := s.page.begin()
	out := SearchData{Query: phone}

	m, err := s.src.MigrantByPhone(ctx, phone)
	switch {
	case errors.Is(err, source.ErrNotFound):
		st, _ := s.page.commit(gen, State[SearchData]{Status: StatusError, Data: out, Message: "Migrant not found. Server responded with status: 404"})
		return st
	case err != nil:
		slog.Warn("phone search failed", "phone", phone, "error", err)
		st, _ := s.page.commit(gen, State[SearchData]{Status: StatusError, Data: out, Message: searchFailure(err)})
		return st
	}

	out.Migrant = m
	st, _ := s.page.commit(gen, State[SearchData]{Status: StatusLoaded, Data: out})
	return st
}

func searchFailure(err error) string {
	var netErr *source.NetworkError
	if errors.As(err, &netErr) && netErr.StatusCode != 0 {
		return "Search failed. Server responded with status: " + strconv.Itoa(netErr.StatusCode)
	}
	return "Search failed. Unable to reach the health API."
}
