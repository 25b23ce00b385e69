package repository

import (
	"context"
	"time"

	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/source"
)

// Counts is the number of rows held by the mirror.
type Counts struct {
	Locations int `json:"locations"`
	Migrants  int `json:"migrants"`
}

// Mirror is a local copy of the remote health API. It serves reads like
// the remote source and is written to by the sync.
type Mirror interface {
	source.Source
	UpsertLocation(ctx context.Context, loc *models.Location, seq int, syncedAt time.Time) error
	UpsertMigrant(ctx context.Context, m *models.Migrant, seq int, syncedAt time.Time) error
	Prune(ctx context.Context, syncedBefore time.Time) (int64, error)
	Counts(ctx context.Context) (Counts, error)
}
