package ingestion

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

type snapshot struct {
	locations []models.Location
	migrants  []models.Migrant
}

// fetchRemote reads both upstream collections concurrently.
func (m *Manager) fetchRemote(ctx context.Context) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		locations, err := m.remote.Locations(gctx)
		if err != nil {
			return fmt.Errorf("error fetching locations: %w", err)
		}
		snap.locations = locations
		return nil
	})
	g.Go(func() error {
		migrants, err := m.remote.Migrants(gctx)
		if err != nil {
			return fmt.Errorf("error fetching migrants: %w", err)
		}
		snap.migrants = migrants
		return nil
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}
