package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/go-migrant-health/internal/aggregate"
	"github.com/mr1hm/go-migrant-health/internal/config"
	internalgrpc "github.com/mr1hm/go-migrant-health/internal/grpc"
	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/repository"
	"github.com/mr1hm/go-migrant-health/internal/source"
	"github.com/mr1hm/go-migrant-health/internal/worker"
)

// HealthReporter receives the outcome of every upstream fetch.
type HealthReporter interface {
	SetUpstreamServing(ok bool)
}

type Status struct {
	LastSync  time.Time         `json:"last_sync"`
	LastError string            `json:"last_error,omitempty"`
	Counts    repository.Counts `json:"counts"`
	Hotspots  int               `json:"hotspots"`
}

// syncJob writes one upstream record into the mirror.
type syncJob struct {
	location *models.Location
	migrant  *models.Migrant
	seq      int
	syncedAt time.Time
	result   chan<- error
}

// Manager mirrors the remote health API into SQLite on a fixed interval
// and broadcasts hotspots that appeared or changed severity.
type Manager struct {
	cfg         *config.Config
	remote      source.Source
	mirror      repository.Mirror
	broadcaster *internalgrpc.Broadcaster
	health      HealthReporter
	onSync      func()
	pool        *worker.Pool[syncJob]
	wg          sync.WaitGroup
	now         func() time.Time

	mu     sync.Mutex
	known  map[int]models.Severity
	status Status
}

func NewManager(cfg *config.Config, remote source.Source, mirror repository.Mirror, broadcaster *internalgrpc.Broadcaster, health HealthReporter) *Manager {
	return &Manager{
		cfg:         cfg,
		remote:      remote,
		mirror:      mirror,
		broadcaster: broadcaster,
		health:      health,
		now:         time.Now,
		known:       make(map[int]models.Severity),
	}
}

// OnSync registers fn to run after every successful sync.
func (m *Manager) OnSync(fn func()) {
	m.onSync = fn
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, job syncJob) error {
		var err error
		switch {
		case job.location != nil:
			err = m.mirror.UpsertLocation(ctx, job.location, job.seq, job.syncedAt)
		case job.migrant != nil:
			err = m.mirror.UpsertMigrant(ctx, job.migrant, job.seq, job.syncedAt)
		}
		job.result <- err
		return err
	}

	m.pool = worker.NewPool("mirror-sync", m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	if m.cfg.Sync.Enabled {
		m.wg.Add(1)
		go m.runPoller(ctx, m.cfg.Sync.Interval)
	}
}

func (m *Manager) runPoller(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting mirror sync", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("mirror sync shutting down")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Manager) poll(ctx context.Context) {
	if err := m.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("mirror sync failed", "error", err)
	}
}

// Sync runs one full mirror cycle. It must be called after Start.
func (m *Manager) Sync(ctx context.Context) error {
	started := m.now()
	slog.Debug("syncing mirror")

	snap, err := m.fetchRemote(ctx)
	m.reportHealth(err == nil)
	if err != nil {
		m.recordError(err)
		return err
	}

	if err := m.write(ctx, snap, started); err != nil {
		m.recordError(err)
		return err
	}

	pruned, err := m.mirror.Prune(ctx, started)
	if err != nil {
		m.recordError(err)
		return err
	}
	if m.onSync != nil {
		m.onSync()
	}

	hotspots, err := m.broadcastChanges(ctx)
	if err != nil {
		m.recordError(err)
		return err
	}

	counts, err := m.mirror.Counts(ctx)
	if err != nil {
		m.recordError(err)
		return err
	}

	m.mu.Lock()
	m.status = Status{LastSync: started, Counts: counts, Hotspots: hotspots}
	m.mu.Unlock()

	slog.Info("mirror synced",
		"locations", counts.Locations,
		"migrants", counts.Migrants,
		"pruned", pruned,
		"hotspots", hotspots,
		"took", m.now().Sub(started))
	return nil
}

// write submits every record to the pool and waits for all results.
func (m *Manager) write(ctx context.Context, snap snapshot, syncedAt time.Time) error {
	total := len(snap.locations) + len(snap.migrants)
	results := make(chan error, total)

	submitted := 0
	for i := range snap.locations {
		job := syncJob{location: &snap.locations[i], seq: i, syncedAt: syncedAt, result: results}
		if err := m.pool.Submit(ctx, job); err != nil {
			return err
		}
		submitted++
	}
	for i := range snap.migrants {
		job := syncJob{migrant: &snap.migrants[i], seq: i, syncedAt: syncedAt, result: results}
		if err := m.pool.Submit(ctx, job); err != nil {
			return err
		}
		submitted++
	}

	var failed int
	var firstErr error
	for i := 0; i < submitted; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-results:
			if err != nil {
				failed++
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d mirror writes failed: %w", failed, total, firstErr)
	}
	return nil
}

// broadcastChanges recomputes hotspots from the mirror and broadcasts the
// ones that are new or changed severity since the previous sync.
func (m *Manager) broadcastChanges(ctx context.Context) (int, error) {
	locations, err := m.mirror.Locations(ctx)
	if err != nil {
		return 0, err
	}
	migrants, err := m.mirror.Migrants(ctx)
	if err != nil {
		return 0, err
	}
	hotspots := aggregate.Hotspots(locations, migrants)

	m.mu.Lock()
	var changed []models.HotspotAlert
	current := make(map[int]models.Severity, len(hotspots))
	for _, h := range hotspots {
		current[h.LocationID] = h.Severity
		if prev, ok := m.known[h.LocationID]; !ok || prev != h.Severity {
			changed = append(changed, h)
		}
	}
	m.known = current
	m.mu.Unlock()

	if m.broadcaster != nil {
		for i := range changed {
			delivered := m.broadcaster.Broadcast(&changed[i])
			slog.Info("hotspot changed",
				"subscribers", delivered,
				"location_id", changed[i].LocationID,
				"district", changed[i].District,
				"cases", changed[i].Cases,
				"severity", changed[i].Severity)
		}
	}
	return len(hotspots), nil
}

func (m *Manager) reportHealth(ok bool) {
	if m.health != nil {
		m.health.SetUpstreamServing(ok)
	}
}

func (m *Manager) recordError(err error) {
	m.mu.Lock()
	m.status.LastError = err.Error()
	m.mu.Unlock()
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}
