package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/source"
)

// Aggregator derives dashboard view data from a Source. Fetch failures are
// returned to the caller, which is expected to degrade.
type Aggregator struct {
	src source.Source
}

func New(src source.Source) *Aggregator {
	return &Aggregator{src: src}
}

func (a *Aggregator) ListDistricts(ctx context.Context) ([]string, error) {
	locations, err := a.src.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	return Districts(locations), nil
}

func (a *Aggregator) ListLocationsForDistrict(ctx context.Context, district string) ([]string, error) {
	locations, err := a.src.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return LocationsFor(locations, district), nil
}

func (a *Aggregator) ComputeKPIs(ctx context.Context, f models.Filters) (models.KPISet, error) {
	locations, migrants, err := a.both(ctx)
	if err != nil {
		return models.KPISet{}, fmt.Errorf("compute kpis: %w", err)
	}
	return KPIs(locations, migrants, f), nil
}

func (a *Aggregator) CasesByDistrict(ctx context.Context, f models.Filters) ([]models.DistrictCases, error) {
	locations, err := a.src.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("cases by district: %w", err)
	}
	return GroupCasesByDistrict(locations, f), nil
}

func (a *Aggregator) CasesByLocation(ctx context.Context, district string) ([]models.LocationCases, error) {
	locations, migrants, err := a.both(ctx)
	if err != nil {
		return nil, fmt.Errorf("cases by location: %w", err)
	}
	return GroupCasesByLocation(locations, migrants, district), nil
}

func (a *Aggregator) DiseaseDistribution(ctx context.Context, f models.Filters) ([]models.DiseaseSlice, error) {
	locations, err := a.src.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("disease distribution: %w", err)
	}
	return GroupDiseases(locations, f), nil
}

func (a *Aggregator) HotspotAlerts(ctx context.Context) ([]models.HotspotAlert, error) {
	locations, migrants, err := a.both(ctx)
	if err != nil {
		return nil, fmt.Errorf("hotspot alerts: %w", err)
	}
	return Hotspots(locations, migrants), nil
}

func (a *Aggregator) MigrantsByFilter(ctx context.Context, f models.MigrantFilter) ([]models.Migrant, error) {
	locations, migrants, err := a.both(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrants by filter: %w", err)
	}
	return FilterMigrants(locations, migrants, f), nil
}

// MigrantByPhone returns nil, nil when the phone is unknown upstream.
func (a *Aggregator) MigrantByPhone(ctx context.Context, phone string) (*models.Migrant, error) {
	m, err := a.src.MigrantByPhone(ctx, phone)
	if errors.Is(err, source.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("migrant by phone: %w", err)
	}
	return m, nil
}

// LocationDetails resolves the location a migrant lives in, or nil.
func (a *Aggregator) LocationDetails(ctx context.Context, m *models.Migrant) (*models.Location, error) {
	locations, err := a.src.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("location details: %w", err)
	}
	return LocationFor(locations, m), nil
}

func (a *Aggregator) both(ctx context.Context) ([]models.Location, []models.Migrant, error) {
	locations, err := a.src.Locations(ctx)
	if err != nil {
		return nil, nil, err
	}
	migrants, err := a.src.Migrants(ctx)
	if err != nil {
		return nil, nil, err
	}
	return locations, migrants, nil
}
