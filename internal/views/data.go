package views

import (
	"context"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

// Data is the aggregation surface the pages read from.
type Data interface {
	ListDistricts(ctx context.Context) ([]string, error)
	ListLocationsForDistrict(ctx context.Context, district string) ([]string, error)
	ComputeKPIs(ctx context.Context, f models.Filters) (models.KPISet, error)
	CasesByDistrict(ctx context.Context, f models.Filters) ([]models.DistrictCases, error)
	CasesByLocation(ctx context.Context, district string) ([]models.LocationCases, error)
	DiseaseDistribution(ctx context.Context, f models.Filters) ([]models.DiseaseSlice, error)
	HotspotAlerts(ctx context.Context) ([]models.HotspotAlert, error)
	MigrantsByFilter(ctx context.Context, f models.MigrantFilter) ([]models.Migrant, error)
	MigrantByPhone(ctx context.Context, phone string) (*models.Migrant, error)
	LocationDetails(ctx context.Context, m *models.Migrant) (*models.Location, error)
}
