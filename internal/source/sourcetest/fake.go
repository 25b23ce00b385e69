// Package sourcetest provides an in-memory source.Source for tests.
package sourcetest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/source"
)

type Fake struct {
	mu        sync.Mutex
	locations []models.Location
	migrants  []models.Migrant
	err       error

	LocationCalls atomic.Int64
	MigrantCalls  atomic.Int64
}

func New(locations []models.Location, migrants []models.Migrant) *Fake {
	return &Fake{locations: locations, migrants: migrants}
}

func (f *Fake) Set(locations []models.Location, migrants []models.Migrant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = locations
	f.migrants = migrants
}

// Fail makes every call return a network failure until Fail(false).
func (f *Fake) Fail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fail {
		f.err = &source.NetworkError{Op: "fake", StatusCode: 503}
	} else {
		f.err = nil
	}
}

func (f *Fake) Locations(ctx context.Context) ([]models.Location, error) {
	f.LocationCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Location(nil), f.locations...), nil
}

func (f *Fake) Migrants(ctx context.Context) ([]models.Migrant, error) {
	f.MigrantCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Migrant(nil), f.migrants...), nil
}

func (f *Fake) MigrantByPhone(ctx context.Context, phone string) (*models.Migrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.migrants {
		if m.Phone == phone {
			found := m
			return &found, nil
		}
	}
	return nil, source.ErrNotFound
}

// Profile is a shorthand for a migrant health profile with a status.
func Profile(status models.HealthStatus) *models.HealthProfile {
	return &models.HealthProfile{OverallStatus: status}
}

// Kerala is a small fixture of five locations across three districts.
func Kerala() []models.Location {
	return []models.Location{
		{ID: 1, District: "Ernakulam", Location: "Kochi", City: "Kochi", Lat: 9.93, Lng: 76.26, MigrantsCount: 1200, CasesLast7Days: 14, Severity: models.SeverityRed, PrimaryDisease: "Dengue"},
		{ID: 2, District: "Ernakulam", Location: "Aluva", City: "Aluva", Lat: 10.1, Lng: 76.35, MigrantsCount: 800, CasesLast7Days: 3, Severity: models.SeverityOrange, PrimaryDisease: "Malaria"},
		{ID: 3, District: "Thrissur", Location: "Chalakudy", City: "Chalakudy", Lat: 10.3, Lng: 76.33, MigrantsCount: 500, CasesLast7Days: 6, Severity: models.SeverityRed, PrimaryDisease: "Dengue"},
		{ID: 4, District: "Kozhikode", Location: "Feroke", City: "Feroke", Lat: 11.18, Lng: 75.84, MigrantsCount: 300, CasesLast7Days: 0, Severity: models.SeverityGreen, PrimaryDisease: "Tuberculosis"},
		{ID: 5, District: "Ernakulam", Location: "Perumbavoor", City: "Perumbavoor", Lat: 10.11, Lng: 76.47, MigrantsCount: 2500, CasesLast7Days: 9, Severity: models.SeverityRed, PrimaryDisease: "Tuberculosis"},
	}
}

func KeralaMigrants() []models.Migrant {
	return []models.Migrant{
		{Phone: "9000000001", Name: "Ravi Kumar", Age: 34, Gender: "Male", District: "Ernakulam", City: "Kochi", LocationID: 1, HealthProfile: Profile(models.StatusCritical)},
		{Phone: "9000000002", Name: "Sita Devi", Age: 29, Gender: "Female", District: "Ernakulam", City: "Kochi", LocationID: 1, HealthProfile: Profile(models.StatusUnderObservation)},
		{Phone: "9000000003", Name: "Anil Das", Age: 41, Gender: "Male", District: "Ernakulam", City: "Aluva", LocationID: 2, HealthProfile: Profile(models.StatusRecovered)},
		{Phone: "9000000004", Name: "Mina Roy", Age: 23, Gender: "Female", District: "Thrissur", City: "Chalakudy", LocationID: 3, HealthProfile: Profile(models.StatusHealthy)},
		{Phone: "9000000005", Name: "Babul Sheikh", Age: 37, Gender: "Male", District: "Thrissur", City: "Chalakudy", LocationID: 3, HealthProfile: Profile(models.StatusCritical)},
		{Phone: "9000000006", Name: "Rohit Paswan", Age: 19, Gender: "Male", District: "Kozhikode", City: "Feroke", LocationID: 4},
		{Phone: "9000000007", Name: "Lost Record", Age: 50, Gender: "Male", LocationID: 99, HealthProfile: Profile(models.StatusCritical)},
	}
}
