package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/source/sourcetest"
)

func TestDistricts_FirstSeenAndDeduplicated(t *testing.T) {
	got := Districts(sourcetest.Kerala())
	assert.Equal(t, []string{models.AllDistricts, "Ernakulam", "Thrissur", "Kozhikode"}, got)

	assert.Equal(t, []string{models.AllDistricts}, Districts(nil))
}

func TestDistricts_NoDuplicatesAfterSentinel(t *testing.T) {
	locations := []models.Location{
		{District: "A"}, {District: "B"}, {District: "A"}, {District: "C"}, {District: "B"},
	}
	got := Districts(locations)

	assert.Equal(t, models.AllDistricts, got[0])
	seen := map[string]bool{}
	for _, d := range got[1:] {
		assert.False(t, seen[d], "duplicate district %q", d)
		seen[d] = true
	}
	assert.Len(t, got, 4)
}

func TestLocationsFor(t *testing.T) {
	locations := sourcetest.Kerala()

	assert.Equal(t, []string{models.AllLocations, "Kochi", "Aluva", "Perumbavoor"}, LocationsFor(locations, "Ernakulam"))
	assert.Equal(t, []string{models.AllLocations}, LocationsFor(locations, models.AllDistricts))
	assert.Equal(t, []string{models.AllLocations}, LocationsFor(locations, ""))
	assert.Equal(t, []string{models.AllLocations}, LocationsFor(locations, "Wayanad"))
	// exact, case-sensitive match
	assert.Equal(t, []string{models.AllLocations}, LocationsFor(locations, "ernakulam"))
}

func TestLocationsFor_FallsBackToCity(t *testing.T) {
	locations := []models.Location{
		{ID: 1, District: "Idukki", City: "Munnar"},
		{ID: 2, District: "Idukki", Location: "Munnar"},
	}
	assert.Equal(t, []string{models.AllLocations, "Munnar"}, LocationsFor(locations, "Idukki"))
}

func TestKPIs(t *testing.T) {
	locations := sourcetest.Kerala()
	migrants := sourcetest.KeralaMigrants()

	all := KPIs(locations, migrants, models.Filters{})
	assert.Equal(t, models.KPISet{TotalMigrants: 5300, ActiveCases: 32, Hotspots: 3, Recovered: 1}, all)

	ernakulam := KPIs(locations, migrants, models.Filters{District: "Ernakulam", Location: models.AllLocations})
	assert.Equal(t, models.KPISet{TotalMigrants: 4500, ActiveCases: 26, Hotspots: 2, Recovered: 1}, ernakulam)

	kochi := KPIs(locations, migrants, models.Filters{District: "Ernakulam", Location: "Kochi"})
	assert.Equal(t, models.KPISet{TotalMigrants: 1200, ActiveCases: 14, Hotspots: 1, Recovered: 0}, kochi)

	none := KPIs(locations, migrants, models.Filters{District: "Wayanad"})
	assert.Equal(t, models.KPISet{}, none)
}

func TestKPIs_Idempotent(t *testing.T) {
	locations := sourcetest.Kerala()
	migrants := sourcetest.KeralaMigrants()
	f := models.Filters{District: "Thrissur"}

	assert.Equal(t, KPIs(locations, migrants, f), KPIs(locations, migrants, f))
}

func TestGroupCasesByDistrict_MatchesActiveCases(t *testing.T) {
	locations := sourcetest.Kerala()
	filters := []models.Filters{
		{},
		{District: models.AllDistricts, Location: models.AllLocations},
		{District: "Ernakulam"},
		{District: "Ernakulam", Location: "Aluva"},
		{District: "Kozhikode"},
		{District: "Nowhere"},
	}

	for _, f := range filters {
		sum := 0
		for _, e := range GroupCasesByDistrict(locations, f) {
			sum += e.Cases
		}
		assert.Equal(t, KPIs(locations, nil, f).ActiveCases, sum, "filters %+v", f)
	}
}

func TestGroupCasesByDistrict_Scenario(t *testing.T) {
	locations := []models.Location{
		{ID: 1, District: "Kochi", CasesLast7Days: 5, Severity: models.SeverityRed},
		{ID: 2, District: "Kochi", CasesLast7Days: 1, Severity: models.SeverityGreen},
	}

	assert.Equal(t, []models.DistrictCases{{Name: "Kochi", Cases: 6}}, GroupCasesByDistrict(locations, models.Filters{}))
	assert.Equal(t, 1, KPIs(locations, nil, models.Filters{}).Hotspots)
}

func TestGroupCasesByDistrict_Order(t *testing.T) {
	got := GroupCasesByDistrict(sourcetest.Kerala(), models.Filters{})
	assert.Equal(t, []models.DistrictCases{
		{Name: "Ernakulam", Cases: 26},
		{Name: "Thrissur", Cases: 6},
		{Name: "Kozhikode", Cases: 0},
	}, got)
}

func TestGroupCasesByLocation_CountsActiveCases(t *testing.T) {
	got := GroupCasesByLocation(sourcetest.Kerala(), sourcetest.KeralaMigrants(), "Ernakulam")

	// Kochi: Critical + Under Observation; Aluva: only Recovered
	assert.Equal(t, []models.LocationCases{
		{Name: "Kochi", Cases: 2, ID: 1},
		{Name: "Aluva", Cases: 0, ID: 2},
		{Name: "Perumbavoor", Cases: 0, ID: 5},
	}, got)

	assert.Empty(t, GroupCasesByLocation(sourcetest.Kerala(), sourcetest.KeralaMigrants(), "Wayanad"))
}

func TestGroupDiseases(t *testing.T) {
	got := GroupDiseases(sourcetest.Kerala(), models.Filters{})
	assert.Equal(t, []models.DiseaseSlice{
		{Name: "Dengue", Value: 20},
		{Name: "Malaria", Value: 3},
		{Name: "Tuberculosis", Value: 9},
	}, got)

	got = GroupDiseases(sourcetest.Kerala(), models.Filters{District: "Ernakulam", Location: "Perumbavoor"})
	assert.Equal(t, []models.DiseaseSlice{{Name: "Tuberculosis", Value: 9}}, got)
}

func TestHotspots_Scenario(t *testing.T) {
	locations := []models.Location{{ID: 3, District: "Ernakulam", Location: "Kochi", Lat: 9.9, Lng: 76.2}}
	migrants := []models.Migrant{
		{Phone: "1", LocationID: 3, HealthProfile: sourcetest.Profile(models.StatusCritical)},
		{Phone: "2", LocationID: 3, HealthProfile: sourcetest.Profile(models.StatusHealthy)},
	}

	alerts := Hotspots(locations, migrants)
	if assert.Len(t, alerts, 1) {
		a := alerts[0]
		assert.Equal(t, 3, a.LocationID)
		assert.Equal(t, 1, a.Cases)
		assert.Equal(t, models.SeverityOrange, a.Severity)
		assert.Equal(t, models.HotspotThreshold, a.Threshold)
		assert.Equal(t, [2]float64{9.9, 76.2}, a.Position)
	}
}

func TestHotspots_Fixture(t *testing.T) {
	alerts := Hotspots(sourcetest.Kerala(), sourcetest.KeralaMigrants())

	byID := map[int]models.HotspotAlert{}
	for _, a := range alerts {
		byID[a.LocationID] = a
	}

	// location 99 cannot be resolved; location 4 only has an unprofiled migrant
	assert.Len(t, alerts, 3)
	assert.Equal(t, 2, byID[1].Cases)
	assert.Equal(t, models.SeverityRed, byID[1].Severity)
	// Recovered still counts as at-risk for hotspots
	assert.Equal(t, 1, byID[2].Cases)
	assert.Equal(t, models.SeverityOrange, byID[2].Severity)
	assert.Equal(t, 1, byID[3].Cases)
	assert.NotContains(t, byID, 99)
}

func TestFilterMigrants(t *testing.T) {
	locations := sourcetest.Kerala()
	migrants := sourcetest.KeralaMigrants()
	loc3 := 3

	phones := func(ms []models.Migrant) []string {
		out := []string{}
		for _, m := range ms {
			out = append(out, m.Phone)
		}
		return out
	}

	tests := []struct {
		name   string
		filter models.MigrantFilter
		want   []string
	}{
		{"all", models.MigrantFilter{Status: models.StatusAll}, phones(migrants)},
		{"no filter", models.MigrantFilter{}, phones(migrants)},
		{"unknown status", models.MigrantFilter{Status: "active"}, phones(migrants)},
		{"at risk", models.MigrantFilter{Status: models.StatusAtRisk}, []string{"9000000001", "9000000002", "9000000003", "9000000005", "9000000007"}},
		{"district", models.MigrantFilter{DistrictName: "Thrissur"}, []string{"9000000004", "9000000005"}},
		{"district at risk", models.MigrantFilter{DistrictName: "Thrissur", Status: models.StatusAtRisk}, []string{"9000000005"}},
		{"location", models.MigrantFilter{LocationID: &loc3}, []string{"9000000004", "9000000005"}},
		{"location in other district", models.MigrantFilter{LocationID: &loc3, DistrictName: "Ernakulam"}, []string{}},
		{"unknown district", models.MigrantFilter{DistrictName: "Wayanad"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phones(FilterMigrants(locations, migrants, tt.filter)))
		})
	}
}

func TestFilterMigrants_AtRiskNeverHealthy(t *testing.T) {
	got := FilterMigrants(sourcetest.Kerala(), sourcetest.KeralaMigrants(), models.MigrantFilter{Status: models.StatusAtRisk})
	for _, m := range got {
		assert.NotNil(t, m.HealthProfile)
		assert.NotEqual(t, models.StatusHealthy, m.Status())
	}
}

func TestLocationFor(t *testing.T) {
	locations := sourcetest.Kerala()

	m := &models.Migrant{District: "Ernakulam", City: "Aluva", LocationID: 1}
	if loc := LocationFor(locations, m); assert.NotNil(t, loc) {
		assert.Equal(t, 2, loc.ID, "district+city join wins over location id")
	}

	m = &models.Migrant{District: "Unknown", City: "Nowhere", LocationID: 3}
	if loc := LocationFor(locations, m); assert.NotNil(t, loc) {
		assert.Equal(t, 3, loc.ID)
	}

	assert.Nil(t, LocationFor(locations, &models.Migrant{District: "X", City: "Y"}))
}
