package aggregate

import (
	"github.com/mr1hm/go-migrant-health/internal/models"
)

// Districts returns the distinct districts in first-seen order, prefixed
// with the "All Districts" sentinel.
func Districts(locations []models.Location) []string {
	out := []string{models.AllDistricts}
	seen := make(map[string]bool)
	for _, loc := range locations {
		if seen[loc.District] {
			continue
		}
		seen[loc.District] = true
		out = append(out, loc.District)
	}
	return out
}

// LocationsFor returns the distinct locality names of district, prefixed
// with "All Locations". District matching is exact and case-sensitive.
func LocationsFor(locations []models.Location, district string) []string {
	out := []string{models.AllLocations}
	if district == "" || district == models.AllDistricts {
		return out
	}
	seen := make(map[string]bool)
	for _, loc := range locations {
		name := loc.Name()
		if loc.District != district || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// FilterLocations keeps the locations matching f. Sentinel values match all.
func FilterLocations(locations []models.Location, f models.Filters) []models.Location {
	out := make([]models.Location, 0, len(locations))
	for _, loc := range locations {
		if f.HasDistrict() && loc.District != f.District {
			continue
		}
		if f.HasLocation() && loc.Name() != f.Location {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// KPIs reduces the filtered locations. Recovered counts migrants with a
// Recovered status whose location survived the filter.
func KPIs(locations []models.Location, migrants []models.Migrant, f models.Filters) models.KPISet {
	var kpis models.KPISet
	ids := make(map[int]bool)
	for _, loc := range FilterLocations(locations, f) {
		ids[loc.ID] = true
		kpis.TotalMigrants += loc.MigrantsCount
		kpis.ActiveCases += loc.CasesLast7Days
		if loc.Severity == models.SeverityRed {
			kpis.Hotspots++
		}
	}
	for _, m := range migrants {
		if ids[m.LocationID] && m.Status() == models.StatusRecovered {
			kpis.Recovered++
		}
	}
	return kpis
}

// GroupCasesByDistrict sums cases_last_7_days per district in first-seen order.
func GroupCasesByDistrict(locations []models.Location, f models.Filters) []models.DistrictCases {
	out := []models.DistrictCases{}
	index := make(map[string]int)
	for _, loc := range FilterLocations(locations, f) {
		i, ok := index[loc.District]
		if !ok {
			i = len(out)
			index[loc.District] = i
			out = append(out, models.DistrictCases{Name: loc.District})
		}
		out[i].Cases += loc.CasesLast7Days
	}
	return out
}

// GroupCasesByLocation returns one entry per location of district, counting
// the migrants that are active cases (neither Healthy nor Recovered).
func GroupCasesByLocation(locations []models.Location, migrants []models.Migrant, district string) []models.LocationCases {
	active := make(map[int]int)
	for _, m := range migrants {
		if m.ActiveCase() {
			active[m.LocationID]++
		}
	}

	out := []models.LocationCases{}
	for _, loc := range locations {
		if loc.District != district {
			continue
		}
		out = append(out, models.LocationCases{
			Name:  loc.Name(),
			Cases: active[loc.ID],
			ID:    loc.ID,
		})
	}
	return out
}

// GroupDiseases sums cases_last_7_days per primary disease in first-seen order.
func GroupDiseases(locations []models.Location, f models.Filters) []models.DiseaseSlice {
	out := []models.DiseaseSlice{}
	index := make(map[string]int)
	for _, loc := range FilterLocations(locations, f) {
		i, ok := index[loc.PrimaryDisease]
		if !ok {
			i = len(out)
			index[loc.PrimaryDisease] = i
			out = append(out, models.DiseaseSlice{Name: loc.PrimaryDisease})
		}
		out[i].Value += loc.CasesLast7Days
	}
	return out
}

// Hotspots groups at-risk migrants by location and joins each group to its
// location. Groups whose location cannot be resolved are dropped.
func Hotspots(locations []models.Location, migrants []models.Migrant) []models.HotspotAlert {
	byID := make(map[int]*models.Location, len(locations))
	for i := range locations {
		byID[locations[i].ID] = &locations[i]
	}

	cases := make(map[int]int)
	var order []int
	for _, m := range migrants {
		if !m.AtRisk() {
			continue
		}
		if cases[m.LocationID] == 0 {
			order = append(order, m.LocationID)
		}
		cases[m.LocationID]++
	}

	alerts := []models.HotspotAlert{}
	for _, id := range order {
		loc, ok := byID[id]
		if !ok {
			continue
		}
		n := cases[id]
		alerts = append(alerts, models.HotspotAlert{
			LocationID: loc.ID,
			Location:   loc.Name(),
			District:   loc.District,
			Position:   loc.Position(),
			Cases:      n,
			Severity:   models.ClassifyHotspot(n),
			Threshold:  models.HotspotThreshold,
		})
	}
	return alerts
}

// FilterMigrants applies the list-page filter. District and location
// restrictions combine; status "at-risk" keeps non-Healthy migrants and
// any other status keeps everyone.
func FilterMigrants(locations []models.Location, migrants []models.Migrant, f models.MigrantFilter) []models.Migrant {
	var inDistrict map[int]bool
	if f.DistrictName != "" {
		inDistrict = make(map[int]bool)
		for _, loc := range locations {
			if loc.District == f.DistrictName {
				inDistrict[loc.ID] = true
			}
		}
	}

	out := []models.Migrant{}
	for _, m := range migrants {
		if inDistrict != nil && !inDistrict[m.LocationID] {
			continue
		}
		if f.LocationID != nil && m.LocationID != *f.LocationID {
			continue
		}
		if f.Status == models.StatusAtRisk && !m.AtRisk() {
			continue
		}
		out = append(out, m)
	}
	return out
}

// LocationFor joins a migrant to the location matching its district and
// city, falling back to its location id. Nil means unknown.
func LocationFor(locations []models.Location, m *models.Migrant) *models.Location {
	for i := range locations {
		loc := &locations[i]
		if loc.District == m.District && m.City != "" && (loc.City == m.City || loc.Location == m.City) {
			return loc
		}
	}
	for i := range locations {
		if locations[i].ID == m.LocationID && m.LocationID != 0 {
			return &locations[i]
		}
	}
	return nil
}
