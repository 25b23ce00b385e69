package models

const (
	AllDistricts = "All Districts"
	AllLocations = "All Locations"

	StatusAtRisk = "at-risk"
	StatusAll    = "all"
)

// Filters narrows dashboard aggregates. Empty values and the "All"
// sentinels mean no restriction.
type Filters struct {
	District string `json:"district" form:"district"`
	Location string `json:"location" form:"location"`
}

func (f Filters) HasDistrict() bool {
	return f.District != "" && f.District != AllDistricts
}

func (f Filters) HasLocation() bool {
	return f.Location != "" && f.Location != AllLocations
}

// Normalize replaces empty values with their sentinels.
func (f Filters) Normalize() Filters {
	if f.District == "" {
		f.District = AllDistricts
	}
	if f.Location == "" {
		f.Location = AllLocations
	}
	return f
}

type MigrantFilter struct {
	Status       string `json:"status,omitempty"`
	LocationID   *int   `json:"location_id,omitempty"`
	DistrictName string `json:"district_name,omitempty"`
}

type KPISet struct {
	TotalMigrants int `json:"totalMigrants"`
	ActiveCases   int `json:"activeCases"`
	Hotspots      int `json:"hotspots"`
	Recovered     int `json:"recovered"`
}

type DistrictCases struct {
	Name  string `json:"name"`
	Cases int    `json:"cases"`
}

type LocationCases struct {
	Name  string `json:"name"`
	Cases int    `json:"cases"`
	ID    int    `json:"id"`
}

type DiseaseSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
