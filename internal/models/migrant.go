package models

type HealthStatus string

const (
	StatusHealthy          HealthStatus = "Healthy"
	StatusUnderObservation HealthStatus = "Under Observation"
	StatusCritical         HealthStatus = "Critical"
	StatusRecovered        HealthStatus = "Recovered"
)

type Migrant struct {
	Phone           string         `json:"phone"` // natural key
	Name            string         `json:"name"`
	Age             int            `json:"age"`
	Gender          string         `json:"gender"`
	District        string         `json:"district"`
	City            string         `json:"city"`
	OriginState     string         `json:"origin_state"`
	OriginDistrict  string         `json:"origin_district"`
	Occupation      string         `json:"occupation"`
	ChronicIllness  []string       `json:"chronic_illness"`
	LocationID      int            `json:"location_id"` // references Location.ID
	Pregnancy       string         `json:"pregnancy,omitempty"`
	ConditionalInfo string         `json:"conditional_info,omitempty"`
	HealthProfile   *HealthProfile `json:"health_profile,omitempty"`
}

type HealthProfile struct {
	OverallStatus  HealthStatus `json:"overall_status"`
	Vitals         Vitals       `json:"vitals"`
	Conditions     []Condition  `json:"conditions"`
	Screenings     []Screening  `json:"screenings"`
	RecentCheckups []Checkup    `json:"recent_checkups"`
}

type Vitals struct {
	BloodPressure string `json:"blood_pressure"`
	BloodSugar    string `json:"blood_sugar"`
}

type Condition struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type Screening struct {
	Disease          string `json:"disease"`
	Result           string `json:"result"`
	LastScreenedDate string `json:"last_screened_date"`
}

type Checkup struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// Status returns the overall status, or "" when the migrant has no profile.
func (m *Migrant) Status() HealthStatus {
	if m.HealthProfile == nil {
		return ""
	}
	return m.HealthProfile.OverallStatus
}

// AtRisk reports a profiled migrant whose status is anything but Healthy.
func (m *Migrant) AtRisk() bool {
	return m.HealthProfile != nil && m.HealthProfile.OverallStatus != StatusHealthy
}

// ActiveCase is AtRisk minus recovered migrants.
func (m *Migrant) ActiveCase() bool {
	return m.AtRisk() && m.HealthProfile.OverallStatus != StatusRecovered
}
