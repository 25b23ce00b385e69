package models

type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityOrange Severity = "orange"
	SeverityGreen  Severity = "green"
)

// Rank orders severities from green (1) to red (3). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityGreen:
		return 1
	case SeverityOrange:
		return 2
	case SeverityRed:
		return 3
	}
	return 0
}

// Location is a monitored locality within a district, as served by the
// remote API. It is read-only to this service.
type Location struct {
	ID             int      `json:"id"`
	District       string   `json:"district"`
	Location       string   `json:"location"`
	City           string   `json:"city,omitempty"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	MigrantsCount  int      `json:"migrants_count"`
	CasesLast7Days int      `json:"cases_last_7_days"`
	Severity       Severity `json:"severity"`
	PrimaryDisease string   `json:"primary_disease"`
}

// Name is the display name of the locality. Older records only carry city.
func (l *Location) Name() string {
	if l.Location != "" {
		return l.Location
	}
	return l.City
}

func (l *Location) Position() [2]float64 {
	return [2]float64{l.Lat, l.Lng}
}
