package models

// HotspotThreshold is the at-risk case count from which a hotspot is red.
const HotspotThreshold = 2

// HotspotAlert is derived from the migrant/location join and never persisted.
type HotspotAlert struct {
	LocationID int        `json:"id"`
	Location   string     `json:"location"`
	District   string     `json:"district"`
	Position   [2]float64 `json:"position"` // [lat, lng]
	Cases      int        `json:"cases"`
	Severity   Severity   `json:"severity"`
	Threshold  int        `json:"threshold"`
}

func ClassifyHotspot(cases int) Severity {
	if cases >= HotspotThreshold {
		return SeverityRed
	}
	return SeverityOrange
}
