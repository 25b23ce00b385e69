package api

import (
	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/views"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON renders hotspots as points; GeoJSON wants [lng, lat].
func toGeoJSON(alerts []models.HotspotAlert) FeatureCollection {
	features := make([]Feature, 0, len(alerts))

	for _, a := range alerts {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{a.Position[1], a.Position[0]},
			},
			Properties: map[string]any{
				"id":        a.LocationID,
				"location":  a.Location,
				"district":  a.District,
				"cases":     a.Cases,
				"severity":  string(a.Severity),
				"threshold": a.Threshold,
				"list_path": views.AtRiskPath(a.LocationID),
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
