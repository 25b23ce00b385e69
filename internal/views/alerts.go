package views

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

// MapCenter is where the hotspot map opens (Kerala).
var MapCenter = [2]float64{10.8505, 76.2711}

const noAlertsMessage = "No active alerts at the moment. All districts are currently safe."

type AlertCard struct {
	models.HotspotAlert
	ListPath string `json:"list_path"`
}

type AlertsData struct {
	Center [2]float64  `json:"center"`
	Alerts []AlertCard `json:"alerts"`
}

type Alerts struct {
	data Data
	page page[AlertsData]
}

func NewAlerts(data Data) *Alerts {
	a := &Alerts{data: data}
	a.page.state = State[AlertsData]{Status: StatusLoading, Data: AlertsData{Center: MapCenter, Alerts: []AlertCard{}}}
	return a
}

func (a *Alerts) State() State[AlertsData] {
	return a.page.current()
}

func (a *Alerts) Load(ctx context.Context) State[AlertsData] {
	gen := a.page.begin()
	out := AlertsData{Center: MapCenter, Alerts: []AlertCard{}}

	hotspots, err := a.data.HotspotAlerts(ctx)
	if err != nil {
		slog.Error("hotspot alerts failed", "error", err)
		s, _ := a.page.commit(gen, State[AlertsData]{Status: StatusError, Data: out, Message: "Failed to load alerts"})
		return s
	}

	for _, h := range hotspots {
		out.Alerts = append(out.Alerts, AlertCard{HotspotAlert: h, ListPath: AtRiskPath(h.LocationID)})
	}

	if len(out.Alerts) == 0 {
		s, _ := a.page.commit(gen, State[AlertsData]{Status: StatusEmpty, Data: out, Message: noAlertsMessage})
		return s
	}
	s, _ := a.page.commit(gen, State[AlertsData]{Status: StatusLoaded, Data: out})
	return s
}

// AtRiskPath links an alert to the at-risk migrants of its location.
func AtRiskPath(locationID int) string {
	return "/migrants/by-location/" + strconv.Itoa(locationID) + "?filter=" + models.StatusAtRisk
}
