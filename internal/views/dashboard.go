package views

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

type BarEntry struct {
	Name  string `json:"name"`
	Cases int    `json:"cases"`
	ID    int    `json:"id,omitempty"`
}

type DashboardData struct {
	Filters    models.Filters        `json:"filters"`
	Districts  []string              `json:"districts"`
	Locations  []string              `json:"locations"`
	KPIs       models.KPISet         `json:"kpis"`
	ChartTitle string                `json:"chart_title"`
	Cases      []BarEntry            `json:"cases"`
	Diseases   []models.DiseaseSlice `json:"diseases"`
}

const (
	DrillNone     = "none"
	DrillNarrow   = "narrow"
	DrillNavigate = "navigate"
)

// DrillDown is the outcome of clicking a bar of the cases chart.
type DrillDown struct {
	Action string                `json:"action"`
	Path   string                `json:"path,omitempty"`
	State  *State[DashboardData] `json:"state,omitempty"`
}

type Dashboard struct {
	data Data
	page page[DashboardData]
}

func NewDashboard(data Data) *Dashboard {
	d := &Dashboard{data: data}
	d.page.state = State[DashboardData]{Status: StatusLoading, Data: emptyDashboard(models.Filters{}.Normalize())}
	return d
}

func (d *Dashboard) State() State[DashboardData] {
	return d.page.current()
}

// Load recomputes every dashboard field for f. A selected location that
// does not belong to the selected district is reset to "All Locations".
func (d *Dashboard) Load(ctx context.Context, f models.Filters) State[DashboardData] {
	f = f.Normalize()
	gen := d.page.begin()

	data, err := d.fetch(ctx, f)
	if err == nil && !slices.Contains(data.Locations, f.Location) {
		f.Location = models.AllLocations
		data, err = d.fetch(ctx, f)
	}
	if err != nil {
		slog.Error("dashboard load failed", "district", f.District, "location", f.Location, "error", err)
		s, _ := d.page.commit(gen, State[DashboardData]{
			Status:  StatusError,
			Data:    emptyDashboard(f),
			Message: "Failed to load dashboard data",
		})
		return s
	}

	status := StatusLoaded
	message := ""
	if len(data.Districts) <= 1 {
		status = StatusEmpty
		message = "No dashboard data available"
	}

	s, applied := d.page.commit(gen, State[DashboardData]{Status: status, Data: data, Message: message})
	if !applied {
		slog.Debug("discarded stale dashboard result", "generation", gen, "latest", s.Generation)
	}
	return s
}

// Select handles a bar click. Without a district selected the click
// narrows the dashboard to that district; with one selected it navigates
// to the migrant list of the clicked location.
func (d *Dashboard) Select(ctx context.Context, bar BarEntry) DrillDown {
	if bar.Name == "" {
		return DrillDown{Action: DrillNone}
	}

	current := d.page.current().Data.Filters
	if !current.HasDistrict() {
		s := d.Load(ctx, models.Filters{District: bar.Name})
		return DrillDown{Action: DrillNarrow, State: &s}
	}

	if bar.ID != 0 {
		return DrillDown{Action: DrillNavigate, Path: "/migrants/by-location/" + strconv.Itoa(bar.ID)}
	}
	return DrillDown{Action: DrillNavigate, Path: "/migrants/by-district/" + url.PathEscape(current.District)}
}

// fetch issues all dashboard reads concurrently and joins them.
func (d *Dashboard) fetch(ctx context.Context, f models.Filters) (DashboardData, error) {
	out := DashboardData{Filters: f}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		out.Districts, err = d.data.ListDistricts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Locations, err = d.data.ListLocationsForDistrict(gctx, f.District)
		return err
	})
	g.Go(func() error {
		var err error
		out.KPIs, err = d.data.ComputeKPIs(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		out.Diseases, err = d.data.DiseaseDistribution(gctx, f)
		return err
	})
	g.Go(func() error {
		if f.HasDistrict() {
			cases, err := d.data.CasesByLocation(gctx, f.District)
			if err != nil {
				return err
			}
			out.ChartTitle = fmt.Sprintf("Cases in %s", f.District)
			out.Cases = make([]BarEntry, 0, len(cases))
			for _, c := range cases {
				out.Cases = append(out.Cases, BarEntry{Name: c.Name, Cases: c.Cases, ID: c.ID})
			}
			return nil
		}
		cases, err := d.data.CasesByDistrict(gctx, f)
		if err != nil {
			return err
		}
		out.ChartTitle = "Cases by District"
		out.Cases = make([]BarEntry, 0, len(cases))
		for _, c := range cases {
			out.Cases = append(out.Cases, BarEntry{Name: c.Name, Cases: c.Cases})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardData{}, err
	}
	return out, nil
}

func emptyDashboard(f models.Filters) DashboardData {
	return DashboardData{
		Filters:   f,
		Districts: []string{models.AllDistricts},
		Locations: []string{models.AllLocations},
		Cases:     []BarEntry{},
		Diseases:  []models.DiseaseSlice{},
	}
}
