package views

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mr1hm/go-migrant-health/internal/aggregate"
	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/source/sourcetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newData() (*aggregate.Aggregator, *sourcetest.Fake) {
	fake := sourcetest.New(sourcetest.Kerala(), sourcetest.KeralaMigrants())
	return aggregate.New(fake), fake
}

// gatedData blocks KPI computation for one district until released.
type gatedData struct {
	*aggregate.Aggregator
	district string
	started  chan struct{}
	release  chan struct{}
}

func (g *gatedData) ComputeKPIs(ctx context.Context, f models.Filters) (models.KPISet, error) {
	if f.District == g.district {
		close(g.started)
		<-g.release
	}
	return g.Aggregator.ComputeKPIs(ctx, f)
}

func TestDashboard_InitialLoad(t *testing.T) {
	agg, _ := newData()
	dash := NewDashboard(agg)
	assert.Equal(t, StatusLoading, dash.State().Status)

	s := dash.Load(context.Background(), models.Filters{})

	require.Equal(t, StatusLoaded, s.Status)
	assert.Equal(t, models.Filters{District: models.AllDistricts, Location: models.AllLocations}, s.Data.Filters)
	assert.Equal(t, []string{models.AllDistricts, "Ernakulam", "Thrissur", "Kozhikode"}, s.Data.Districts)
	assert.Equal(t, []string{models.AllLocations}, s.Data.Locations)
	assert.Equal(t, models.KPISet{TotalMigrants: 5300, ActiveCases: 32, Hotspots: 3, Recovered: 1}, s.Data.KPIs)
	assert.Equal(t, "Cases by District", s.Data.ChartTitle)
	assert.Equal(t, []BarEntry{{Name: "Ernakulam", Cases: 26}, {Name: "Thrissur", Cases: 6}, {Name: "Kozhikode", Cases: 0}}, s.Data.Cases)
	assert.Len(t, s.Data.Diseases, 3)
	assert.Equal(t, uint64(1), s.Generation)
}

func TestDashboard_DistrictShowsLocationBars(t *testing.T) {
	agg, _ := newData()
	dash := NewDashboard(agg)

	s := dash.Load(context.Background(), models.Filters{District: "Ernakulam"})

	require.Equal(t, StatusLoaded, s.Status)
	assert.Equal(t, "Cases in Ernakulam", s.Data.ChartTitle)
	assert.Equal(t, []BarEntry{
		{Name: "Kochi", Cases: 2, ID: 1},
		{Name: "Aluva", Cases: 0, ID: 2},
		{Name: "Perumbavoor", Cases: 0, ID: 5},
	}, s.Data.Cases)
	assert.Equal(t, []string{models.AllLocations, "Kochi", "Aluva", "Perumbavoor"}, s.Data.Locations)
	assert.Equal(t, 26, s.Data.KPIs.ActiveCases)
}

func TestDashboard_ResetsForeignLocation(t *testing.T) {
	agg, _ := newData()
	dash := NewDashboard(agg)

	s := dash.Load(context.Background(), models.Filters{District: "Thrissur", Location: "Kochi"})

	require.Equal(t, StatusLoaded, s.Status)
	assert.Equal(t, models.AllLocations, s.Data.Filters.Location)
	assert.Equal(t, 6, s.Data.KPIs.ActiveCases)
}

func TestDashboard_ErrorDegradesToZero(t *testing.T) {
	agg, fake := newData()
	fake.Fail(true)
	dash := NewDashboard(agg)

	s := dash.Load(context.Background(), models.Filters{})

	assert.Equal(t, StatusError, s.Status)
	assert.NotEmpty(t, s.Message)
	assert.Equal(t, models.KPISet{}, s.Data.KPIs)
	assert.Empty(t, s.Data.Cases)
	assert.Equal(t, []string{models.AllDistricts}, s.Data.Districts)
}

func TestDashboard_EmptyData(t *testing.T) {
	fake := sourcetest.New(nil, nil)
	dash := NewDashboard(aggregate.New(fake))

	s := dash.Load(context.Background(), models.Filters{})

	assert.Equal(t, StatusEmpty, s.Status)
	assert.Equal(t, models.KPISet{}, s.Data.KPIs)
}

func TestDashboard_StaleResultDiscarded(t *testing.T) {
	agg, _ := newData()
	gated := &gatedData{
		Aggregator: agg,
		district:   "Thrissur",
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	dash := NewDashboard(gated)
	ctx := context.Background()

	done := make(chan State[DashboardData], 1)
	go func() {
		done <- dash.Load(ctx, models.Filters{District: "Thrissur"})
	}()
	<-gated.started

	fresh := dash.Load(ctx, models.Filters{District: "Ernakulam"})
	close(gated.release)
	stale := <-done

	assert.Equal(t, "Ernakulam", fresh.Data.Filters.District)
	assert.Equal(t, "Ernakulam", stale.Data.Filters.District)
	assert.Equal(t, fresh.Generation, stale.Generation)
	assert.Equal(t, "Ernakulam", dash.State().Data.Filters.District)
	assert.Equal(t, 26, dash.State().Data.KPIs.ActiveCases)
}

func TestDashboard_Select(t *testing.T) {
	agg, _ := newData()
	dash := NewDashboard(agg)
	ctx := context.Background()
	dash.Load(ctx, models.Filters{})

	drill := dash.Select(ctx, BarEntry{Name: "Ernakulam", Cases: 26})
	require.Equal(t, DrillNarrow, drill.Action)
	require.NotNil(t, drill.State)
	assert.Equal(t, "Ernakulam", drill.State.Data.Filters.District)

	drill = dash.Select(ctx, BarEntry{Name: "Kochi", Cases: 2, ID: 1})
	assert.Equal(t, DrillNavigate, drill.Action)
	assert.Equal(t, "/migrants/by-location/1", drill.Path)

	assert.Equal(t, DrillNone, dash.Select(ctx, BarEntry{}).Action)
}

func TestAlerts_Load(t *testing.T) {
	agg, _ := newData()
	alerts := NewAlerts(agg)

	s := alerts.Load(context.Background())

	require.Equal(t, StatusLoaded, s.Status)
	require.Len(t, s.Data.Alerts, 3)
	assert.Equal(t, MapCenter, s.Data.Center)

	first := s.Data.Alerts[0]
	assert.Equal(t, 1, first.LocationID)
	assert.Equal(t, 2, first.Cases)
	assert.Equal(t, models.SeverityRed, first.Severity)
	assert.Equal(t, "/migrants/by-location/1?filter=at-risk", first.ListPath)
	assert.Equal(t, models.SeverityOrange, s.Data.Alerts[1].Severity)
}

func TestAlerts_Empty(t *testing.T) {
	fake := sourcetest.New(sourcetest.Kerala(), []models.Migrant{
		{Phone: "1", LocationID: 1, HealthProfile: sourcetest.Profile(models.StatusHealthy)},
	})
	alerts := NewAlerts(aggregate.New(fake))

	s := alerts.Load(context.Background())

	assert.Equal(t, StatusEmpty, s.Status)
	assert.Equal(t, "No active alerts at the moment. All districts are currently safe.", s.Message)
	assert.Empty(t, s.Data.Alerts)
}

func TestAlerts_Error(t *testing.T) {
	agg, fake := newData()
	fake.Fail(true)

	s := NewAlerts(agg).Load(context.Background())

	assert.Equal(t, StatusError, s.Status)
	assert.Empty(t, s.Data.Alerts)
}

func TestList_Routes(t *testing.T) {
	tests := []struct {
		name   string
		route  ListRoute
		title  string
		count  int
		status Status
	}{
		{"all", ListRoute{FilterType: "all"}, "All Registered Migrants", 7, StatusLoaded},
		{"all ignores filter query", ListRoute{FilterType: "all", Filter: "at-risk"}, "All Registered Migrants", 7, StatusLoaded},
		{"no route", ListRoute{}, "All Registered Migrants", 7, StatusLoaded},
		{"filter type keeps its casing", ListRoute{FilterType: "atRisk"}, "AtRisk Migrants", 7, StatusLoaded},
		{"at-risk", ListRoute{FilterType: "at-risk"}, "At-risk Migrants", 5, StatusLoaded},
		{"district", ListRoute{DistrictName: "Kozhikode"}, "Migrants in Kozhikode", 1, StatusLoaded},
		{"district at-risk", ListRoute{DistrictName: "Kozhikode", Filter: "at-risk"}, "Migrants in Kozhikode", 0, StatusEmpty},
		{"location", ListRoute{LocationID: "1"}, "Migrants in Location #1", 2, StatusLoaded},
		{"location at-risk", ListRoute{LocationID: "3", Filter: "at-risk"}, "Migrants in Location #3", 1, StatusLoaded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, _ := newData()
			s, err := NewList(agg).Load(context.Background(), tt.route)
			require.NoError(t, err)
			assert.Equal(t, tt.status, s.Status)
			assert.Equal(t, tt.title, s.Data.Title)
			assert.Len(t, s.Data.Migrants, tt.count)
		})
	}
}

func TestList_Rows(t *testing.T) {
	agg, _ := newData()
	s, err := NewList(agg).Load(context.Background(), ListRoute{DistrictName: "Kozhikode"})
	require.NoError(t, err)

	require.Len(t, s.Data.Migrants, 1)
	row := s.Data.Migrants[0]
	assert.Equal(t, "N/A", row.Status)
	assert.Equal(t, "/migrants/details/9000000006", row.DetailPath)
}

func TestList_EmptyMessage(t *testing.T) {
	agg, _ := newData()
	s, err := NewList(agg).Load(context.Background(), ListRoute{LocationID: "4", Filter: "at-risk"})
	require.NoError(t, err)

	assert.Equal(t, StatusEmpty, s.Status)
	assert.Equal(t, "No migrant data available for this filter.", s.Message)
}

func TestList_InvalidLocation(t *testing.T) {
	agg, _ := newData()
	list := NewList(agg)

	_, err := list.Load(context.Background(), ListRoute{LocationID: "abc"})

	assert.True(t, errors.Is(err, ErrInvalidRoute))
	assert.Equal(t, StatusLoading, list.State().Status)
}

func TestList_Error(t *testing.T) {
	agg, fake := newData()
	fake.Fail(true)

	s, err := NewList(agg).Load(context.Background(), ListRoute{FilterType: "at-risk"})
	require.NoError(t, err)

	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "At-risk Migrants", s.Data.Title)
	assert.Empty(t, s.Data.Migrants)
}

func TestDetail_Load(t *testing.T) {
	agg, _ := newData()

	s := NewDetail(agg).Load(context.Background(), "9000000001")

	require.Equal(t, StatusLoaded, s.Status)
	require.NotNil(t, s.Data.Migrant)
	assert.Equal(t, "Ravi Kumar", s.Data.Migrant.Name)
	require.NotNil(t, s.Data.Location)
	assert.Equal(t, 1, s.Data.Location.ID)
	assert.Equal(t, string(models.StatusCritical), s.Data.StatusLabel)
}

func TestDetail_NotFound(t *testing.T) {
	agg, _ := newData()

	s := NewDetail(agg).Load(context.Background(), "0000")

	assert.Equal(t, StatusEmpty, s.Status)
	assert.Equal(t, "Migrant with phone number 0000 not found.", s.Message)
	assert.Nil(t, s.Data.Migrant)
}

func TestDetail_UnknownLocationAndStatus(t *testing.T) {
	agg, _ := newData()

	s := NewDetail(agg).Load(context.Background(), "9000000006")
	require.Equal(t, StatusLoaded, s.Status)
	assert.Equal(t, "Status Unknown", s.Data.StatusLabel)

	s = NewDetail(agg).Load(context.Background(), "9000000007")
	require.Equal(t, StatusLoaded, s.Status)
	assert.Nil(t, s.Data.Location)
}

func TestSearch(t *testing.T) {
	fake := sourcetest.New(sourcetest.Kerala(), sourcetest.KeralaMigrants())
	search := NewSearch(fake)
	ctx := context.Background()

	s := search.Run(ctx, "   ")
	assert.Equal(t, StatusEmpty, s.Status)
	assert.Equal(t, uint64(0), s.Generation)

	s = search.Run(ctx, " 9000000002 ")
	require.Equal(t, StatusLoaded, s.Status)
	assert.Equal(t, "9000000002", s.Data.Query)
	assert.Equal(t, "Sita Devi", s.Data.Migrant.Name)

	s = search.Run(ctx, "12345")
	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "Migrant not found. Server responded with status: 404", s.Message)
	assert.Nil(t, s.Data.Migrant)

	fake.Fail(true)
	s = search.Run(ctx, "9000000002")
	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "Search failed. Server responded with status: 503", s.Message)
}
