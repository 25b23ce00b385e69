package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

var ErrInvalidRoute = errors.New("invalid route")

const noMigrantsMessage = "No migrant data available for this filter."

// ListRoute is the parsed form of the migrant list URLs:
// /migrants/list/:filterType, /migrants/by-district/:districtName and
// /migrants/by-location/:locationId. The ?filter= query parameter only
// narrows the district and location lists; a filter type is its own status.
type ListRoute struct {
	FilterType   string
	DistrictName string
	LocationID   string
	Filter       string
}

type MigrantRow struct {
	Phone      string `json:"phone"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Status     string `json:"status"`
	DetailPath string `json:"detail_path"`
}

type ListData struct {
	Title    string       `json:"title"`
	Migrants []MigrantRow `json:"migrants"`
}

type List struct {
	data Data
	page page[ListData]
}

func NewList(data Data) *List {
	l := &List{data: data}
	l.page.state = State[ListData]{Status: StatusLoading, Data: ListData{Migrants: []MigrantRow{}}}
	return l
}

func (l *List) State() State[ListData] {
	return l.page.current()
}

// Load resolves route into a filter and lists the matching migrants. An
// error is returned only for a malformed route; data failures surface as
// an error state.
func (l *List) Load(ctx context.Context, route ListRoute) (State[ListData], error) {
	filter, title, err := route.resolve()
	if err != nil {
		return State[ListData]{}, err
	}

	gen := l.page.begin()
	out := ListData{Title: title, Migrants: []MigrantRow{}}

	migrants, err := l.data.MigrantsByFilter(ctx, filter)
	if err != nil {
		slog.Error("migrant list failed", "title", title, "error", err)
		s, _ := l.page.commit(gen, State[ListData]{Status: StatusError, Data: out, Message: "Failed to load migrants"})
		return s, nil
	}

	for _, m := range migrants {
		out.Migrants = append(out.Migrants, row(m))
	}
	if len(out.Migrants) == 0 {
		s, _ := l.page.commit(gen, State[ListData]{Status: StatusEmpty, Data: out, Message: noMigrantsMessage})
		return s, nil
	}
	s, _ := l.page.commit(gen, State[ListData]{Status: StatusLoaded, Data: out})
	return s, nil
}

func (r ListRoute) resolve() (models.MigrantFilter, string, error) {
	switch {
	case r.LocationID != "":
		id, err := strconv.Atoi(r.LocationID)
		if err != nil || id <= 0 {
			return models.MigrantFilter{}, "", fmt.Errorf("%w: location id %q", ErrInvalidRoute, r.LocationID)
		}
		return models.MigrantFilter{LocationID: &id, Status: r.Filter}, fmt.Sprintf("Migrants in Location #%d", id), nil
	case r.DistrictName != "":
		return models.MigrantFilter{DistrictName: r.DistrictName, Status: r.Filter}, "Migrants in " + r.DistrictName, nil
	case r.FilterType == models.StatusAll:
		return models.MigrantFilter{Status: models.StatusAll}, "All Registered Migrants", nil
	case r.FilterType != "":
		return models.MigrantFilter{Status: r.FilterType}, capitalize(r.FilterType) + " Migrants", nil
	default:
		return models.MigrantFilter{}, "All Registered Migrants", nil
	}
}

func row(m models.Migrant) MigrantRow {
	status := "N/A"
	if m.HealthProfile != nil && m.HealthProfile.OverallStatus != "" {
		status = string(m.HealthProfile.OverallStatus)
	}
	return MigrantRow{
		Phone:      m.Phone,
		Name:       m.Name,
		Age:        m.Age,
		Gender:     m.Gender,
		Status:     status,
		DetailPath: DetailPath(m.Phone),
	}
}

func DetailPath(phone string) string {
	return "/migrants/details/" + url.PathEscape(phone)
}

// capitalize upper-cases the first letter and keeps the rest as is.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
