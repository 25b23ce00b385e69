package views

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

type DetailData struct {
	Phone       string           `json:"phone"`
	Migrant     *models.Migrant  `json:"migrant,omitempty"`
	Location    *models.Location `json:"location,omitempty"`
	StatusLabel string           `json:"status_label,omitempty"`
}

type Detail struct {
	data Data
	page page[DetailData]
}

func NewDetail(data Data) *Detail {
	d := &Detail{data: data}
	d.page.state = State[DetailData]{Status: StatusLoading}
	return d
}

func (d *Detail) State() State[DetailData] {
	return d.page.current()
}

// Load fetches one migrant and joins its location. A failed location join
// leaves Location nil rather than failing the page.
func (d *Detail) Load(ctx context.Context, phone string) State[DetailData] {
	gen := d.page.begin()
	out := DetailData{Phone: phone}

	m, err := d.data.MigrantByPhone(ctx, phone)
	if err != nil {
		slog.Error("migrant detail failed", "phone", phone, "error", err)
		s, _ := d.page.commit(gen, State[DetailData]{Status: StatusError, Data: out, Message: "Failed to load migrant details"})
		return s
	}
	if m == nil {
		s, _ := d.page.commit(gen, State[DetailData]{
			Status:  StatusEmpty,
			Data:    out,
			Message: fmt.Sprintf("Migrant with phone number %s not found.", phone),
		})
		return s
	}

	out.Migrant = m
	out.StatusLabel = statusLabel(m)

	loc, err := d.data.LocationDetails(ctx, m)
	if err != nil {
		slog.Warn("location join failed", "phone", phone, "error", err)
	}
	out.Location = loc

	s, _ := d.page.commit(gen, State[DetailData]{Status: StatusLoaded, Data: out})
	return s
}

func statusLabel(m *models.Migrant) string {
	if m.HealthProfile == nil || m.HealthProfile.OverallStatus == "" {
		return "Status Unknown"
	}
	return string(m.HealthProfile.OverallStatus)
}
