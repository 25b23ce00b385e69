package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

// UpsertLocation stores loc; seq preserves the upstream ordering.
func (s *SQLiteDB) UpsertLocation(ctx context.Context, loc *models.Location, seq int, syncedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (id, district, location, city, lat, lng, migrants_count,
			cases_last_7_days, severity, primary_disease, seq, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			district = excluded.district,
			location = excluded.location,
			city = excluded.city,
			lat = excluded.lat,
			lng = excluded.lng,
			migrants_count = excluded.migrants_count,
			cases_last_7_days = excluded.cases_last_7_days,
			severity = excluded.severity,
			primary_disease = excluded.primary_disease,
			seq = excluded.seq,
			synced_at = excluded.synced_at
	`, loc.ID, loc.District, loc.Location, loc.City, loc.Lat, loc.Lng, loc.MigrantsCount,
		loc.CasesLast7Days, string(loc.Severity), loc.PrimaryDisease, seq, syncedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("error upserting location %d: %w", loc.ID, err)
	}
	return nil
}

func (s *SQLiteDB) Locations(ctx context.Context) ([]models.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, district, location, city, lat, lng, migrants_count,
			cases_last_7_days, severity, primary_disease
		FROM locations
		ORDER BY seq, id
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying locations: %w", err)
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		var (
			loc      models.Location
			city     sql.NullString
			disease  sql.NullString
			severity string
		)
		if err := rows.Scan(&loc.ID, &loc.District, &loc.Location, &city, &loc.Lat, &loc.Lng,
			&loc.MigrantsCount, &loc.CasesLast7Days, &severity, &disease); err != nil {
			return nil, fmt.Errorf("error scanning location: %w", err)
		}
		loc.City = city.String
		loc.PrimaryDisease = disease.String
		loc.Severity = models.Severity(severity)
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
