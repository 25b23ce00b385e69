package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/source"
)

const migrantColumns = `phone, name, age, gender, district, city, origin_state, origin_district,
	occupation, chronic_illness, location_id, pregnancy, conditional_info, health_profile`

// UpsertMigrant stores m keyed by phone. The illness list and the health
// profile are kept as JSON documents.
func (s *SQLiteDB) UpsertMigrant(ctx context.Context, m *models.Migrant, seq int, syncedAt time.Time) error {
	illness, err := json.Marshal(m.ChronicIllness)
	if err != nil {
		return fmt.Errorf("error encoding chronic illness for %s: %w", m.Phone, err)
	}
	var profile []byte
	if m.HealthProfile != nil {
		if profile, err = json.Marshal(m.HealthProfile); err != nil {
			return fmt.Errorf("error encoding health profile for %s: %w", m.Phone, err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO migrants (`+migrantColumns+`, seq, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			gender = excluded.gender,
			district = excluded.district,
			city = excluded.city,
			origin_state = excluded.origin_state,
			origin_district = excluded.origin_district,
			occupation = excluded.occupation,
			chronic_illness = excluded.chronic_illness,
			location_id = excluded.location_id,
			pregnancy = excluded.pregnancy,
			conditional_info = excluded.conditional_info,
			health_profile = excluded.health_profile,
			seq = excluded.seq,
			synced_at = excluded.synced_at
	`, m.Phone, m.Name, m.Age, m.Gender, m.District, m.City, m.OriginState, m.OriginDistrict,
		m.Occupation, string(illness), m.LocationID, m.Pregnancy, m.ConditionalInfo,
		nullableJSON(profile), seq, syncedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("error upserting migrant %s: %w", m.Phone, err)
	}
	return nil
}

func (s *SQLiteDB) Migrants(ctx context.Context) ([]models.Migrant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+migrantColumns+` FROM migrants ORDER BY seq, phone`)
	if err != nil {
		return nil, fmt.Errorf("error querying migrants: %w", err)
	}
	defer rows.Close()

	migrants := []models.Migrant{}
	for rows.Next() {
		m, err := scanMigrant(rows)
		if err != nil {
			return nil, err
		}
		migrants = append(migrants, *m)
	}
	return migrants, rows.Err()
}

func (s *SQLiteDB) MigrantByPhone(ctx context.Context, phone string) (*models.Migrant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+migrantColumns+` FROM migrants WHERE phone = ?`, phone)
	m, err := scanMigrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, source.ErrNotFound
	}
	return m, err
}

// Prune removes rows that were not touched by the sync started at
// syncedBefore.
func (s *SQLiteDB) Prune(ctx context.Context, syncedBefore time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"migrants", "locations"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE synced_at < ?`, syncedBefore.UnixNano())
		if err != nil {
			return total, fmt.Errorf("error pruning %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMigrant(row scanner) (*models.Migrant, error) {
	var (
		m                                       models.Migrant
		age, locationID                         sql.NullInt64
		gender, district, city                  sql.NullString
		originState, originDistrict, occupation sql.NullString
		pregnancy, conditionalInfo              sql.NullString
		illness, profile                        sql.NullString
	)
	err := row.Scan(&m.Phone, &m.Name, &age, &gender, &district, &city, &originState, &originDistrict,
		&occupation, &illness, &locationID, &pregnancy, &conditionalInfo, &profile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning migrant: %w", err)
	}

	m.Age = int(age.Int64)
	m.LocationID = int(locationID.Int64)
	m.Gender = gender.String
	m.District = district.String
	m.City = city.String
	m.OriginState = originState.String
	m.OriginDistrict = originDistrict.String
	m.Occupation = occupation.String
	m.Pregnancy = pregnancy.String
	m.ConditionalInfo = conditionalInfo.String

	if illness.Valid && illness.String != "" {
		if err := json.Unmarshal([]byte(illness.String), &m.ChronicIllness); err != nil {
			return nil, fmt.Errorf("error decoding chronic illness for %s: %w", m.Phone, err)
		}
	}
	if profile.Valid && profile.String != "" {
		m.HealthProfile = &models.HealthProfile{}
		if err := json.Unmarshal([]byte(profile.String), m.HealthProfile); err != nil {
			return nil, fmt.Errorf("error decoding health profile for %s: %w", m.Phone, err)
		}
	}
	return &m, nil
}

func nullableJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
