package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS locations (
			id INTEGER PRIMARY KEY,
			district TEXT NOT NULL,
			location TEXT NOT NULL,
			city TEXT,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			migrants_count INTEGER NOT NULL,
			cases_last_7_days INTEGER NOT NULL,
			severity TEXT NOT NULL,
			primary_disease TEXT,
			seq INTEGER NOT NULL,
			synced_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS migrants (
			phone TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			age INTEGER,
			gender TEXT,
			district TEXT,
			city TEXT,
			origin_state TEXT,
			origin_district TEXT,
			occupation TEXT,
			chronic_illness TEXT,
			location_id INTEGER,
			pregnancy TEXT,
			conditional_info TEXT,
			health_profile TEXT,
			seq INTEGER NOT NULL,
			synced_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_locations_district ON locations(district);
		CREATE INDEX IF NOT EXISTS idx_migrants_location_id ON migrants(location_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM locations), (SELECT COUNT(*) FROM migrants)
	`).Scan(&c.Locations, &c.Migrants)
	if err != nil {
		return Counts{}, fmt.Errorf("error counting rows: %w", err)
	}
	return c, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

var _ Mirror = (*SQLiteDB)(nil)
