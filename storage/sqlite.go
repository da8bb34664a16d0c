package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Botopiaorg/mietmap/models"
)

// SQLiteStore persists listings in a local SQLite database file. The file is
// opened once per process run; concurrent program instances against the same
// file are not supported.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and ensures the schema
// exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id        TEXT PRIMARY KEY,
			street    TEXT,
			number    TEXT,
			suburb    TEXT,
			rent      REAL,
			area      REAL,
			latitude  REAL,
			longitude REAL,
			date      DATE DEFAULT CURRENT_TIMESTAMP
		) WITHOUT ROWID;
	`)
	return err
}

// InsertNew stores listings in a single transaction, ignoring IDs already in
// the database. Rent and area of known listings are never touched again
// (first write wins). Returns the number of rows actually written.
func (s *SQLiteStore) InsertNew(listings map[string]*models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO listings (id, street, number, suburb, rent, area)
		VALUES (?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for id, l := range listings {
		res, err := stmt.Exec(id, l.Street, l.Number, l.Suburb, l.Rent, l.Area)
		if err != nil {
			return 0, fmt.Errorf("sqlite: insert listing %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("sqlite: insert listing %s: %w", id, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit insert: %w", err)
	}
	return inserted, nil
}

// SelectMissingCoordinates returns listings without a latitude whose street,
// number, and suburb are all present and non-empty.
func (s *SQLiteStore) SelectMissingCoordinates() ([]models.AddressRow, error) {
	rows, err := s.db.Query(`
		SELECT id, street, number, suburb FROM listings
		WHERE latitude IS NULL
		  AND street IS NOT NULL AND street <> ''
		  AND number IS NOT NULL AND number <> ''
		  AND suburb IS NOT NULL AND suburb <> '';
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select missing coordinates: %w", err)
	}
	defer rows.Close()

	var result []models.AddressRow
	for rows.Next() {
		var r models.AddressRow
		if err := rows.Scan(&r.ID, &r.Street, &r.Number, &r.Suburb); err != nil {
			return nil, fmt.Errorf("sqlite: scan address row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// UpdateCoordinates applies the staged updates in a single transaction and
// returns the number of rows updated.
func (s *SQLiteStore) UpdateCoordinates(updates []models.CoordinateUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin update: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE listings SET latitude = ?, longitude = ? WHERE id = ?;`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare update: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for _, u := range updates {
		res, err := stmt.Exec(u.Latitude, u.Longitude, u.ID)
		if err != nil {
			return 0, fmt.Errorf("sqlite: update listing %s: %w", u.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("sqlite: update listing %s: %w", u.ID, err)
		}
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit update: %w", err)
	}
	return updated, nil
}

// FetchAll retrieves every stored listing, all columns.
func (s *SQLiteStore) FetchAll() ([]models.Listing, error) {
	rows, err := s.db.Query(`
		SELECT id, street, number, suburb, rent, area, latitude, longitude, date
		FROM listings;
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.Street, &l.Number, &l.Suburb,
			&l.Rent, &l.Area, &l.Latitude, &l.Longitude, &l.Date); err != nil {
			return nil, fmt.Errorf("sqlite: scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// FetchMarkers returns the rows with known coordinates and a house number,
// the inputs of the marker export.
func (s *SQLiteStore) FetchMarkers() ([]models.MarkerRow, error) {
	rows, err := s.db.Query(`
		SELECT latitude, longitude, rent, area FROM listings
		WHERE latitude IS NOT NULL
		  AND number IS NOT NULL AND number <> '';
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch markers: %w", err)
	}
	defer rows.Close()

	var result []models.MarkerRow
	for rows.Next() {
		var r models.MarkerRow
		if err := rows.Scan(&r.Latitude, &r.Longitude, &r.Rent, &r.Area); err != nil {
			return nil, fmt.Errorf("sqlite: scan marker row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
