// Package offline keeps a local mirror of the listing collection and the
// per-user preferences records in a sqlite file, so the API can keep
// serving a read-only view while the backend is unreachable.
package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"openmat-france/backend/internal/domain/openmat"

	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the mirror database at path. Init is part
// of construction and is idempotent: existing partitions and their rows
// survive every restart.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open offline store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping offline store: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	createOpenMats := `
	CREATE TABLE IF NOT EXISTS open_mats (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		city TEXT NOT NULL,
		payload TEXT NOT NULL
	);`
	if _, err := s.db.Exec(createOpenMats); err != nil {
		return fmt.Errorf("create open_mats partition: %w", err)
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_open_mats_date ON open_mats(date);`,
		`CREATE INDEX IF NOT EXISTS idx_open_mats_city ON open_mats(city);`,
	} {
		if _, err := s.db.Exec(idx); err != nil {
			return fmt.Errorf("create open_mats index: %w", err)
		}
	}

	createPreferences := `
	CREATE TABLE IF NOT EXISTS user_preferences (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	);`
	if _, err := s.db.Exec(createPreferences); err != nil {
		return fmt.Errorf("create user_preferences partition: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	_ = s.db.Close()
}

// SaveOpenMats upserts every listing, keyed by id. Rows absent from the
// input are left in place: the mirror accumulates and never prunes, so a
// partial save cannot wipe a previously complete mirror.
func (s *Store) SaveOpenMats(ctx context.Context, mats []openmat.OpenMat) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save open mats: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO open_mats (id, date, city, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		date=excluded.date,
		city=excluded.city,
		payload=excluded.payload`)
	if err != nil {
		return fmt.Errorf("save open mats: %w", err)
	}
	defer stmt.Close()

	for _, m := range mats {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode open mat %s: %w", m.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, m.ID, m.Date, m.City, string(payload)); err != nil {
			return fmt.Errorf("save open mat %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// GetOpenMats returns every mirrored listing in store iteration order;
// callers needing the date-ascending contract re-sort.
func (s *Store) GetOpenMats(ctx context.Context) ([]openmat.OpenMat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM open_mats`)
	if err != nil {
		return nil, fmt.Errorf("read open mats: %w", err)
	}
	defer rows.Close()

	var out []openmat.OpenMat
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var m openmat.OpenMat
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("decode mirrored open mat: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SavePreferences upserts the preferences record of one user, keyed by
// uid. The payload is opaque JSON owned by the client.
func (s *Store) SavePreferences(ctx context.Context, uid string, prefs json.RawMessage) error {
	if uid == "" {
		return fmt.Errorf("preferences uid is required")
	}
	if !json.Valid(prefs) {
		return fmt.Errorf("preferences payload is not valid JSON")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (id, payload)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET payload=excluded.payload`,
		uid, string(prefs))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// GetPreferences reads one user's preferences record; absent preferences
// come back as an empty object, not an error.
func (s *Store) GetPreferences(ctx context.Context, uid string) (json.RawMessage, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM user_preferences WHERE id = ?`, uid).Scan(&payload)
	if err == sql.ErrNoRows {
		return json.RawMessage(`{}`), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	return json.RawMessage(payload), nil
}
