// Package sqlite implements storage.ProfileStore on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jwgray1010/unsaid/internal/storage"
	"github.com/jwgray1010/unsaid/pkg/types"
)

// schema creates the profiles table. Profiles are small single-user documents,
// so the JSON-blob-per-row shape is deliberate: no joins, one read, one write.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id    TEXT PRIMARY KEY,
	namespace  TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// ProfileStore implements storage.ProfileStore using SQLite.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore opens (or creates) the database at dsn and ensures the
// schema exists.
func NewProfileStore(dsn string) (*ProfileStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load;
	// WAL mode lets readers proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &ProfileStore{db: db}, nil
}

// GetProfile retrieves the profile for userID.
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*types.UserAttachmentProfile, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM profiles WHERE user_id = ? AND namespace = ?",
		userID, storage.ProfileNamespace,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read profile: %w", err)
	}

	var profile types.UserAttachmentProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("sqlite: failed to decode profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile upserts a profile under the fixed namespace.
func (s *ProfileStore) SaveProfile(ctx context.Context, profile *types.UserAttachmentProfile) error {
	profile.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, namespace, data)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, profile.UserID, storage.ProfileNamespace, string(data))
	if err != nil {
		return fmt.Errorf("sqlite: failed to save profile: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *ProfileStore) Close() error {
	return s.db.Close()
}
