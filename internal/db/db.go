// Package db mirrors profile version manifests into PostgreSQL so that
// versions can be queried without walking the output tree. The filesystem
// stays the source of truth.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/easycv/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profile_versions (
	id               UUID PRIMARY KEY,
	profile_name     TEXT NOT NULL,
	version          TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	language         TEXT NOT NULL DEFAULT '',
	previous_version TEXT NOT NULL DEFAULT '',
	manifest         JSONB NOT NULL,
	indexed_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (profile_name, version)
);
CREATE INDEX IF NOT EXISTS profile_versions_profile_idx
	ON profile_versions (profile_name, version DESC);
`

// EnsureSchema creates the index table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveProfileVersion upserts the row for a manifest
func (db *DB) SaveProfileVersion(ctx context.Context, m *types.Manifest) error {
	row, err := newProfileVersion(m)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO profile_versions (id, profile_name, version, created_at, language, previous_version, manifest)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (profile_name, version) DO UPDATE
		 SET id = $1, created_at = $4, language = $5, previous_version = $6, manifest = $7, indexed_at = NOW()`,
		row.ID, row.ProfileName, row.Version, row.CreatedAt, row.Language, row.PreviousVersion, row.Manifest,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile version %s/%s: %w", m.ProfileName, m.Version, err)
	}
	return nil
}

// DeleteProfileVersion removes one version row. Deleting a row that does
// not exist is not an error.
func (db *DB) DeleteProfileVersion(ctx context.Context, profileName, version string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM profile_versions WHERE profile_name = $1 AND version = $2`,
		profileName, version,
	)
	if err != nil {
		return fmt.Errorf("failed to delete profile version %s/%s: %w", profileName, version, err)
	}
	return nil
}

// ListProfileVersions returns a profile's versions, newest first
func (db *DB) ListProfileVersions(ctx context.Context, profileName string) ([]ProfileVersion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_name, version, created_at, language, previous_version, manifest, indexed_at
		 FROM profile_versions WHERE profile_name = $1 ORDER BY version DESC`,
		profileName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile versions: %w", err)
	}
	defer rows.Close()

	var versions []ProfileVersion
	for rows.Next() {
		var v ProfileVersion
		if err := rows.Scan(&v.ID, &v.ProfileName, &v.Version, &v.CreatedAt, &v.Language,
			&v.PreviousVersion, &v.Manifest, &v.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list profile versions: %w", err)
	}
	return versions, nil
}

// GetProfileVersion retrieves one version row; nil when absent
func (db *DB) GetProfileVersion(ctx context.Context, profileName, version string) (*ProfileVersion, error) {
	var v ProfileVersion
	err := db.pool.QueryRow(ctx,
		`SELECT id, profile_name, version, created_at, language, previous_version, manifest, indexed_at
		 FROM profile_versions WHERE profile_name = $1 AND version = $2`,
		profileName, version,
	).Scan(&v.ID, &v.ProfileName, &v.Version, &v.CreatedAt, &v.Language,
		&v.PreviousVersion, &v.Manifest, &v.IndexedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile version: %w", err)
	}
	return &v, nil
}

// newProfileVersion converts a manifest into its row form. A generation id
// that is not a UUID is replaced by a fresh one.
func newProfileVersion(m *types.Manifest) (*ProfileVersion, error) {
	if m == nil || m.ProfileName == "" || m.Version == "" {
		return nil, errors.New("manifest requires profile_name and version")
	}

	createdAt, err := time.Parse(time.RFC3339, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", m.CreatedAt, err)
	}

	id, err := uuid.Parse(m.GenerationID)
	if err != nil {
		id = uuid.New()
	}

	manifest, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	return &ProfileVersion{
		ID:              id,
		ProfileName:     m.ProfileName,
		Version:         m.Version,
		CreatedAt:       createdAt,
		Language:        string(m.Language),
		PreviousVersion: m.PreviousVersion,
		Manifest:        manifest,
	}, nil
}
