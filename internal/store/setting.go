// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
)

// SettingStore manages application configuration in the database, most
// importantly the active AI provider.
type SettingStore struct {
	db *sql.DB
}

// NewSettingStore returns a new SettingStore backed by the given database.
func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

// All returns every setting as a convenience map.
func (s *SettingStore) All() (models.Settings, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(models.Settings)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// Get returns a single setting by key, or the fallback if not found or blank.
func (s *SettingStore) Get(key, fallback string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	if val == "" {
		return fallback, nil
	}
	return val, nil
}

// Set upserts a single setting. Creates it if it doesn't exist.
func (s *SettingStore) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	return err
}
