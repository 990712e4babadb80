// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
)

// ProfileStore handles the shared profile field catalog and each agent's
// values for it.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore creates a new ProfileStore with the given database connection.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Fields returns the profile field catalog in display order.
func (s *ProfileStore) Fields() ([]models.ProfileField, error) {
	rows, err := s.db.Query(`
		SELECT id, field_key, field_type, label, category, placeholder, is_required, display_order
		FROM profile_fields
		ORDER BY display_order ASC, field_key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list profile fields: %w", err)
	}
	defer rows.Close()

	var fields []models.ProfileField
	for rows.Next() {
		var f models.ProfileField
		if err := rows.Scan(&f.ID, &f.FieldKey, &f.FieldType, &f.Label,
			&f.Category, &f.Placeholder, &f.IsRequired, &f.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan profile field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// ValuesFor returns an agent's profile values. Blank values are not
// filtered here; the prompt layer decides what counts as present.
func (s *ProfileStore) ValuesFor(agentID uuid.UUID) (models.ValueMap, error) {
	rows, err := s.db.Query(`
		SELECT field_key, value FROM profile_values WHERE agent_id = $1
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list profile values: %w", err)
	}
	defer rows.Close()

	values := make(models.ValueMap)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan profile value: %w", err)
		}
		values[k] = v
	}
	return values, rows.Err()
}

// SetValues upserts an agent's profile values in one transaction. Keys
// with a blank value are deleted rather than stored, so a cleared field
// reads back as absent.
func (s *ProfileStore) SetValues(agentID uuid.UUID, values models.ValueMap) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin set profile values: %w", err)
	}
	defer tx.Rollback()

	for k, v := range values {
		if strings.TrimSpace(v) == "" {
			if _, err := tx.Exec(`
				DELETE FROM profile_values WHERE agent_id = $1 AND field_key = $2
			`, agentID, k); err != nil {
				return fmt.Errorf("clear profile value %s: %w", k, err)
			}
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO profile_values (agent_id, field_key, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (agent_id, field_key)
			DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, agentID, k, v); err != nil {
			return fmt.Errorf("set profile value %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set profile values: %w", err)
	}
	return nil
}

// CreateField adds a field to the catalog. Used by seeding and admin
// management.
func (s *ProfileStore) CreateField(f *models.ProfileField) (*models.ProfileField, error) {
	out := &models.ProfileField{}
	err := s.db.QueryRow(`
		INSERT INTO profile_fields (field_key, field_type, label, category, placeholder, is_required, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, field_key, field_type, label, category, placeholder, is_required, display_order
	`, f.FieldKey, f.FieldType, f.Label, f.Category, f.Placeholder, f.IsRequired, f.DisplayOrder).Scan(
		&out.ID, &out.FieldKey, &out.FieldType, &out.Label,
		&out.Category, &out.Placeholder, &out.IsRequired, &out.DisplayOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("create profile field: %w", err)
	}
	return out, nil
}

// CountFields returns the catalog size, used by seeding.
func (s *ProfileStore) CountFields() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM profile_fields`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count profile fields: %w", err)
	}
	return n, nil
}
