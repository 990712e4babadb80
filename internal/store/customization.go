// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
)

// CustomizationStore handles customization persistence. Field values, the
// prompt history, and the change log live in JSONB columns: they are
// opaque append-only documents the server never queries into.
type CustomizationStore struct {
	db *sql.DB
}

// NewCustomizationStore creates a new CustomizationStore with the given
// database connection.
func NewCustomizationStore(db *sql.DB) *CustomizationStore {
	return &CustomizationStore{db: db}
}

// ListByAgent returns an agent's customizations newest first, without the
// rendered HTML body loaded.
func (s *CustomizationStore) ListByAgent(agentID uuid.UUID) ([]models.Customization, error) {
	rows, err := s.db.Query(`
		SELECT id, template_id, agent_id, name, created_at, updated_at
		FROM customizations
		WHERE agent_id = $1
		ORDER BY updated_at DESC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list customizations: %w", err)
	}
	defer rows.Close()

	var items []models.Customization
	for rows.Next() {
		var c models.Customization
		if err := rows.Scan(&c.ID, &c.TemplateID, &c.AgentID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customization: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a full customization. Returns nil if not found.
func (s *CustomizationStore) FindByID(id uuid.UUID) (*models.Customization, error) {
	c := &models.Customization{}
	var values, history, changes []byte
	err := s.db.QueryRow(`
		SELECT id, template_id, agent_id, name, field_values, rendered_html,
		       prompt_history, change_log, created_at, updated_at
		FROM customizations WHERE id = $1
	`, id).Scan(
		&c.ID, &c.TemplateID, &c.AgentID, &c.Name, &values, &c.RenderedHTML,
		&history, &changes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customization by id: %w", err)
	}

	if err := unmarshalJSONB(values, &c.FieldValues); err != nil {
		return nil, fmt.Errorf("decode field values: %w", err)
	}
	if err := unmarshalJSONB(history, &c.PromptHistory); err != nil {
		return nil, fmt.Errorf("decode prompt history: %w", err)
	}
	if err := unmarshalJSONB(changes, &c.ChangeLog); err != nil {
		return nil, fmt.Errorf("decode change log: %w", err)
	}
	return c, nil
}

// Create inserts a fresh customization for a template.
func (s *CustomizationStore) Create(templateID, agentID uuid.UUID, name string) (*models.Customization, error) {
	c := &models.Customization{
		FieldValues: models.ValueMap{},
	}
	err := s.db.QueryRow(`
		INSERT INTO customizations (template_id, agent_id, name, field_values, rendered_html, prompt_history, change_log)
		VALUES ($1, $2, $3, '{}', '', '[]', '[]')
		RETURNING id, template_id, agent_id, name, created_at, updated_at
	`, templateID, agentID, name).Scan(
		&c.ID, &c.TemplateID, &c.AgentID, &c.Name, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create customization: %w", err)
	}
	return c, nil
}

// Save writes the mutable parts of a customization: field values, the
// rendered document, and both append-only logs. It satisfies the editor's
// Persister interface, so a context is threaded through unlike the rest of
// the store.
func (s *CustomizationStore) Save(ctx context.Context, c *models.Customization) error {
	values, err := json.Marshal(c.FieldValues)
	if err != nil {
		return fmt.Errorf("encode field values: %w", err)
	}
	history, err := json.Marshal(c.PromptHistory)
	if err != nil {
		return fmt.Errorf("encode prompt history: %w", err)
	}
	changes, err := json.Marshal(c.ChangeLog)
	if err != nil {
		return fmt.Errorf("encode change log: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE customizations
		SET name = $2, field_values = $3, rendered_html = $4,
		    prompt_history = $5, change_log = $6, updated_at = NOW()
		WHERE id = $1
	`, c.ID, c.Name, values, c.RenderedHTML, history, changes)
	if err != nil {
		return fmt.Errorf("save customization: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save customization: %s not found", c.ID)
	}
	return nil
}

// Delete removes a customization owned by the given agent. Returns false
// when nothing matched, so handlers can distinguish not-found from
// not-yours without a second query.
func (s *CustomizationStore) Delete(id, agentID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		DELETE FROM customizations WHERE id = $1 AND agent_id = $2
	`, id, agentID)
	if err != nil {
		return false, fmt.Errorf("delete customization: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// unmarshalJSONB decodes a JSONB column, tolerating NULL.
func unmarshalJSONB(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
