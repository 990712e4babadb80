// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
)

// TemplateStore handles marketing template database operations. Templates
// are read-mostly: the catalog is seeded or admin-managed, agents only
// read it.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// List returns all templates ordered by name, without the field schema or
// HTML body loaded. Listing endpoints only need the metadata.
func (s *TemplateStore) List() ([]models.Template, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, page_size, created_at, updated_at
		FROM templates ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var items []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.PageSize, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// FindByID retrieves a template with its full field schema. Returns nil if
// not found.
func (s *TemplateStore) FindByID(id uuid.UUID) (*models.Template, error) {
	t := &models.Template{}
	err := s.db.QueryRow(`
		SELECT id, name, description, html_content, system_prompt, template_prompt,
		       page_size, created_at, updated_at
		FROM templates WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.HTMLContent, &t.SystemPrompt,
		&t.TemplatePrompt, &t.PageSize, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}

	if t.Fields, err = s.fieldsFor(id); err != nil {
		return nil, err
	}
	return t, nil
}

// fieldsFor loads a template's field schema in display order.
func (s *TemplateStore) fieldsFor(templateID uuid.UUID) ([]models.Field, error) {
	rows, err := s.db.Query(`
		SELECT field_key, field_type, label, placeholder, default_value, is_required, display_order
		FROM template_fields
		WHERE template_id = $1
		ORDER BY display_order ASC, field_key ASC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template fields: %w", err)
	}
	defer rows.Close()

	var fields []models.Field
	for rows.Next() {
		var f models.Field
		if err := rows.Scan(&f.FieldKey, &f.FieldType, &f.Label, &f.Placeholder,
			&f.DefaultValue, &f.IsRequired, &f.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan template field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// Create inserts a template and its field schema in one transaction.
func (s *TemplateStore) Create(t *models.Template) (*models.Template, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create template: %w", err)
	}
	defer tx.Rollback()

	out := &models.Template{Fields: t.Fields}
	err = tx.QueryRow(`
		INSERT INTO templates (name, description, html_content, system_prompt, template_prompt, page_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, html_content, system_prompt, template_prompt,
		          page_size, created_at, updated_at
	`, t.Name, t.Description, t.HTMLContent, t.SystemPrompt, t.TemplatePrompt, t.PageSize).Scan(
		&out.ID, &out.Name, &out.Description, &out.HTMLContent, &out.SystemPrompt,
		&out.TemplatePrompt, &out.PageSize, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	for _, f := range t.Fields {
		if _, err := tx.Exec(`
			INSERT INTO template_fields (template_id, field_key, field_type, label,
			                             placeholder, default_value, is_required, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, out.ID, f.FieldKey, f.FieldType, f.Label, f.Placeholder,
			f.DefaultValue, f.IsRequired, f.DisplayOrder); err != nil {
			return nil, fmt.Errorf("create template field %s: %w", f.FieldKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create template: %w", err)
	}
	return out, nil
}

// Delete removes a template. Field rows and customizations cascade at the
// schema level.
func (s *TemplateStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// Count returns the number of templates, used to decide whether seeding
// should install the sample catalog.
func (s *TemplateStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return n, nil
}
