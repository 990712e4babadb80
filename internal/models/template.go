// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldType categorizes template and profile fields by the kind of value
// they hold. The type drives input rendering on the client and semantic
// routing when field values are merged into template HTML.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeImage    FieldType = "image"
	FieldTypeColor    FieldType = "color"
	FieldTypeURL      FieldType = "url"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
)

// ValidFieldType reports whether t is one of the known field types.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeImage,
		FieldTypeColor, FieldTypeURL, FieldTypeEmail, FieldTypePhone:
		return true
	}
	return false
}

// Template is an admin-authored marketing document: raw HTML plus a declared
// schema of fillable fields. The HTML is opaque to the server — it is never
// parsed or validated, only echoed into prompts and edited as text.
type Template struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"` // Markdown, rendered for the template picker
	HTMLContent    string    `json:"html_content"`
	SystemPrompt   string    `json:"system_prompt"`   // optional brand/system guidelines
	TemplatePrompt string    `json:"template_prompt"` // optional per-template instructions
	PageSize       string    `json:"page_size"`       // e.g. "Letter (8.5 x 11 in)"
	Fields         []Field   `json:"fields"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Field is a named, typed slot in a template's schema. FieldKey is the join
// key between the schema and value maps — never guessed, always explicit.
type Field struct {
	ID           uuid.UUID `json:"id"`
	TemplateID   uuid.UUID `json:"template_id"`
	FieldKey     string    `json:"field_key"`
	FieldType    FieldType `json:"field_type"`
	Label        string    `json:"label"`
	Placeholder  string    `json:"placeholder"`
	DefaultValue string    `json:"default_value"`
	IsRequired   bool      `json:"is_required"`
	DisplayOrder int       `json:"display_order"`
}
