// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"

	"github.com/google/uuid"
)

// ProfileField is a field from the agent-level profile catalog. It is
// shape-compatible with a template Field but sourced per agent rather than
// per template, and carries a category used only for grouping in compiled
// prompts (the category string is opaque to the server).
type ProfileField struct {
	ID           uuid.UUID `json:"id"`
	FieldKey     string    `json:"field_key"`
	FieldType    FieldType `json:"field_type"`
	Label        string    `json:"label"`
	Category     string    `json:"category"`
	Placeholder  string    `json:"placeholder"`
	IsRequired   bool      `json:"is_required"`
	DisplayOrder int       `json:"display_order"`
}

// ValueMap binds field keys to values. Keys not present in the governing
// schema are ignored by consumers; blank values are treated as absent.
type ValueMap map[string]string

// Get returns the trimmed value for a key, or "" if absent or blank.
func (m ValueMap) Get(key string) string {
	return strings.TrimSpace(m[key])
}

// Has reports whether the key carries a non-blank value.
func (m ValueMap) Has(key string) bool {
	return m.Get(key) != ""
}

// Empty reports whether no key carries a non-blank value.
func (m ValueMap) Empty() bool {
	for _, v := range m {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Merge returns a copy of m with non-blank entries of over layered on top.
// Neither input is modified.
func (m ValueMap) Merge(over ValueMap) ValueMap {
	out := make(ValueMap, len(m)+len(over))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range over {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}
