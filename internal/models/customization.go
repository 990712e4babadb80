// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PromptRole identifies who produced a prompt history entry.
type PromptRole string

const (
	PromptRoleUser   PromptRole = "user"
	PromptRoleSystem PromptRole = "system"
)

// PromptEntry is one message in a customization's chat history.
// The history is append-only: entries are never reordered or pruned
// within an editing session.
type PromptEntry struct {
	ID            uuid.UUID  `json:"id"`
	Role          PromptRole `json:"role"`
	Text          string     `json:"text"`
	AttachedImage string     `json:"attached_image,omitempty"` // URL or data URL
	Timestamp     time.Time  `json:"timestamp"`
}

// ChangeEntry is one human-readable line in a customization's change log.
type ChangeEntry struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Customization is an agent's personalized instance of a template. The
// rendered HTML is the single working document: every edit strategy reads
// the current value and produces a full replacement, never a diff.
type Customization struct {
	ID            uuid.UUID     `json:"id"`
	TemplateID    uuid.UUID     `json:"template_id"`
	AgentID       uuid.UUID     `json:"agent_id"`
	Name          string        `json:"name"`
	FieldValues   ValueMap      `json:"field_values"`
	RenderedHTML  string        `json:"rendered_html"`
	PromptHistory []PromptEntry `json:"prompt_history"`
	ChangeLog     []ChangeEntry `json:"change_log"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
