// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
)

// Binding pairs one schema field with its non-blank value. Bindings are the
// common currency between template fields and profile fields for prompt
// construction.
type Binding struct {
	Key      string
	Type     models.FieldType
	Label    string
	Category string // profile fields only; "" for template fields
	Value    string
}

// BindTemplateFields joins a template's field schema with a value map,
// dropping blank values and keys absent from the schema. Output order
// follows DisplayOrder.
func BindTemplateFields(fields []models.Field, values models.ValueMap) []Binding {
	sorted := make([]models.Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DisplayOrder < sorted[j].DisplayOrder })

	var out []Binding
	for _, f := range sorted {
		v := values.Get(f.FieldKey)
		if v == "" {
			v = strings.TrimSpace(f.DefaultValue)
		}
		if v == "" {
			continue
		}
		out = append(out, Binding{Key: f.FieldKey, Type: f.FieldType, Label: f.Label, Value: v})
	}
	return out
}

// BindProfileFields joins the agent profile catalog with the agent's values,
// dropping blank values. Output order follows DisplayOrder within the
// catalog's category order.
func BindProfileFields(fields []models.ProfileField, values models.ValueMap) []Binding {
	sorted := make([]models.ProfileField, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DisplayOrder < sorted[j].DisplayOrder })

	var out []Binding
	for _, f := range sorted {
		v := values.Get(f.FieldKey)
		if v == "" {
			continue
		}
		out = append(out, Binding{Key: f.FieldKey, Type: f.FieldType, Label: f.Label, Category: f.Category, Value: v})
	}
	return out
}

// Directive renders the semantic replacement instruction for one bound
// field. This routing table is what makes generic templates personalize
// correctly without per-template field-mapping code: each rule binds a
// field kind to an HTML intent the model must follow.
func Directive(b Binding) string {
	key := strings.ToLower(b.Key)
	v := b.Value

	switch {
	case strings.Contains(key, "first_name"):
		return fmt.Sprintf("Use %q as the agent's first name wherever a first name or full name appears (name headings, contact blocks, signatures).", v)
	case strings.Contains(key, "last_name"):
		return fmt.Sprintf("Use %q as the agent's last name wherever a last name or full name appears (name headings, contact blocks, signatures).", v)
	case strings.Contains(key, "full_name") || key == "name" || strings.Contains(key, "agent_name"):
		return fmt.Sprintf("Use %q as the agent's name in the name and contact sections.", v)
	case b.Type == models.FieldTypePhone || strings.Contains(key, "phone"):
		return fmt.Sprintf("Replace any phone number placeholder with %q.", v)
	case b.Type == models.FieldTypeEmail || strings.Contains(key, "email"):
		return fmt.Sprintf("Replace any email address placeholder with %q.", v)
	case strings.Contains(key, "website") || (b.Type == models.FieldTypeURL && !strings.Contains(key, "social") && !isSocialKey(key) && !strings.Contains(key, "headshot") && !strings.Contains(key, "photo") && !strings.Contains(key, "logo")):
		return fmt.Sprintf("Replace any website URL placeholder with %q.", v)
	case b.Type == models.FieldTypeColor || strings.Contains(key, "color"):
		return fmt.Sprintf("Change the accent color to %q: apply it to CSS accents, borders, button backgrounds, links, and decorative elements. Do NOT recolor elements that are black, white, or gray.", v)
	case strings.Contains(key, "logo"):
		return fmt.Sprintf("Use %q as the src for the brokerage/company logo image.", v)
	case (strings.Contains(key, "brokerage") || strings.Contains(key, "company")) && b.Type != models.FieldTypeImage:
		return fmt.Sprintf("Use %q as the brokerage/company name wherever the brokerage is mentioned.", v)
	case strings.Contains(key, "title"):
		return fmt.Sprintf("Use %q as the agent's professional title (e.g. under the name).", v)
	case strings.Contains(key, "address"):
		return fmt.Sprintf("Use %q as the office address in the address section.", v)
	case isSocialKey(key):
		return fmt.Sprintf("Use %q for the %s link in the social links section.", v, b.Label)
	case strings.Contains(key, "bio") || strings.Contains(key, "about"):
		return fmt.Sprintf("Use the following text for the agent bio/about section: %q.", v)
	case strings.Contains(key, "headshot") || strings.Contains(key, "photo") || b.Type == models.FieldTypeImage:
		return fmt.Sprintf("Use %q as the src for the agent headshot/photo image.", v)
	default:
		return fmt.Sprintf("Replace the %s placeholder with %q.", b.Label, v)
	}
}

func isSocialKey(key string) bool {
	for _, s := range []string{"facebook", "instagram", "linkedin", "twitter", "youtube", "tiktok", "social"} {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
