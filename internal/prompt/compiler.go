// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prompt builds the natural-language instruction documents sent to
// (or copied for) the LLM. Compile produces the full copy-paste prompt for
// external chat tools; the field bindings and directives here are shared
// with the in-app merge engine.
package prompt

import (
	"fmt"
	"strings"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
)

// closingBlock is the fixed instruction that ends every compiled prompt.
const closingBlock = `Return the complete personalized HTML document.
Output ONLY the HTML. Do not include explanations, commentary, or markdown code fences.
Keep the template's overall layout, styling, and structure intact — change only the content the instructions above call for.`

// Compile deterministically renders the copy-paste instruction document for
// a template: page-size directive, brand guidelines, profile values grouped
// by category, template-local values, template-specific instructions, the
// literal template HTML, and the fixed closing block. Fields with blank
// values never appear. Identical inputs yield byte-identical output — no
// timestamps, no randomness.
func Compile(t *models.Template, templateValues models.ValueMap, profileFields []models.ProfileField, profileValues models.ValueMap) string {
	var sb strings.Builder

	sb.WriteString("You are personalizing a real-estate marketing document for an agent.\n\n")

	if ps := strings.TrimSpace(t.PageSize); ps != "" {
		fmt.Fprintf(&sb, "The document is laid out for page size: %s. The final output must stay within this page size.\n\n", ps)
	}

	if sp := strings.TrimSpace(t.SystemPrompt); sp != "" {
		sb.WriteString("Brand and style guidelines:\n")
		sb.WriteString(sp)
		sb.WriteString("\n\n")
	}

	profile := BindProfileFields(profileFields, profileValues)
	template := BindTemplateFields(t.Fields, templateValues)

	if len(profile) > 0 || len(template) > 0 {
		sb.WriteString("Replace the template's placeholder content with these values:\n\n")

		// Profile values, grouped by category in catalog order. Category
		// strings are opaque — they only shape the headings here.
		var lastCategory string
		first := true
		for _, b := range profile {
			if b.Category != lastCategory || first {
				category := b.Category
				if category == "" {
					category = "Profile"
				}
				fmt.Fprintf(&sb, "### %s\n", category)
				lastCategory = b.Category
				first = false
			}
			fmt.Fprintf(&sb, "- %s\n", Directive(b))
		}
		if len(profile) > 0 {
			sb.WriteString("\n")
		}

		if len(template) > 0 {
			sb.WriteString("### Template fields\n")
			for _, b := range template {
				fmt.Fprintf(&sb, "- %s\n", Directive(b))
			}
			sb.WriteString("\n")
		}
	}

	if tp := strings.TrimSpace(t.TemplatePrompt); tp != "" {
		sb.WriteString("Template-specific instructions:\n")
		sb.WriteString(tp)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Here is the template HTML:\n\n")
	sb.WriteString(t.HTMLContent)
	sb.WriteString("\n\n")
	sb.WriteString(closingBlock)
	sb.WriteString("\n")

	return sb.String()
}
