// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
)

// Op is one deterministic edit operation against the working HTML. All
// implementations are literal and non-fuzzy: exact substrings in, plain
// replacements out, no CSS or DOM parsing.
type Op interface {
	// Name returns the tool name the model invoked.
	Name() string

	// Apply executes the operation against the document, returning the new
	// document and whether anything changed.
	Apply(html string) (string, bool)

	// Describe returns a short human-readable summary for the change log.
	Describe() string
}

// ReplaceText swaps an exact substring. Case-sensitive; when All is false
// only the first occurrence is replaced.
type ReplaceText struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
	All     bool   `json:"all"`
}

func (o ReplaceText) Name() string { return "replace_text" }

func (o ReplaceText) Apply(html string) (string, bool) {
	if o.Find == "" || !strings.Contains(html, o.Find) {
		return html, false
	}
	if o.All {
		return strings.ReplaceAll(html, o.Find, o.Replace), true
	}
	return strings.Replace(html, o.Find, o.Replace, 1), true
}

func (o ReplaceText) Describe() string {
	return fmt.Sprintf("Replaced %q with %q", truncateOp(o.Find), truncateOp(o.Replace))
}

// ChangeColor replaces a literal color value everywhere it appears. The
// target description is advisory context from the model and plays no part
// in execution.
type ChangeColor struct {
	TargetDescription string `json:"target_description"`
	OldColor          string `json:"old_color"`
	NewColor          string `json:"new_color"`
}

func (o ChangeColor) Name() string { return "change_color" }

func (o ChangeColor) Apply(html string) (string, bool) {
	if o.OldColor == "" || o.NewColor == "" || !strings.Contains(html, o.OldColor) {
		return html, false
	}
	return strings.ReplaceAll(html, o.OldColor, o.NewColor), true
}

func (o ChangeColor) Describe() string {
	target := o.TargetDescription
	if target == "" {
		target = "color"
	}
	return fmt.Sprintf("Changed %s to %s", target, o.NewColor)
}

// ChangeStyle rewrites one CSS declaration value, anchored on the literal
// property name followed by the literal old value. The property prefix is
// preserved; the op is a no-op when property or old value is missing.
// Note the anchor tolerates suffixed properties — matching "margin" will
// also match "margin-top" — which is a known limitation kept for parity
// with how minified inline styles are actually edited.
type ChangeStyle struct {
	SelectorHint string `json:"selector_hint"`
	Property     string `json:"property"`
	OldValue     string `json:"old_value"`
	NewValue     string `json:"new_value"`
}

func (o ChangeStyle) Name() string { return "change_style" }

func (o ChangeStyle) Apply(html string) (string, bool) {
	if o.Property == "" || o.OldValue == "" {
		return html, false
	}

	re, err := regexp.Compile(
		`(` + regexp.QuoteMeta(o.Property) + `[^:;{}]*:\s*)` + regexp.QuoteMeta(o.OldValue),
	)
	if err != nil {
		return html, false
	}

	out := re.ReplaceAllString(html, `${1}`+o.NewValue)
	return out, out != html
}

func (o ChangeStyle) Describe() string {
	return fmt.Sprintf("Changed %s from %s to %s", o.Property, o.OldValue, o.NewValue)
}

// ChangeImage replaces a literal image source everywhere it appears.
type ChangeImage struct {
	OldSrc string `json:"old_src"`
	NewSrc string `json:"new_src"`
}

func (o ChangeImage) Name() string { return "change_image" }

func (o ChangeImage) Apply(html string) (string, bool) {
	if o.OldSrc == "" || o.NewSrc == "" || !strings.Contains(html, o.OldSrc) {
		return html, false
	}
	return strings.ReplaceAll(html, o.OldSrc, o.NewSrc), true
}

func (o ChangeImage) Describe() string {
	return fmt.Sprintf("Changed image to %s", truncateOp(o.NewSrc))
}

// ChangeLink replaces a literal href everywhere it appears.
type ChangeLink struct {
	OldHref string `json:"old_href"`
	NewHref string `json:"new_href"`
}

func (o ChangeLink) Name() string { return "change_link" }

func (o ChangeLink) Apply(html string) (string, bool) {
	if o.OldHref == "" || o.NewHref == "" || !strings.Contains(html, o.OldHref) {
		return html, false
	}
	return strings.ReplaceAll(html, o.OldHref, o.NewHref), true
}

func (o ChangeLink) Describe() string {
	return fmt.Sprintf("Changed link to %s", truncateOp(o.NewHref))
}

// decodeOp converts a model tool call into its typed operation. Unknown
// tool names are an error — the catalog is closed.
func decodeOp(call ai.ToolCall) (Op, error) {
	switch call.Name {
	case "replace_text":
		// all defaults to true when the model omits it.
		var raw struct {
			Find    string `json:"find"`
			Replace string `json:"replace"`
			All     *bool  `json:"all"`
		}
		if err := json.Unmarshal(call.Input, &raw); err != nil {
			return nil, fmt.Errorf("editor: decode replace_text: %w", err)
		}
		all := true
		if raw.All != nil {
			all = *raw.All
		}
		return ReplaceText{Find: raw.Find, Replace: raw.Replace, All: all}, nil
	case "change_color":
		var op ChangeColor
		if err := json.Unmarshal(call.Input, &op); err != nil {
			return nil, fmt.Errorf("editor: decode change_color: %w", err)
		}
		return op, nil
	case "change_style":
		var op ChangeStyle
		if err := json.Unmarshal(call.Input, &op); err != nil {
			return nil, fmt.Errorf("editor: decode change_style: %w", err)
		}
		return op, nil
	case "change_image":
		var op ChangeImage
		if err := json.Unmarshal(call.Input, &op); err != nil {
			return nil, fmt.Errorf("editor: decode change_image: %w", err)
		}
		return op, nil
	case "change_link":
		var op ChangeLink
		if err := json.Unmarshal(call.Input, &op); err != nil {
			return nil, fmt.Errorf("editor: decode change_link: %w", err)
		}
		return op, nil
	default:
		return nil, fmt.Errorf("editor: unknown tool %q", call.Name)
	}
}

// truncateOp cuts long op arguments for change log descriptions.
func truncateOp(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
