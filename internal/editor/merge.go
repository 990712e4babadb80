// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor implements the two competing edit strategies for template
// customization: full-document regeneration (Merger) and deterministic
// tool-mediated edits (ToolEditor), plus the session state machine that
// routes between them.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/prompt"
)

// MergeInput is one full-document regeneration request. Bindings carry the
// non-blank field values to merge; Prompt is an optional free-text
// instruction; Image is an optional attachment for the vision model.
type MergeInput struct {
	HTML     string
	Bindings []prompt.Binding
	Prompt   string
	Image    *ai.ImageRef
	System   string // brand/system guidelines, passed through to the model
}

// Merger is the regeneration path: it compiles the field values into a
// rule-laden replacement instruction, asks the model for a complete
// replacement document, and validates the result before accepting it.
type Merger struct {
	gateway Completer
}

// NewMerger creates a field-value merge engine over the given gateway.
func NewMerger(gateway Completer) *Merger {
	return &Merger{gateway: gateway}
}

// Apply regenerates the document. A degenerate response (under 50 chars)
// is discarded in favor of the unmodified input HTML — logged, not
// retried, not an error. Transport failures propagate to the caller.
func (m *Merger) Apply(ctx context.Context, in MergeInput) (string, error) {
	if in.HTML == "" {
		return "", fmt.Errorf("editor: html content is required")
	}
	if len(in.Bindings) == 0 && in.Prompt == "" && in.Image == nil {
		return "", fmt.Errorf("editor: nothing to apply — no field values, prompt, or image")
	}

	resp, err := m.gateway.Complete(ctx, ai.Request{
		System: in.System,
		Prompt: m.instruction(in),
		Image:  in.Image,
	})
	if err != nil {
		return "", err
	}

	// The gateway already normalizes, but models occasionally nest fences;
	// stripping is idempotent so a second pass is harmless.
	out := ai.StripFences(resp.Text)

	if ai.Degenerate(out) {
		slog.Warn("merge engine: degenerate completion, keeping previous document",
			"length", len(out))
		return in.HTML, nil
	}

	return out, nil
}

// instruction builds the user prompt. Field values always win the richer
// rule-laden form; prompt-only and image-only requests use the lean form.
func (m *Merger) instruction(in MergeInput) string {
	var sb strings.Builder

	if len(in.Bindings) > 0 {
		sb.WriteString("You are given an HTML marketing document for a real-estate agent.\n")
		sb.WriteString("Replace its placeholder content with the agent's real information, following every rule exactly:\n\n")
		for _, b := range in.Bindings {
			fmt.Fprintf(&sb, "- %s\n", prompt.Directive(b))
		}
		sb.WriteString("\nLeave placeholders with no matching rule above unchanged.\n")
		if in.Prompt != "" {
			fmt.Fprintf(&sb, "\nAdditional instruction: %s\n", in.Prompt)
		}
	} else if in.Prompt != "" {
		sb.WriteString("Apply this instruction to the HTML document below:\n\n")
		sb.WriteString(in.Prompt)
		sb.WriteString("\n")
	} else {
		sb.WriteString("Incorporate the attached image into the HTML document below where it fits best.\n")
	}

	// When the attachment is a fetchable URL the emitted markup must point
	// at that exact URL, never a hallucinated one and never inlined bytes.
	if in.Image != nil && in.Image.IsRemote() {
		fmt.Fprintf(&sb, "\nAn image is attached. Wherever the document needs this image, use exactly this URL in the src or href you emit: %s — do not substitute a different URL and do not embed the image as base64 data.\n", in.Image.URL)
	}

	sb.WriteString("\nHere is the current HTML document:\n\n")
	sb.WriteString(in.HTML)
	sb.WriteString("\n\nReturn the complete updated HTML document. Output ONLY the HTML — no explanations and no markdown code fences.")

	return sb.String()
}
