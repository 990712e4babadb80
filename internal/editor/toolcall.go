// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
)

// Completer is the slice of the AI gateway the edit engines need. The
// gateway satisfies it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, req ai.Request) (*ai.Response, error)
}

// AppliedOp records one executed tool invocation for the change log.
type AppliedOp struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Changed     bool   `json:"changed"`
}

// EditResult is the outcome of one tool-call editing pass. NoChanges is a
// valid, non-error outcome: the model decided nothing needed editing.
type EditResult struct {
	HTML      string
	Applied   []AppliedOp
	NoChanges bool
}

// ToolEditor is the fast edit path: instead of regenerating the whole
// document, the model is constrained to a fixed vocabulary of five literal
// edit operations which are executed deterministically against the HTML
// string. Simple conversational edits ("make the heading blue") stay cheap
// and never drift unrelated regions of the document.
type ToolEditor struct {
	gateway Completer
}

// NewToolEditor creates a tool-call edit engine over the given gateway.
func NewToolEditor(gateway Completer) *ToolEditor {
	return &ToolEditor{gateway: gateway}
}

const toolSystemPrompt = `You are an HTML editing assistant for real-estate marketing documents.
The user will give you an instruction and the current HTML document.
Make the requested edits ONLY by invoking the provided tools.
Every find/old value you pass must be an exact substring copied from the document — character for character, including whitespace and quotes.
Invoke as few tools as possible to satisfy the instruction.
If the instruction requires no change to the document, invoke no tools at all.
Do not reply with a rewritten document.`

// Edit sends the document and the fixed tool catalog to the model, then
// executes every returned tool call sequentially against the HTML buffer.
func (e *ToolEditor) Edit(ctx context.Context, html, userPrompt string) (*EditResult, error) {
	if html == "" {
		return nil, fmt.Errorf("editor: html content is required")
	}
	if userPrompt == "" {
		return nil, fmt.Errorf("editor: instruction is required")
	}

	prompt := fmt.Sprintf("Instruction: %s\n\nCurrent HTML document:\n\n%s", userPrompt, html)

	resp, err := e.gateway.Complete(ctx, ai.Request{
		System: toolSystemPrompt,
		Prompt: prompt,
		Tools:  ToolCatalog(),
	})
	if err != nil {
		return nil, err
	}

	if len(resp.ToolCalls) == 0 {
		slog.Debug("tool editor: no changes detected")
		return &EditResult{HTML: html, NoChanges: true}, nil
	}

	result := &EditResult{HTML: html}
	for _, call := range resp.ToolCalls {
		op, err := decodeOp(call)
		if err != nil {
			// A malformed call is skipped, not fatal — the remaining ops
			// still apply.
			slog.Warn("tool editor: skipping malformed tool call", "tool", call.Name, "error", err)
			continue
		}

		next, changed := op.Apply(result.HTML)
		result.HTML = next
		result.Applied = append(result.Applied, AppliedOp{
			Name:        op.Name(),
			Description: op.Describe(),
			Changed:     changed,
		})
	}

	if len(result.Applied) == 0 {
		result.NoChanges = true
	}
	return result, nil
}

// ToolCatalog returns the fixed five-operation tool vocabulary offered to
// the model. The schemas are shared verbatim by both vendors.
func ToolCatalog() []ai.ToolDef {
	return []ai.ToolDef{
		{
			Name:        "replace_text",
			Description: "Replace an exact text substring in the HTML document. Case-sensitive.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"find":    map[string]any{"type": "string", "description": "Exact substring to find, copied from the document."},
					"replace": map[string]any{"type": "string", "description": "Replacement text."},
					"all":     map[string]any{"type": "boolean", "description": "Replace every occurrence (default true); false replaces only the first."},
				},
				"required": []string{"find", "replace"},
			},
		},
		{
			Name:        "change_color",
			Description: "Change a color by replacing its literal value (hex, rgb(), or named) everywhere it appears.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"target_description": map[string]any{"type": "string", "description": "What is being recolored, e.g. 'heading text'."},
					"old_color":          map[string]any{"type": "string", "description": "Exact current color value, copied from the document."},
					"new_color":          map[string]any{"type": "string", "description": "New color value."},
				},
				"required": []string{"new_color"},
			},
		},
		{
			Name:        "change_style",
			Description: "Change the value of one CSS declaration, keeping the property name.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"selector_hint": map[string]any{"type": "string", "description": "Which element the declaration belongs to, for context."},
					"property":      map[string]any{"type": "string", "description": "CSS property name, e.g. 'font-size'."},
					"old_value":     map[string]any{"type": "string", "description": "Exact current value, copied from the document."},
					"new_value":     map[string]any{"type": "string", "description": "New value."},
				},
				"required": []string{"property", "new_value"},
			},
		},
		{
			Name:        "change_image",
			Description: "Replace an image source URL everywhere it appears.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"old_src": map[string]any{"type": "string", "description": "Exact current src, copied from the document."},
					"new_src": map[string]any{"type": "string", "description": "New image URL."},
				},
				"required": []string{"old_src", "new_src"},
			},
		},
		{
			Name:        "change_link",
			Description: "Replace a link href everywhere it appears.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"old_href": map[string]any{"type": "string", "description": "Exact current href, copied from the document."},
					"new_href": map[string]any{"type": "string", "description": "New link URL."},
				},
				"required": []string{"old_href", "new_href"},
			},
		},
	}
}
