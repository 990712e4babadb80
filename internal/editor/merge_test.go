// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"strings"
	"testing"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/prompt"
)

const sampleDoc = `<!DOCTYPE html><html><body><h1>{{agent_name}}</h1><p>Call {{phone}}</p></body></html>`

func sampleBindings() []prompt.Binding {
	fields := []models.Field{
		{FieldKey: "agent_name", FieldType: models.FieldTypeText, Label: "Agent Name"},
		{FieldKey: "phone", FieldType: models.FieldTypePhone, Label: "Phone"},
	}
	values := models.ValueMap{"agent_name": "Jane Doe", "phone": "555-0100"}
	return prompt.BindTemplateFields(fields, values)
}

func TestMergerReturnsCompletion(t *testing.T) {
	want := `<!DOCTYPE html><html><body><h1>Jane Doe</h1><p>Call 555-0100</p></body></html>`
	fake := &fakeCompleter{responses: []*ai.Response{{Text: want}}}
	m := NewMerger(fake)

	got, err := m.Apply(context.Background(), MergeInput{HTML: sampleDoc, Bindings: sampleBindings()})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != want {
		t.Errorf("got %q", got)
	}
}

func TestMergerStripsNestedFences(t *testing.T) {
	doc := `<!DOCTYPE html><html><body><h1>Jane Doe completes the document well enough</h1></body></html>`
	fake := &fakeCompleter{responses: []*ai.Response{{Text: "```html\n" + doc + "\n```"}}}
	m := NewMerger(fake)

	got, err := m.Apply(context.Background(), MergeInput{HTML: sampleDoc, Prompt: "fill it in"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != doc {
		t.Errorf("fences survived: %q", got)
	}
}

func TestMergerDegenerateFallsBackToInput(t *testing.T) {
	fake := &fakeCompleter{responses: []*ai.Response{{Text: "<p>ok</p>"}}}
	m := NewMerger(fake)

	got, err := m.Apply(context.Background(), MergeInput{HTML: sampleDoc, Prompt: "update"})
	if err != nil {
		t.Fatalf("degenerate output must not error: %v", err)
	}
	if got != sampleDoc {
		t.Errorf("expected input document back, got %q", got)
	}
}

func TestMergerValidation(t *testing.T) {
	m := NewMerger(&fakeCompleter{})

	if _, err := m.Apply(context.Background(), MergeInput{Prompt: "x"}); err == nil {
		t.Error("expected error for missing html")
	}
	if _, err := m.Apply(context.Background(), MergeInput{HTML: sampleDoc}); err == nil {
		t.Error("expected error when bindings, prompt, and image are all absent")
	}
}

func TestMergerInstructionWithBindings(t *testing.T) {
	fake := &fakeCompleter{}
	m := NewMerger(fake)

	_, err := m.Apply(context.Background(), MergeInput{
		HTML:     sampleDoc,
		Bindings: sampleBindings(),
		Prompt:   "use a formal tone",
		System:   "Brand: navy and gold.",
	})
	// degenerate empty response falls back, no error expected
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	req := fake.lastRequest(t)
	if req.System != "Brand: navy and gold." {
		t.Errorf("system prompt not forwarded: %q", req.System)
	}
	if !strings.Contains(req.Prompt, "Jane Doe") {
		t.Error("binding value missing from instruction")
	}
	if !strings.Contains(req.Prompt, "Leave placeholders with no matching rule above unchanged.") {
		t.Error("unmatched-placeholder rule missing")
	}
	if !strings.Contains(req.Prompt, "Additional instruction: use a formal tone") {
		t.Error("free-text prompt missing from field-value form")
	}
	if !strings.Contains(req.Prompt, sampleDoc) {
		t.Error("document missing from instruction")
	}
	if !strings.Contains(req.Prompt, "Output ONLY the HTML") {
		t.Error("output directive missing")
	}
}

func TestMergerRemoteImageURLPinned(t *testing.T) {
	fake := &fakeCompleter{}
	m := NewMerger(fake)

	img := &ai.ImageRef{URL: "https://cdn.example.com/headshot.jpg"}
	if _, err := m.Apply(context.Background(), MergeInput{HTML: sampleDoc, Image: img}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	req := fake.lastRequest(t)
	if req.Image != img {
		t.Error("image not forwarded to the gateway")
	}
	if !strings.Contains(req.Prompt, "use exactly this URL") ||
		!strings.Contains(req.Prompt, img.URL) {
		t.Error("exact-URL directive missing for remote image")
	}
}

func TestMergerInlineImageNoURLDirective(t *testing.T) {
	fake := &fakeCompleter{}
	m := NewMerger(fake)

	img := &ai.ImageRef{MediaType: "image/png", Base64: "aGVsbG8="}
	if _, err := m.Apply(context.Background(), MergeInput{HTML: sampleDoc, Image: img}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	req := fake.lastRequest(t)
	if strings.Contains(req.Prompt, "use exactly this URL") {
		t.Error("exact-URL directive must only appear for remote images")
	}
}
