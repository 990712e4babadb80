// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
)

func TestReplaceTextAll(t *testing.T) {
	html := `<p>John Smith</p><footer>John Smith</footer>`
	op := ReplaceText{Find: "John Smith", Replace: "Jane Doe", All: true}

	out, changed := op.Apply(html)
	if !changed {
		t.Fatal("expected a change")
	}
	if strings.Contains(out, "John Smith") {
		t.Errorf("old text survived: %s", out)
	}
	if got := strings.Count(out, "Jane Doe"); got != 2 {
		t.Errorf("expected 2 replacements, got %d", got)
	}
}

func TestReplaceTextFirstOnly(t *testing.T) {
	html := `<p>John Smith</p><footer>John Smith</footer>`
	op := ReplaceText{Find: "John Smith", Replace: "Jane Doe", All: false}

	out, changed := op.Apply(html)
	if !changed {
		t.Fatal("expected a change")
	}
	if got := strings.Count(out, "Jane Doe"); got != 1 {
		t.Errorf("expected 1 replacement, got %d", got)
	}
	if got := strings.Count(out, "John Smith"); got != 1 {
		t.Errorf("expected second occurrence intact, got %d", got)
	}
}

func TestReplaceTextAbsent(t *testing.T) {
	html := `<p>hello</p>`
	op := ReplaceText{Find: "goodbye", Replace: "farewell", All: true}

	out, changed := op.Apply(html)
	if changed {
		t.Error("expected no change for absent substring")
	}
	if out != html {
		t.Errorf("document mutated: %s", out)
	}
}

func TestChangeColor(t *testing.T) {
	html := `<h1 style="color: #ff0000">Hi</h1><div style="background: #ff0000"></div>`
	op := ChangeColor{OldColor: "#ff0000", NewColor: "#0000ff"}

	out, changed := op.Apply(html)
	if !changed {
		t.Fatal("expected a change")
	}
	if strings.Contains(out, "#ff0000") {
		t.Errorf("old color survived: %s", out)
	}
	if got := strings.Count(out, "#0000ff"); got != 2 {
		t.Errorf("expected color replaced everywhere, got %d", got)
	}
}

func TestChangeColorMissingValues(t *testing.T) {
	html := `<h1 style="color: red">Hi</h1>`

	for _, op := range []ChangeColor{
		{OldColor: "", NewColor: "blue"},
		{OldColor: "red", NewColor: ""},
		{OldColor: "green", NewColor: "blue"},
	} {
		out, changed := op.Apply(html)
		if changed || out != html {
			t.Errorf("op %+v: expected no-op", op)
		}
	}
}

func TestChangeStyle(t *testing.T) {
	html := `<h1 style="font-size: 24px; color: red">Hi</h1>`
	op := ChangeStyle{Property: "font-size", OldValue: "24px", NewValue: "32px"}

	out, changed := op.Apply(html)
	if !changed {
		t.Fatal("expected a change")
	}
	if !strings.Contains(out, "font-size: 32px") {
		t.Errorf("declaration not rewritten: %s", out)
	}
	if !strings.Contains(out, "color: red") {
		t.Errorf("neighbor declaration damaged: %s", out)
	}
}

// The property anchor is a prefix match: editing "margin" also rewrites
// "margin-top" when they share the old value.
func TestChangeStylePropertyPrefixOvermatch(t *testing.T) {
	html := `<div style="margin: 10px; margin-top: 10px"></div>`
	op := ChangeStyle{Property: "margin", OldValue: "10px", NewValue: "20px"}

	out, changed := op.Apply(html)
	if !changed {
		t.Fatal("expected a change")
	}
	if got := strings.Count(out, "20px"); got != 2 {
		t.Errorf("expected both declarations rewritten, got %d in %s", got, out)
	}
}

func TestChangeStyleNoMatch(t *testing.T) {
	html := `<h1 style="font-size: 24px">Hi</h1>`

	for _, op := range []ChangeStyle{
		{Property: "", OldValue: "24px", NewValue: "32px"},
		{Property: "font-size", OldValue: "", NewValue: "32px"},
		{Property: "line-height", OldValue: "24px", NewValue: "32px"},
		{Property: "font-size", OldValue: "18px", NewValue: "32px"},
	} {
		out, changed := op.Apply(html)
		if changed || out != html {
			t.Errorf("op %+v: expected no-op, got %s", op, out)
		}
	}
}

func TestChangeImageAndLink(t *testing.T) {
	html := `<a href="https://old.example.com"><img src="/old.jpg"></a>`

	out, changed := ChangeImage{OldSrc: "/old.jpg", NewSrc: "/new.jpg"}.Apply(html)
	if !changed || !strings.Contains(out, `src="/new.jpg"`) {
		t.Errorf("image not replaced: %s", out)
	}

	out, changed = ChangeLink{OldHref: "https://old.example.com", NewHref: "https://new.example.com"}.Apply(out)
	if !changed || !strings.Contains(out, `href="https://new.example.com"`) {
		t.Errorf("link not replaced: %s", out)
	}
}

func TestDecodeOpReplaceTextDefaultsAll(t *testing.T) {
	call := ai.ToolCall{Name: "replace_text", Input: json.RawMessage(`{"find":"a","replace":"b"}`)}

	op, err := decodeOp(call)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rt, ok := op.(ReplaceText)
	if !ok {
		t.Fatalf("wrong type %T", op)
	}
	if !rt.All {
		t.Error("all should default to true when omitted")
	}

	call.Input = json.RawMessage(`{"find":"a","replace":"b","all":false}`)
	op, err = decodeOp(call)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if op.(ReplaceText).All {
		t.Error("explicit all=false ignored")
	}
}

func TestDecodeOpUnknownTool(t *testing.T) {
	_, err := decodeOp(ai.ToolCall{Name: "delete_everything", Input: json.RawMessage(`{}`)})
	if err == nil {
		t.Fatal("expected error for unknown tool name")
	}
}
