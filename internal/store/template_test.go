// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
)

func sampleTemplate(name string) *models.Template {
	return &models.Template{
		Name:         name,
		Description:  "A test postcard",
		HTMLContent:  "<!DOCTYPE html><html><body><h1>{{agent_name}}</h1></body></html>",
		SystemPrompt: "Keep the layout.",
		PageSize:     "letter",
		Fields: []models.Field{
			{FieldKey: "agent_name", FieldType: models.FieldTypeText, Label: "Agent Name", DisplayOrder: 0},
			{FieldKey: "phone", FieldType: models.FieldTypePhone, Label: "Phone", DisplayOrder: 1},
		},
	}
}

func TestTemplateStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)

	name := "test-template-create"
	t.Cleanup(func() { cleanTemplates(t, db, name) })

	created, err := s.Create(sampleTemplate(name))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("template not found")
	}
	if found.HTMLContent == "" {
		t.Error("expected html content loaded")
	}
	if len(found.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(found.Fields))
	}
	if found.Fields[0].FieldKey != "agent_name" || found.Fields[1].FieldKey != "phone" {
		t.Errorf("fields out of display order: %+v", found.Fields)
	}
}

func TestTemplateStoreList(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)

	name := "test-template-list"
	t.Cleanup(func() { cleanTemplates(t, db, name) })

	if _, err := s.Create(sampleTemplate(name)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var hit bool
	for _, it := range items {
		if it.Name == name {
			hit = true
			if it.HTMLContent != "" {
				t.Error("list must not load html bodies")
			}
		}
	}
	if !hit {
		t.Error("created template missing from list")
	}
}

func TestTemplateStoreDeleteCascades(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)

	name := "test-template-delete"
	created, err := s.Create(sampleTemplate(name))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if found != nil {
		t.Error("template survived delete")
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM template_fields WHERE template_id = $1", created.ID).Scan(&n); err != nil {
		t.Fatalf("count fields: %v", err)
	}
	if n != 0 {
		t.Errorf("expected field rows cascaded, got %d", n)
	}
}
