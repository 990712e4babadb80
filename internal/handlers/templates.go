package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/markdown"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/middleware"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/prompt"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/store"
)

// Templates groups the template catalog handlers. The catalog is
// read-only for agents.
type Templates struct {
	templates *store.TemplateStore
	profiles  *store.ProfileStore
}

// NewTemplates creates a new Templates handler group.
func NewTemplates(templates *store.TemplateStore, profiles *store.ProfileStore) *Templates {
	return &Templates{templates: templates, profiles: profiles}
}

// List returns the template catalog metadata.
func (t *Templates) List(w http.ResponseWriter, r *http.Request) {
	items, err := t.templates.List()
	if err != nil {
		slog.Error("template list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if items == nil {
		items = []models.Template{}
	}
	writeJSON(w, http.StatusOK, items)
}

// templateResponse wraps a template with its description rendered from
// Markdown for direct display.
type templateResponse struct {
	*models.Template
	DescriptionHTML string `json:"description_html,omitempty"`
}

// Get returns one template with its full field schema and HTML body.
func (t *Templates) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	tpl, err := t.templates.FindByID(id)
	if err != nil {
		slog.Error("template lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	resp := templateResponse{Template: tpl}
	if tpl.Description != "" {
		html, err := markdown.ToHTML(tpl.Description)
		if err != nil {
			slog.Warn("description render failed", "template", tpl.ID, "error", err)
		} else {
			resp.DescriptionHTML = html
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CompiledPrompt returns the deterministic generation prompt for a
// template, compiled against the requesting agent's profile. The client
// shows it in the "view prompt" panel; the same compiler output drives
// server-side generation, so what the agent sees is what the model gets.
func (t *Templates) CompiledPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	tpl, err := t.templates.FindByID(id)
	if err != nil {
		slog.Error("template lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	fields, err := t.profiles.Fields()
	if err != nil {
		slog.Error("profile fields lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	values, err := t.profiles.ValuesFor(sess.AgentID)
	if err != nil {
		slog.Error("profile values lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	compiled := prompt.Compile(tpl, nil, fields, values)
	writeJSON(w, http.StatusOK, map[string]string{"prompt": compiled})
}
