// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/editor"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/middleware"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/slug"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/store"
)

// Customizations groups the customization lifecycle handlers. Live editing
// sessions are held in the Manager so autosave debouncing and the
// one-turn-at-a-time guard work across requests.
type Customizations struct {
	customizations *store.CustomizationStore
	templates      *store.TemplateStore
	profiles       *store.ProfileStore
	merger         *editor.Merger
	toolEditor     *editor.ToolEditor
	manager        *editor.Manager
	sessionCfg     editor.SessionConfig
}

// NewCustomizations creates a new Customizations handler group.
func NewCustomizations(
	customizations *store.CustomizationStore,
	templates *store.TemplateStore,
	profiles *store.ProfileStore,
	merger *editor.Merger,
	toolEditor *editor.ToolEditor,
	manager *editor.Manager,
	sessionCfg editor.SessionConfig,
) *Customizations {
	return &Customizations{
		customizations: customizations,
		templates:      templates,
		profiles:       profiles,
		merger:         merger,
		toolEditor:     toolEditor,
		manager:        manager,
		sessionCfg:     sessionCfg,
	}
}

// customizationResponse is the editing payload the client works from.
type customizationResponse struct {
	*models.Customization
	State editor.State `json:"state"`
}

type createCustomizationRequest struct {
	TemplateID uuid.UUID `json:"template_id"`
	Name       string    `json:"name"`
}

// Create opens a template as a new customization and runs the lifecycle
// bootstrap: when the agent's profile is complete, their information is
// auto-applied and the result persisted before the first response.
func (c *Customizations) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req createCustomizationRequest
	if !readJSON(w, r, &req, 16<<10) {
		return
	}
	if req.TemplateID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "template_id is required")
		return
	}

	tpl, err := c.templates.FindByID(req.TemplateID)
	if err != nil {
		slog.Error("template lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = tpl.Name
	}
	if msg := validateCustomizationName(name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	cust, err := c.customizations.Create(tpl.ID, sess.AgentID, name)
	if err != nil {
		slog.Error("customization create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	es, err := c.manager.GetOrOpen(cust.ID, func() (*editor.Session, error) {
		return c.openSession(cust, tpl)
	})
	if err != nil {
		slog.Error("session open failed", "customization", cust.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	// Bootstrap settles the session into Interactive either way, so
	// remember the opening state: it tells the client whether to show
	// the profile form before the first turn.
	openState := es.State()
	if err := es.Bootstrap(r.Context()); err != nil {
		// The session stays usable with the raw template document; the
		// failure entry is already in the history.
		slog.Error("bootstrap failed", "customization", cust.ID, "error", err)
	}

	state := es.State()
	if openState == editor.StateNeedsProfile || openState == editor.StateReadyNoProfile {
		state = openState
	}

	writeJSON(w, http.StatusCreated, customizationResponse{
		Customization: es.Customization(),
		State:         state,
	})
}

// List returns the agent's customizations, newest first.
func (c *Customizations) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	items, err := c.customizations.ListByAgent(sess.AgentID)
	if err != nil {
		slog.Error("customization list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if items == nil {
		items = []models.Customization{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns the full editing state. A live session wins over the
// persisted row, so unsaved edits inside the autosave window are visible.
func (c *Customizations) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	if es := c.manager.Peek(id); es != nil {
		snap := es.Customization()
		if snap.AgentID != sess.AgentID {
			writeError(w, http.StatusNotFound, "customization not found")
			return
		}
		writeJSON(w, http.StatusOK, customizationResponse{Customization: snap, State: es.State()})
		return
	}

	cust, ok := c.ownedCustomization(w, id, sess.AgentID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, customizationResponse{
		Customization: cust,
		State:         editor.StateInteractive,
	})
}

type updateCustomizationRequest struct {
	Name string `json:"name"`
}

// Put is the manual save: it renames if asked, then persists immediately,
// skipping the autosave debounce.
func (c *Customizations) Put(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	var req updateCustomizationRequest
	if !readJSON(w, r, &req, 16<<10) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name != "" {
		if msg := validateCustomizationName(name); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}

	es, ok := c.liveSession(w, id, sess.AgentID)
	if !ok {
		return
	}

	if name != "" {
		es.Rename(name)
	}
	if err := es.Save(r.Context()); err != nil {
		slog.Error("manual save failed", "customization", id, "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	writeJSON(w, http.StatusOK, customizationResponse{
		Customization: es.Customization(),
		State:         es.State(),
	})
}

// Delete removes a customization, closing any live session first.
func (c *Customizations) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	c.manager.Close(r.Context(), id)

	deleted, err := c.customizations.Delete(id, sess.AgentID)
	if err != nil {
		slog.Error("customization delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "customization not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type turnRequest struct {
	Prompt      string          `json:"prompt"`
	Image       string          `json:"image"`
	FieldValues models.ValueMap `json:"field_values"`
}

// Turn processes one chat turn: free text, an optional image reference,
// and optional field value changes. Prompt-only turns take the cheap
// tool-call path; everything else regenerates the document.
func (c *Customizations) Turn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	var req turnRequest
	if !readJSON(w, r, &req, 8<<20) {
		return
	}

	turn := editor.Turn{
		Prompt:     strings.TrimSpace(req.Prompt),
		FieldDelta: req.FieldValues,
	}
	if msg := validateTurnPrompt(turn.Prompt); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Image != "" {
		img, err := ai.ParseImageRef(req.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		turn.Image = img
	}

	es, ok := c.liveSession(w, id, sess.AgentID)
	if !ok {
		return
	}

	res, err := es.HandleTurn(r.Context(), turn)
	switch {
	case errors.Is(err, editor.ErrTurnInFlight):
		writeError(w, http.StatusConflict, "a turn is already in progress")
		return
	case errors.Is(err, editor.ErrEmptyTurn), errors.Is(err, editor.ErrNotInteractive):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("turn failed", "customization", id, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   "generation failed",
			"history": es.Customization().PromptHistory,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":        res,
		"customization": es.Customization(),
	})
}

// Export streams the working HTML document as a download. Rasterization
// to PDF or PNG happens client-side or in external tooling.
func (c *Customizations) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	var cust *models.Customization
	if es := c.manager.Peek(id); es != nil {
		cust = es.Customization()
		if cust.AgentID != sess.AgentID {
			writeError(w, http.StatusNotFound, "customization not found")
			return
		}
	} else {
		var okOwned bool
		cust, okOwned = c.ownedCustomization(w, id, sess.AgentID)
		if !okOwned {
			return
		}
	}

	if cust.RenderedHTML == "" {
		writeError(w, http.StatusConflict, "nothing to export yet")
		return
	}

	filename := slug.Generate(cust.Name)
	if filename == "" {
		filename = "customization"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".html"))
	w.Write([]byte(cust.RenderedHTML))
}

// liveSession returns the live editing session for an owned
// customization, opening one from the persisted row when needed.
func (c *Customizations) liveSession(w http.ResponseWriter, id, agentID uuid.UUID) (*editor.Session, bool) {
	es, err := c.manager.GetOrOpen(id, func() (*editor.Session, error) {
		cust, err := c.customizations.FindByID(id)
		if err != nil {
			return nil, err
		}
		if cust == nil || cust.AgentID != agentID {
			return nil, errNotOwned
		}
		tpl, err := c.templates.FindByID(cust.TemplateID)
		if err != nil {
			return nil, err
		}
		if tpl == nil {
			return nil, fmt.Errorf("template %s missing", cust.TemplateID)
		}
		return c.openSession(cust, tpl)
	})
	if errors.Is(err, errNotOwned) {
		writeError(w, http.StatusNotFound, "customization not found")
		return nil, false
	}
	if err != nil {
		slog.Error("session open failed", "customization", id, "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return nil, false
	}

	// A cached session may belong to another agent's customization.
	if snap := es.Customization(); snap.AgentID != agentID {
		writeError(w, http.StatusNotFound, "customization not found")
		return nil, false
	}
	return es, true
}

// openSession builds an editing session over the agent's current profile.
func (c *Customizations) openSession(cust *models.Customization, tpl *models.Template) (*editor.Session, error) {
	fields, err := c.profiles.Fields()
	if err != nil {
		return nil, err
	}
	values, err := c.profiles.ValuesFor(cust.AgentID)
	if err != nil {
		return nil, err
	}
	return editor.NewSession(cust, tpl, fields, values,
		c.merger, c.toolEditor, c.customizations, c.sessionCfg), nil
}

// ownedCustomization loads a customization and enforces ownership,
// writing the error response on failure.
func (c *Customizations) ownedCustomization(w http.ResponseWriter, id, agentID uuid.UUID) (*models.Customization, bool) {
	cust, err := c.customizations.FindByID(id)
	if err != nil {
		slog.Error("customization lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return nil, false
	}
	if cust == nil || cust.AgentID != agentID {
		writeError(w, http.StatusNotFound, "customization not found")
		return nil, false
	}
	return cust, true
}

// errNotOwned signals an ownership failure out of the open callback.
var errNotOwned = errors.New("customization not owned by caller")
