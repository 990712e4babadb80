package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/middleware"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/store"
)

// Profile groups the agent profile handlers: the shared field catalog and
// the calling agent's values for it.
type Profile struct {
	profiles *store.ProfileStore
}

// NewProfile creates a new Profile handler group.
func NewProfile(profiles *store.ProfileStore) *Profile {
	return &Profile{profiles: profiles}
}

type profileResponse struct {
	Fields []models.ProfileField `json:"fields"`
	Values models.ValueMap       `json:"values"`
}

// Get returns the field catalog and the agent's current values.
func (p *Profile) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	fields, err := p.profiles.Fields()
	if err != nil {
		slog.Error("profile fields lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	values, err := p.profiles.ValuesFor(sess.AgentID)
	if err != nil {
		slog.Error("profile values lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	if fields == nil {
		fields = []models.ProfileField{}
	}
	writeJSON(w, http.StatusOK, profileResponse{Fields: fields, Values: values})
}

type profileUpdateRequest struct {
	Values models.ValueMap `json:"values"`
}

// Put upserts the agent's profile values. Blank values clear the stored
// entry; unknown keys are rejected against the catalog.
func (p *Profile) Put(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req profileUpdateRequest
	if !readJSON(w, r, &req, 256<<10) {
		return
	}
	if len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "values are required")
		return
	}
	if msg := validateProfileValues(req.Values); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	fields, err := p.profiles.Fields()
	if err != nil {
		slog.Error("profile fields lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.FieldKey] = true
	}
	for k := range req.Values {
		if !known[k] {
			writeError(w, http.StatusBadRequest, "unknown profile field: "+k)
			return
		}
	}

	if err := p.profiles.SetValues(sess.AgentID, req.Values); err != nil {
		slog.Error("profile values update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	values, err := p.profiles.ValuesFor(sess.AgentID)
	if err != nil {
		slog.Error("profile values reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Fields: fields, Values: values})
}
