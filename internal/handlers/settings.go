package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/cache"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/store"
)

// Settings groups runtime settings handlers. Today that is the active AI
// provider switch.
type Settings struct {
	settings *store.SettingStore
	gateway  *ai.Gateway
	provider *cache.ProviderCache
}

// NewSettings creates a new Settings handler group.
func NewSettings(settings *store.SettingStore, gateway *ai.Gateway, provider *cache.ProviderCache) *Settings {
	return &Settings{settings: settings, gateway: gateway, provider: provider}
}

// GetProvider returns the active AI provider and the registered choices.
func (s *Settings) GetProvider(w http.ResponseWriter, r *http.Request) {
	active := s.provider.ActiveProvider(r.Context())
	if active == "" {
		// No setting persisted yet; the gateway falls back to the same
		// default, so report what a completion would actually use.
		active = ai.DefaultProviderName
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider":  active,
		"available": s.gateway.Available(),
	})
}

type providerUpdateRequest struct {
	Provider string `json:"provider"`
}

// PutProvider switches the active AI provider. The cached value is
// invalidated so the next completion resolves the new provider.
func (s *Settings) PutProvider(w http.ResponseWriter, r *http.Request) {
	var req providerUpdateRequest
	if !readJSON(w, r, &req, 4<<10) {
		return
	}

	name := strings.ToLower(strings.TrimSpace(req.Provider))
	if !slices.Contains(s.gateway.Available(), name) {
		writeError(w, http.StatusBadRequest, "unknown provider: "+req.Provider)
		return
	}

	if err := s.settings.Set("ai_provider", name); err != nil {
		slog.Error("provider setting update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	s.provider.Invalidate(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"provider":  name,
		"available": s.gateway.Available(),
	})
}
