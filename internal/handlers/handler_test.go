// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests exercise a real PostgreSQL and Valkey and are
// skipped when those services are unavailable; the AI gateway is always a
// fake so no network calls leave the test process.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/cache"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/database"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/editor"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/middleware"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/session"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/store"
)

// fakeGeneratedHTML is the canned regeneration result. Long enough to pass
// the merge engine's degenerate-output check.
const fakeGeneratedHTML = "<html><body><h1>Jane Doe</h1><p>Call (555) 555-0100 today for a free valuation.</p></body></html>"

// fakeProvider implements ai.Provider with canned responses.
type fakeProvider struct {
	mu        sync.Mutex
	requests  []ai.Request
	responses []*ai.Response
	err       error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req ai.Request) (*ai.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &ai.Response{Text: fakeGeneratedHTML}, nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "listingleads")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "listingleads")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	if err := database.Seed(db); err != nil {
		db.Close()
		t.Fatalf("seed: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "setting:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB             *sql.DB
	Valkey         *redis.Client
	Sessions       *session.Store
	Agents         *store.AgentStore
	Templates      *store.TemplateStore
	Profiles       *store.ProfileStore
	Customizations *store.CustomizationStore
	SettingStore   *store.SettingStore
	Provider       *fakeProvider
	Gateway        *ai.Gateway
	Manager        *editor.Manager

	Auth            *Auth
	TemplateAPI     *Templates
	ProfileAPI      *Profile
	CustomizationAPI *Customizations
	SettingsAPI     *Settings
}

// newTestEnv creates a complete test environment with all handler
// dependencies wired over the fake AI provider.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk)
	agents := store.NewAgentStore(db)
	templates := store.NewTemplateStore(db)
	profiles := store.NewProfileStore(db)
	customizations := store.NewCustomizationStore(db)
	settings := store.NewSettingStore(db)

	provider := &fakeProvider{}
	gateway := ai.NewGateway(
		ai.ProviderSourceFunc(func(context.Context) string { return "fake" }),
		nil, ai.Policy{Timeout: 5 * time.Second})
	gateway.Register("fake", provider)

	merger := editor.NewMerger(gateway)
	toolEditor := editor.NewToolEditor(gateway)
	manager := editor.NewManager()
	t.Cleanup(func() { manager.CloseAll(context.Background()) })

	providerCache := cache.NewProviderCache(nil, settings, "ai_provider", 0)

	env := &testEnv{
		DB:             db,
		Valkey:         vk,
		Sessions:       sessions,
		Agents:         agents,
		Templates:      templates,
		Profiles:       profiles,
		Customizations: customizations,
		SettingStore:   settings,
		Provider:       provider,
		Gateway:        gateway,
		Manager:        manager,

		Auth:        NewAuth(sessions, agents),
		TemplateAPI: NewTemplates(templates, profiles),
		ProfileAPI:  NewProfile(profiles),
		CustomizationAPI: NewCustomizations(customizations, templates, profiles,
			merger, toolEditor, manager,
			editor.SessionConfig{AutosaveInterval: 50 * time.Millisecond}),
		SettingsAPI: NewSettings(settings, gateway, providerCache),
	}
	return env
}

// testAgent creates a throwaway agent row and returns its session data.
func testAgent(t *testing.T, env *testEnv) *session.Data {
	t.Helper()

	email := "agent-" + uuid.NewString()[:8] + "@listingleads.local"
	agent, err := env.Agents.Create(email, "secret123", "Test Agent", models.RoleAgent)
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM agents WHERE id = $1", agent.ID)
	})
	return &session.Data{
		AgentID:     agent.ID,
		Email:       agent.Email,
		DisplayName: agent.DisplayName,
		Role:        string(agent.Role),
	}
}

// testTemplate creates a throwaway template with one required field.
func testTemplate(t *testing.T, env *testEnv) *models.Template {
	t.Helper()

	tpl, err := env.Templates.Create(&models.Template{
		Name:        "Test Postcard " + uuid.NewString()[:8],
		Description: "A **test** template.",
		HTMLContent: "<html><body><h1>{{agent_name}}</h1><p>Call {{phone}}</p></body></html>",
		PageSize:    "Letter (8.5 x 11 in)",
		Fields: []models.Field{
			{FieldKey: "agent_name", FieldType: models.FieldTypeText, Label: "Agent name", IsRequired: true, DisplayOrder: 1},
			{FieldKey: "phone", FieldType: models.FieldTypePhone, Label: "Phone", DisplayOrder: 2},
		},
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM templates WHERE id = $1", tpl.ID)
	})
	return tpl
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withSession attaches session data to a request.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(ctxWithSession(r.Context(), data))
}

// withChiURLParamAndSession adds both a chi URL param and session data.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}
