// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified gateway over the two supported LLM vendors
// (Anthropic, OpenAI). Each vendor implements the Provider interface, and
// the Gateway resolves the active one per request from the settings store.
// Callers never branch on the vendor name downstream of this package.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultProviderName is used whenever the configured provider cannot be
// resolved (settings unreadable, unknown name, missing API key).
const DefaultProviderName = "anthropic"

// Request describes one completion call. When Image is set, the provider
// switches to its vision-capable model; when Tools is non-empty, the
// provider runs in structured tool-invocation mode and the response may
// carry tool calls instead of (or alongside) text.
type Request struct {
	System    string
	Prompt    string
	Image     *ImageRef
	Tools     []ToolDef
	MaxTokens int
}

// Response is the normalized completion result across vendors.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolDef describes one callable tool offered to the model. InputSchema is
// a JSON Schema object; both vendors accept it verbatim.
type ToolDef struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolCall is one structured tool invocation emitted by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// Provider is implemented by each vendor backend. Providers handle their
// own HTTP communication, multimodal payload construction, and response
// parsing.
type Provider interface {
	// Complete sends one prompt (plus optional image and tool catalog) and
	// returns the model's response. Implementations must honour ctx.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Name returns the vendor identifier ("anthropic", "openai").
	Name() string
}

// ProviderConfig holds the credentials and model selection for one vendor.
// Model serves text-only requests; VisionModel serves requests that carry
// an image. The split keeps plain edits on the cheaper model.
type ProviderConfig struct {
	APIKey      string
	Model       string
	VisionModel string
	BaseURL     string
}

// ProviderSource resolves the persisted provider selection. Implementations
// return "" when the setting cannot be read; the Gateway then falls back to
// DefaultProviderName.
type ProviderSource interface {
	ActiveProvider(ctx context.Context) string
}

// ProviderSourceFunc adapts a function to the ProviderSource interface.
type ProviderSourceFunc func(ctx context.Context) string

func (f ProviderSourceFunc) ActiveProvider(ctx context.Context) string { return f(ctx) }

// Policy bounds every provider call. Transient transport failures are
// retried with exponential backoff; anything else fails immediately.
type Policy struct {
	Timeout    time.Duration
	MaxRetries int
}

// DefaultPolicy is used when the zero Policy is passed to NewGateway.
var DefaultPolicy = Policy{Timeout: 60 * time.Second, MaxRetries: 2}

// Gateway selects a vendor per request and normalizes its output. It is
// safe for concurrent use; all state is set at construction.
type Gateway struct {
	providers map[string]Provider
	source    ProviderSource
	policy    Policy
}

// NewGateway creates a gateway over every config that has a non-empty API
// key. Vendors without keys are silently skipped. source may be nil, in
// which case DefaultProviderName is always used.
func NewGateway(source ProviderSource, configs map[string]ProviderConfig, policy Policy) *Gateway {
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultPolicy.Timeout
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}

	g := &Gateway{
		providers: make(map[string]Provider),
		source:    source,
		policy:    policy,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "anthropic":
			g.providers[name] = newAnthropic(cfg)
		case "openai":
			g.providers[name] = newOpenAI(cfg)
		}
	}

	return g
}

// Register adds or replaces a provider. Used by tests to inject fakes.
func (g *Gateway) Register(name string, p Provider) {
	g.providers[name] = p
}

// Available returns the names of all vendors that have API keys configured.
func (g *Gateway) Available() []string {
	var names []string
	for name := range g.providers {
		names = append(names, name)
	}
	return names
}

// resolve picks the provider for this request: the persisted selection when
// readable and configured, otherwise the default vendor.
func (g *Gateway) resolve(ctx context.Context) (Provider, error) {
	name := ""
	if g.source != nil {
		name = g.source.ActiveProvider(ctx)
	}
	if name == "" {
		name = DefaultProviderName
	}

	if p, ok := g.providers[name]; ok {
		return p, nil
	}
	if p, ok := g.providers[DefaultProviderName]; ok {
		slog.Warn("configured ai provider unavailable, using default",
			"configured", name, "default", DefaultProviderName)
		return p, nil
	}
	return nil, fmt.Errorf("ai: no provider configured for %q and no default available", name)
}

// Complete resolves the active vendor, applies the call policy, and
// normalizes the response text (whitespace trim + markdown fence strip).
// Transport and API failures are returned as errors; judging a short
// response as unusable is the caller's policy, not the gateway's.
func (g *Gateway) Complete(ctx context.Context, req Request) (*Response, error) {
	p, err := g.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var resp *Response
	wait := time.Second
	for attempt := 0; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.policy.Timeout)
		resp, err = p.Complete(callCtx, req)
		cancel()

		if err == nil {
			break
		}
		if attempt >= g.policy.MaxRetries || !retryable(err) || ctx.Err() != nil {
			return nil, fmt.Errorf("ai %s: %w", p.Name(), err)
		}

		slog.Warn("ai call failed, retrying",
			"provider", p.Name(), "attempt", attempt+1, "wait", wait.String(), "error", err)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		wait *= 2
	}

	resp.Text = StripFences(resp.Text)
	return resp, nil
}

// retryable reports whether an error looks like a transient transport or
// rate-limit failure worth retrying.
func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "status 500") ||
		strings.Contains(msg, "status 502") ||
		strings.Contains(msg, "status 503") ||
		strings.Contains(msg, "status 529") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}
