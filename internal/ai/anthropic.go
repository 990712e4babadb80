// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// anthropicProvider implements the Provider interface using the Anthropic
// Messages API (POST /v1/messages).
type anthropicProvider struct {
	config ProviderConfig
	client *http.Client
}

// newAnthropic creates a new Anthropic provider.
func newAnthropic(cfg ProviderConfig) *anthropicProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	return &anthropicProvider{
		config: cfg,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

// Complete sends one message to the Anthropic Messages API. The model is
// chosen by request shape: the vision model when an image is attached, the
// cheaper text model otherwise.
func (p *anthropicProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.config.Model
	if req.Image != nil {
		model = p.config.VisionModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}

	content := []anthropicContent{}
	if req.Image != nil {
		content = append(content, anthropicContent{Type: "image", Source: anthropicImageSource(req.Image)})
	}
	content = append(content, anthropicContent{Type: "text", Text: req.Prompt})

	body := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: content},
		},
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, anthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic marshal: %w", err)
	}

	url := p.config.BaseURL + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("anthropic read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("anthropic unmarshal: %w", err)
	}

	out := &Response{}
	for _, block := range result.Content {
		switch block.Type {
		case "text":
			if out.Text == "" {
				out.Text = block.Text
			}
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: block.Input,
			})
		}
	}

	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, fmt.Errorf("anthropic: no text or tool_use content in response")
	}
	return out, nil
}

// anthropicImageSource builds the image source block: URL references are
// passed through for Anthropic to fetch; data URLs become inline base64.
func anthropicImageSource(img *ImageRef) *anthropicSource {
	if img.IsRemote() {
		return &anthropicSource{Type: "url", URL: img.URL}
	}
	return &anthropicSource{
		Type:      "base64",
		MediaType: img.MediaType,
		Data:      img.Base64,
	}
}

// --- Anthropic Messages API types ---

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"` // "base64" or "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicResponseBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicResponseBlock `json:"content"`
}
