// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"fmt"
	"strings"
)

// defaultImageMediaType is assumed when a data URL's media type cannot be
// determined.
const defaultImageMediaType = "image/jpeg"

// ImageRef is an image attachment for a vision request: either a remote
// URL the provider fetches itself, or inline base64 data extracted from a
// data URL.
type ImageRef struct {
	// URL is set for remote references (http:// or https://).
	URL string

	// MediaType and Base64 are set for inline references.
	MediaType string
	Base64    string
}

// IsRemote reports whether the reference is a fetchable URL rather than
// inline data.
func (r *ImageRef) IsRemote() bool {
	return r.URL != ""
}

// ParseImageRef classifies a raw image string from the client. Remote URLs
// are detected by prefix; data URLs are split into media type and base64
// payload, defaulting to image/jpeg when the media type is missing or
// malformed. Anything else is rejected.
func ParseImageRef(raw string) (*ImageRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("ai: empty image reference")
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return &ImageRef{URL: raw}, nil
	}

	if strings.HasPrefix(raw, "data:") {
		meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
		if !ok || payload == "" {
			return nil, fmt.Errorf("ai: malformed data URL")
		}

		mediaType := strings.TrimSuffix(meta, ";base64")
		if !strings.HasPrefix(mediaType, "image/") {
			mediaType = defaultImageMediaType
		}

		return &ImageRef{MediaType: mediaType, Base64: payload}, nil
	}

	return nil, fmt.Errorf("ai: image reference must be an http(s) URL or a data URL")
}

// DataURL renders the reference back into a single-string form accepted by
// OpenAI's image_url content part (remote URLs pass through unchanged).
func (r *ImageRef) DataURL() string {
	if r.IsRemote() {
		return r.URL
	}
	return "data:" + r.MediaType + ";base64," + r.Base64
}
