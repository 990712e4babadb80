// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/imaging"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/slug"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/storage"
)

// maxAttachmentBytes caps a single uploaded image before normalization.
const maxAttachmentBytes = 20 << 20

// Attachments handles image uploads referenced by chat turns. Images are
// normalized to vision-friendly dimensions before storage so turn payloads
// stay small.
type Attachments struct {
	storage *storage.Client
}

// NewAttachments creates a new Attachments handler group. The storage
// client may be nil when object storage is not configured; uploads then
// come back as data URLs the client embeds in the turn directly.
func NewAttachments(storage *storage.Client) *Attachments {
	return &Attachments{storage: storage}
}

// Upload accepts one multipart image under the "file" field and returns
// the URL to reference it by in a turn.
func (a *Attachments) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes)
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	original, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	img, err := imaging.Normalize(original)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	if a.storage == nil {
		url := "data:" + img.ContentType + ";base64," +
			base64.StdEncoding.EncodeToString(img.Data)
		writeJSON(w, http.StatusOK, map[string]any{
			"url":    url,
			"width":  img.Width,
			"height": img.Height,
		})
		return
	}

	key := "attachments/" + uuid.NewString() + "/" + slug.Filename(header.Filename)
	url, err := a.storage.Upload(r.Context(), key, img.ContentType,
		bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		slog.Error("attachment upload failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":    url,
		"width":  img.Width,
		"height": img.Height,
	})
}
