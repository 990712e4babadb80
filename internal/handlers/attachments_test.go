package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// multipartImage builds a multipart body with one PNG under "file".
func multipartImage(t *testing.T, fieldName, fileName string, w, h int) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 40, B: 40, A: 255})
		}
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(pngBuf.Bytes())
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestUpload_NoStorageReturnsDataURL(t *testing.T) {
	h := NewAttachments(nil)

	body, contentType := multipartImage(t, "file", "My Headshot (1).PNG", 80, 60)
	req := httptest.NewRequest(http.MethodPost, "/api/attachments", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.URL, "data:image/jpeg;base64,") {
		t.Errorf("url: got %q, want a JPEG data URL", resp.URL[:min(len(resp.URL), 40)])
	}
	if resp.Width != 80 || resp.Height != 60 {
		t.Errorf("dimensions: got %dx%d, want 80x60", resp.Width, resp.Height)
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	h := NewAttachments(nil)

	body, contentType := multipartImage(t, "wrong", "pic.png", 10, 10)
	req := httptest.NewRequest(http.MethodPost, "/api/attachments", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpload_RejectsNonImage(t *testing.T) {
	h := NewAttachments(nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "notes.txt")
	part.Write([]byte("this is not an image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/attachments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
