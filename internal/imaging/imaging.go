// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalizes uploaded attachment images before they are
// sent to vision models: oversized uploads are scaled down so base64
// payloads stay within vendor request limits, and EXIF-heavy camera output
// is re-encoded to plain JPEG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension is the longest edge allowed before an upload is scaled
	// down. Vision models gain nothing from larger inputs.
	MaxDimension = 1568

	// jpegQuality for re-encoded output.
	jpegQuality = 85
)

// Normalized is a processed attachment image ready for upload.
type Normalized struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Normalize decodes an uploaded image, scales it down when its longest
// edge exceeds MaxDimension, and re-encodes it as JPEG. Images already
// within bounds are still re-encoded so the stored object has a
// predictable format.
func Normalize(original []byte) (*Normalized, error) {
	src, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > MaxDimension || h > MaxDimension {
		scale := float64(MaxDimension) / float64(max(w, h))
		nw := int(float64(w) * scale)
		nh := int(float64(h) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
		w, h = nw, nh
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}

	return &Normalized{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       w,
		Height:      h,
	}, nil
}
