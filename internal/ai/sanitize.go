// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import "strings"

// MinViableLength is the threshold under which a completion is treated by
// callers as degenerate — no usable document came back. It is a caller-side
// policy (fall back to the previous HTML), never a transport error.
const MinViableLength = 50

// StripFences trims whitespace and removes a leading ```html or ``` fence
// and a trailing ``` fence if present. Models are never trusted to omit
// markdown wrapping, and the function is idempotent so defensive re-strips
// are harmless.
func StripFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			// A fence with no newline is just the marker, possibly with a
			// language tag — nothing useful follows on the same line.
			s = strings.TrimPrefix(s, "```html")
			s = strings.TrimPrefix(s, "```")
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
	}

	return strings.TrimSpace(s)
}

// Degenerate reports whether a completion is too short to be a usable
// document replacement.
func Degenerate(s string) bool {
	return len(strings.TrimSpace(s)) < MinViableLength
}
