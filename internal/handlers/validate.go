package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for client-supplied inputs.
const (
	maxCustomizationNameLen = 200
	maxTurnPromptLen        = 10_000
	maxProfileValueLen      = 2_000
)

// validateCustomizationName checks a customization name and returns the
// first error found.
func validateCustomizationName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxCustomizationNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}

// validateTurnPrompt checks the free-text portion of a turn. An empty
// prompt is fine when the turn carries an image or field changes.
func validateTurnPrompt(prompt string) string {
	if utf8.RuneCountInString(prompt) > maxTurnPromptLen {
		return "Instruction is too long (max 10,000 characters)."
	}
	return ""
}

// validateProfileValues checks profile value lengths.
func validateProfileValues(values map[string]string) string {
	for key, value := range values {
		if utf8.RuneCountInString(value) > maxProfileValueLen {
			return "Value for " + key + " is too long (max 2,000 characters)."
		}
	}
	return ""
}
