package sos

import (
	"strings"

	"github.com/raksha-app/raksha/shared"
)

const placeholderCredentialPrefix = "your_"

// isPlaceholderCredential reports whether a configured credential looks
// like an unfilled template value rather than a real one.
func isPlaceholderCredential(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.HasPrefix(value, placeholderCredentialPrefix)
}

// SimulationMode is true when the provider credentials are missing or
// placeholders. In simulation mode no network call is ever made; the
// rendered payloads are returned to the caller instead.
func SimulationMode(config shared.WhatsAppConfig) bool {
	return isPlaceholderCredential(config.Token) || isPlaceholderCredential(config.PhoneNumberID)
}
