package phone

import "strings"

// DefaultCountryCode is applied when the server config doesn't set one.
const DefaultCountryCode = "91"

// Normalize converts a raw phone number into the canonical dialing form
// stored in the db and sent to the messaging provider: surrounding
// whitespace & leading zeros are dropped, and numbers without an
// international prefix get "+<countryCode>" prepended. Numbers that already
// carry a "+" pass through unchanged, which makes Normalize idempotent.
//
// Registration, login lookup and SOS contact extraction all go through this
// one function, so lookups always match stored values.
func Normalize(raw, countryCode string) string {
	num := strings.TrimSpace(raw)
	if num == "" {
		return ""
	}

	if strings.HasPrefix(num, "+") {
		return num
	}

	num = strings.TrimLeft(num, "0")
	if num == "" {
		return ""
	}

	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	return "+" + countryCode + num
}

// WithoutPlus returns the number in the bare form the provider expects in
// the "to" field of message payloads.
func WithoutPlus(num string) string {
	return strings.TrimPrefix(num, "+")
}
