package sos

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Location is a validated coordinate pair. It only exists when both
// coordinates were supplied and parsed as numbers.
type Location struct {
	Latitude  float64
	Longitude float64
}

// RawLocation is the optional location object of an SOS request body.
// Clients send coordinates either as JSON numbers or as numeric strings.
type RawLocation struct {
	Latitude  interface{} `json:"latitude"`
	Longitude interface{} `json:"longitude"`
}

// ParseLocation returns nil unless both coordinates are present and valid.
func ParseLocation(raw *RawLocation) *Location {
	if raw == nil {
		return nil
	}

	lat, ok := parseCoordinate(raw.Latitude)
	if !ok {
		return nil
	}

	lng, ok := parseCoordinate(raw.Longitude)
	if !ok {
		return nil
	}

	return &Location{Latitude: lat, Longitude: lng}
}

func parseCoordinate(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

// formatCoordinate renders a coordinate the way it appears in payloads and
// maps links, with no trailing zeros.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
