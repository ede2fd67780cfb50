package drawio

import (
	"strconv"
	"strings"
)

// Style is a parsed mxGraph style string. Bare tokens such as "text" or
// "ellipse" are stored with an empty value.
type Style map[string]string

// ParseStyle splits a "key=value;key;..." style string. Later keys win.
func ParseStyle(s string) Style {
	st := make(Style)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		st[k] = v
	}
	return st
}

// Get returns the value of key and whether it is present.
func (s Style) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Has reports whether key is present, with or without a value.
func (s Style) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Is reports whether key is present with the given value.
func (s Style) Is(key, value string) bool {
	v, ok := s[key]
	return ok && v == value
}

// Int returns the integer value of key, or def when it is missing or not
// a number. Fractional values are truncated.
func (s Style) Int(key string, def int) int {
	v, ok := s[key]
	if !ok {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return def
}

// IsLabel reports whether the style describes a text-only cell, which the
// editor writes with a leading "text" token.
func IsLabel(style string) bool {
	return strings.HasPrefix(strings.TrimSpace(style), "text;") || strings.TrimSpace(style) == "text"
}
