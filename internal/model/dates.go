package model

import (
	"strings"
	"time"
)

// Upstream date layouts. The open API omits milliseconds.
const (
	V1DateLayout = "2006-01-02T15:04:05-0700"
	V2DateLayout = "2006-01-02T15:04:05.000-0700"
)

var parseLayouts = []string{
	V2DateLayout,
	V1DateLayout,
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseDate parses an upstream date. Empty or unparseable input yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func formatV1(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(V1DateLayout)
}

func formatV2(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(V2DateLayout)
}
