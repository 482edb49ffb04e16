package model

import (
	"strings"

	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// Tag is a task label. Name is the lowercase key; Label keeps the casing
// the user typed.
type Tag struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Color     string `json:"color,omitempty"`
	Parent    string `json:"parent,omitempty"`
	SortOrder int64  `json:"sort_order,omitempty"`
	SortType  string `json:"sort_type,omitempty"`
}

// NewTag builds a tag whose name is the lowercased label.
func NewTag(label, color, parent string) Tag {
	label = strings.TrimSpace(label)
	return Tag{
		Name:   strings.ToLower(label),
		Label:  label,
		Color:  color,
		Parent: strings.ToLower(strings.TrimSpace(parent)),
	}
}

// TagFromV2 converts a private API tag.
func TagFromV2(in v2.Tag) Tag {
	name := strings.ToLower(in.Name)
	label := in.Label
	if label == "" {
		label = in.Name
	}
	return Tag{
		Name:      name,
		Label:     label,
		Color:     in.Color,
		Parent:    strings.ToLower(in.Parent),
		SortOrder: in.SortOrder,
		SortType:  in.SortType,
	}
}

// ToV2 converts to the private API shape.
func (t Tag) ToV2() v2.Tag {
	return v2.Tag{
		Name:      t.Name,
		Label:     t.Label,
		Color:     t.Color,
		Parent:    t.Parent,
		SortOrder: t.SortOrder,
		SortType:  t.SortType,
	}
}
