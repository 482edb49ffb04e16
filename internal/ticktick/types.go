package ticktick

import (
	"fmt"
	"strconv"
	"strings"
)

// Priority is the upstream priority scale. Only 0, 1, 3 and 5 are valid.
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityLow    Priority = 1
	PriorityMedium Priority = 3
	PriorityHigh   Priority = 5
)

// Valid reports whether p is one of the four defined levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string {
	switch p {
	case PriorityNone:
		return "none"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return strconv.Itoa(int(p))
}

// ParsePriority accepts a level name (none, low, medium, high) or its number.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return PriorityNone, nil
	case "low", "1":
		return PriorityLow, nil
	case "medium", "3":
		return PriorityMedium, nil
	case "high", "5":
		return PriorityHigh, nil
	}
	return PriorityNone, NewValidationError("priority", "must be one of none, low, medium, high (0, 1, 3, 5), got %q", s)
}

// ValidatePriority returns a ValidationError unless p is a defined level.
func ValidatePriority(p Priority) error {
	if !p.Valid() {
		return NewValidationError("priority", "must be one of 0, 1, 3, 5, got %d", int(p))
	}
	return nil
}

// TaskStatus is the upstream task status code.
type TaskStatus int

const (
	StatusAbandoned TaskStatus = -1
	StatusActive    TaskStatus = 0
	StatusCompleted TaskStatus = 2
)

func (s TaskStatus) String() string {
	switch s {
	case StatusAbandoned:
		return "abandoned"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ProjectKind distinguishes task lists from note lists.
type ProjectKind string

const (
	KindTask ProjectKind = "TASK"
	KindNote ProjectKind = "NOTE"
)

// ParseProjectKind normalizes a kind, defaulting to TASK when empty.
func ParseProjectKind(s string) (ProjectKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(KindTask):
		return KindTask, nil
	case string(KindNote):
		return KindNote, nil
	}
	return "", NewValidationError("kind", "must be TASK or NOTE, got %q", s)
}

// ViewMode is how a project is displayed.
type ViewMode string

const (
	ViewList     ViewMode = "list"
	ViewKanban   ViewMode = "kanban"
	ViewTimeline ViewMode = "timeline"
)

// ParseViewMode normalizes a view mode, defaulting to list when empty.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ViewList):
		return ViewList, nil
	case string(ViewKanban):
		return ViewKanban, nil
	case string(ViewTimeline):
		return ViewTimeline, nil
	}
	return "", NewValidationError("view_mode", "must be list, kanban or timeline, got %q", s)
}
