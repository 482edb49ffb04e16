package ticktick

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	objectIDPattern  = regexp.MustCompile(`^[a-f0-9]{24}$`)
	projectIDPattern = regexp.MustCompile(`^(inbox\d+|[a-f0-9]{24})$`)
	colorPattern     = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Field limits enforced before any upstream call.
const (
	MaxTitleLength    = 500
	MaxContentLength  = 10000
	MaxTagLabelLength = 50
	MaxTagsPerTask    = 20
	MaxReminders      = 10
	MaxQueryLength    = 200
	MaxListLimit      = 500
)

// ValidateTaskID checks a 24-hex-digit task id.
func ValidateTaskID(field, id string) error {
	if !objectIDPattern.MatchString(id) {
		return NewValidationError(field, "must be a 24 character hex id, got %q", id)
	}
	return nil
}

// ValidateProjectID checks a project id, which is either a 24-hex-digit id
// or the synthesized inbox id.
func ValidateProjectID(field, id string) error {
	if !projectIDPattern.MatchString(id) {
		return NewValidationError(field, "must be a 24 character hex id or an inbox id, got %q", id)
	}
	return nil
}

// ValidateFolderID checks a project group id.
func ValidateFolderID(field, id string) error {
	return ValidateTaskID(field, id)
}

// ValidateColor checks an optional #RRGGBB color.
func ValidateColor(color string) error {
	if color != "" && !colorPattern.MatchString(color) {
		return NewValidationError("color", "must be a hex color like #F18181, got %q", color)
	}
	return nil
}

// ValidateTitle checks a task or project title.
func ValidateTitle(field, title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n == 0 {
		return NewValidationError(field, "must not be empty")
	}
	if n > MaxTitleLength {
		return NewValidationError(field, "must be at most %d characters", MaxTitleLength)
	}
	return nil
}

// ValidateContent checks optional task content.
func ValidateContent(content string) error {
	if utf8.RuneCountInString(content) > MaxContentLength {
		return NewValidationError("content", "must be at most %d characters", MaxContentLength)
	}
	return nil
}

// ValidateTagLabel checks a tag name or label.
func ValidateTagLabel(field, label string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(label))
	if n == 0 {
		return NewValidationError(field, "must not be empty")
	}
	if n > MaxTagLabelLength {
		return NewValidationError(field, "must be at most %d characters", MaxTagLabelLength)
	}
	return nil
}

// ValidateTags checks a task's tag list.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagsPerTask {
		return NewValidationError("tags", "at most %d tags allowed, got %d", MaxTagsPerTask, len(tags))
	}
	for _, tag := range tags {
		if err := ValidateTagLabel("tags", tag); err != nil {
			return err
		}
	}
	return nil
}

// ValidateReminders checks a task's reminder triggers.
func ValidateReminders(reminders []string) error {
	if len(reminders) > MaxReminders {
		return NewValidationError("reminders", "at most %d reminders allowed, got %d", MaxReminders, len(reminders))
	}
	return nil
}

// NormalizeTags lowercases, trims and deduplicates tag names, keeping order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		name := strings.ToLower(strings.TrimSpace(tag))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// TagName returns the canonical lookup key for a tag label.
func TagName(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
