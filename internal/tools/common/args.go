package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/tools/render"
)

// ResponseFormatOption adds the response_format parameter every tool takes.
func ResponseFormatOption() mcp.ToolOption {
	return mcp.WithString("response_format",
		mcp.Description("Output format: 'markdown' (default, human readable) or 'json' (structured)"),
		mcp.Enum(string(render.FormatMarkdown), string(render.FormatJSON)),
	)
}

// ResponseFormat reads response_format, defaulting to markdown.
func ResponseFormat(args map[string]any) (render.Format, error) {
	return render.ParseFormat(StringArg(args, "response_format"))
}

// StringArg returns the trimmed string argument name, or "".
func StringArg(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// RequiredString returns the string argument name or a ValidationError when
// it is missing or empty.
func RequiredString(args map[string]any, name string) (string, error) {
	v := StringArg(args, name)
	if v == "" {
		return "", ticktick.NewValidationError(name, "is required")
	}
	return v, nil
}

// OptionalString returns a pointer to the argument when it was supplied,
// even if empty, so that updates can clear fields.
func OptionalString(args map[string]any, name string) *string {
	v, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &v
}

// BoolArg returns the boolean argument name, or def when absent.
func BoolArg(args map[string]any, name string, def bool) bool {
	switch v := args[name].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
	}
	return def
}

// IntArg returns the integer argument name, or def when absent. JSON numbers
// arrive as float64 and must be whole.
func IntArg(args map[string]any, name string, def int) (int, error) {
	switch v := args[name].(type) {
	case nil:
		return def, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, ticktick.NewValidationError(name, "must be a whole number, got %v", v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, ticktick.NewValidationError(name, "must be a number, got %q", v)
		}
		return n, nil
	}
	return 0, ticktick.NewValidationError(name, "must be a number")
}

// IntInRange is IntArg with inclusive bounds.
func IntInRange(args map[string]any, name string, def, lo, hi int) (int, error) {
	n, err := IntArg(args, name, def)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, ticktick.NewValidationError(name, "must be between %d and %d, got %d", lo, hi, n)
	}
	return n, nil
}

// StringSliceArg accepts an array of strings or a comma separated string.
func StringSliceArg(args map[string]any, name string) ([]string, error) {
	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, ticktick.NewValidationError(name, "item %d must be a string", i)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		return v, nil
	}
	return nil, ticktick.NewValidationError(name, "must be a string or an array of strings")
}

// PriorityArg reads a priority given as a name or a number.
func PriorityArg(args map[string]any, name string) (ticktick.Priority, bool, error) {
	switch v := args[name].(type) {
	case nil:
		return ticktick.PriorityNone, false, nil
	case float64:
		if v != math.Trunc(v) {
			return ticktick.PriorityNone, false, ticktick.NewValidationError(name, "must be 0, 1, 3 or 5")
		}
		p := ticktick.Priority(int(v))
		return p, true, ticktick.ValidatePriority(p)
	case string:
		p, err := ticktick.ParsePriority(v)
		return p, err == nil, err
	}
	return ticktick.PriorityNone, false, ticktick.NewValidationError(name, "must be a name or a number")
}

// Accepted date layouts, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses an RFC 3339 timestamp or a plain date. Values without a
// zone are interpreted in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, use YYYY-MM-DD or RFC 3339", s)
}

// DateArg reads an optional date argument. The boolean reports whether the
// value was date-only, which makes it an all-day date.
func DateArg(args map[string]any, name string) (*time.Time, bool, error) {
	v := StringArg(args, name)
	if v == "" {
		return nil, false, nil
	}
	t, err := ParseDate(v, time.Local)
	if err != nil {
		return nil, false, ticktick.NewValidationError(name, "%v", err)
	}
	return &t, len(v) == len("2006-01-02"), nil
}

// DateRange resolves start_date/end_date or a days lookback ending today.
// maxDays bounds both forms.
func DateRange(args map[string]any, now time.Time, defDays, maxDays int) (time.Time, time.Time, error) {
	start, _, err := DateArg(args, "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, _, err := DateArg(args, "end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start != nil || end != nil {
		if start == nil || end == nil {
			return time.Time{}, time.Time{}, ticktick.NewValidationError("start_date", "start_date and end_date must be given together")
		}
		return *start, *end, nil
	}

	days, err := IntInRange(args, "days", defDays, 1, maxDays)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return now.AddDate(0, 0, -days), now, nil
}
