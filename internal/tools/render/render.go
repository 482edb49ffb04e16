package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/tickfewer/internal/ticktick"
)

// Format selects how a tool result is rendered.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts markdown (the default when empty) or json.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", ticktick.NewValidationError("response_format", "must be markdown or json, got %q", s)
}

// JSON returns v as indented JSON.
func JSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}

// Result renders v in the requested format. markdown is only called for
// FormatMarkdown.
func Result(format Format, v any, markdown func() string) (*mcp.CallToolResult, error) {
	if format == FormatJSON {
		text, err := JSON(v)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(text), nil
	}
	return mcp.NewToolResultText(markdown()), nil
}
