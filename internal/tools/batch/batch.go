package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Item statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxItems bounds the number of ids one batch call may carry.
const MaxItems = 100

// Result is the outcome for one id of a batch call.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult aggregates the per-id results of a batch call.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// NewSuccessResult builds a successful Result.
func NewSuccessResult(id, message string) Result {
	return Result{ID: id, Status: StatusSuccess, Result: message}
}

// NewErrorResult builds a failed Result.
func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: StatusError, Error: err.Error()}
}

// ParseStringOrArray parses a parameter that can be a single string, an array
// of strings, or a JSON array encoded as a string. Some clients send the
// latter when a schema allows both forms.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if strings.HasPrefix(v, "[") {
			var items []any
			if err := json.Unmarshal([]byte(v), &items); err == nil {
				return ParseStringOrArray(items, paramName)
			}
		}
		return []string{v}, nil
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if len(v) > MaxItems {
			return nil, fmt.Errorf("%s accepts at most %d items, got %d", paramName, MaxItems, len(v))
		}
		result := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
		return result, nil
	}
	return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
}

// Summarize counts the successes and failures in results.
func Summarize(results []Result) BatchResult {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	jsonBytes, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(jsonBytes)
}

// FormatMarkdown renders batch results as a list headed by action, for
// example "Completed".
func FormatMarkdown(action string, results []Result) string {
	br := Summarize(results)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d of %d\n\n", action, br.Successful, br.Total)
	for _, r := range results {
		if r.Status == StatusSuccess {
			fmt.Fprintf(&b, "- `%s`: %s\n", r.ID, r.Result)
		} else {
			fmt.Fprintf(&b, "- `%s`: failed: %s\n", r.ID, r.Error)
		}
	}
	return b.String()
}

// ProcessBatch runs fn for each id in order and collects the results. One
// failing id does not stop the others; a cancelled context fails the rest.
// describe turns an error into the text stored in the result.
func ProcessBatch(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (string, error), describe func(error) string) []Result {
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}
	results := make([]Result, 0, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{ID: id, Status: StatusError, Error: describe(err)})
			continue
		}
		res, err := fn(ctx, id)
		if err != nil {
			results = append(results, Result{ID: id, Status: StatusError, Error: describe(err)})
			continue
		}
		results = append(results, NewSuccessResult(id, res))
	}

	return results
}
