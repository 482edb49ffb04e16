// Package batch provides helpers for tools that act on one id or many.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Running the operation once per id and keeping going past failures
//   - Formatting the per-id results as JSON or markdown
package batch
