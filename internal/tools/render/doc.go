// Package render formats canonical models for tool output, either as
// markdown for people or as indented JSON for programs.
package render
