// Package v1 is a client for the TickTick open API, authenticated with an
// OAuth2 bearer token.
//
// The open API is narrow: it addresses tasks by project and task id, has no
// tags endpoint and cannot list tasks across projects. It is the reliable
// path for completing tasks and reading a project with its tasks.
package v1
