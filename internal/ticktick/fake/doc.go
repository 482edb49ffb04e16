// Package fake is an in-memory TickTick account for tests.
//
// A Backend holds one account and serves it through two views, V1 and V2,
// which satisfy the client interfaces of the unified package. Writes made
// through either view are visible to the other, so fallback paths can be
// tested end to end. Deleting, renaming and merging behave like the real
// service: tag deletes strip the tag from tasks, folder deletes detach
// projects and project deletes remove their tasks.
//
// Failures are injected per upstream and operation with Fail and FailAll,
// and every call is recorded for assertions about routing order.
package fake
