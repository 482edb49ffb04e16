// Package v2 is a client for the TickTick private web API, authenticated
// with a username and password session.
//
// The private API exposes everything the web app does: a full account sync,
// batch writes, tags, folders, subtasks, completed task history, user
// statistics and focus time. Writes are acknowledged with an id to etag
// mapping rather than the stored entity, so callers read back what they
// wrote.
//
// Sync is the heaviest call; concurrent callers of Sync share one request.
package v2
