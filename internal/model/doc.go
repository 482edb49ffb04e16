// Package model is the canonical representation of tasks, projects, folders,
// tags and account data shared by both upstream APIs.
//
// Each upstream has its own wire types in internal/ticktick/v1 and
// internal/ticktick/v2. The FromV1/FromV2 constructors and the ToV1/ToV2
// methods convert between those and the canonical types; nothing above the
// unified package sees a wire type.
//
// Conversions are lenient on the way in: unparseable dates become nil,
// priorities outside 0, 1, 3 and 5 become 0, and tags are lowercased.
package model
