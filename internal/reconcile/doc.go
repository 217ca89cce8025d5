// Package reconcile decides which work items linked to a build do not carry
// the expected release value.
//
// A work item that has the release field is judged on its own value. A work
// item without the field falls back to its parent (System.Parent): it is
// judged on the parent's value and reported as "<id> (parent <parentId>)".
// A work item with neither the field nor a parent cannot be reconciled and
// is always reported.
//
// Values are compared after trimming whitespace on both sides, and ids are
// compared in their normalized string form because the parent link may
// arrive as a number or as a string.
package reconcile
