// Package daemon runs the long-lived shelfsync API process.
//
// It serves the manager over a small JSON API (status, categories, items,
// agent detail, ignore, delete, history) behind an optional bearer token, and
// takes a flock-based lock in the state directory so only one instance uses
// a given journal. Handlers only decode and encode; consolidation semantics
// live in the manager package.
package daemon
