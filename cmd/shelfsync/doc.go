// Package main hosts the shelfsync CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the consolidation manager in-process
// against the configured agents for one-shot queries (categories, item,
// detail), forwards single-agent mutations (ignore, delete), lists the
// mutation journal, scaffolds configuration, and starts the long-running API
// with `serve`. Every query command accepts --json to print the same payload
// the API serves.
//
// Keep this package lean: semantics live in internal/manager; commands only
// parse arguments and render results.
package main
