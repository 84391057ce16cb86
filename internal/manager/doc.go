// Package manager is the upward surface of shelfsync. It owns one agent
// client per configured agent and composes consolidation, redundancy flags,
// sync status, ignore status and the mutation journal into request-scoped
// views. Every call is tagged with a fresh request id that flows into agent
// logs and journal entries.
package manager
