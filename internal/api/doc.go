// Package api defines the JSON wire types served by the daemon and printed by
// the CLI's --json mode, and converters from manager views.
//
// # Key Types
//
// CategoriesResponse: consolidated forest with per-node redundancy flags,
// per-agent reachability and identity warnings.
//
// ItemResponse: consolidated item (null when no agent has it) plus one row
// per agent with sync status and ignore status.
//
// AgentDetailResponse: per-child comparison for one agent.
//
// MutationResponse: outcome of a forwarded ignore or delete.
//
// # Design Notes
//
// Field names use snake_case to match the agent protocol. Slices are never
// null in responses. Timestamps use RFC3339 with milliseconds. Errors carry
// the services.Kind classification next to the message.
package api
