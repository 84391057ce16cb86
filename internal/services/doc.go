// Package services defines shared utilities consumed by the agent transport,
// the consolidation engine, and the manager facade.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, agent names, and operation names
//     for logging.
//   - Structured error markers plus the Wrap helper that classify agent
//     failures (transport, timeout, protocol, operation) so callers can
//     degrade a single agent's contribution without inspecting strings.
//
// Use these helpers when adding new agent calls so failure handling and
// observability stay uniform across the fan-out.
package services
