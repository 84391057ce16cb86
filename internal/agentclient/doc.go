// Package agentclient talks to a single shelfsync agent over its HTTP API.
//
// Every request carries the agent's X-API-Key header and runs under one
// per-call timeout. Failures come back as *Error values tagged with a
// services marker (transport, timeout, protocol or operation) so callers can
// classify them with services.Kind. A 404 from the item endpoint is not an
// error: ItemInfo reports it as entity.Missing.
package agentclient
