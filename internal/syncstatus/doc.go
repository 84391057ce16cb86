// Package syncstatus classifies how completely each agent holds a path and
// compares one agent's children against the union of all agents.
package syncstatus
