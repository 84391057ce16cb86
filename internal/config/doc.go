// Package config loads, normalizes, and validates shelfsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for agent API
// keys and the API bearer token. The Config type centralizes every knob the
// API server and CLI need, including the list of agents whose trees are
// consolidated.
//
// Always obtain settings through this package so downstream code receives
// trimmed hostnames, canonical log formats, and clear validation errors.
package config
