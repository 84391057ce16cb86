// Package journal keeps a local SQLite record of every ignore and delete
// request forwarded to an agent, successful or not. Consolidated trees are
// never stored here.
package journal
