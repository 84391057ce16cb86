// Package logs reads the daemon log file for `shelfsync logs`.
//
// Last returns the final lines of the file together with the byte offset
// where reading stopped; Follow polls from that offset and emits lines as the
// daemon appends them until the context is cancelled. A missing file is not an
// error: the daemon may simply not have started yet.
package logs
