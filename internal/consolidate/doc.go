// Package consolidate fans a request out to every agent and folds the
// per-agent answers into one deduplicated view.
//
// Agent calls run concurrently up to a configurable limit. A failing agent
// never cancels the others and never fails the aggregate: it is recorded in
// the per-agent reports and contributes nothing to the merged result. Folding
// happens after every call has returned, in the order the sources were
// configured, so results do not depend on completion order.
package consolidate
