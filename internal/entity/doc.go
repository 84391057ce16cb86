// Package entity holds the tree node exchanged with agents and the pure merge
// function used to consolidate replicas.
//
// Identity is the id alone: two nodes with the same id are the same logical
// item no matter what else differs. Absence is modelled explicitly with
// Lookup, while Merge still treats an empty id as "nothing here" because that
// is how agents encode it on the wire.
package entity
