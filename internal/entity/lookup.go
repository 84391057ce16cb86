package entity

// Lookup is the result of asking one agent (or the consolidation of several)
// for a single path. Found is false when nothing exists there; Entity is then
// the zero value and must not be read.
type Lookup struct {
	Entity Entity
	Found  bool
}

// Present wraps an entity reported at a path. An entity with an empty id is
// the wire form of absence and yields Missing.
func Present(e Entity) Lookup {
	if e.Absent() {
		return Missing()
	}
	return Lookup{Entity: e, Found: true}
}

// Missing is the identity element for Combine.
func Missing() Lookup {
	return Lookup{}
}

// Get returns the entity and whether it was found.
func (l Lookup) Get() (Entity, bool) {
	return l.Entity, l.Found
}

// SizeKB is zero for a missing lookup.
func (l Lookup) SizeKB() uint64 {
	if !l.Found {
		return 0
	}
	return l.Entity.SizeKB
}

// Combine merges two lookups. A missing operand contributes nothing, so the
// other operand is returned unchanged.
func Combine(a, b Lookup, p Policy) Lookup {
	switch {
	case !a.Found:
		return b
	case !b.Found:
		return a
	default:
		return Present(Merge(a.Entity, b.Entity, p))
	}
}
