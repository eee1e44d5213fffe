package style

// Rename records one class/id substitution a compile pass made, so the
// markup pass can rewrite `class="…"` / `id="…"` attributes and `this`
// references to match (§4.4).
type Rename struct {
	Old, New, Type string // Type is "class" or "id"
}

// Key identifies a rename independent of which hash it currently maps
// to — used to look an existing assignment up before minting a new one,
// so re-compiling an unchanged component reuses its previous names.
type Key struct {
	Old, Type string
}

// Table is a persistent old->new rename map, keyed by (old name, kind).
// The session package owns the long-lived instances (one per component,
// plus one shared "global" table for cross-file :global names); style
// itself only reads and writes through the map it is given.
type Table map[Key]string

func (t Table) lookup(old, kind string) (string, bool) {
	v, ok := t[Key{Old: old, Type: kind}]
	return v, ok
}

func (t Table) set(old, kind, new string) {
	t[Key{Old: old, Type: kind}] = new
}

// Renames flattens a Table into the []Rename form other packages
// (script, printer) consume.
func (t Table) Renames() []Rename {
	out := make([]Rename, 0, len(t))
	for k, v := range t {
		out = append(out, Rename{Old: k.Old, New: v, Type: k.Type})
	}
	return out
}
