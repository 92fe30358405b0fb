package authz

// NavEntry is one navigation link with the capabilities that may unlock it.
// An entry with no capabilities is always visible; otherwise holding any one
// of the listed variants is enough.
type NavEntry struct {
	Label        string
	Path         string
	Capabilities []Capability
}

// VisibleEntries filters a navigation tree down to what the principal may
// see. Order is preserved.
func VisibleEntries(s Set, entries []NavEntry) []NavEntry {
	out := make([]NavEntry, 0, len(entries))
	for _, e := range entries {
		if len(e.Capabilities) == 0 {
			out = append(out, e)
			continue
		}
		for _, c := range e.Capabilities {
			if s.Allows(c) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
