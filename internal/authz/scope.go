package authz

// Scope is the visibility level a principal holds for a view capability.
type Scope int

const (
	// ScopeNone: neither the full nor the own variant is held. Callers must
	// render an explicit "no permission" state, not an empty list.
	ScopeNone Scope = iota
	// ScopeOwn: only the "view own X" variant is held; visibility is limited
	// to records owned by the principal.
	ScopeOwn
	// ScopeAll: the full capability is held; visibility is unrestricted.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeOwn:
		return "own"
	default:
		return "none"
	}
}

// ScopeFor resolves the visibility scope for a "view X"-shaped capability.
// Holding the full capability always wins over the own variant.
func ScopeFor(s Set, view Capability) Scope {
	if s.Allows(view) {
		return ScopeAll
	}
	if own, ok := OwnVariant(view); ok && s.Allows(own) {
		return ScopeOwn
	}
	return ScopeNone
}

// Visible filters records according to scope. ownerID extracts the
// owning-party identifier from a record; ownership semantics differ per
// entity (client id for contracts/invoices/projects, assignee id for
// tickets), so the predicate is always supplied by the caller.
func Visible[T any](scope Scope, ownerID func(T) int, principalID int, records []T) []T {
	switch scope {
	case ScopeAll:
		return records
	case ScopeOwn:
		out := make([]T, 0, len(records))
		for _, r := range records {
			if ownerID(r) == principalID {
				out = append(out, r)
			}
		}
		return out
	default:
		return []T{}
	}
}
