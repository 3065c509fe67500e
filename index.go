package jaguar

import "hash/fnv"

// EntryID is the deterministic identifier derived from an entry's dotted
// path: equal paths always yield equal ids. It is not cryptographic:
// paths are short, in-process, trusted strings produced by the decoder
// itself, so a non-cryptographic hash (hash/fnv, stdlib) gives
// overwhelmingly high collision resistance at negligible cost; see
// DESIGN.md for why a dedicated hash library would be disproportionate
// here.
type EntryID uint64

// DeriveID computes the deterministic id for a dotted path. Equal paths
// yield equal ids; the root path is the empty string.
func DeriveID(path string) EntryID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return EntryID(h.Sum64())
}

// JoinPath appends name to the dotted path parent, using the "a.b.c"
// convention. JoinPath("", "a") == "a".
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// ValueEntry describes a single decoded value in the Index tree.
type ValueEntry struct {
	Name                string
	ID                  EntryID
	StreamBeginPosition int64

	Type        TypeTag
	ElementType TypeTag
	// ElementTypeID is set when Type is List and ElementType is
	// StructuredObj.
	ElementTypeID string
	Size          uint32
	Width         uint8
	Height        uint8
	TypeID        string
}

// ScopeEntry describes a scope in the Index tree: the implicit root, or an
// UnstructuredObj/StructuredObj that opened a nested scope.
type ScopeEntry struct {
	Name                string
	ID                  EntryID
	StreamBeginPosition int64
	// TypeID is set when this scope is a StructuredObj instance.
	TypeID string

	Subscopes []*ScopeEntry
	Subvalues []*ValueEntry
}

// ChildCount returns len(Subscopes) + len(Subvalues), the quantity that
// must equal the enclosing header's declared field count for any non-root
// scope.
func (s *ScopeEntry) ChildCount() int {
	return len(s.Subscopes) + len(s.Subvalues)
}

// Index is the tree produced by a structural decode, rooted at an implicit
// root scope, plus the structured types declared along the way.
type Index struct {
	Types map[string]*StructuredTypeLayout
	Root  *ScopeEntry
}

// NewIndex returns an empty Index with an initialized root scope and an
// empty (non-nil) type registry.
func NewIndex() *Index {
	return &Index{
		Types: make(map[string]*StructuredTypeLayout),
		Root: &ScopeEntry{
			ID: DeriveID(""),
		},
	}
}

// LookupScope walks dotted path segments from the root and returns the
// named scope, or false if any segment is missing. This is a pure read
// over an already-built Index (see SPEC_FULL.md section 3): it does not
// understand Jaguar payload types and is not a value-retrieval API.
func (idx *Index) LookupScope(path string) (*ScopeEntry, bool) {
	if path == "" {
		return idx.Root, idx.Root != nil
	}

	cur := idx.Root
	for _, seg := range splitPath(path) {
		var next *ScopeEntry
		for _, s := range cur.Subscopes {
			if s.Name == seg {
				next = s
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Lookup resolves a dotted path to a value entry. The final segment names
// a value; every preceding segment must name a scope.
func (idx *Index) Lookup(path string) (*ValueEntry, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, false
	}

	scopePath := ""
	for _, seg := range segs[:len(segs)-1] {
		scopePath = JoinPath(scopePath, seg)
	}

	scope, ok := idx.LookupScope(scopePath)
	if !ok {
		return nil, false
	}

	last := segs[len(segs)-1]
	for _, v := range scope.Subvalues {
		if v.Name == last {
			return v, true
		}
	}
	return nil, false
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	segs = append(segs, path[start:])
	return segs
}
