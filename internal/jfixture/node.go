// Package jfixture provides test-only JSON fixture support for decoder
// tests: a plain tree shape that mirrors jaguar.Index, convertible both
// ways, so a test can author an expected tree as JSON and diff it against
// a real decode, and cmd/jagdump can print a real decode the same way.
//
// This package never touches the wire format; it exists purely so the
// decoder's test suite (and the diagnostic CLI) can lean on
// github.com/buger/jsonparser the way document/json.go and
// internal/row/json.go do, instead of encoding/json.
package jfixture

import "github.com/RobotLeopard86/Jaguar"

// Node is a JSON-friendly mirror of one jaguar.ScopeEntry or
// jaguar.ValueEntry. Kind is "scope" or "value"; a scope's Children mixes
// nested scopes and values, same as jaguar.ScopeEntry does by keeping
// them in two separate slices that this type flattens into one ordered
// list purely for fixture authoring convenience.
type Node struct {
	Kind        string
	Name        string
	Type        string
	ElementType string
	TypeID      string
	Size        uint32
	Width       uint8
	Height      uint8
	Children    []Node
}

// FromIndex converts a decoded Index into its fixture-comparable Node
// tree, rooted at idx.Root.
func FromIndex(idx *jaguar.Index) Node {
	return fromScope(idx.Root)
}

func fromScope(s *jaguar.ScopeEntry) Node {
	n := Node{Kind: "scope", Name: s.Name, TypeID: s.TypeID}
	for _, sub := range s.Subscopes {
		n.Children = append(n.Children, fromScope(sub))
	}
	for _, v := range s.Subvalues {
		n.Children = append(n.Children, fromValue(v))
	}
	return n
}

func fromValue(v *jaguar.ValueEntry) Node {
	n := Node{
		Kind:   "value",
		Name:   v.Name,
		Type:   v.Type.String(),
		TypeID: v.TypeID,
		Size:   v.Size,
		Width:  v.Width,
		Height: v.Height,
	}
	if v.ElementType != 0 {
		n.ElementType = v.ElementType.String()
	}
	return n
}
