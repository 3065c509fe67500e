package jfixture_test

import (
	"bytes"
	"testing"

	"github.com/RobotLeopard86/Jaguar"
	"github.com/RobotLeopard86/Jaguar/internal/jfixture"
	"github.com/RobotLeopard86/Jaguar/jdecode"
	"github.com/RobotLeopard86/Jaguar/jreader"
	"github.com/RobotLeopard86/Jaguar/jwriter"
	"github.com/stretchr/testify/require"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	n := jfixture.Node{
		Kind: "scope",
		Name: "",
		Children: []jfixture.Node{
			{Kind: "value", Name: "b", Type: "Boolean"},
			{Kind: "scope", Name: "nested", Children: []jfixture.Node{
				{Kind: "value", Name: "x", Type: "UInt32", Size: 0},
			}},
		},
	}

	got, err := jfixture.ParseNode(jfixture.Encode(n))
	require.NoError(t, err)
	require.Equal(t, n, got)
}

func TestFromIndexMatchesDecodedTree(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UnstructuredObj, Name: "r", FieldCount: 1}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.Boolean, Name: "b"}))
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.ScopeBoundary}))

	d := jdecode.New(jreader.New(bytes.NewReader(buf.Bytes())))
	require.NoError(t, d.Parse())
	idx, err := d.GetIndex()
	require.NoError(t, err)

	n := jfixture.FromIndex(idx)
	require.Equal(t, "scope", n.Kind)
	require.Len(t, n.Children, 1)
	require.Equal(t, "r", n.Children[0].Name)
	require.Equal(t, "scope", n.Children[0].Kind)
	require.Len(t, n.Children[0].Children, 1)
	require.Equal(t, "b", n.Children[0].Children[0].Name)
	require.Equal(t, "Boolean", n.Children[0].Children[0].Type)

	encoded := jfixture.Encode(n)
	reparsed, err := jfixture.ParseNode(encoded)
	require.NoError(t, err)
	require.Equal(t, n, reparsed)
}

func TestEncodeEscapesSpecialCharacters(t *testing.T) {
	n := jfixture.Node{Kind: "value", Name: "quote\"back\\slash\nnewline", Type: "String"}
	encoded := jfixture.Encode(n)

	got, err := jfixture.ParseNode(encoded)
	require.NoError(t, err)
	require.Equal(t, n.Name, got.Name)
}
