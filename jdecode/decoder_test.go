package jdecode_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/RobotLeopard86/Jaguar"
	"github.com/RobotLeopard86/Jaguar/internal/jfixture"
	"github.com/RobotLeopard86/Jaguar/jdecode"
	"github.com/RobotLeopard86/Jaguar/jerr"
	"github.com/RobotLeopard86/Jaguar/jreader"
	"github.com/RobotLeopard86/Jaguar/jwriter"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) *jaguar.Index {
	t.Helper()
	d := jdecode.New(jreader.New(bytes.NewReader(data)))
	require.NoError(t, d.Parse())
	idx, err := d.GetIndex()
	require.NoError(t, err)
	return idx
}

// TestEmptyBooleanRecord decodes a single UnstructuredObj "r" with one
// Boolean field "b", exercising the canonical minimal record shape.
func TestEmptyBooleanRecord(t *testing.T) {
	data := []byte{0x3B, 0x01, 0x72, 0x01, 0x00, 0x0D, 0x01, 0x62, 0x01, 0x3E}
	idx := decode(t, data)

	require.Len(t, idx.Root.Subscopes, 1)
	r := idx.Root.Subscopes[0]
	require.Equal(t, "r", r.Name)
	require.Len(t, r.Subvalues, 1)
	require.Equal(t, "b", r.Subvalues[0].Name)
	require.Equal(t, jaguar.Boolean, r.Subvalues[0].Type)
}

// TestEmptyBooleanRecordMatchesGoldenFixture decodes the same bytes as
// TestEmptyBooleanRecord and checks the whole Index tree against a golden
// JSON fixture under testdata/, authored in the shape jfixture.Encode
// produces and read back with jfixture.ParseNode.
func TestEmptyBooleanRecordMatchesGoldenFixture(t *testing.T) {
	data := []byte{0x3B, 0x01, 0x72, 0x01, 0x00, 0x0D, 0x01, 0x62, 0x01, 0x3E}
	idx := decode(t, data)

	golden, err := os.ReadFile("testdata/empty_boolean_record.json")
	require.NoError(t, err)
	want, err := jfixture.ParseNode(golden)
	require.NoError(t, err)

	require.Equal(t, want, jfixture.FromIndex(idx))
}

func TestEmptyRootStream(t *testing.T) {
	idx := decode(t, nil)
	require.Equal(t, 0, idx.Root.ChildCount())
}

func TestUnexpectedScopeBoundaryAtRoot(t *testing.T) {
	d := jdecode.New(jreader.New(bytes.NewReader([]byte{0x3E})))
	err := d.Parse()
	require.ErrorIs(t, err, jerr.ErrUnexpectedScopeBoundary)
	require.True(t, d.Failed())

	_, err = d.GetIndex()
	require.ErrorIs(t, err, jerr.ErrParseFailed)
}

func TestEarlyScopeBoundary(t *testing.T) {
	// UnstructuredObj "r" fieldCount=2, but only one Boolean field then close.
	var buf bytes.Buffer
	w := jwriter.New(&buf)
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UnstructuredObj, Name: "r", FieldCount: 2}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.Boolean, Name: "b"}))
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.ScopeBoundary}))

	d := jdecode.New(jreader.New(bytes.NewReader(buf.Bytes())))
	err := d.Parse()
	require.Error(t, err)
	require.True(t, jerr.Is(err, jerr.KindStructural))
}

func TestExcessFields(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UnstructuredObj, Name: "r", FieldCount: 1}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.Boolean, Name: "b1"}))
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.Boolean, Name: "b2"}))
	require.NoError(t, w.WriteBool(false))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.ScopeBoundary}))

	d := jdecode.New(jreader.New(bytes.NewReader(buf.Bytes())))
	err := d.Parse()
	require.Error(t, err)
	require.True(t, jerr.Is(err, jerr.KindStructural))
}

// TestStructuredObject declares a two-field record type, then decodes one
// instance of it and checks the resulting Index shape.
func TestStructuredObject(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObjTypeDecl, Name: "P", TypeID: "P", FieldCount: 2}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UInt32, Name: "x"}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UInt32, Name: "y"}))

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObj, Name: "p", TypeID: "P"}))
	require.NoError(t, w.WriteUInt32(7))
	require.NoError(t, w.WriteUInt32(9))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.ScopeBoundary}))

	idx := decode(t, buf.Bytes())

	layout, ok := idx.Types["P"]
	require.True(t, ok)
	require.Len(t, layout.Fields, 2)

	require.Len(t, idx.Root.Subscopes, 1)
	p := idx.Root.Subscopes[0]
	require.Equal(t, "P", p.TypeID)
	require.Len(t, p.Subvalues, 2)
	require.Equal(t, "x", p.Subvalues[0].Name)
	require.Equal(t, "y", p.Subvalues[1].Name)
}

// TestSelfReferentialStructuredFieldRejected declares a structured type "P"
// with a field of its own type and decodes one "P" value, exercising the
// cycle guard in parseStructuredBody: without it, the headerless recursion
// into the self-referential field would never advance the Reader and would
// recurse forever.
func TestSelfReferentialStructuredFieldRejected(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObjTypeDecl, Name: "P", TypeID: "P", FieldCount: 1}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObj, Name: "self", TypeID: "P"}))

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObj, Name: "p", TypeID: "P"}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.ScopeBoundary}))

	d := jdecode.New(jreader.New(bytes.NewReader(buf.Bytes())))
	err := d.Parse()
	require.Error(t, err)
	require.True(t, jerr.Is(err, jerr.KindStructural))
}

// TestMutuallyReferentialStructuredFieldsRejected is the same hazard through
// a two-type cycle: "P" has a field of type "Q", "Q" has a field of type "P".
func TestMutuallyReferentialStructuredFieldsRejected(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObjTypeDecl, Name: "P", TypeID: "P", FieldCount: 1}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObj, Name: "q", TypeID: "Q"}))

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObjTypeDecl, Name: "Q", TypeID: "Q", FieldCount: 1}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObj, Name: "p", TypeID: "P"}))

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObj, Name: "p", TypeID: "P"}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.ScopeBoundary}))

	d := jdecode.New(jreader.New(bytes.NewReader(buf.Bytes())))
	err := d.Parse()
	require.Error(t, err)
	require.True(t, jerr.Is(err, jerr.KindStructural))
}

func TestUnknownStructuredTypeID(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObj, Name: "p", TypeID: "Ghost"}))

	d := jdecode.New(jreader.New(bytes.NewReader(buf.Bytes())))
	require.Error(t, d.Parse())
}

func TestDuplicateTypeDeclaration(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)
	decl := jaguar.Header{Type: jaguar.StructuredObjTypeDecl, Name: "P", TypeID: "P", FieldCount: 1}
	require.NoError(t, w.WriteHeader(decl))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UInt8, Name: "x"}))
	require.NoError(t, w.WriteHeader(decl))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UInt8, Name: "x"}))

	d := jdecode.New(jreader.New(bytes.NewReader(buf.Bytes())))
	require.Error(t, d.Parse())
}

func TestParseIsOneShot(t *testing.T) {
	d := jdecode.New(jreader.New(bytes.NewReader(nil)))
	require.NoError(t, d.Parse())
	require.ErrorIs(t, d.Parse(), jerr.ErrAlreadyParsed)
}

func TestGetIndexBeforeParse(t *testing.T) {
	d := jdecode.New(jreader.New(bytes.NewReader(nil)))
	_, err := d.GetIndex()
	require.Error(t, err)
}

// TestStructuredObjectList exercises a List whose elementType is
// StructuredObj: headerless records in declared field order.
func TestStructuredObjectList(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.StructuredObjTypeDecl, Name: "Pt", TypeID: "Pt", FieldCount: 2}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UInt32, Name: "x"}))
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UInt32, Name: "y"}))

	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.List, Name: "pts", ElementType: jaguar.StructuredObj, Size: 2, TypeID: "Pt"}))
	require.NoError(t, w.WriteUInt32(1))
	require.NoError(t, w.WriteUInt32(2))
	require.NoError(t, w.WriteUInt32(3))
	require.NoError(t, w.WriteUInt32(4))

	idx := decode(t, buf.Bytes())
	require.Len(t, idx.Root.Subvalues, 1)
	v := idx.Root.Subvalues[0]
	require.Equal(t, jaguar.List, v.Type)
	require.Equal(t, jaguar.StructuredObj, v.ElementType)
	require.Equal(t, uint32(2), v.Size)
}

// TestMatrixRoundTrip exercises a non-square matrix (scenario supplement,
// SPEC_FULL.md section 8).
func TestMatrixRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := jwriter.New(&buf)
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.Matrix, Name: "m", ElementType: jaguar.Float64, Width: 4, Height: 2}))
	for i := 0; i < 8; i++ {
		require.NoError(t, w.WriteFloat64(float64(i)))
	}

	idx := decode(t, buf.Bytes())
	require.Len(t, idx.Root.Subvalues, 1)
	v := idx.Root.Subvalues[0]
	require.Equal(t, uint8(4), v.Width)
	require.Equal(t, uint8(2), v.Height)

	r := jreader.New(bytes.NewReader(buf.Bytes()))
	_, err := r.ReadHeader()
	require.NoError(t, err)
	require.Equal(t, v.StreamBeginPosition, r.Position())
}

// TestDeeplyNestedUnstructuredObjects exercises recursive-descent path
// tracking and id derivation at depth > 8.
func TestDeeplyNestedUnstructuredObjects(t *testing.T) {
	const depth = 12

	var buf bytes.Buffer
	w := jwriter.New(&buf)
	for i := 0; i < depth; i++ {
		require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.UnstructuredObj, Name: "n", FieldCount: 1}))
	}
	require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.Boolean, Name: "leaf"}))
	require.NoError(t, w.WriteBool(true))
	for i := 0; i < depth; i++ {
		require.NoError(t, w.WriteHeader(jaguar.Header{Type: jaguar.ScopeBoundary}))
	}

	idx := decode(t, buf.Bytes())

	scope := idx.Root
	var path string
	for i := 0; i < depth; i++ {
		require.Len(t, scope.Subscopes, 1)
		scope = scope.Subscopes[0]
		path = jaguar.JoinPath(path, "n")
		require.Equal(t, jaguar.DeriveID(path), scope.ID)
	}
	require.Len(t, scope.Subvalues, 1)
	require.Equal(t, "leaf", scope.Subvalues[0].Name)
}

// TestNestedSubstreamRoundTrip treats a Substream payload opaquely, then
// decodes it independently through a second Decoder.
func TestNestedSubstreamRoundTrip(t *testing.T) {
	var inner bytes.Buffer
	iw := jwriter.New(&inner)
	require.NoError(t, iw.WriteHeader(jaguar.Header{Type: jaguar.Boolean, Name: "inner"}))
	require.NoError(t, iw.WriteBool(true))

	var outer bytes.Buffer
	ow := jwriter.New(&outer)
	require.NoError(t, ow.WriteHeader(jaguar.Header{Type: jaguar.Substream, Name: "sub", Size: uint32(inner.Len())}))
	require.NoError(t, ow.WriteBuffer(bytes.NewReader(inner.Bytes()), int64(inner.Len())))

	idx := decode(t, outer.Bytes())
	require.Len(t, idx.Root.Subvalues, 1)
	sub := idx.Root.Subvalues[0]
	require.Equal(t, jaguar.Substream, sub.Type)
	require.Equal(t, uint32(inner.Len()), sub.Size)

	r := jreader.New(bytes.NewReader(outer.Bytes()))
	_, err := r.Seek(sub.StreamBeginPosition, 0)
	require.NoError(t, err)
	vh, err := r.ReadBuffer(sub.Size)
	require.NoError(t, err)
	extracted := make([]byte, sub.Size)
	require.NoError(t, vh.Read(extracted, int(sub.Size)))

	innerIdx := decode(t, extracted)
	require.Len(t, innerIdx.Root.Subvalues, 1)
	require.Equal(t, "inner", innerIdx.Root.Subvalues[0].Name)
}
