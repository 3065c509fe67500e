package jaguar_test

import (
	"testing"

	"github.com/RobotLeopard86/Jaguar"
	"github.com/stretchr/testify/require"
)

func TestValidTag(t *testing.T) {
	tests := []struct {
		b     byte
		valid bool
	}{
		{0x09, false},
		{0x0A, true},
		{0x0F, true},
		{0x10, false},
		{0x1D, true},
		{0x1E, false},
		{0x2D, true},
		{0x2E, false},
		{0x3A, true},
		{0x3E, true},
		{0x3F, false},
		{0x49, false},
		{0x4A, true},
		{0x4B, true},
		{0x4C, false},
	}

	for _, tt := range tests {
		require.Equalf(t, tt.valid, jaguar.ValidTag(tt.b), "0x%02X", tt.b)
	}
}

func TestTypeTagWidth(t *testing.T) {
	require.Equal(t, 1, jaguar.SInt8.Width())
	require.Equal(t, 2, jaguar.SInt16.Width())
	require.Equal(t, 4, jaguar.SInt32.Width())
	require.Equal(t, 8, jaguar.SInt64.Width())
	require.Equal(t, 4, jaguar.Float32.Width())
	require.Equal(t, 8, jaguar.Float64.Width())
	require.Equal(t, 1, jaguar.Boolean.Width())
	require.Equal(t, 0, jaguar.String.Width())
	require.Equal(t, 0, jaguar.List.Width())
}

func TestTypeTagIsValueType(t *testing.T) {
	require.True(t, jaguar.Boolean.IsValueType())
	require.True(t, jaguar.StructuredObj.IsValueType())
	require.False(t, jaguar.ScopeBoundary.IsValueType())
	require.False(t, jaguar.StructuredObjTypeDecl.IsValueType())
	require.False(t, jaguar.TypeTag(0x3F).IsValueType())
}
