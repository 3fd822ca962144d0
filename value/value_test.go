// ==============================================================================================
// FILE: value/value_test.go
// PURPOSE: Unit tests for Value Inspect()/Type() rendering and the numeric-
//          coherence rules RawEqual must honor.
// ==============================================================================================

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		v        Value
		expected string
	}{
		{NilValue, "nil"},
		{True, "true"},
		{False, "false"},
		{Integer{Value: 10}, "10"},
		{Float{Value: 3.5}, "3.5"},
		{Float{Value: 3.0}, "3.0"},
		{String{Value: "hi"}, "hi"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.v.Inspect())
	}
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "nil", NilValue.Type())
	assert.Equal(t, "boolean", True.Type())
	assert.Equal(t, "number", Integer{}.Type())
	assert.Equal(t, "number", Float{}.Type())
	assert.Equal(t, "string", String{}.Type())
	assert.Equal(t, "table", NewTable().Type())
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, IsTruthy(NilValue))
	assert.False(t, IsTruthy(False))
	assert.True(t, IsTruthy(True))
	assert.True(t, IsTruthy(Integer{Value: 0}))
	assert.True(t, IsTruthy(String{Value: ""}))
}

func TestRawEqualNumericCoherence(t *testing.T) {
	assert.True(t, RawEqual(Integer{Value: 1}, Float{Value: 1.0}))
	assert.True(t, RawEqual(Float{Value: 2.0}, Integer{Value: 2}))
	assert.False(t, RawEqual(Integer{Value: 1}, Float{Value: 1.5}))
}

func TestRawEqualIdentity(t *testing.T) {
	a, b := NewTable(), NewTable()
	assert.False(t, RawEqual(a, b))
	assert.True(t, RawEqual(a, a))
}

func TestFloatToExactInt(t *testing.T) {
	i, ok := FloatToExactInt(4.0)
	assert.True(t, ok)
	assert.Equal(t, int64(4), i)

	_, ok = FloatToExactInt(4.5)
	assert.False(t, ok)
}
