// ==============================================================================================
// FILE: value/environment_test.go
// PURPOSE: Tests for scope chaining, shadowing, and the Assign-vs-Define
//          distinction that backs the host language's implicit globals.
// ==============================================================================================

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentGetDefine(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", Integer{Value: 1})
	v, ok := env.Get("x")
	require.True(t, ok)
	assert.Equal(t, Integer{Value: 1}, v)
}

func TestEnvironmentOuterLookup(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", Integer{Value: 1})
	inner := NewEnclosedEnvironment(outer)
	v, ok := inner.Get("x")
	require.True(t, ok)
	assert.Equal(t, Integer{Value: 1}, v)
}

func TestEnvironmentShadowing(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", Integer{Value: 1})
	inner := NewEnclosedEnvironment(outer)
	inner.Define("x", Integer{Value: 2})

	v, _ := inner.Get("x")
	assert.Equal(t, Integer{Value: 2}, v)
	v, _ = outer.Get("x")
	assert.Equal(t, Integer{Value: 1}, v)
}

func TestEnvironmentAssignUpdatesOuter(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", Integer{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	ok := inner.Assign("x", Integer{Value: 99})
	require.True(t, ok)
	v, _ := outer.Get("x")
	assert.Equal(t, Integer{Value: 99}, v)
	_, definedLocally := inner.Get("x")
	assert.True(t, definedLocally) // visible via chain, not shadowed
}

func TestEnvironmentAssignUnknownFails(t *testing.T) {
	env := NewEnvironment()
	ok := env.Assign("nope", Integer{Value: 1})
	assert.False(t, ok)
}

func TestEnvironmentGlobal(t *testing.T) {
	outer := NewEnvironment()
	inner := NewEnclosedEnvironment(outer)
	innermost := NewEnclosedEnvironment(inner)
	assert.Same(t, outer, innermost.Global())
}
