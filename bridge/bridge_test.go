// ==============================================================================================
// FILE: bridge/bridge_test.go
// PURPOSE: Session and marshalling tests. Round-trip comparisons of
//          marshalled slices/maps use google/go-cmp, per SPEC_FULL.md's
//          DOMAIN STACK wiring for this package.
// ==============================================================================================

package bridge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCapturesPrintOutput(t *testing.T) {
	s := NewSession()
	out, err := s.Execute(`print("hello")`)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestExecutePersistsGlobalsAcrossCalls(t *testing.T) {
	s := NewSession()
	_, err := s.Execute(`x = 10`)
	require.NoError(t, err)
	v, err := s.Eval("x")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)
}

func TestEvalExpression(t *testing.T) {
	s := NewSession()
	v, err := s.Eval("1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestSetGetRoundTripScalars(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Set("n", int64(42)))
	require.NoError(t, s.Set("name", "ada"))
	require.NoError(t, s.Set("flag", true))

	n, err := s.Eval("n")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	name, err := s.Eval("name")
	require.NoError(t, err)
	assert.Equal(t, "ada", name)

	flag, err := s.Eval("flag")
	require.NoError(t, err)
	assert.Equal(t, true, flag)
}

func TestSetGetRoundTripSequence(t *testing.T) {
	s := NewSession()
	in := []interface{}{int64(1), int64(2), int64(3)}
	require.NoError(t, s.Set("xs", in))
	out, err := s.Eval("xs")
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSetGetRoundTripMap(t *testing.T) {
	s := NewSession()
	in := map[string]interface{}{"a": int64(1), "b": "two"}
	require.NoError(t, s.Set("m", in))
	out, err := s.Eval("m")
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSetHostFunctionCallableFromScript(t *testing.T) {
	s := NewSession()
	add := func(args []interface{}) ([]interface{}, error) {
		a := args[0].(int64)
		b := args[1].(int64)
		return []interface{}{a + b}, nil
	}
	require.NoError(t, s.Set("add", add))
	v, err := s.Eval("add(2, 3)")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestGetScriptFunctionCallableFromHost(t *testing.T) {
	s := NewSession()
	_, err := s.Execute(`function double(x) return x * 2 end`)
	require.NoError(t, err)
	fv, err := s.Get("double")
	require.NoError(t, err)
	fn, ok := fv.(func(args []interface{}) ([]interface{}, error))
	require.True(t, ok)
	results, err := fn([]interface{}{int64(21)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), results[0])
}

func TestInstructionQuotaPropagatesAsError(t *testing.T) {
	s := NewSession(WithMaxInstructions(50))
	_, err := s.Execute(`while true do end`)
	require.Error(t, err)
	assert.True(t, IsQuota(err))
}
