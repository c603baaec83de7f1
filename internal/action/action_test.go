package action

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsMissingKeys(t *testing.T) {
	r := Result{}.Normalize()
	require.Equal(t, Respond, r.Action)
	require.NotNil(t, r.Params)
	require.Empty(t, r.Params)
	require.Equal(t, DefaultAnswer, r.Answer)
}

func TestFromMapReplacesWrongTypes(t *testing.T) {
	r := FromMap(map[string]any{
		"action": 42,
		"params": "query=cats",
		"answer": []any{"x"},
	})
	require.Equal(t, Result{Action: Respond, Params: map[string]any{}, Answer: DefaultAnswer}, r)
}

func TestParamStringifiesNumbers(t *testing.T) {
	r := Result{Params: map[string]any{"count": float64(3), "name": "notes.txt"}}
	require.Equal(t, "3", r.Param("count"))
	require.Equal(t, "notes.txt", r.Param("name"))
	require.Equal(t, "", r.Param("missing"))
}
