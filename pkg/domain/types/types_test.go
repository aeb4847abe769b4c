package types_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/incidex/pkg/domain/types"
)

func TestIncidentIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected types.IncidentID
	}{
		{"Number", `1`, "1"},
		{"Large number", `123456789012`, "123456789012"},
		{"String", `"abc-123"`, "abc-123"},
		{"Numeric string", `"42"`, "42"},
		{"Null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id types.IncidentID
			gt.NoError(t, json.Unmarshal([]byte(tt.input), &id)).Required()
			gt.Equal(t, tt.expected, id)
		})
	}

	t.Run("Reject object", func(t *testing.T) {
		var id types.IncidentID
		gt.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
	})

	t.Run("Reject boolean", func(t *testing.T) {
		var id types.IncidentID
		gt.Error(t, json.Unmarshal([]byte(`true`), &id))
	})
}

func TestIncidentIDIsEmpty(t *testing.T) {
	gt.True(t, types.IncidentID("").IsEmpty())
	gt.True(t, types.IncidentID("  ").IsEmpty())
	gt.False(t, types.IncidentID("1").IsEmpty())
}

func TestNewRequestID(t *testing.T) {
	a := types.NewRequestID()
	b := types.NewRequestID()
	gt.NotEqual(t, a, b)
	gt.Equal(t, 36, len(a.String()))
}
