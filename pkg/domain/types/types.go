package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// IncidentID is the backend-assigned incident identifier. The backend may encode
// it as a JSON number or a JSON string; both forms decode into the same value.
type IncidentID string

// String returns the string representation
func (id IncidentID) String() string {
	return string(id)
}

// IsEmpty reports whether the ID is unset
func (id IncidentID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// UnmarshalJSON accepts both `1` and `"1"`
func (id *IncidentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return goerr.Wrap(err, "failed to decode incident ID string")
		}
		*id = IncidentID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return goerr.Wrap(err, "incident ID must be a string or a number",
			goerr.V("raw", string(data)))
	}
	*id = IncidentID(n.String())
	return nil
}

// RequestID correlates one outbound backend call with its log lines
type RequestID string

// String returns the string representation
func (id RequestID) String() string {
	return string(id)
}

// NewRequestID creates a new RequestID
func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}
