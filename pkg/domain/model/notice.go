package model

// NoticeLevel is the tone of a transient notice
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a short-lived message about the outcome of a store operation
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"` // Underlying error message, empty on success
}

// IsError reports whether the notice reports a failure
func (n Notice) IsError() bool {
	return n.Level == NoticeError
}
