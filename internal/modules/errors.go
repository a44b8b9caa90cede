package modules

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrorKind classifies every failure a tool call can produce. The set is
// closed: callers can switch on it exhaustively.
type ErrorKind string

const (
	// KindInvalidArgument: malformed or missing tool arguments, or a
	// repository reference that cannot be resolved.
	KindInvalidArgument ErrorKind = "InvalidArgument"
	// KindUnknownTool: tool name not in the registry.
	KindUnknownTool ErrorKind = "UnknownTool"
	// KindAuthError: missing/invalid credential or upstream permission denial.
	KindAuthError ErrorKind = "AuthError"
	// KindNotFound: referenced repository/issue/PR/file absent upstream.
	KindNotFound ErrorKind = "NotFound"
	// KindRateLimited: upstream quota exceeded. The message carries the
	// retry-after hint when upstream provides one; nothing here waits or
	// retries.
	KindRateLimited ErrorKind = "RateLimited"
	// KindConflict: unmergeable PR, branch that already exists, and similar.
	KindConflict ErrorKind = "ConflictError"
	// KindUpstream: any other upstream failure, including network and timeout.
	KindUpstream ErrorKind = "UpstreamError"
)

// ToolError is the normalized failure shape every tool call error is reduced
// to before it reaches the caller.
type ToolError struct {
	Kind    ErrorKind
	Message string
}

func (e *ToolError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Errorf builds a ToolError with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from an error chain. Errors that never went
// through a classifier count as upstream failures.
func KindOf(err error) ErrorKind {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUpstream
}
