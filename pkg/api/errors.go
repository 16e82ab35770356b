package api

import "fmt"

// The error taxonomy for server calls. Callers distinguish the three with
// errors.As: connection-level trouble is a NetworkError, a broken HTTP or
// JSON exchange is a ProtocolError, and a well-formed response with
// success=false is a ServerError carrying the server's own message.

// NetworkError wraps a connection or timeout failure.
type NetworkError struct {
	Action string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Action, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError reports a non-200 status or a malformed response body.
type ProtocolError struct {
	Action     string
	StatusCode int
	Detail     string
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("protocol failure during %s: status %d", e.Action, e.StatusCode)
	}
	return fmt.Sprintf("protocol failure during %s: %s", e.Action, e.Detail)
}

// ServerError is a well-formed response with success=false. Message is the
// server-provided text, surfaced verbatim.
type ServerError struct {
	Action  string
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected %s", e.Action)
	}
	return fmt.Sprintf("server rejected %s: %s", e.Action, e.Message)
}
