// Package ipc provides the JSON envelope spoken between a host and an
// operation plugin: one request in, one response out.
package ipc

import (
	"encoding/json"
	"fmt"
	"io"
)

// Commands understood by operation plugins.
const (
	CommandList     = "list"
	CommandDescribe = "describe"
	CommandRun      = "run"
)

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request is the incoming JSON request from the host.
type Request struct {
	Command string                 `json:"command"`
	Args    map[string]interface{} `json:"args,omitempty"`
}

// Response is the outgoing JSON response to the host.
type Response struct {
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ReadRequest reads and decodes one IPC request from r.
func ReadRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("request has no command")
	}
	return &req, nil
}

// WriteResponse encodes resp as a single JSON line on w.
func WriteResponse(w io.Writer, resp *Response) error {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// OK builds a success response carrying result.
func OK(result interface{}) *Response {
	return &Response{Status: StatusOK, Result: result}
}

// Error builds an error response. The message is passed through untouched
// so the host can show it to the user as is.
func Error(msg string) *Response {
	return &Response{Status: StatusError, Error: msg}
}

// Errorf builds a formatted error response.
func Errorf(format string, args ...interface{}) *Response {
	return Error(fmt.Sprintf(format, args...))
}
