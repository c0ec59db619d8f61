package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/FocuswithJustin/anchorleak/core/anchorleak"
	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
	"github.com/FocuswithJustin/anchorleak/core/plugins"
	"github.com/FocuswithJustin/anchorleak/internal/logging"
	"github.com/FocuswithJustin/anchorleak/plugins/ipc"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Operations int    `json:"operations"`
}

// Error codes.
const (
	codeNotFound        = "NOT_FOUND"
	codeInvalidRequest  = "INVALID_REQUEST"
	codeInvalidInput    = "INVALID_INPUT"
	codeOperationFailed = "OPERATION_FAILED"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, codeNotFound, "Endpoint not found")
		return
	}

	endpoints := []string{
		"GET /health",
		"GET /operations",
		"GET /operations/:id",
		"POST /operations/:id",
		"WS /ws",
	}
	if s.metrics != nil {
		endpoints = append(endpoints, "GET /metrics")
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"name":      "anchorleak API",
		"version":   Version,
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, HealthInfo{
		Status:     "healthy",
		Version:    Version,
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Operations: s.registry.Len(),
	})
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	ops := s.registry.List()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(APIResponse{
		Success: true,
		Data:    ops,
		Meta: &APIMeta{
			Total:     len(ops),
			Timestamp: timestamp(),
		},
	})
}

func (s *Server) handleDescribeOperation(w http.ResponseWriter, r *http.Request) {
	op, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		respondOperationError(w, err)
		return
	}
	respond(w, http.StatusOK, op.Descriptor())
}

// handleRunOperation runs an operation with the named arguments in the
// JSON request body, e.g. {"ecn": "...", "anchor_id": "...", ...}.
func (s *Server) handleRunOperation(w http.ResponseWriter, r *http.Request) {
	op, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		respondOperationError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxMessageBytes)
	var raw map[string]interface{}
	if err := json.NewDecoder(body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, codeInvalidRequest, "Request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "Invalid JSON body: "+err.Error())
		return
	}

	named, err := ipc.StringMap(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	result, err := s.registry.RunPositional(op, op.Descriptor().Positional(s.withDefaults(op, named)))
	if err != nil {
		logging.WarnContext(r.Context(), "operation request rejected",
			"operation", op.Descriptor().ID,
			"error", err.Error())
		respondOperationError(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

// withDefaults fills the configured default corpus into named when op
// takes a corpus argument and the caller left it out.
func (s *Server) withDefaults(op plugins.Operation, named map[string]string) map[string]string {
	if s.defaultCorpus == "" {
		return named
	}
	if _, ok := named[anchorleak.ArgCorpus]; ok {
		return named
	}
	for _, a := range op.Descriptor().Args {
		if a.Key == anchorleak.ArgCorpus {
			out := make(map[string]string, len(named)+1)
			for k, v := range named {
				out[k] = v
			}
			out[anchorleak.ArgCorpus] = s.defaultCorpus
			return out
		}
	}
	return named
}

// respondOperationError maps err to a status code. The message is passed
// through unchanged.
func respondOperationError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, err.Error())
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, codeInvalidInput, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, codeOperationFailed, err.Error())
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: timestamp(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: timestamp(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
