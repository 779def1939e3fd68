package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	tterrors "github.com/epitools/tracetab/pkg/errors"
)

// ctxKey is the type for context keys used in this package.
type ctxKey int

// requestIDKey is the context key under which the request ID is stored.
const requestIDKey ctxKey = 0

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps structured error codes onto HTTP status codes. Collection
// violations are 422: the body parsed, the document is just not flattenable.
// Store and cache failures are 503 since the backend may recover.
func statusFor(code tterrors.Code) int {
	switch code {
	case tterrors.ErrCodeInvalidInput, tterrors.ErrCodeInvalidFormat,
		tterrors.ErrCodeInvalidLabel, tterrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case tterrors.ErrCodeInvalidCollectionShape, tterrors.ErrCodeInvalidCollectionElement,
		tterrors.ErrCodeInvalidDirection:
		return http.StatusUnprocessableEntity
	case tterrors.ErrCodeNotFound, tterrors.ErrCodeFileNotFound, tterrors.ErrCodeResultNotFound:
		return http.StatusNotFound
	case tterrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case tterrors.ErrCodeCache, tterrors.ErrCodeStore:
		return http.StatusServiceUnavailable
	case tterrors.ErrCodeInvalidConfig, tterrors.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a JSON error response. Internal errors are
// logged with their cause but reported to the client without it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := tterrors.GetCode(err)
	if code == "" {
		code = tterrors.ErrCodeInternal
	}
	status := statusFor(code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	var resp errorResponse
	resp.Error.Code = string(code)
	resp.Error.Message = tterrors.UserMessage(err)
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		resp.RequestID = id
	}
	writeJSON(w, status, resp)
}

// writeJSON renders v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// bytesReader adapts a raw JSON document to the pipeline's reader input.
func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

// extractRows pulls the rows array out of a JSON table artifact.
func extractRows(artifact []byte) json.RawMessage {
	var doc struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(artifact, &doc); err != nil || doc.Rows == nil {
		return json.RawMessage("[]")
	}
	return doc.Rows
}
