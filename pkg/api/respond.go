package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/overflow/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error code to an HTTP status. Errors without a code
// are logged and reported as internal errors without detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(err)
	msg := errors.UserMessage(err)
	if code == "" || status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func statusFor(err error) int {
	if errors.IsNotFound(err) {
		return http.StatusNotFound
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidScenario,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidID:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a size-limited JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}
