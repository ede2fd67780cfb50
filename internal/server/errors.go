package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdraw/pkg/errors"
)

// handlerFunc is like http.HandlerFunc but returns an error, which wrap
// logs and writes as JSON.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// httpError carries an explicit status for failures that have no pkg/errors
// code, such as unknown routes.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func statusError(status int, format string, args ...any) error {
	return &httpError{status: status, msg: fmt.Sprintf(format, args...)}
}

func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.handleError(w, r, err)
		}
	}
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	logger := s.logger.With("method", r.Method, "path", r.URL.Path)
	if status >= 500 {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	body := map[string]string{"error": msg}
	if code != "" {
		body["code"] = string(code)
	}
	writeJSON(s.logger, w, status, body)
}

// classify maps an error to a status and, when available, its code.
func classify(err error) (int, errors.Code) {
	var he *httpError
	if stderrors.As(err, &he) {
		return he.status, ""
	}
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput
	}

	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRecords, errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidID:
		return http.StatusBadRequest, code
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound, code
	case errors.ErrCodeStructural, errors.ErrCodeUnsupportedInput:
		return http.StatusUnprocessableEntity, code
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, code
	case "":
		return http.StatusInternalServerError, errors.ErrCodeInternal
	default:
		return http.StatusInternalServerError, code
	}
}

func writeJSON(logger *log.Logger, w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("json marshal failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
