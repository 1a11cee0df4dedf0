package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"guidetrack/internal/log"
	"guidetrack/internal/services"
	"guidetrack/internal/storage"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// ResponseBuilder assembles a response before writing it in one go.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
	err        error
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{statusCode: http.StatusOK, headers: make(map[string]string)}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body, b.err = json.Marshal(v)
	if b.err == nil {
		b.body = append(b.body, '\n')
	}
	return b
}

// Attachment sends content as a download named filename.
func (b *ResponseBuilder) Attachment(contentType, filename string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	b.body = content
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		writeErrorBody(w, http.StatusInternalServerError, "internal", "failed to encode response")
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewResponse().Status(status).JSON(v).Write(w)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	NewResponse().Status(status).JSON(errorEnvelope{Error: ErrorDetail{Code: code, Message: message}}).Write(w)
}

// writeError maps service errors to status codes. Anything unrecognised is
// logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeErrorBody(w, status, code, "internal server error")
		return
	}
	writeErrorBody(w, status, code, message(err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrAgencyInUse), errors.Is(err, services.ErrDuplicateName):
		return http.StatusConflict, "conflict"
	case services.IsValidation(err):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, storage.ErrInvalidBackup), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal"
}

// message drops the "validation failed: " prefix so clients see the rule
// that was broken.
func message(err error) string {
	var v *services.ValidationError
	if errors.As(err, &v) {
		return v.Err.Error()
	}
	return err.Error()
}
