// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers can report a failure in one call.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs an internal failure and renders a 500-style error
// page with userMsg. backURL may be empty; the page resolves a fallback.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	w.WriteHeader(http.StatusInternalServerError)
	RenderMessage(w, r, "Something went wrong", userMsg, backURL)
}

// LogBadRequest logs a client error and renders a 400-style error page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	w.WriteHeader(http.StatusBadRequest)
	RenderMessage(w, r, "Invalid request", userMsg, backURL)
}

// RenderMessage renders the shared error page with an arbitrary title and
// message without logging anything.
func RenderMessage(w http.ResponseWriter, r *http.Request, title, msg, backURL string) {
	data := pageData{
		Title:   title,
		Message: msg,
		BackURL: backURL,
	}
	if data.BackURL == "" {
		data.BackURL = "/"
	}
	renderWithUser(w, r, &data)
}
