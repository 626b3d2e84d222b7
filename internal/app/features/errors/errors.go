// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
	"net/url"

	"github.com/ovibase/ovibase/internal/app/system/respond"
	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure and answers the client: JSON callers get
// {"error": userMsg}; form callers are redirected to backURL?error=userMsg;
// anything else gets a plain-text error.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// LogServerError logs at error level and responds 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Error(msg, fields(r, err)...)
	e.respond(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// LogBadRequest logs at warn level and responds 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Warn(msg, fields(r, err)...)
	e.respond(w, r, http.StatusBadRequest, userMsg, backURL)
}

// Reject answers a validation or conflict failure without logging.
func (e *ErrorLogger) Reject(w http.ResponseWriter, r *http.Request, status int, userMsg, backURL string) {
	e.respond(w, r, status, userMsg, backURL)
}

func (e *ErrorLogger) respond(w http.ResponseWriter, r *http.Request, status int, userMsg, backURL string) {
	if userMsg == "" {
		userMsg = http.StatusText(status)
	}
	switch {
	case respond.WantsJSON(r):
		respond.Error(w, status, userMsg)
	case backURL != "":
		respond.SeeOther(w, r, respond.WithQuery(backURL, url.Values{"error": {userMsg}}))
	default:
		http.Error(w, userMsg, status)
	}
}

func fields(r *http.Request, err error) []zap.Field {
	f := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		f = append(f, zap.Error(err))
	}
	return f
}
