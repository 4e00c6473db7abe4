package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/quickform/quickform/log"
)

// Every error response uses the same envelope the success paths use,
// so clients only ever parse one shape.
func jsonError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{
		"success": false,
		"error":   msg,
	})
}

// LogInternalError logs the full error under an operation code and
// answers 500 with a generic message: internal detail stays in the
// logs, never in the response body.
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	jsonError(w, r, http.StatusInternalServerError, "Server error")
}

// LogNotFound logs the missing id at debug level and answers 404.
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	jsonError(w, r, http.StatusNotFound, "Form not found")
}

// LogStatus logs an operation code at the given level and answers with
// the status' default text.
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	jsonError(w, r, status, http.StatusText(status))
}

// LogStatusMsg logs an operation code and message at the given level
// and answers with the formatted message.
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	jsonError(w, r, status, errMsg)
}
