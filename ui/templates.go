package ui

import (
	"bytes"
	"net/http"
	"strings"

	"clinvarminer/internal/errors"
	"clinvarminer/internal/logging"

	"github.com/apex/log"
)

// renderTemplate executes a page template into a buffer first so a template
// error never leaves a half-written page behind.
func (a *App) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	logger := logging.FromContext(r.Context())

	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.WithError(err).WithField("template", name).Error("[Render] template failed")
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}

	if !strings.Contains(buf.String(), "</html>") {
		logger.WithField("template", name).Warn("[Render] page appears truncated")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.WithError(err).Debug("[Render] client went away")
	}
}

type errorPage struct {
	Page
	Status  int
	Message string
}

// renderError answers with the status of err and a short error page
func (a *App) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	logger := logging.FromContext(r.Context()).WithFields(log.Fields{"status": status, "code": errors.GetCode(err)})
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("[Handler] request failed")
	} else {
		logger.WithError(err).Debug("[Handler] request rejected")
	}

	message := http.StatusText(status)
	if status < http.StatusInternalServerError {
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}
	a.renderTemplate(w, r, status, "error.html", errorPage{
		Page:    a.page(r, http.StatusText(status)),
		Status:  status,
		Message: message,
	})
}
