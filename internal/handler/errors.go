package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Anything without a
// status of its own is a store or server failure: it is logged here and the
// client only sees a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		notFound *domain.NotFoundError
		fsErr    *domain.FilesystemError
		httpErr  domain.HTTPError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &notFound) || errors.Is(err, domain.ErrNotFound):
		logger.Debug("not found", "path", r.URL.Path, "error", notFoundDetail(notFound, err))
		httputil.RespondRequestError(w, r, http.StatusNotFound, domain.NotFoundMessage)
	case errors.As(err, &fsErr):
		status := fsErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logger.Error("filesystem failure", "path", r.URL.Path, "op", fsErr.Op, "error", fsErr.Err)
		} else {
			logger.Warn("filesystem failure", "path", r.URL.Path, "op", fsErr.Op, "kind", fsErr.Kind, "error", fsErr.Err)
		}
		httputil.RespondRequestError(w, r, status, fsErr.Error())
	case errors.As(err, &tooLarge):
		httputil.RespondRequestError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &httpErr):
		httputil.RespondRequestError(w, r, httpErr.StatusCode(), httpErr.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondRequestError(w, r, http.StatusConflict, "resource conflict")
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httputil.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.RespondRequestError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func notFoundDetail(nf *domain.NotFoundError, err error) string {
	if nf != nil {
		return nf.Detail
	}
	return err.Error()
}

// respondNotFound is the answer for malformed ids, identical to a missing row
func respondNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.RespondRequestError(w, r, http.StatusNotFound, domain.NotFoundMessage)
}
