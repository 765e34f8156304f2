package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/invoice-manager/auth"
	"github.com/diewo77/invoice-manager/httpx"
	"github.com/diewo77/invoice-manager/internal/services"
	"github.com/rs/zerolog"
)

func currentUser(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return 0, false
	}
	return uint(id), true
}

// writeError maps service errors onto status codes. Anything unexpected is
// logged and reported as db_error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", ve.Violations)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInUse):
		httpx.JSONError(w, http.StatusConflict, "in_use", nil)
	case errors.Is(err, httpx.ErrBadRequestBody):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
	}
}
