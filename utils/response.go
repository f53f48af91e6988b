package utils

import (
	"encoding/json"
	"net/http"

	"socialnet_server/apperr"

	"github.com/rs/zerolog/hlog"
)

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError maps err to its HTTP status and writes {"error": message}.
// Internal errors are logged and their details are not exposed.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("❌ Request failed")
	}
	WriteJSONResponse(w, status, map[string]string{
		"error": apperr.PublicMessage(err),
		"code":  apperr.CodeOf(err),
	})
}

// DecodeJSON decodes the request body into v, rejecting malformed payloads.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Invalid("invalid request payload")
	}
	return nil
}
