// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"

	"github.com/chainforge/optionsim/internal/cherr"
)

// statusOf maps an error kind to its HTTP status. Anything not
// explicitly client-attributable is a 500.
func statusOf(err error) int {
	switch cherr.KindOf(err) {
	case cherr.KindNotFound:
		return http.StatusNotFound
	case cherr.KindInvalidState, cherr.KindNotEnoughData:
		return http.StatusBadRequest
	case cherr.KindSimulator:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError renders the error body and logs server-side failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).
			Str("method", r.Method).Msg("request failed")
	} else {
		s.logger.Debug().Err(err).Str("path", r.URL.Path).
			Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// writeJSON renders v with the given status. Encoding failures are
// unrecoverable here; headers are already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
