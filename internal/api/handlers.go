// SPDX-License-Identifier: MIT

// Package api exposes the simulation service over HTTP. One resource,
// /api/v1/chain, drives the whole session lifecycle; the session id
// travels in the sessionid query parameter.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/log"
	"github.com/chainforge/optionsim/internal/session"
)

// Server holds the handler dependencies.
type Server struct {
	manager *session.Manager
	logger  zerolog.Logger
}

// NewServer builds the handler set around a manager.
func NewServer(manager *session.Manager) *Server {
	return &Server{
		manager: manager,
		logger:  log.WithComponent("api"),
	}
}

// Options tunes the router middleware.
type Options struct {
	// RateLimit is the per-client requests-per-minute cap; 0 disables.
	RateLimit int
	// TracingService enables OpenTelemetry spans when non-empty.
	TracingService string
}

// Router assembles the chi router with the full middleware stack.
func (s *Server) Router(opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(recoverer(s.logger))
	r.Use(requestLogger(s.logger))
	if opts.TracingService != "" {
		r.Use(tracing(opts.TracingService))
	}
	if opts.RateLimit > 0 {
		r.Use(rateLimit(opts.RateLimit, time.Minute))
	}

	r.Route("/api/v1/chain", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.getNextStep)
		r.Put("/", s.replaceSession)
		r.Patch("/", s.updateSession)
		r.Delete("/", s.deleteSession)
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/healthz", s.healthz)
	r.Get("/favicon.ico", favicon)
	return r
}

// sessionID extracts and parses the sessionid query parameter.
func sessionID(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("sessionid")
	if raw == "" {
		return uuid.Nil, cherr.InvalidState("sessionid query parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, cherr.InvalidState("invalid session id %q", raw)
	}
	return id, nil
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	params, err := req.Parameters()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.manager.CreateSession(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

func (s *Server) getNextStep(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, chain, err := s.manager.GetNextStep(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chainResponse(sess, chain, time.Now().UTC()))
}

func (s *Server) replaceSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	params, err := req.Parameters()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.manager.ReplaceSession(r.Context(), id, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	current, err := s.manager.GetSession(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.manager.UpdateSession(r.Context(), id, req.Merge(current.Parameters))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	existed, err := s.manager.DeleteSession(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !existed {
		s.writeError(w, r, cherr.NotFound("session %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{
		Message: "session deleted",
		ID:      id.String(),
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
