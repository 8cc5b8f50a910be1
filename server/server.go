// Package server exposes the generator as an HTTP JSON service.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"congruent/httperror"
	"congruent/lcg"
)

const maxBodyBytes = 1 << 20

// field accepts either a JSON string or a JSON number and keeps its text so
// that the deriver can report non-integers itself.
type field string

func (f *field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = field(s)
	default:
		*f = field(b)
	}
	return nil
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Seed    field      `json:"seed"`
	K       field      `json:"k"`
	G       field      `json:"g"`
	C       field      `json:"c"`
	N       field      `json:"n"`
	Policy  lcg.Policy `json:"policy"`
	Confirm bool       `json:"confirm"`
}

func (r GenerateRequest) raw() lcg.RawInput {
	return lcg.RawInput{
		Seed: string(r.Seed),
		K:    string(r.K),
		G:    string(r.G),
		C:    string(r.C),
		N:    string(r.N),
	}
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

type Server struct {
	gen    *lcg.Generator
	logger *slog.Logger
	mux    *http.ServeMux
}

func New(gen *lcg.Generator, logger *slog.Logger) *Server {
	s := &Server{gen: gen, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("/generate", s.handleGenerate)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})
	return s
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return Decorate([]string{"/healthz"}, s.logger, s.mux)
}

// ListenAndServe serves Handler on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving %s: %w", addr, err)
	}
	return nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, httperror.MethodNotAllowed("use POST"))
		return
	}

	var req GenerateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, httperror.BadRequestf("malformed request body: %v", err))
		return
	}

	policy := req.Policy
	if policy == "" {
		policy = s.gen.Config().Policy
	}
	confirm := func(int) bool { return req.Confirm }

	result, err := s.gen.GenerateWithPolicy(req.raw(), policy, confirm)
	if err != nil {
		s.writeError(w, classify(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// classify maps generator errors onto HTTP errors.
func classify(err error) *httperror.Error {
	var verr *lcg.ValidationError
	switch {
	case errors.As(err, &verr):
		return httperror.UnprocessableEntity("invalid parameters").WithDetails(verr.Problems)
	case errors.Is(err, lcg.ErrNotConfirmed):
		return httperror.Conflict("confirmation required: resend with \"confirm\": true")
	default:
		return httperror.From(err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, he *httperror.Error) {
	if he.Code() >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", he)
	}
	writeJSON(w, he.Code(), errorResponse{Error: he.Message(), Problems: he.Details()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
