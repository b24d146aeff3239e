// Package api exposes the analysis engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/cognicore/csinsight/internal/logging"
	"github.com/cognicore/csinsight/pkg/csinsight"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/report"
)

// SessionHeader carries the session ID on requests and responses.
const SessionHeader = "X-Session-ID"

const (
	maxUploadBytes  = 32 << 20
	shutdownTimeout = 10 * time.Second
)

// Server serves the analysis engine to browser sessions.
type Server struct {
	router   *chi.Mux
	engine   *csinsight.Engine
	sessions *csinsight.Sessions
	sweep    time.Duration
	addr     string
	logger   *slog.Logger
}

// NewServer builds the router. Sessions evicted under limits have their
// stored dataset and reports dropped.
func NewServer(addr string, engine *csinsight.Engine, limits csinsight.SessionOptions, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	logger = logging.OrDefault(logger)
	if limits.OnEvict == nil {
		limits.OnEvict = func(id string) {
			if err := engine.Forget(context.Background(), id); err != nil {
				logger.Warn("forgetting session", "session", id, "err", err)
			}
		}
	}
	if limits.TTL <= 0 {
		limits.TTL = csinsight.DefaultSessionTTL
	}

	s := &Server{
		router:   router,
		engine:   engine,
		sessions: csinsight.NewSessions(limits),
		sweep:    limits.TTL / 2,
		addr:     addr,
		logger:   logger,
	}

	router.Get("/health", s.health)
	router.Route("/api", func(r chi.Router) {
		r.Post("/upload-csv", s.uploadCSV)
		r.Post("/analyze", s.analyze)
		r.Get("/report", s.report)
		r.Get("/report/schema", s.schema)
		r.Post("/message", s.message)
		r.Post("/feedback", s.feedback)
		r.Post("/clear-history", s.clearHistory)
		r.Post("/clear-caches", s.clearCaches)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()
	go s.sweepSessions(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweepSessions evicts idle sessions that receive no further requests.
func (s *Server) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Info("idle sessions evicted", "count", n)
			}
		}
	}
}

// session resolves the request's session, issuing a new ID when the header
// is missing or not a UUID.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *csinsight.Session {
	id := r.Header.Get(SessionHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = ""
	}
	sess := s.sessions.Get(id)
	w.Header().Set(SessionHeader, sess.ID)
	return sess
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadCSV handles POST /api/upload-csv with a multipart "file" field.
func (s *Server) uploadCSV(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "File must be a CSV")
		return
	}
	if header.Size == 0 {
		writeError(w, http.StatusBadRequest, "No file content")
		return
	}

	summary, err := s.engine.LoadDataset(r.Context(), sess, header.Filename, file)
	if errors.Is(err, internalerr.ErrMissingColumn) {
		writeError(w, http.StatusBadRequest, summary)
		return
	}
	if err != nil {
		s.logger.Error("csv upload failed", "session", sess.ID, "file", header.Filename, "err", err)
		writeError(w, http.StatusBadRequest, "Error processing CSV: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": summary})
}

// analyze handles POST /api/analyze and returns the Markdown report.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": s.engine.Analyze(r.Context(), sess),
		"insights": sess.LearnedInsights(),
	})
}

// report handles GET /api/report and returns the structured report.
func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	rep, err := s.engine.AnalyzeReport(r.Context(), sess)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rep)
	case errors.Is(err, internalerr.ErrNoDataset):
		writeError(w, http.StatusNotFound, csinsight.MsgNoDataset)
	case errors.Is(err, internalerr.ErrNoData):
		writeError(w, http.StatusUnprocessableEntity, csinsight.MsgNoData)
	default:
		s.logger.Error("report failed", "session", sess.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "Error during analysis: "+err.Error())
	}
}

func (s *Server) schema(w http.ResponseWriter, r *http.Request) {
	b, err := report.Schema()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type messageRequest struct {
	Message string `json:"message"`
}

// message handles POST /api/message, one chat turn.
func (s *Server) message(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"response":         s.engine.Chat(r.Context(), sess, req.Message),
		"mode":             sess.Mode(),
		"prompt_finalized": sess.PromptFinalized(),
	})
}

type feedbackRequest struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// feedback handles POST /api/feedback, recording whether a message led to a
// useful answer.
func (s *Server) feedback(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	sess.LearnFromInteraction(req.Message, req.Success)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "insights": sess.LearnedInsights()})
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearHistory(s.session(w, r))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) clearCaches(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := s.engine.ClearCaches(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "All caches cleared successfully!"})
}
