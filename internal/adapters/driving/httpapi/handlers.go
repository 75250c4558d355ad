package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// Accepted is the body of a 202 response to a queued job.
type Accepted struct {
	Status string `json:"status"`
	Job    string `json:"job"`
	Queued int    `json:"queued"`
}

type statusResponse struct {
	domain.SyncStatus
	Queued  int              `json:"queued"`
	History []domain.SyncRun `json:"history"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err)
		return
	}

	event, err := domain.ParseChangeEvent(body)
	if err != nil {
		logger.Warn("Rejected notification: %v", err)
		writeError(w, http.StatusBadRequest, "invalid_event", err)
		return
	}
	if event.ID == "" {
		event.ID = traceID(r.Context())
	}

	s.submit(w, r, domain.EventJob(event, domain.OriginHTTP))
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	graphID := r.URL.Query().Get("graph")
	if graphID == "" {
		s.submit(w, r, domain.FullReindexJob(domain.OriginHTTP))
		return
	}
	s.submit(w, r, domain.ReindexGraphJob(domain.GraphID(graphID), domain.OriginHTTP))
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, job domain.Job) {
	if err := s.queue.Submit(r.Context(), job); err != nil {
		if errors.Is(err, domain.ErrQueueClosed) {
			writeError(w, http.StatusServiceUnavailable, "queue_closed", err)
			return
		}
		writeError(w, http.StatusServiceUnavailable, "queue_unavailable", err)
		return
	}

	writeJSON(w, http.StatusAccepted, Accepted{
		Status: "accepted",
		Job:    string(job.Kind),
		Queued: s.queue.Len(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", domain.ErrInvalidInput)
			return
		}
		limit = n
	}

	history, err := s.engine.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history_unavailable", err)
		return
	}
	if history == nil {
		history = []domain.SyncRun{}
	}

	writeJSON(w, http.StatusOK, statusResponse{
		SyncStatus: s.engine.Status(),
		Queued:     s.queue.Len(),
		History:    history,
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Error: code, Reason: err.Error()})
}
