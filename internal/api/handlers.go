package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/storage"
	"github.com/georepute/domain-intelligence/internal/urlutil"
)

func (s *Server) handleAnalyzeRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// jobId and domainUrl are hard requirements; no job is created without
	// them.
	if req.JobID == "" {
		s.respondWithError(w, http.StatusBadRequest, "jobId is required")
		return
	}
	if req.DomainURL == "" {
		s.respondWithError(w, http.StatusBadRequest, "domainUrl is required")
		return
	}
	if _, err := url.ParseRequestURI(urlutil.EnsureScheme(req.DomainURL)); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "domainUrl is not a valid URL")
		return
	}

	if !req.Force && s.recentStore != nil {
		recent, err := s.recentStore.IsRecentlyAnalyzed(r.Context(), req.DomainURL)
		if err != nil {
			s.logger.Warn("recent-analysis check failed", zap.Error(err))
		} else if recent {
			s.metrics.IncJob("skipped")
			s.respondWithError(w, http.StatusConflict,
				"Domain was analyzed recently; pass force=true to re-run")
			return
		}
	}

	if err := s.jobStore.CreateJob(r.Context(), req); err != nil {
		s.logger.Error("failed to create job", zap.String("job_id", req.JobID), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not create job")
		return
	}

	// The request context dies with this response; the pipeline runs on
	// its own detached context.
	go s.orchestrator.Run(context.Background(), req)

	s.respondWithJSON(w, http.StatusAccepted, map[string]string{
		"jobId":  req.JobID,
		"status": "processing",
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		s.respondWithError(w, http.StatusBadRequest, "jobID path parameter is required")
		return
	}

	job, err := s.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		s.logger.Error("failed to get job status", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve job status")
		return
	}

	s.respondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := s.jobStore.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := s.recentStore.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] != "healthy" || healthStatus["redis"] != "healthy" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}

	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
