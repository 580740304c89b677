// Package server exposes the recommendation service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/martin-coser/ArqViewBack-sub000/internal/common/errors"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/logger"
	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

const maxEventBodySize = 1 << 16

// RecommendationService is the use-case surface the HTTP layer exposes.
type RecommendationService interface {
	GenerateRecommendations(ctx context.Context, clientID int64) ([]models.Property, error)
	NotifyNewListing(ctx context.Context, propertyID int64) error
}

const propertyListedSchema = `{
	"type": "object",
	"required": ["propertyId"],
	"properties": {
		"propertyId": {"type": "integer", "minimum": 1}
	}
}`

type propertyListedEvent struct {
	PropertyID int64 `json:"propertyId"`
}

type Server struct {
	svc    RecommendationService
	logger logger.Logger
	schema *gojsonschema.Schema
	mux    *http.ServeMux
}

func New(svc RecommendationService, log logger.Logger) (*Server, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(propertyListedSchema))
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:    svc,
		logger: log,
		schema: schema,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /api/clients/{id}/recommendations", s.handleRecommendations)
	s.mux.HandleFunc("POST /api/events/property-listed", s.handlePropertyListed)
	return s, nil
}

// Handler returns the routed handler with request-id tagging applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.mux)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled", map[string]interface{}{
			"requestId": requestID,
			"method":    r.Method,
			"path":      r.URL.Path,
			"duration":  time.Since(start).String(),
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || clientID < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_CLIENT_ID", "client id must be a positive integer")
		return
	}

	recommendations, err := s.svc.GenerateRecommendations(r.Context(), clientID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			writeError(w, http.StatusNotFound, string(apperrors.ErrCodeClientNotFound), "client not found")
			return
		}
		s.logger.WithError(err).Error("recommendation generation failed", map[string]interface{}{
			"clientId": clientID,
		})
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not generate recommendations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clientId":        clientID,
		"recommendations": recommendations,
	})
}

func (s *Server) handlePropertyListed(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidEventPayload), "could not read body")
		return
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil || !result.Valid() {
		details := "malformed JSON"
		if err == nil {
			descs := make([]string, len(result.Errors()))
			for i, desc := range result.Errors() {
				descs[i] = desc.String()
			}
			details = strings.Join(descs, "; ")
		}
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidEventPayload), details)
		return
	}

	var event propertyListedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidEventPayload), "malformed JSON")
		return
	}

	if err := s.svc.NotifyNewListing(r.Context(), event.PropertyID); err != nil {
		s.logger.WithError(err).Error("listing fan-out failed", map[string]interface{}{
			"propertyId": event.PropertyID,
		})
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not process listing event")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
