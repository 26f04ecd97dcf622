package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github-achievement-miner/internal/port"
	"github-achievement-miner/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultClassifyWindowDays = 30

// Handler exposes the achievement pipeline over HTTP.
type Handler struct {
	pipeline *service.PipelineService
	store    port.AchievementStore
	logger   *zap.Logger
}

func NewHandler(pipeline *service.PipelineService, store port.AchievementStore, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listAchievements handles GET /api/achievements?user=&limit=
func (h *Handler) listAchievements(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	achievements, err := h.store.ListTop(r.Context(), user, limit)
	if err != nil {
		h.logger.Error("listing achievements", zap.String("user", user), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list achievements")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":         user,
		"achievements": achievements,
	})
}

// classifyUser handles POST /api/users/{username}/classify?days=
func (h *Handler) classifyUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	days := defaultClassifyWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	since := time.Now().AddDate(0, 0, -days)
	stored, err := h.pipeline.Run(r.Context(), username, since)
	if err != nil {
		h.logger.Error("classification run failed", zap.String("user", username), zap.Error(err))
		writeError(w, http.StatusBadGateway, "classification run failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":   username,
		"stored": stored,
	})
}

// generateContent handles POST /api/achievements/{id}/content?format=
func (h *Handler) generateContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	format := port.ContentFormat(r.URL.Query().Get("format"))
	switch format {
	case port.FormatResumeBullet, port.FormatLinkedInPost, port.FormatTwitterThread:
	default:
		writeError(w, http.StatusBadRequest, "format must be one of resume_bullet, linkedin_post, twitter_thread")
		return
	}

	content, err := h.pipeline.GenerateContent(r.Context(), id, format)
	if err != nil {
		h.logger.Error("content generation failed", zap.String("achievement", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, "content generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"achievement_id": id,
		"format":         string(format),
		"content":        content,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
