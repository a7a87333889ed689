package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
	httperrors "github.com/gokatarajesh/mymath-exams/pkg/http/errors"
)

// ExamLookup confirms an exam exists.
type ExamLookup interface {
	GetExam(ctx context.Context, examID int64) (catalog.Exam, error)
}

// HTTPHandler exposes REST endpoints for leaderboard queries.
type HTTPHandler struct {
	svc    *Service
	exams  ExamLookup
	logger zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler.
func NewHTTPHandler(svc *Service, exams ExamLookup, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		exams:  exams,
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// Mount registers the leaderboard route on mux.
func (h *HTTPHandler) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/exams/{examID}/leaderboard", h.HandleGet)
}

// HandleGet responds with the best scores for an exam.
// Route: GET /v1/exams/{examID}/leaderboard?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	examID, err := strconv.ParseInt(r.PathValue("examID"), 10, 64)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeExamNotFound, "Exam not found")
		return
	}

	exam, err := h.exams.GetExam(r.Context(), examID)
	if errors.Is(err, catalog.ErrExamNotFound) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeExamNotFound, "Exam not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("exam_id", examID).Msg("load exam failed")
		httperrors.RespondInternalError(w, "Failed to load exam")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.svc.Top(r.Context(), examID, limit)
	if err != nil {
		h.logger.Error().Err(err).Int64("exam_id", examID).Msg("leaderboard fetch failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeLeaderboardFetchFailed, "Failed to fetch leaderboard")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"exam":    exam,
		"entries": entries,
	})
}
