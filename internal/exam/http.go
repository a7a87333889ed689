package exam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
	"github.com/gokatarajesh/mymath-exams/internal/session"
	httperrors "github.com/gokatarajesh/mymath-exams/pkg/http/errors"
)

const (
	warnNoSelection = "Choose an option before pressing next."
	warnNotAnswered = "Answer this question before moving on."
)

// IdentitySource answers who the caller is.
type IdentitySource interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUserID(ctx context.Context) uuid.UUID
}

// FlashStore carries one-shot warnings across a redirect.
type FlashStore interface {
	AddFlash(ctx context.Context, visitID, message string) error
	PopFlashes(ctx context.Context, visitID string) ([]string, error)
}

// HTTPHandlers exposes the exam flow over REST.
type HTTPHandlers struct {
	engine   *Engine
	identity IdentitySource
	flashes  FlashStore
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for exam endpoints.
func NewHTTPHandlers(engine *Engine, identity IdentitySource, flashes FlashStore, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		engine:   engine,
		identity: identity,
		flashes:  flashes,
		logger:   logger.With().Str("component", "exam_http").Logger(),
	}
}

// Mount registers the exam routes on mux.
func (h *HTTPHandlers) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/exams", h.ListExams)
	mux.HandleFunc("GET /v1/exams/{examID}/questions/{position}", h.GetQuestion)
	mux.HandleFunc("POST /v1/exams/{examID}/questions/{position}", h.SubmitAnswer)
	mux.HandleFunc("GET /v1/exams/{examID}/questions/{position}/answer", h.GetAcknowledgment)
	mux.HandleFunc("POST /v1/exams/{examID}/questions/{position}/answer", h.Advance)
	mux.HandleFunc("GET /v1/exams/{examID}/result", h.GetResult)
	mux.HandleFunc("GET /v1/exams/{examID}/attempts", h.ListAttempts)
}

func questionPath(examID int64, position int) string {
	return fmt.Sprintf("/v1/exams/%d/questions/%d", examID, position)
}

func answerPath(examID int64, position int) string {
	return questionPath(examID, position) + "/answer"
}

func resultPath(examID int64) string {
	return fmt.Sprintf("/v1/exams/%d/result", examID)
}

func (h *HTTPHandlers) identityOf(r *http.Request) Identity {
	ctx := r.Context()
	id := Identity{VisitID: session.VisitID(ctx)}
	if h.identity != nil && h.identity.IsAuthenticated(ctx) {
		id.UserID = h.identity.CurrentUserID(ctx)
	}
	return id
}

// ListExams handles GET /v1/exams
func (h *HTTPHandlers) ListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.engine.ListExams(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list exams failed")
		httperrors.RespondInternalError(w, "Failed to list exams")
		return
	}
	if exams == nil {
		exams = []catalog.Exam{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"exams": exams,
	})
}

// GetQuestion handles GET /v1/exams/{examID}/questions/{position}
func (h *HTTPHandlers) GetQuestion(w http.ResponseWriter, r *http.Request) {
	examID, position, ok := h.pathParams(w, r)
	if !ok {
		return
	}
	id := h.identityOf(r)

	entry, err := h.engine.Enter(r.Context(), id, examID, position)
	if err != nil {
		h.respondEngineError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}

	warnings, err := h.flashes.PopFlashes(r.Context(), id.VisitID)
	if err != nil {
		h.logger.Warn().Err(err).Msg("pop flashes failed")
	}
	if warnings == nil {
		warnings = []string{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"exam":     entry.Exam,
		"position": position,
		"total":    entry.Exam.QuestionCount,
		"question": map[string]interface{}{
			"id":      entry.Question.ID,
			"number":  entry.Question.Position,
			"text":    entry.Question.Text,
			"options": entry.Question.Options,
		},
		"answer":   entry.Answer,
		"warnings": warnings,
	})
}

type submitRequest struct {
	Selected *int `json:"selected"`
}

// SubmitAnswer handles POST /v1/exams/{examID}/questions/{position}
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	examID, position, ok := h.pathParams(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	id := h.identityOf(r)
	if _, err := h.engine.Submit(r.Context(), id, examID, position, req.Selected); err != nil {
		if errors.Is(err, ErrValidation) {
			h.redirectWithWarning(w, r, id, questionPath(examID, position), warnNoSelection)
			return
		}
		h.respondEngineError(w, r, err, httperrors.ErrCodeSubmitFailed)
		return
	}

	httperrors.RespondRedirect(w, answerPath(examID, position), "")
}

// GetAcknowledgment handles GET /v1/exams/{examID}/questions/{position}/answer
func (h *HTTPHandlers) GetAcknowledgment(w http.ResponseWriter, r *http.Request) {
	examID, position, ok := h.pathParams(w, r)
	if !ok {
		return
	}
	id := h.identityOf(r)

	ack, err := h.engine.Acknowledge(r.Context(), id, examID, position)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httperrors.RespondRedirect(w, questionPath(examID, position), "")
			return
		}
		h.respondEngineError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"exam":     ack.Exam,
		"position": position,
		"question": map[string]interface{}{
			"id":             ack.Question.ID,
			"number":         ack.Question.Position,
			"text":           ack.Question.Text,
			"options":        ack.Question.Options,
			"correct_option": ack.Question.CorrectOption,
			"explanation":    ack.Question.Explanation,
		},
		"answer": ack.Answer,
	})
}

// Advance handles POST /v1/exams/{examID}/questions/{position}/answer
func (h *HTTPHandlers) Advance(w http.ResponseWriter, r *http.Request) {
	examID, position, ok := h.pathParams(w, r)
	if !ok {
		return
	}
	id := h.identityOf(r)

	next, err := h.engine.Advance(r.Context(), id, examID, position)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			h.redirectWithWarning(w, r, id, questionPath(examID, position), warnNotAnswered)
			return
		}
		h.respondEngineError(w, r, err, httperrors.ErrCodeAdvanceFailed)
		return
	}

	if next.State == StateCompleted {
		httperrors.RespondRedirect(w, resultPath(examID), "")
		return
	}
	httperrors.RespondRedirect(w, questionPath(examID, next.Position), "")
}

// GetResult handles GET /v1/exams/{examID}/result
func (h *HTTPHandlers) GetResult(w http.ResponseWriter, r *http.Request) {
	examID, err := strconv.ParseInt(r.PathValue("examID"), 10, 64)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeExamNotFound, "Exam not found")
		return
	}

	result, err := h.engine.Result(r.Context(), h.identityOf(r), examID)
	if err != nil {
		h.respondEngineError(w, r, err, httperrors.ErrCodeResultFailed)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"attempt": result.Summary.AttemptLabel(),
		"summary": result.Summary,
		"answers": result.Answers,
	})
}

// ListAttempts handles GET /v1/exams/{examID}/attempts (requires auth)
func (h *HTTPHandlers) ListAttempts(w http.ResponseWriter, r *http.Request) {
	examID, err := strconv.ParseInt(r.PathValue("examID"), 10, 64)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeExamNotFound, "Exam not found")
		return
	}
	id := h.identityOf(r)
	if !id.Durable() {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	attempts, err := h.engine.History(r.Context(), id.UserID, examID)
	if err != nil {
		h.respondEngineError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}

	items := make([]map[string]interface{}, len(attempts))
	for i, a := range attempts {
		items[i] = map[string]interface{}{
			"id":         a.ID,
			"number":     a.Number,
			"score":      a.Score,
			"created_at": a.CreatedAt.Format(time.RFC3339),
		}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"exam_id":  examID,
		"attempts": items,
	})
}

func (h *HTTPHandlers) pathParams(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	examID, err := strconv.ParseInt(r.PathValue("examID"), 10, 64)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeExamNotFound, "Exam not found")
		return 0, 0, false
	}
	position, err := strconv.Atoi(r.PathValue("position"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Question number is not valid")
		return 0, 0, false
	}
	return examID, position, true
}

func (h *HTTPHandlers) redirectWithWarning(w http.ResponseWriter, r *http.Request, id Identity, location, warning string) {
	if err := h.flashes.AddFlash(r.Context(), id.VisitID, warning); err != nil {
		h.logger.Warn().Err(err).Msg("store flash failed")
	}
	httperrors.RespondRedirect(w, location, warning)
}

func (h *HTTPHandlers) respondEngineError(w http.ResponseWriter, r *http.Request, err error, failCode string) {
	switch {
	case errors.Is(err, ErrNoOpenAttempt):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNoOpenAttempt, err.Error())
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, err.Error())
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("exam request failed")
		httperrors.RespondError(w, http.StatusInternalServerError, failCode, "Internal error")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
