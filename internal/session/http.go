package session

import (
	"net/http"

	httperrors "github.com/gokatarajesh/mymath-exams/pkg/http/errors"
)

// HandleEndVisit handles DELETE /v1/visit and discards the visit's state.
func (s *Store) HandleEndVisit(w http.ResponseWriter, r *http.Request) {
	visitID := VisitID(r.Context())
	if visitID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "No active visit")
		return
	}
	if err := s.Clear(r.Context(), visitID); err != nil {
		s.logger.Error().Err(err).Str("visit_id", visitID).Msg("clear visit failed")
		httperrors.RespondInternalError(w, "Failed to end visit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
