package member

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/djtrip/backend/internal/middleware"
	"github.com/djtrip/backend/internal/response"
)

// Handler holds HTTP handlers for member endpoints.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new member Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// GetMe godoc
//
//	@Summary		Get current member
//	@Description	Returns the member record of the caller, creating it on first access.
//	@Tags			members
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Member}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/members/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.MemberID(r.Context())
	if memberID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	m, err := h.svc.GetByID(r.Context(), memberID)
	if h.svc.IsNotFound(err) {
		m, err = h.svc.Ensure(r.Context(), memberID, middleware.MemberNickname(r.Context()))
	}
	if err != nil {
		h.log.Error("get member failed", zap.String("member_id", memberID), zap.Error(err))
		response.InternalError(w)
		return
	}

	response.OK(w, m)
}
