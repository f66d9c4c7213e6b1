package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/djtrip/backend/internal/member"
	"github.com/djtrip/backend/internal/middleware"
	"github.com/djtrip/backend/internal/response"
)

// MemberEnsurer registers the writer of a new review.
type MemberEnsurer interface {
	Ensure(ctx context.Context, id, nickname string) (*member.Member, error)
}

// Handler holds HTTP handlers for review endpoints.
type Handler struct {
	svc     *Service
	members MemberEnsurer
	log     *zap.Logger
}

// NewHandler creates a new review Handler.
func NewHandler(svc *Service, members MemberEnsurer, log *zap.Logger) *Handler {
	return &Handler{svc: svc, members: members, log: log}
}

// CreateReview godoc
//
//	@Summary		Create review
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateRequest	true	"Review"
//	@Success		201		{object}	response.Envelope{data=CreateResponse}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Router			/reviews [post]
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.MemberID(r.Context())
	if memberID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if _, err := h.members.Ensure(r.Context(), memberID, middleware.MemberNickname(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.CreateReview(r.Context(), req, memberID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, res)
}

// GetReview godoc
//
//	@Summary		Get review
//	@Description	Returns a review and counts the view.
//	@Tags			reviews
//	@Produce		json
//	@Param			id	path		int	true	"Review ID"
//	@Success		200	{object}	response.Envelope{data=GetResponse}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/reviews/{id} [get]
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}

	if err := h.svc.UpdateHits(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.GetReview(r.Context(), id, middleware.MemberID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, res)
}

// GetReviews godoc
//
//	@Summary		List reviews
//	@Tags			reviews
//	@Produce		json
//	@Param			page	query		int		false	"Page, starting at 1"
//	@Param			size	query		int		false	"Page size (max 50)"
//	@Param			keyword	query		string	false	"Matches title or content"
//	@Param			member	query		string	false	"Writer's member ID"
//	@Param			sort	query		string	false	"latest, hits or rating"
//	@Success		200		{object}	response.Envelope{data=ListResponse}
//	@Failure		400		{object}	response.Envelope
//	@Router			/reviews [get]
func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := optionalInt(q.Get("page"))
	if err != nil {
		response.BadRequest(w, "page must be an integer")
		return
	}
	size, err := optionalInt(q.Get("size"))
	if err != nil {
		response.BadRequest(w, "size must be an integer")
		return
	}

	res, err := h.svc.GetReviews(r.Context(), ListRequest{
		Page:     page,
		Size:     size,
		Keyword:  q.Get("keyword"),
		MemberID: q.Get("member"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, res)
}

// ModifyReview godoc
//
//	@Summary		Modify review
//	@Description	Updates the given fields of a review owned by the caller.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int				true	"Review ID"
//	@Param			request	body		ModifyRequest	true	"Fields to change"
//	@Success		200		{object}	response.Envelope{data=ModifyResponse}
//	@Failure		400		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/reviews/{id} [patch]
func (h *Handler) ModifyReview(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}

	var req ModifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	res, err := h.svc.ModifyReview(r.Context(), id, req, middleware.MemberID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, res)
}

// DeleteReview godoc
//
//	@Summary		Delete review
//	@Tags			reviews
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Review ID"
//	@Success		204
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/reviews/{id} [delete]
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteReview(r.Context(), id, middleware.MemberID(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func reviewID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		response.BadRequest(w, "review id must be a positive integer")
		return 0, false
	}
	return id, true
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, verr.Error())
	case h.svc.IsNotFound(err):
		response.NotFound(w, ErrNotFound.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, ErrForbidden.Error())
	case errors.Is(err, ErrConflict):
		response.Conflict(w, ErrConflict.Error())
	default:
		h.log.Error("review request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		response.InternalError(w)
	}
}
