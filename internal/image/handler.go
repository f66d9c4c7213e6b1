package image

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/djtrip/backend/internal/response"
)

// formField is the multipart field carrying the uploaded file.
const formField = "file"

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc      *Service
	maxBytes int64
	log      *zap.Logger
}

// NewHandler creates a new image Handler. Request bodies above maxBytes are rejected.
func NewHandler(svc *Service, maxBytes int64, log *zap.Logger) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes, log: log}
}

// Upload godoc
//
//	@Summary		Upload image
//	@Description	Store a jpg, jpeg, png or heic image and return its public URL.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Image file"
//	@Success		201		{object}	response.Envelope{data=UploadResponse}
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/images [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	src, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "file exceeds upload limit")
			return
		}
		response.BadRequest(w, "multipart field \"file\" is required")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.BadRequest(w, "could not read uploaded file")
		return
	}

	res, err := h.svc.UploadImage(r.Context(), File{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, res)
}

// Delete godoc
//
//	@Summary		Delete image
//	@Description	Remove a previously uploaded image by its storage key.
//	@Tags			images
//	@Security		BearerAuth
//	@Param			key	path	string	true	"Storage key"
//	@Success		204
//	@Failure		400	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Router			/images/{key} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		response.BadRequest(w, "invalid image key")
		return
	}

	if err := h.svc.Delete(r.Context(), key); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := KindOf(err)
	switch {
	case IsValidation(err):
		response.Coded(w, http.StatusBadRequest, kind.String(), messages[kind])
		return
	case kind == 0:
		response.InternalError(w)
	default:
		response.Coded(w, http.StatusBadGateway, kind.String(), messages[kind])
	}
	h.log.Error("image request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
}
