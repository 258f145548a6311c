package upload

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stillwater/lodge/internal/response"
)

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new upload Handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With(slog.String("component", "upload"))}
}

// SignedURL godoc
//
//	@Summary		Issue a signed upload URL
//	@Description	Returns a short-lived PUT URL for direct upload to object storage and the public URL the object will have.
//	@Tags			upload
//	@Accept			json
//	@Produce		json
//	@Param			x-api-key	header		string	false	"Shared upload key"
//	@Param			request		body		Request	true	"File to upload"
//	@Success		200			{object}	Grant
//	@Failure		400			{object}	response.ErrorBody
//	@Failure		401			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/upload/signed-url [post]
func (h *Handler) SignedURL(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	grant, err := h.svc.RequestGrant(r.Context(), req)
	if err != nil {
		response.FromError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "upload grant issued", slog.String("key", grant.ObjectKey))
	response.OK(w, grant)
}
