package media

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stillwater/lodge/internal/response"
)

// Handler holds HTTP handlers for the media registry.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new media Handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With(slog.String("component", "media"))}
}

type registerRequest struct {
	URL    string `json:"url"    example:"https://media.stillwaterlodge.com/gallery/1700000000000-lake.jpg"`
	Folder string `json:"folder" example:"gallery"`
}

// Register godoc
//
//	@Summary		Register uploaded media
//	@Description	Records the public URL of an object that was uploaded with a signed URL.
//	@Tags			gallery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Uploaded object"
//	@Success		201		{object}	Record
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/gallery [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	rec, err := h.svc.Register(r.Context(), req.URL, req.Folder)
	if err != nil {
		response.FromError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "media registered",
		slog.String("id", rec.ID),
		slog.String("folder", rec.Folder),
	)
	response.Created(w, rec)
}

// List godoc
//
//	@Summary		List media
//	@Description	Lists registered media, optionally filtered by category (folder). Not paginated.
//	@Tags			gallery
//	@Produce		json
//	@Param			category	query		string	false	"Folder to filter by"
//	@Param			folder		query		string	false	"Alias for category"
//	@Success		200			{array}		Record
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/gallery [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("category")
	if folder == "" {
		folder = r.URL.Query().Get("folder")
	}

	recs, err := h.svc.List(r.Context(), folder)
	if err != nil {
		response.FromError(w, r, h.logger, err)
		return
	}
	response.OK(w, recs)
}
