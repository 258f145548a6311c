package identity

import (
	"net/http"

	"github.com/stillwater/lodge/internal/response"
)

// CurrentSessionHandler godoc
//
//	@Summary		Current session
//	@Description	Returns the identity verified for the bearer token on this request.
//	@Tags			session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Session
//	@Failure		401	{object}	response.ErrorBody
//	@Router			/session [get]
func CurrentSessionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := CurrentSession(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	response.OK(w, s)
}
