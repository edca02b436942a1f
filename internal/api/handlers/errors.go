package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SammyBolger/NBA-Analytics/internal/picks"
	"github.com/SammyBolger/NBA-Analytics/internal/providers"
	"github.com/SammyBolger/NBA-Analytics/pkg/utils"
)

// respondError maps domain and feed errors onto status codes. Anything
// unrecognized is a 500 and is attached to the context for the request log.
func respondError(c *gin.Context, err error) {
	var apiErr *providers.APIError

	switch {
	case errors.Is(err, picks.ErrUnauthorized), errors.Is(err, providers.ErrUnauthorized):
		utils.SendUnauthorized(c, "Not authenticated")
	case errors.Is(err, picks.ErrPickNotFound):
		utils.SendNotFound(c, "Pick not found")
	case errors.Is(err, picks.ErrNotOwner):
		utils.SendForbidden(c, "Not authorized to delete this pick")
	case errors.Is(err, picks.ErrPickGraded):
		utils.SendConflict(c, "Pick has already been graded")
	case errors.Is(err, picks.ErrUnsupportedPickType), errors.Is(err, picks.ErrInvalidPick):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, providers.ErrFeedUnavailable):
		utils.SendServiceUnavailable(c, "Upstream feed unavailable")
	case errors.As(err, &apiErr):
		detail := apiErr.Detail
		if detail == "" {
			detail = http.StatusText(apiErr.StatusCode)
		}
		utils.SendBadGateway(c, detail)
	default:
		_ = c.Error(err)
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			utils.SendBadGateway(c, "Upstream feed did not respond")
			return
		}
		utils.SendInternalError(c, "Internal server error")
	}
}
