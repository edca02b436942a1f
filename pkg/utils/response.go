package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body every endpoint returns. Clients read the
// detail field; status 401 always means the session is absent or expired.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   int    `json:"code"`
}

// SendError sends a generic error response
func SendError(c *gin.Context, statusCode int, detail string) {
	c.JSON(statusCode, ErrorResponse{
		Detail: detail,
		Code:   statusCode,
	})
}

// AbortWithError sends the error body and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, detail string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Detail: detail,
		Code:   statusCode,
	})
}

// SendInternalError sends a 500 internal server error
func SendInternalError(c *gin.Context, detail string) {
	SendError(c, http.StatusInternalServerError, detail)
}

// SendBadRequest sends a 400 bad request error
func SendBadRequest(c *gin.Context, detail string) {
	SendError(c, http.StatusBadRequest, detail)
}

// SendNotFound sends a 404 not found error
func SendNotFound(c *gin.Context, detail string) {
	SendError(c, http.StatusNotFound, detail)
}

// SendUnauthorized sends a 401 unauthorized error
func SendUnauthorized(c *gin.Context, detail string) {
	SendError(c, http.StatusUnauthorized, detail)
}

// SendForbidden sends a 403 forbidden error
func SendForbidden(c *gin.Context, detail string) {
	SendError(c, http.StatusForbidden, detail)
}

// SendConflict sends a 409 conflict error
func SendConflict(c *gin.Context, detail string) {
	SendError(c, http.StatusConflict, detail)
}

// SendBadGateway reports an upstream feed failure
func SendBadGateway(c *gin.Context, detail string) {
	SendError(c, http.StatusBadGateway, detail)
}

// SendServiceUnavailable reports data that has not been fetched yet
func SendServiceUnavailable(c *gin.Context, detail string) {
	SendError(c, http.StatusServiceUnavailable, detail)
}
