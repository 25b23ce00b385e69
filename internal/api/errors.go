package api

import (
	"github.com/gin-gonic/gin"
)

const (
	CodeMissingToken       = "MISSING_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInvalidRoute       = "INVALID_ROUTE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUpstreamError      = "UPSTREAM_ERROR"
	CodeStreamUnavailable  = "STREAM_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func sendError(c *gin.Context, status int, code, errorMessage, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   errorMessage,
		Message: detail,
		Code:    code,
	})
}
