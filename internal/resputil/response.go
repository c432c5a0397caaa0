package resputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope for every API reply. Error replies carry
// success=false plus the HTTP status and a message; success replies carry the
// payload in data.
type Response[T any] struct {
	Success bool      `json:"success"`
	Status  int       `json:"status"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message,omitempty"`
	Data    T         `json:"data,omitempty"`
}

func wrapResponse(c *gin.Context, httpCode int, msg string, data any, code ErrorCode) {
	c.JSON(httpCode, Response[any]{
		Success: code == OK,
		Status:  httpCode,
		Code:    code,
		Message: msg,
		Data:    data,
	})
}

func Success(c *gin.Context, data any) {
	wrapResponse(c, http.StatusOK, "", data, OK)
}

func Created(c *gin.Context, data any) {
	wrapResponse(c, http.StatusCreated, "", data, OK)
}

// HTTPError replies with an explicit HTTP status.
func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	wrapResponse(c, httpCode, msg, nil, errorCode)
}

// Error is the catch-all 500 reply for unexpected storage or runtime failures.
func Error(c *gin.Context, msg string, errorCode ErrorCode) {
	wrapResponse(c, http.StatusInternalServerError, msg, nil, errorCode)
}

func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}

func ConflictError(c *gin.Context, msg string) {
	// Duplicate key/email is reported as 400 rather than 409, matching the
	// behavior clients already depend on.
	HTTPError(c, http.StatusBadRequest, msg, Conflict)
}

func InvariantError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvariantViolation)
}

func NotFoundError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusNotFound, msg, RecordNotFound)
}

func ForbiddenError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusForbidden, msg, UserNotAllowed)
}

func UnauthorizedError(c *gin.Context, msg string, errorCode ErrorCode) {
	HTTPError(c, http.StatusUnauthorized, msg, errorCode)
}
