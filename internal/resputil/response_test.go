package resputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, fn func(c *gin.Context)) (int, Response[json.RawMessage]) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var resp Response[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestSuccessEnvelope(t *testing.T) {
	code, resp := perform(t, func(c *gin.Context) {
		Success(c, gin.H{"id": 1})
	})

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, OK, resp.Code)
	assert.JSONEq(t, `{"id":1}`, string(resp.Data))
}

func TestErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(c *gin.Context)
		httpCode int
		code     ErrorCode
	}{
		{"bad request", func(c *gin.Context) { BadRequestError(c, "bad") }, http.StatusBadRequest, InvalidRequest},
		{"conflict", func(c *gin.Context) { ConflictError(c, "dup") }, http.StatusBadRequest, Conflict},
		{"invariant", func(c *gin.Context) { InvariantError(c, "range") }, http.StatusBadRequest, InvariantViolation},
		{"not found", func(c *gin.Context) { NotFoundError(c, "gone") }, http.StatusNotFound, RecordNotFound},
		{"forbidden", func(c *gin.Context) { ForbiddenError(c, "no") }, http.StatusForbidden, UserNotAllowed},
		{"internal", func(c *gin.Context) { Error(c, "boom", NotSpecified) }, http.StatusInternalServerError, NotSpecified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := perform(t, tt.fn)
			assert.Equal(t, tt.httpCode, code)
			assert.Equal(t, tt.httpCode, resp.Status)
			assert.Equal(t, tt.code, resp.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}
