package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentara/rentara-api/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid lease parameters", services.ErrInvalidLeaseParameters, http.StatusUnprocessableEntity},
		{"invalid state", services.ErrInvalidState, http.StatusUnprocessableEntity},
		{"invalid password", services.ErrInvalidPassword, http.StatusUnprocessableEntity},
		{"not found", services.ErrEntityNotFound, http.StatusNotFound},
		{"access denied", services.ErrAccessDenied, http.StatusForbidden},
		{"concurrent modification", services.ErrConcurrentModification, http.StatusConflict},
		{"duplicate", services.ErrDuplicate, http.StatusConflict},
		{"storage unavailable", services.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestRespondError_WrappedErrorsKeepTheirStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := fmt.Errorf("%w: lease 42", services.ErrAccessDenied)
	respondError(c, wrapped)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "lease 42")
}
