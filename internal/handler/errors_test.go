package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/startuphub/backend/internal/media"
	"github.com/startuphub/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		code int
	}{
		{service.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("%w: bad payload", service.ErrValidation), http.StatusBadRequest},
		{media.ErrInvalidMedia, http.StatusBadRequest},
		{service.ErrUnauthenticated, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrNotParticipant, http.StatusForbidden},
		{media.ErrNotOwner, http.StatusForbidden},
		{service.ErrNotFound, http.StatusNotFound},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{service.ErrRoomFull, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		respondError(c, tt.err)
		assert.Equal(t, tt.code, rec.Code, "error %v", tt.err)
	}
}
