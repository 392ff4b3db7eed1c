package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/startuphub/backend/internal/media"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/service"
	"gorm.io/gorm"
)

// respondError maps service errors to HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, media.ErrInvalidMedia):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotParticipant), errors.Is(err, media.ErrNotOwner):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "not found"})
	case errors.Is(err, service.ErrRoomFull):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
	}
}
