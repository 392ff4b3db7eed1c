package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/media"
	"github.com/startuphub/backend/internal/middleware"
	"github.com/startuphub/backend/internal/model"
)

// MediaHandler handles media upload and management endpoints
type MediaHandler struct {
	mediaService *media.Service
}

func NewMediaHandler(mediaService *media.Service) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// List godoc
// @Summary List the principal's uploads
// @Tags Media
// @Produce json
// @Param width query int false "Resize width"
// @Param height query int false "Resize height"
// @Success 200 {array} model.MediaFile
// @Router /communication/media [get]
func (h *MediaHandler) List(c *gin.Context) {
	principal := middleware.Principal(c)
	width, height := sizeParams(c)

	files, err := h.mediaService.List(principal.ID, width, height)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// Get godoc
// @Summary Retrieve one upload
// @Tags Media
// @Produce json
// @Param id path string true "Media ID"
// @Param width query int false "Resize width"
// @Param height query int false "Resize height"
// @Success 200 {object} model.MediaFile
// @Failure 404 {object} model.ErrorResponse
// @Router /communication/media/{id} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid media id"})
		return
	}
	width, height := sizeParams(c)

	file, err := h.mediaService.Get(id, width, height)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// Upload godoc
// @Summary Upload a media file
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param media_type formData string true "image, video, audio, or document"
// @Success 201 {object} model.MediaUploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /communication/media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	principal := middleware.Principal(c)

	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	mediaType := model.MediaType(c.PostForm("media_type"))

	file, err := h.mediaService.Upload(c.Request.Context(), principal.ID, mediaType, name, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.MediaUploadResponse{
		ID:        file.ID,
		Name:      file.Name,
		FileURL:   file.FileURL,
		MediaType: file.MediaType,
		PublicID:  file.PublicID,
	})
}

// Replace godoc
// @Summary Replace the blob behind an upload
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Media ID"
// @Param file formData file true "File"
// @Success 200 {object} model.MediaFile
// @Router /communication/media/{id} [put]
func (h *MediaHandler) Replace(c *gin.Context) {
	principal := middleware.Principal(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid media id"})
		return
	}

	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	file, err := h.mediaService.Replace(c.Request.Context(), id, principal.ID, name, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// Delete godoc
// @Summary Delete an upload and its blob
// @Tags Media
// @Produce json
// @Param id path string true "Media ID"
// @Success 200 {object} model.SuccessResponse
// @Router /communication/media/{id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	principal := middleware.Principal(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid media id"})
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), id, principal.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "media deleted"})
}

// readUpload pulls the multipart file out of the request; the media gateway
// enforces the size cap
func (h *MediaHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "file is required"})
		return "", nil, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "unreadable file"})
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "unreadable file"})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

func sizeParams(c *gin.Context) (int, int) {
	width, _ := strconv.Atoi(c.Query("width"))
	height, _ := strconv.Atoi(c.Query("height"))
	return width, height
}
