package media

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/repository"
)

// ErrNotOwner is returned when a principal touches someone else's upload.
var ErrNotOwner = errors.New("media file belongs to another user")

// Service ties the gateway to the media_files table: every upload leaves a
// row behind, every delete removes the blob first.
type Service struct {
	gateway *Gateway
	repo    repository.MediaRepository
}

func NewService(gateway *Gateway, repo repository.MediaRepository) *Service {
	return &Service{gateway: gateway, repo: repo}
}

// Upload stores the blob and records it.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, mediaType model.MediaType, name string, data []byte) (*model.MediaFile, error) {
	res, err := s.gateway.Upload(ctx, mediaType, name, data)
	if err != nil {
		return nil, err
	}

	file := &model.MediaFile{
		Name:          name,
		FileURL:       res.URL,
		MediaType:     mediaType,
		PublicID:      res.PublicID,
		Size:          int64(len(data)),
		FileExtension: extension(name),
		UploadedAt:    time.Now(),
		UserID:        userID,
	}
	if err := s.repo.Create(file); err != nil {
		return nil, err
	}
	return file, nil
}

// List returns the principal's uploads, applying resize parameters when
// given.
func (s *Service) List(userID uuid.UUID, width, height int) ([]model.MediaFile, error) {
	files, err := s.repo.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	if width > 0 || height > 0 {
		for i := range files {
			files[i].FileURL = s.gateway.TransformationURL(files[i].PublicID, width, height, "fill", "")
		}
	}
	return files, nil
}

// Get returns one upload, applying resize parameters when given.
func (s *Service) Get(id uuid.UUID, width, height int) (*model.MediaFile, error) {
	file, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if width > 0 || height > 0 {
		file.FileURL = s.gateway.TransformationURL(file.PublicID, width, height, "fill", "")
	}
	return file, nil
}

// Replace swaps the blob behind an existing record for a new one of the same
// media type. The old blob is removed best-effort after the new upload
// succeeds.
func (s *Service) Replace(ctx context.Context, id, userID uuid.UUID, name string, data []byte) (*model.MediaFile, error) {
	file, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if file.UserID != userID {
		return nil, ErrNotOwner
	}

	res, err := s.gateway.Upload(ctx, file.MediaType, name, data)
	if err != nil {
		return nil, err
	}
	s.gateway.Delete(ctx, file.PublicID)

	file.Name = name
	file.FileURL = res.URL
	file.PublicID = res.PublicID
	file.Size = int64(len(data))
	file.FileExtension = extension(name)
	file.UploadedAt = time.Now()
	if err := s.repo.Update(file); err != nil {
		return nil, err
	}
	return file, nil
}

// Delete removes the blob, then the row. A store failure is logged by the
// gateway and does not block the row deletion.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	file, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if file.UserID != userID {
		return ErrNotOwner
	}

	s.gateway.Delete(ctx, file.PublicID)
	return s.repo.Delete(id)
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}
