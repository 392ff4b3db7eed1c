package model

import (
	"time"

	"github.com/google/uuid"
)

// MediaType classifies an uploaded blob
type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeDocument MediaType = "document"
)

// MediaFile is a blob stored in the external object store, addressed by
// public_id. The row does not own message references to its URL.
type MediaFile struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	FileURL       string    `json:"file_url" gorm:"size:1000"`
	MediaType     MediaType `json:"media_type" gorm:"type:varchar(20);not null"`
	PublicID      string    `json:"public_id" gorm:"size:255;index"`
	Size          int64     `json:"size"`
	FileExtension string    `json:"file_extension" gorm:"size:20"`
	UploadedAt    time.Time `json:"uploaded_at"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
