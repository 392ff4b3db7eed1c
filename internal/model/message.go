package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MessageType defines the payload carried by a message
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeVideo    MessageType = "video"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeDocument MessageType = "document"
	MessageTypeLocation MessageType = "location"
	MessageTypeCall     MessageType = "call"
)

// CallType distinguishes audio from video calls
type CallType string

const (
	CallTypeAudio CallType = "audio"
	CallTypeVideo CallType = "video"
)

// CallStatus is the outcome recorded on a call message or call log
type CallStatus string

const (
	CallStatusInitiated CallStatus = "initiated"
	CallStatusMissed    CallStatus = "missed"
	CallStatusAnswered  CallStatus = "answered"
	CallStatusRejected  CallStatus = "rejected"
)

// Message represents a persisted message in a room
type Message struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoomID      uuid.UUID   `json:"room_id" gorm:"type:uuid;index;not null"`
	SenderID    uuid.UUID   `json:"sender_id" gorm:"type:uuid;index;not null"`
	Content     *string     `json:"content" gorm:"type:text"`
	MessageType MessageType `json:"message_type" gorm:"type:varchar(20);default:'text'"`

	Image    string `json:"image,omitempty" gorm:"size:1000"`
	Video    string `json:"video,omitempty" gorm:"size:1000"`
	Audio    string `json:"audio,omitempty" gorm:"size:1000"`
	Document string `json:"document,omitempty" gorm:"size:1000"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	SentAt time.Time `json:"sent_at" gorm:"index"`
	IsRead bool      `json:"is_read" gorm:"default:false"`

	// Call fields, set only for message_type = call
	CallDuration *int       `json:"call_duration,omitempty"`
	CallType     CallType   `json:"call_type,omitempty" gorm:"type:varchar(10)"`
	CallStatus   CallStatus `json:"call_status,omitempty" gorm:"type:varchar(20)"`

	// Relations
	Sender User          `json:"sender" gorm:"foreignKey:SenderID"`
	Room   Room          `json:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	ReadBy []MessageRead `json:"read_by,omitempty" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// ErrPayloadMismatch is returned when a message carries a payload that does
// not match its declared type, or more than one payload.
var ErrPayloadMismatch = errors.New("message payload does not match message_type")

// ValidatePayload enforces that exactly one payload field is set and that it
// is consistent with the declared message type.
func (m *Message) ValidatePayload() error {
	hasContent := m.Content != nil && *m.Content != ""
	set := 0
	for _, s := range []string{m.Image, m.Video, m.Audio, m.Document} {
		if s != "" {
			set++
		}
	}
	hasLocation := m.Latitude != nil && m.Longitude != nil

	switch m.MessageType {
	case MessageTypeText:
		if !hasContent || set != 0 || hasLocation {
			return ErrPayloadMismatch
		}
	case MessageTypeImage:
		if m.Image == "" || set != 1 {
			return ErrPayloadMismatch
		}
	case MessageTypeVideo:
		if m.Video == "" || set != 1 {
			return ErrPayloadMismatch
		}
	case MessageTypeAudio:
		if m.Audio == "" || set != 1 {
			return ErrPayloadMismatch
		}
	case MessageTypeDocument:
		if m.Document == "" || set != 1 {
			return ErrPayloadMismatch
		}
	case MessageTypeLocation:
		if !hasLocation || set != 0 {
			return ErrPayloadMismatch
		}
	case MessageTypeCall:
		if m.CallType == "" || m.CallStatus == "" || set != 0 {
			return ErrPayloadMismatch
		}
	default:
		return ErrPayloadMismatch
	}
	return nil
}

// MessageRead records a single user's read acknowledgement of a message
type MessageRead struct {
	ID        uuid.UUID `json:"-" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MessageID uuid.UUID `json:"-" gorm:"type:uuid;uniqueIndex:idx_msg_reader;not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_msg_reader;not null"`
	ReadAt    time.Time `json:"read_at" gorm:"not null"`

	Message Message `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}
