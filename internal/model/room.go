package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// RoomType defines what kind of conversation a room holds
type RoomType string

const (
	RoomTypeDirect RoomType = "direct"
	RoomTypeGroup  RoomType = "group"
	RoomTypeVideo  RoomType = "video"
)

// Room represents a conversation (direct message, group chat, or video room)
type Room struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"size:200;index"`
	RoomType  RoomType  `json:"room_type" gorm:"type:varchar(20);default:'direct'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	// MaxParticipants of 0 means unbounded. No column default: GORM drops
	// zero-valued fields that carry one, which would silently cap every
	// room created as unbounded.
	MaxParticipants int    `json:"max_participants"`
	ProfileImage    string `json:"profile_image,omitempty" gorm:"size:500"`

	// Relations
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	LastMessage  *Message      `json:"last_message,omitempty" gorm:"-"`
}

// DirectRoomName derives the canonical name for a direct room between two
// users. Usernames are sorted so both orderings map to the same room.
func DirectRoomName(usernameA, usernameB string) string {
	names := []string{usernameA, usernameB}
	sort.Strings(names)
	return fmt.Sprintf("Chat between %s and %s", names[0], names[1])
}

// Participant represents a user's membership in a room
type Participant struct {
	ID         uuid.UUID  `json:"-" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_room_user;not null"`
	RoomID     uuid.UUID  `json:"room_id" gorm:"type:uuid;uniqueIndex:idx_room_user;not null"`
	JoinedAt   time.Time  `json:"joined_at"`
	LastActive *time.Time `json:"last_active,omitempty"`
	IsAdmin    bool       `json:"is_admin" gorm:"default:false"`
	IsMuted    bool       `json:"is_muted" gorm:"default:false"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
	Room Room `json:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// onlineWindow is how recently last_active must be for a participant to
// count as online.
const onlineWindow = 5 * time.Minute

// IsOnline reports whether the participant was active within the last five
// minutes.
func (p *Participant) IsOnline(now time.Time) bool {
	return p.LastActive != nil && now.Sub(*p.LastActive) < onlineWindow
}
