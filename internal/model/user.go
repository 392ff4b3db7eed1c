package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Registration and profile editing happen in a
// separate system; this service only authenticates and references users.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Password  string    `json:"-" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRef is the compact user shape embedded in wire envelopes.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Ref returns the wire shape of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username}
}

// AuthToken is an opaque API token, looked up on every request.
type AuthToken struct {
	Key       string    `json:"-" gorm:"primaryKey;size:64"`
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `json:"-"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
