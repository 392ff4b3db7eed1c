package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus is the lifecycle state of an incoming-call notification
type NotificationStatus string

const (
	NotificationPending  NotificationStatus = "pending"
	NotificationSeen     NotificationStatus = "seen"
	NotificationAccepted NotificationStatus = "accepted"
	NotificationDeclined NotificationStatus = "declined"
	NotificationMissed   NotificationStatus = "missed"
	NotificationExpired  NotificationStatus = "expired"
)

// IsTerminal reports whether the status is a sink: once reached, no further
// transition is allowed.
func (s NotificationStatus) IsTerminal() bool {
	switch s {
	case NotificationAccepted, NotificationDeclined, NotificationMissed, NotificationExpired:
		return true
	}
	return false
}

// NotificationTTL is how long an incoming-call notification stays answerable.
const NotificationTTL = 60 * time.Second

// IncomingCallNotification is the short-lived record behind the incoming-call
// ringing UI. Created by the caller, transitioned by the recipient or the
// expiry sweeper.
type IncomingCallNotification struct {
	ID          uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CallerID    uuid.UUID          `json:"caller_id" gorm:"type:uuid;index;not null"`
	RecipientID uuid.UUID          `json:"recipient_id" gorm:"type:uuid;index;not null"`
	RoomID      uuid.UUID          `json:"room_id" gorm:"type:uuid;index;not null"`
	CallType    CallType           `json:"call_type" gorm:"type:varchar(10);not null"`
	CreatedAt   time.Time          `json:"created_at"`
	ExpiresAt   time.Time          `json:"expires_at" gorm:"index;not null"`
	Status      NotificationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	DeviceToken string             `json:"device_token,omitempty" gorm:"size:255"`

	// Relations
	Caller    User   `json:"caller" gorm:"foreignKey:CallerID"`
	Recipient User   `json:"recipient" gorm:"foreignKey:RecipientID"`
	Room      Room   `json:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	RoomName  string `json:"room_name" gorm:"-"`
}

// IsExpired reports whether the notification deadline has passed.
func (n *IncomingCallNotification) IsExpired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

// InvitationStatus is the lifecycle state of a legacy call invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// CallInvitation is the legacy per-participant invite used by group and
// video rooms when a call is started over HTTP.
type CallInvitation struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InviterID uuid.UUID        `json:"inviter_id" gorm:"type:uuid;index;not null"`
	InviteeID uuid.UUID        `json:"invitee_id" gorm:"type:uuid;index;not null"`
	RoomID    uuid.UUID        `json:"room_id" gorm:"type:uuid;index;not null"`
	CallType  CallType         `json:"call_type" gorm:"type:varchar(10);not null"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at" gorm:"not null"`
	Status    InvitationStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`

	// Relations
	Inviter User `json:"inviter" gorm:"foreignKey:InviterID"`
	Invitee User `json:"invitee" gorm:"foreignKey:InviteeID"`
	Room    Room `json:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// CallLog records one placed call end to end
type CallLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CallerID   uuid.UUID  `json:"caller_id" gorm:"type:uuid;index;not null"`
	ReceiverID uuid.UUID  `json:"receiver_id" gorm:"type:uuid;index;not null"`
	CallType   CallType   `json:"call_type" gorm:"type:varchar(10);not null"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Duration   *int       `json:"duration,omitempty"`
	Status     CallStatus `json:"status" gorm:"type:varchar(20)"`

	// Relations
	Caller   User `json:"caller" gorm:"foreignKey:CallerID"`
	Receiver User `json:"receiver" gorm:"foreignKey:ReceiverID"`
}
