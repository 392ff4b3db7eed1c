package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ========== Auth DTOs ==========

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserRef `json:"user"`
}

// ========== Room DTOs ==========

type CreateRoomRequest struct {
	Name            string   `json:"name" binding:"required,max=200"`
	RoomType        RoomType `json:"room_type" binding:"required,oneof=direct group video"`
	MaxParticipants int      `json:"max_participants" binding:"min=0"`
	ProfileImage    string   `json:"profile_image" binding:"max=500"`
}

type AddParticipantRequest struct {
	UserID   *uuid.UUID `json:"user_id"`
	Username string     `json:"username"`
}

type StartCallRequest struct {
	CallType CallType `json:"call_type" binding:"omitempty,oneof=audio video"`
}

type FindDirectRequest struct {
	Username1 string `json:"username1" binding:"required"`
	Username2 string `json:"username2" binding:"required"`
}

// ========== Message DTOs ==========

type SendMessageRequest struct {
	RoomID      uuid.UUID   `json:"room_id" binding:"required"`
	Content     *string     `json:"content"`
	MessageType MessageType `json:"message_type"`
	Image       string      `json:"image"`
	Video       string      `json:"video"`
	Audio       string      `json:"audio"`
	Document    string      `json:"document"`
	Latitude    *float64    `json:"latitude"`
	Longitude   *float64    `json:"longitude"`
	CallType    CallType    `json:"call_type"`
	CallStatus  CallStatus  `json:"call_status"`
}

type MessageListRequest struct {
	RoomID string `form:"room_id" binding:"required"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=100"`
}

// ========== Incoming-call DTOs ==========

type CreateIncomingCallRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	RoomID      uuid.UUID `json:"room_id" binding:"required"`
	CallType    CallType  `json:"call_type" binding:"required,oneof=audio video"`
	DeviceToken string    `json:"device_token"`
}

type UpdateIncomingCallRequest struct {
	Status NotificationStatus `json:"status" binding:"required,oneof=seen accepted declined missed"`
}

// ========== Media DTOs ==========

type MediaUploadResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FileURL   string    `json:"file_url"`
	MediaType MediaType `json:"media_type"`
	PublicID  string    `json:"public_id"`
}

// ========== WebRTC config ==========

type WebRTCConfigResponse struct {
	RoomConfig       *Room          `json:"room_config"`
	ICEServers       []ICEServer    `json:"ice_servers"`
	MediaConstraints map[string]any `json:"media_constraints"`
	Token            string         `json:"token"`
}

type ICEServer struct {
	URLs       string `json:"urls"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

// ========== WebSocket frames ==========

// Frame is one inbound WebSocket frame. Fields are populated per Type; the
// dispatcher ignores fields that the frame type does not use.
type Frame struct {
	Type string `json:"type"`

	// text/media messages
	Content string `json:"content,omitempty"`
	Caption string `json:"caption,omitempty"`
	Image   string `json:"image,omitempty"`
	Video   string `json:"video,omitempty"`
	Audio   string `json:"audio,omitempty"`

	// typing
	IsTyping bool `json:"is_typing,omitempty"`

	// read receipts
	MessageID string `json:"message_id,omitempty"`

	// calls
	CallType     CallType   `json:"call_type,omitempty"`
	CallDuration *int       `json:"call_duration,omitempty"`
	CallStatus   CallStatus `json:"call_status,omitempty"`
	InvitationID string     `json:"invitation_id,omitempty"`
	Response     string     `json:"response,omitempty"`

	// incoming-call lifecycle
	NotificationID string             `json:"notification_id,omitempty"`
	Status         NotificationStatus `json:"status,omitempty"`

	// WebRTC signaling, relayed opaque
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	IsSharing bool            `json:"is_sharing,omitempty"`
}

// Outbound frame type names
const (
	FrameChatMessage            = "chat_message"
	FrameTypingStatus           = "typing_status"
	FrameCallNotification       = "call_notification"
	FrameCallResponse           = "call_response"
	FrameCallInvitation         = "call_invitation"
	FrameIncomingCall           = "incoming_call"
	FrameCallNotificationUpdate = "call_notification_update"
	FrameParticipantAdded       = "participant_added"
	FrameMessageRead            = "message_read"
	FrameUserJoined             = "user_joined"
	FrameUserLeft               = "user_left"
	FramePeerJoined             = "peer_joined"
	FramePeerLeft               = "peer_left"
	FrameOffer                  = "offer"
	FrameAnswer                 = "answer"
	FrameICECandidate           = "ice_candidate"
	FrameScreenShare            = "screen_share"
	FrameError                  = "error"
)

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
