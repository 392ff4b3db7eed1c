package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// answerableStates are the notification states a transition may leave from.
var answerableStates = []model.NotificationStatus{
	model.NotificationPending,
	model.NotificationSeen,
}

// CallRepository abstracts persistence for call notifications, invitations,
// and call logs.
type CallRepository interface {
	CreateNotification(n *model.IncomingCallNotification) error
	FindNotificationByID(id uuid.UUID) (*model.IncomingCallNotification, error)
	ListActiveForRecipient(recipientID uuid.UUID) ([]model.IncomingCallNotification, error)
	TransitionNotification(id uuid.UUID, to model.NotificationStatus) (bool, error)
	MarkSeen(id uuid.UUID) (bool, error)
	ExpireOutdated(now time.Time) ([]model.IncomingCallNotification, error)
	CreateInvitation(inv *model.CallInvitation) error
	FindInvitationByID(id uuid.UUID) (*model.CallInvitation, error)
	ExpireOutdatedInvitations(now time.Time) error
	UpdateInvitationStatus(id uuid.UUID, status model.InvitationStatus) (bool, error)
	CreateCallLog(cl *model.CallLog) error
	FindOpenCallLog(a, b uuid.UUID) (*model.CallLog, error)
	CloseCallLog(id uuid.UUID, status model.CallStatus, endedAt time.Time, duration int) error
}

// CallRepo is the GORM implementation of CallRepository.
type CallRepo struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) *CallRepo {
	return &CallRepo{db: db}
}

// CreateNotification inserts a new incoming-call notification
func (r *CallRepo) CreateNotification(n *model.IncomingCallNotification) error {
	return r.db.Create(n).Error
}

// FindNotificationByID finds a notification with its caller, recipient and room
func (r *CallRepo) FindNotificationByID(id uuid.UUID) (*model.IncomingCallNotification, error) {
	var n model.IncomingCallNotification
	err := r.db.
		Preload("Caller").
		Preload("Recipient").
		Preload("Room").
		Where("id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListActiveForRecipient returns the recipient's pending and seen
// notifications, newest first
func (r *CallRepo) ListActiveForRecipient(recipientID uuid.UUID) ([]model.IncomingCallNotification, error) {
	notifications := []model.IncomingCallNotification{}
	err := r.db.
		Preload("Caller").
		Preload("Room").
		Where("recipient_id = ? AND status IN ?", recipientID, answerableStates).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// TransitionNotification moves a notification out of an answerable state.
// The conditional update makes concurrent transitions race-safe: exactly one
// caller wins, the rest see zero rows affected.
func (r *CallRepo) TransitionNotification(id uuid.UUID, to model.NotificationStatus) (bool, error) {
	res := r.db.Model(&model.IncomingCallNotification{}).
		Where("id = ? AND status IN ?", id, answerableStates).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

// MarkSeen moves a pending notification to seen. Seen to seen is a no-op, so
// only pending rows qualify.
func (r *CallRepo) MarkSeen(id uuid.UUID) (bool, error) {
	res := r.db.Model(&model.IncomingCallNotification{}).
		Where("id = ? AND status = ?", id, model.NotificationPending).
		Update("status", model.NotificationSeen)
	return res.RowsAffected > 0, res.Error
}

// ExpireOutdated bulk-moves every answerable notification past its deadline
// to expired and returns the affected rows so callers can fan out updates.
func (r *CallRepo) ExpireOutdated(now time.Time) ([]model.IncomingCallNotification, error) {
	var expired []model.IncomingCallNotification
	err := r.db.Model(&expired).
		Clauses(clause.Returning{}).
		Where("status IN ? AND expires_at <= ?", answerableStates, now).
		Update("status", model.NotificationExpired).Error
	return expired, err
}

// CreateInvitation inserts a call invitation
func (r *CallRepo) CreateInvitation(inv *model.CallInvitation) error {
	return r.db.Create(inv).Error
}

// FindInvitationByID finds a call invitation with its inviter and invitee
func (r *CallRepo) FindInvitationByID(id uuid.UUID) (*model.CallInvitation, error) {
	var inv model.CallInvitation
	err := r.db.
		Preload("Inviter").
		Preload("Invitee").
		Where("id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ExpireOutdatedInvitations bulk-moves pending invitations past their
// deadline to expired. No message is recorded for an expired invitation.
func (r *CallRepo) ExpireOutdatedInvitations(now time.Time) error {
	return r.db.Model(&model.CallInvitation{}).
		Where("status = ? AND expires_at <= ?", model.InvitationPending, now).
		Update("status", model.InvitationExpired).Error
}

// UpdateInvitationStatus moves a pending invitation to a new status
func (r *CallRepo) UpdateInvitationStatus(id uuid.UUID, status model.InvitationStatus) (bool, error) {
	res := r.db.Model(&model.CallInvitation{}).
		Where("id = ? AND status = ?", id, model.InvitationPending).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

// CreateCallLog inserts a call log row
func (r *CallRepo) CreateCallLog(cl *model.CallLog) error {
	return r.db.Create(cl).Error
}

// FindOpenCallLog returns the most recent call between two users that has
// not ended yet
func (r *CallRepo) FindOpenCallLog(a, b uuid.UUID) (*model.CallLog, error) {
	var cl model.CallLog
	err := r.db.
		Where("end_time IS NULL").
		Where("(caller_id = ? AND receiver_id = ?) OR (caller_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("start_time DESC").
		First(&cl).Error
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

// CloseCallLog records the end of a call
func (r *CallRepo) CloseCallLog(id uuid.UUID, status model.CallStatus, endedAt time.Time, duration int) error {
	return r.db.Model(&model.CallLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   status,
			"end_time": endedAt,
			"duration": duration,
		}).Error
}
