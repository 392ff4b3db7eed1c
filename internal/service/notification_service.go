package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
	"github.com/startuphub/backend/internal/repository"
	"github.com/startuphub/backend/pkg/notification"
	"gorm.io/gorm"
)

const pushTimeout = 10 * time.Second

// NotificationService owns the incoming-call notification lifecycle: create,
// client transitions, and the expiry sweeper. All transitions, whether they
// arrive over HTTP or a WebSocket frame, funnel through Transition, and the
// conditional update in the repository linearizes concurrent attempts.
type NotificationService struct {
	callRepo repository.CallRepository
	roomRepo repository.RoomRepository
	msgRepo  repository.MessageRepository
	fabric   pubsub.Fabric
	push     notification.PushSender
	users    *UserCache
	interval time.Duration
}

func NewNotificationService(
	callRepo repository.CallRepository,
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	fabric pubsub.Fabric,
	push notification.PushSender,
	users *UserCache,
	sweepInterval time.Duration,
) *NotificationService {
	return &NotificationService{
		callRepo: callRepo,
		roomRepo: roomRepo,
		msgRepo:  msgRepo,
		fabric:   fabric,
		push:     push,
		users:    users,
		interval: sweepInterval,
	}
}

// Create opens a pending notification for the recipient and announces it on
// the recipient's user channel, plus the room channel for direct rooms.
func (s *NotificationService) Create(ctx context.Context, caller model.UserRef, req model.CreateIncomingCallRequest) (*model.IncomingCallNotification, error) {
	ok, err := s.roomRepo.IsParticipant(ctx, req.RoomID, caller.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	ok, err = s.roomRepo.IsParticipant(ctx, req.RoomID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: recipient is not a participant of the room", ErrValidation)
	}

	n := &model.IncomingCallNotification{
		CallerID:    caller.ID,
		RecipientID: req.RecipientID,
		RoomID:      req.RoomID,
		CallType:    req.CallType,
		ExpiresAt:   time.Now().Add(model.NotificationTTL),
		Status:      model.NotificationPending,
		DeviceToken: req.DeviceToken,
	}
	if err := s.callRepo.CreateNotification(n); err != nil {
		return nil, err
	}

	n, err = s.callRepo.FindNotificationByID(n.ID)
	if err != nil {
		return nil, err
	}
	n.RoomName = n.Room.Name

	publish(ctx, s.fabric, pubsub.UserGroup(n.RecipientID.String()), caller.ID.String(), map[string]any{
		"type":         model.FrameIncomingCall,
		"notification": n,
	})
	if n.Room.RoomType == model.RoomTypeDirect {
		publish(ctx, s.fabric, pubsub.RoomGroup(n.RoomID.String()), caller.ID.String(), map[string]any{
			"type":         model.FrameIncomingCall,
			"notification": n,
		})
	}

	if n.DeviceToken != "" {
		go s.sendPush(n)
	}

	return n, nil
}

// Transition moves a notification out of an answerable state on behalf of
// the recipient. Terminal states are fixed points: transitioning one returns
// the stored record unchanged. A transition requested past the deadline is
// forced to expired unless the target is missed.
//
// Every transition entry point funnels through here, so the target is
// validated here as well: clients may only request seen, accepted, declined
// or missed. Expired is reserved for the deadline.
func (s *NotificationService) Transition(ctx context.Context, principal model.UserRef, id uuid.UUID, target model.NotificationStatus) (*model.IncomingCallNotification, error) {
	switch target {
	case model.NotificationSeen, model.NotificationAccepted, model.NotificationDeclined, model.NotificationMissed:
	default:
		return nil, fmt.Errorf("%w: status must be one of seen, accepted, declined, missed", ErrValidation)
	}

	n, err := s.callRepo.FindNotificationByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if n.RecipientID != principal.ID {
		return nil, ErrForbidden
	}
	n.RoomName = n.Room.Name

	if n.Status.IsTerminal() {
		return n, nil
	}

	if n.IsExpired(time.Now()) && target != model.NotificationMissed {
		target = model.NotificationExpired
	}

	var won bool
	if target == model.NotificationSeen {
		won, err = s.callRepo.MarkSeen(id)
	} else {
		won, err = s.callRepo.TransitionNotification(id, target)
	}
	if err != nil {
		return nil, err
	}

	n, err = s.callRepo.FindNotificationByID(id)
	if err != nil {
		return nil, err
	}
	n.RoomName = n.Room.Name
	if !won {
		return n, nil
	}

	if target == model.NotificationAccepted {
		msg, err := s.recordAnsweredCall(n)
		if err != nil {
			log.Printf("notification %s: answered-call message: %v", n.ID, err)
		}
		publish(ctx, s.fabric, pubsub.UserGroup(n.CallerID.String()), principal.ID.String(), map[string]any{
			"type":         model.FrameCallNotificationUpdate,
			"notification": n,
		})
		if msg != nil {
			// no sender id: the answered-call announcement must reach
			// caller and recipient alike
			publish(ctx, s.fabric, pubsub.RoomGroup(n.RoomID.String()), "", map[string]any{
				"type": model.FrameCallNotification,
				"call": msg,
			})
		}
		return n, nil
	}

	publish(ctx, s.fabric, pubsub.UserGroup(n.CallerID.String()), principal.ID.String(), map[string]any{
		"type":         model.FrameCallNotificationUpdate,
		"notification": n,
	})
	return n, nil
}

// ListActive sweeps first, then returns the recipient's pending and seen
// notifications newest first
func (s *NotificationService) ListActive(ctx context.Context, recipientID uuid.UUID) ([]model.IncomingCallNotification, error) {
	if err := s.Sweep(ctx); err != nil {
		log.Printf("sweep before list: %v", err)
	}
	notifications, err := s.callRepo.ListActiveForRecipient(recipientID)
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		notifications[i].RoomName = notifications[i].Room.Name
	}
	return notifications, nil
}

// Run drives the expiry sweeper until ctx is cancelled
func (s *NotificationService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("notification sweeper started, interval %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				log.Printf("sweeper: %v", err)
			}
		}
	}
}

// Sweep expires every answerable notification past its deadline and tells
// each caller about it. Idempotent; safe to run from any caller.
func (s *NotificationService) Sweep(ctx context.Context) error {
	now := time.Now()

	if err := s.callRepo.ExpireOutdatedInvitations(now); err != nil {
		log.Printf("sweeper: invitations: %v", err)
	}

	expired, err := s.callRepo.ExpireOutdated(now)
	if err != nil {
		return err
	}
	for i := range expired {
		n := &expired[i]
		// rows from the bulk update come back without their user relations
		if s.users != nil {
			if caller, err := s.users.Get(ctx, n.CallerID); err == nil {
				n.Caller = model.User{ID: caller.ID, Username: caller.Username}
			}
			if recipient, err := s.users.Get(ctx, n.RecipientID); err == nil {
				n.Recipient = model.User{ID: recipient.ID, Username: recipient.Username}
			}
		}
		publish(ctx, s.fabric, pubsub.UserGroup(n.CallerID.String()), "", map[string]any{
			"type":         model.FrameCallNotificationUpdate,
			"notification": n,
		})
	}
	return nil
}

// recordAnsweredCall persists the companion call message for an accepted
// notification, attributed to the caller
func (s *NotificationService) recordAnsweredCall(n *model.IncomingCallNotification) (*model.Message, error) {
	msg := &model.Message{
		RoomID:      n.RoomID,
		SenderID:    n.CallerID,
		MessageType: model.MessageTypeCall,
		CallType:    n.CallType,
		CallStatus:  model.CallStatusAnswered,
		SentAt:      time.Now(),
	}
	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}
	return s.msgRepo.FindByID(msg.ID)
}

// sendPush hands the notification to the push adapter. Best-effort: failures
// are logged, never surfaced.
func (s *NotificationService) sendPush(n *model.IncomingCallNotification) {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	data := map[string]string{
		"notification_id": n.ID.String(),
		"room_id":         n.RoomID.String(),
		"caller_id":       n.CallerID.String(),
		"caller_username": n.Caller.Username,
		"call_type":       string(n.CallType),
		"expires_at":      n.ExpiresAt.Format(time.RFC3339),
	}
	body := fmt.Sprintf("%s is calling you", n.Caller.Username)
	if err := s.push.Send(ctx, n.DeviceToken, "Incoming Call", body, data); err != nil {
		log.Printf("push for notification %s: %v", n.ID, err)
	}
}
