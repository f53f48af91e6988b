package services

import (
	"context"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"
	"socialnet_server/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Realtime event names pushed to clients.
const (
	EventNotification   = "notification"
	EventCommentAdded   = "commentAdded"
	EventCommentUpdated = "commentUpdated"
	EventCommentDeleted = "commentDeleted"
	EventReaction       = "reaction"
	EventReactionRemove = "reactionRemoved"
)

// Notifier pushes realtime events. Implementations must not block.
type Notifier interface {
	NotifyUser(userID, event string, payload interface{})
	BroadcastPost(postID, event string, payload interface{})
}

type NopNotifier struct{}

func (NopNotifier) NotifyUser(string, string, interface{})    {}
func (NopNotifier) BroadcastPost(string, string, interface{}) {}

type CreateNotificationInput struct {
	UserID              string `json:"userId"`
	ActorID             string `json:"actorId,omitempty"`
	PostID              string `json:"postId,omitempty"`
	NotificationType    string `json:"notificationType"`
	NotificationMessage string `json:"notificationMessage"`
}

type NotificationService struct {
	Store    NotificationStore
	Users    UserStore
	Notifier Notifier
	Now      func() time.Time
}

func NewNotificationService(store NotificationStore, users UserStore, notifier Notifier) *NotificationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &NotificationService{Store: store, Users: users, Notifier: notifier, Now: time.Now}
}

func (s *NotificationService) now() time.Time {
	return utcNow(s.Now)
}

// Create validates and stores a notification, then pushes it to the recipient.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	if input.UserID == "" {
		return nil, apperr.Invalid("userId is required")
	}
	if input.NotificationType == "" {
		return nil, apperr.Invalid("notification type is required")
	}
	if !models.IsValidNotificationType(input.NotificationType) {
		return nil, apperr.Invalid("invalid notification type %q", input.NotificationType)
	}
	message := utils.SanitizeString(input.NotificationMessage, 0)
	if message == "" {
		return nil, apperr.Invalid("notification message is required")
	}
	if utils.ExceedsLength(message, models.MaxNotificationLength) {
		return nil, apperr.Invalid("notification message cannot exceed %d characters", models.MaxNotificationLength)
	}
	if _, err := s.Users.GetUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to generate notification id")
	}
	notification := &models.Notification{
		UserID:              input.UserID,
		NotificationID:      id.String(),
		ActorID:             input.ActorID,
		PostID:              input.PostID,
		NotificationType:    input.NotificationType,
		NotificationMessage: message,
		CreatedAt:           s.now(),
	}
	if err := s.Store.CreateNotification(ctx, notification); err != nil {
		return nil, err
	}

	s.Notifier.NotifyUser(notification.UserID, EventNotification, notification)
	return notification, nil
}

// NotifyEngagement records an engagement notification for the post owner.
// Self actions are skipped and failures are only logged.
func (s *NotificationService) NotifyEngagement(ctx context.Context, post *models.Post, actorID, notificationType, message string) {
	if post.UserID == "" || post.UserID == actorID {
		return
	}
	_, err := s.Create(ctx, CreateNotificationInput{
		UserID:              post.UserID,
		ActorID:             actorID,
		PostID:              post.PostID,
		NotificationType:    notificationType,
		NotificationMessage: message,
	})
	if err != nil {
		log.Warn().Err(err).Str("postId", post.PostID).Str("type", notificationType).Msg("engagement notification not delivered")
	}
}

// List returns the user's notifications newest first, optionally filtered by type.
func (s *NotificationService) List(ctx context.Context, userID, notificationType string, page, limit int) (models.Page[models.Notification], error) {
	if notificationType != "" && !models.IsValidNotificationType(notificationType) {
		return models.Page[models.Notification]{}, apperr.Invalid("invalid notification type %q", notificationType)
	}
	all, err := s.Store.ListNotifications(ctx, userID)
	if err != nil {
		return models.Page[models.Notification]{}, err
	}
	if notificationType != "" {
		filtered := all[:0]
		for _, n := range all {
			if n.NotificationType == notificationType {
				filtered = append(filtered, n)
			}
		}
		all = filtered
	}
	return models.Paginate(all, page, limit), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	all, err := s.Store.ListNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range all {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkRead flags one of the user's notifications as read. Notifications are
// keyed under their recipient, so another user's id is NotFound.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	return s.Store.MarkNotificationRead(ctx, userID, notificationID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	return s.Store.DeleteNotification(ctx, userID, notificationID)
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID string) (int, error) {
	n, err := s.Store.DeleteAllNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	log.Info().Str("userId", userID).Int("deleted", n).Msg("🗑️ Notifications cleared")
	return n, nil
}
