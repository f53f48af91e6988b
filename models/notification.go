package models

import (
	"slices"
	"time"
)

type Notification struct {
	UserID              string    `dynamodbav:"userId" json:"userId"`                 // Partition Key
	NotificationID      string    `dynamodbav:"notificationId" json:"notificationId"` // Sort Key (UUIDv7, time ordered)
	ActorID             string    `dynamodbav:"actorId,omitempty" json:"actorId,omitempty"`
	PostID              string    `dynamodbav:"postId,omitempty" json:"postId,omitempty"`
	NotificationType    string    `dynamodbav:"notificationType" json:"notificationType"`
	NotificationMessage string    `dynamodbav:"notificationMessage" json:"notificationMessage"`
	IsRead              bool      `dynamodbav:"isRead" json:"isRead"`
	CreatedAt           time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

func IsValidNotificationType(v string) bool {
	return slices.Contains(NotificationTypes, v)
}
