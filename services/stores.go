package services

import (
	"context"
	"errors"
	"time"

	"socialnet_server/models"
)

var (
	// ErrBucketExists is returned by CreateBucket when the bucket id is taken.
	ErrBucketExists = errors.New("bucket already exists")
	// ErrBucketFull is returned by AppendBucketItem when the bucket is closed for writes.
	ErrBucketFull = errors.New("bucket is full")
	// ErrBucketItemChanged means the embedded item at an index no longer matches.
	ErrBucketItemChanged = errors.New("bucket item changed")
)

type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	// AdjustPostCounter adds delta to a counter, never going below zero.
	AdjustPostCounter(ctx context.Context, postID string, field models.CounterField, delta int) error
	MarkPostViral(ctx context.Context, postID string) error
	SetRecentComments(ctx context.Context, postID string, recent []models.RecentComment) error
}

// CommentStore is the Primary Store for comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, commentID string) (*models.Comment, error)
	UpdateCommentText(ctx context.Context, commentID, text string, updatedAt time.Time) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
	DeleteComments(ctx context.Context, commentIDs []string) error
	ListTopLevelComments(ctx context.Context, postID string) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentCommentID string) ([]models.Comment, error)
}

// ReactionStore is the Primary Store for reactions.
type ReactionStore interface {
	GetReaction(ctx context.Context, postID, userID string) (*models.Reaction, error)
	PutReaction(ctx context.Context, reaction *models.Reaction) error
	UpdateReactionType(ctx context.Context, postID, userID, reactionType string, updatedAt time.Time) (*models.Reaction, error)
	DeleteReaction(ctx context.Context, postID, userID string) error
	ListReactions(ctx context.Context, postID string) ([]models.Reaction, error)
}

// BucketStore persists overflow buckets. Every method is a single-document operation.
type BucketStore interface {
	ListBuckets(ctx context.Context, kind models.EngagementKind, postID string) ([]models.Bucket, error)
	ListOpenBuckets(ctx context.Context, kind models.EngagementKind, postID string) ([]models.Bucket, error)
	GetBucket(ctx context.Context, kind models.EngagementKind, postID, bucketID string) (*models.Bucket, error)
	CreateBucket(ctx context.Context, kind models.EngagementKind, bucket *models.Bucket) error
	AppendBucketItem(ctx context.Context, kind models.EngagementKind, postID, bucketID string, item models.BucketItem) (*models.Bucket, error)
	MarkBucketFull(ctx context.Context, kind models.EngagementKind, postID, bucketID string) error
	ReplaceBucketItem(ctx context.Context, kind models.EngagementKind, postID, bucketID string, index int, item models.BucketItem) error
	SoftDeleteBucketItem(ctx context.Context, kind models.EngagementKind, postID, bucketID string, index int, itemID string, at time.Time) (*models.Bucket, error)
}

type ThresholdStore interface {
	CreateThreshold(ctx context.Context, threshold *models.ThresholdConfig) error
	GetThreshold(ctx context.Context, thresholdID string) (*models.ThresholdConfig, error)
	ListThresholds(ctx context.Context) ([]models.ThresholdConfig, error)
	SaveThreshold(ctx context.Context, threshold *models.ThresholdConfig) error
	DeleteThreshold(ctx context.Context, thresholdID string) error
}

type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	BatchGetUsers(ctx context.Context, userIDs []string) ([]models.User, error)
}

type FriendshipStore interface {
	GetFriendship(ctx context.Context, userID, friendID string) (*models.Friendship, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) (*models.Notification, error)
	DeleteNotification(ctx context.Context, userID, notificationID string) error
	DeleteAllNotifications(ctx context.Context, userID string) (int, error)
}

type ShareStore interface {
	CreateShare(ctx context.Context, share *models.Share) error
	GetShare(ctx context.Context, postID, userID string) (*models.Share, error)
	DeleteShare(ctx context.Context, postID, userID string) error
	ListSharesByPost(ctx context.Context, postID string) ([]models.Share, error)
	ListSharesByUser(ctx context.Context, userID string) ([]models.Share, error)
}

// Store is everything a backend must provide.
type Store interface {
	PostStore
	CommentStore
	ReactionStore
	BucketStore
	ThresholdStore
	UserStore
	FriendshipStore
	NotificationStore
	ShareStore
}

// utcNow reads the injected clock, defaulting to the wall clock.
func utcNow(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}
