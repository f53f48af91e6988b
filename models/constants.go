package models

import "time"

// Privacy levels a post can carry.
const (
	PrivacyPublic  = "public"
	PrivacyFriends = "friends"
	PrivacyOnlyMe  = "onlyme"
)

// Post types.
const (
	PostTypePost  = "post"
	PostTypeStory = "story"
)

// Reaction types.
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionCare  = "care"
	ReactionAngry = "angry"
	ReactionSad   = "sad"
)

var ReactionTypes = []string{ReactionLike, ReactionLove, ReactionCare, ReactionAngry, ReactionSad}

// Friendship statuses.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipBlocked  = "blocked"
)

// Notification types.
const (
	NotificationSystem         = "system"
	NotificationReaction       = "reaction"
	NotificationComment        = "comment"
	NotificationPost           = "post"
	NotificationTags           = "tags"
	NotificationFriendRequests = "friend_requests"
	NotificationShare          = "share"
)

var NotificationTypes = []string{
	NotificationSystem, NotificationReaction, NotificationComment, NotificationPost,
	NotificationTags, NotificationFriendRequests, NotificationShare,
}

// Storage tiers an engagement item can live in.
const (
	TierPrimary = "primary"
	TierBucket  = "bucket"
)

// Outlier defaults.
const (
	DefaultBucketSize        = 100
	DefaultReactionThreshold = 1000
	DefaultCommentThreshold  = 1000
	DefaultShareThreshold    = 500
	DefaultThresholdCacheTTL = 5 * time.Minute
	RecentCommentsLimit      = 3
)

// Validation limits.
const (
	MaxCommentLength      = 2000
	MaxNotificationLength = 500
	MaxPostLength         = 5000
	MaxPageLimit          = 100
)

// DynamoDB tables.
const (
	PostsTable             = "Posts"
	CommentsTable          = "Comments"
	ReactionsTable         = "Reactions"
	CommentBucketsTable    = "OutlierComments"
	ReactionBucketsTable   = "OutlierReactions"
	OutlierThresholdsTable = "OutlierThresholds"
	UsersTable             = "Users"
	FriendshipsTable       = "Friendships"
	NotificationsTable     = "Notifications"
	SharesTable            = "Shares"
)

// DynamoDB global secondary indexes.
const (
	CommentsByPostIndex   = "postId-createdAt-index"
	CommentsByParentIndex = "parentCommentId-createdAt-index"
	SharesByUserIndex     = "userId-createdAt-index"
)
