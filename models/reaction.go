package models

import (
	"slices"
	"time"
)

// Reaction is a Primary Store reaction, one per user per post.
type Reaction struct {
	PostID       string    `dynamodbav:"postId" json:"postId"` // Partition Key
	UserID       string    `dynamodbav:"userId" json:"userId"` // Sort Key
	ReactionType string    `dynamodbav:"reactionType" json:"reactionType"`
	CreatedAt    time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// ReactionView is a reaction as returned to clients.
type ReactionView struct {
	ReactionID   string    `json:"reactionId"`
	PostID       string    `json:"postId"`
	UserID       string    `json:"userId"`
	FullName     string    `json:"fullName"`
	ProfilePic   string    `json:"profilePic,omitempty"`
	ReactionType string    `json:"reactionType"`
	Tier         string    `json:"tier"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func IsValidReactionType(v string) bool {
	return slices.Contains(ReactionTypes, v)
}

// PrimaryReactionID identifies a primary reaction, which is keyed by post and user.
func PrimaryReactionID(postID, userID string) string {
	return postID + ":" + userID
}
