package models

import "time"

// Comment is a Primary Store comment document.
type Comment struct {
	CommentID       string    `dynamodbav:"commentId" json:"commentId"` // Partition Key
	PostID          string    `dynamodbav:"postId" json:"postId"`       // GSI postId-createdAt-index
	UserID          string    `dynamodbav:"userId" json:"userId"`
	Comment         string    `dynamodbav:"comment,omitempty" json:"comment,omitempty"`
	Media           string    `dynamodbav:"media,omitempty" json:"media,omitempty"`
	ParentCommentID string    `dynamodbav:"parentCommentId,omitempty" json:"parentCommentId,omitempty"` // GSI parentCommentId-createdAt-index
	CreatedAt       time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

func (c *Comment) IsReply() bool {
	return c.ParentCommentID != ""
}

// CommentView is a comment as returned to clients, whatever tier holds it.
type CommentView struct {
	CommentID       string    `json:"commentId"`
	PostID          string    `json:"postId"`
	UserID          string    `json:"userId"`
	FullName        string    `json:"fullName"`
	ProfilePic      string    `json:"profilePic,omitempty"`
	Comment         string    `json:"comment"`
	Media           string    `json:"media,omitempty"`
	ParentCommentID string    `json:"parentCommentId,omitempty"`
	Tier            string    `json:"tier"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (v *CommentView) IsReply() bool {
	return v.ParentCommentID != ""
}
