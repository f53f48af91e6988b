package models

import "time"

type Share struct {
	PostID    string    `dynamodbav:"postId" json:"postId"` // Partition Key
	UserID    string    `dynamodbav:"userId" json:"userId"` // Sort Key, GSI userId-createdAt-index
	CreatedAt time.Time `dynamodbav:"createdAt" json:"createdAt"`
}
