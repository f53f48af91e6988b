package models

import "time"

// ThresholdConfig is an outlier threshold version. At most one is enabled.
type ThresholdConfig struct {
	ThresholdID       string    `dynamodbav:"thresholdId" json:"thresholdId"` // Partition Key
	ReactionThreshold int       `dynamodbav:"reactionThreshold" json:"reactionThreshold"`
	CommentThreshold  int       `dynamodbav:"commentThreshold" json:"commentThreshold"`
	ShareThreshold    int       `dynamodbav:"shareThreshold" json:"shareThreshold"`
	Version           int       `dynamodbav:"version" json:"version"`
	Enabled           bool      `dynamodbav:"enabled" json:"enabled"`
	CreatedAt         time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// ThresholdInput is the payload for creating a threshold version.
type ThresholdInput struct {
	ReactionThreshold int  `json:"reactionThreshold"`
	CommentThreshold  int  `json:"commentThreshold"`
	ShareThreshold    int  `json:"shareThreshold"`
	Version           int  `json:"version"`
	Enabled           bool `json:"enabled"`
}

// ThresholdPatch is a partial update; nil fields are left unchanged.
type ThresholdPatch struct {
	ReactionThreshold *int  `json:"reactionThreshold,omitempty"`
	CommentThreshold  *int  `json:"commentThreshold,omitempty"`
	ShareThreshold    *int  `json:"shareThreshold,omitempty"`
	Enabled           *bool `json:"enabled,omitempty"`
}
