package models

import "time"

type PostMedia struct {
	MediaType string `dynamodbav:"mediaType" json:"mediaType"`
	URL       string `dynamodbav:"url" json:"url"`
}

// RecentComment is the denormalized preview cached on a post.
type RecentComment struct {
	CommentID string    `dynamodbav:"commentId" json:"commentId"`
	UserID    string    `dynamodbav:"userId" json:"userId"`
	FullName  string    `dynamodbav:"fullName" json:"fullName"`
	Comment   string    `dynamodbav:"comment" json:"comment"`
	CreatedAt time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

type Post struct {
	PostID         string          `dynamodbav:"postId" json:"postId"` // Partition Key
	UserID         string          `dynamodbav:"userId" json:"userId"`
	FullName       string          `dynamodbav:"fullName" json:"fullName"`
	UserAvatar     string          `dynamodbav:"userAvatar,omitempty" json:"userAvatar,omitempty"`
	TextContent    string          `dynamodbav:"textContent,omitempty" json:"textContent,omitempty"`
	Media          []PostMedia     `dynamodbav:"media,omitempty" json:"media,omitempty"`
	Privacy        string          `dynamodbav:"privacy" json:"privacy"`
	PostType       string          `dynamodbav:"postType" json:"postType"`
	Tags           []string        `dynamodbav:"tags,omitempty" json:"tags,omitempty"`
	ReactionsCount int             `dynamodbav:"reactionsCount" json:"reactionsCount"`
	CommentsCount  int             `dynamodbav:"commentsCount" json:"commentsCount"`
	ShareCount     int             `dynamodbav:"shareCount" json:"shareCount"`
	IsViral        bool            `dynamodbav:"isViral" json:"isViral"`
	RecentComments []RecentComment `dynamodbav:"recentComments" json:"recentComments"`
	CreatedAt      time.Time       `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `dynamodbav:"updatedAt" json:"updatedAt"`
}

// CounterField names a denormalized counter on a post.
type CounterField string

const (
	CounterReactions CounterField = "reactionsCount"
	CounterComments  CounterField = "commentsCount"
	CounterShares    CounterField = "shareCount"
)

// Counter returns the current value of field.
func (p *Post) Counter(field CounterField) int {
	switch field {
	case CounterReactions:
		return p.ReactionsCount
	case CounterComments:
		return p.CommentsCount
	case CounterShares:
		return p.ShareCount
	}
	return 0
}

// IsValidPrivacy reports whether v is one of the privacy levels.
func IsValidPrivacy(v string) bool {
	return v == PrivacyPublic || v == PrivacyFriends || v == PrivacyOnlyMe
}
