package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EngagementKind selects which bucket collection an operation targets.
type EngagementKind string

const (
	KindComment  EngagementKind = "comment"
	KindReaction EngagementKind = "reaction"
)

// BucketItem is an engagement item embedded in a bucket. Items are never
// removed from a bucket, only flagged deleted.
type BucketItem struct {
	ID           string    `dynamodbav:"id" json:"id"`
	UserID       string    `dynamodbav:"userId" json:"userId"`
	FullName     string    `dynamodbav:"fullName,omitempty" json:"fullName,omitempty"`
	TextContent  string    `dynamodbav:"textContent,omitempty" json:"textContent,omitempty"`
	Media        string    `dynamodbav:"media,omitempty" json:"media,omitempty"`
	ReactionType string    `dynamodbav:"reactionType,omitempty" json:"reactionType,omitempty"`
	IsDeleted    bool      `dynamodbav:"isDeleted" json:"isDeleted"`
	CreatedAt    time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Bucket is a fixed-capacity overflow document for one post.
type Bucket struct {
	PostID      string       `dynamodbav:"postId" json:"postId"`     // Partition Key
	BucketID    string       `dynamodbav:"bucketId" json:"bucketId"` // Sort Key
	BucketIndex int          `dynamodbav:"bucketIndex" json:"bucketIndex"`
	Items       []BucketItem `dynamodbav:"items" json:"items"`
	Count       int          `dynamodbav:"count" json:"count"`
	IsFull      bool         `dynamodbav:"isFull" json:"isFull"`
	CreatedAt   time.Time    `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time    `dynamodbav:"updatedAt" json:"updatedAt"`
}

// IndexOf returns the position of the item with id, or -1.
func (b *Bucket) IndexOf(id string) int {
	for i := range b.Items {
		if b.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// LiveItemByUser returns the position of the first live item written by userID, or -1.
func (b *Bucket) LiveItemByUser(userID string) int {
	for i := range b.Items {
		if b.Items[i].UserID == userID && !b.Items[i].IsDeleted {
			return i
		}
	}
	return -1
}

// BucketIndexFor is floor(count / size).
func BucketIndexFor(count, size int) int {
	if count < 0 || size < 1 {
		return 0
	}
	return count / size
}

// BucketID derives the bucket id "{postId}_{index}".
func BucketID(postID string, index int) string {
	return postID + "_" + strconv.Itoa(index)
}

const bucketItemSeparator = "~"

// NewBucketItemID returns an item id that names the bucket holding it.
func NewBucketItemID(bucketID string) string {
	return bucketID + bucketItemSeparator + uuid.NewString()
}

// ItemLocation is where a bucket item id says the item lives.
type ItemLocation struct {
	PostID      string
	BucketID    string
	BucketIndex int
}

// ParseBucketItemID splits "{postId}_{index}~{uuid}". ok is false for
// Primary Store ids.
func ParseBucketItemID(id string) (loc ItemLocation, ok bool) {
	bucketID, suffix, found := strings.Cut(id, bucketItemSeparator)
	if !found || suffix == "" {
		return ItemLocation{}, false
	}
	sep := strings.LastIndex(bucketID, "_")
	if sep <= 0 {
		return ItemLocation{}, false
	}
	index, err := strconv.Atoi(bucketID[sep+1:])
	if err != nil || index < 0 {
		return ItemLocation{}, false
	}
	return ItemLocation{PostID: bucketID[:sep], BucketID: bucketID, BucketIndex: index}, true
}

func (l ItemLocation) String() string {
	return fmt.Sprintf("%s[%d]", l.BucketID, l.BucketIndex)
}
