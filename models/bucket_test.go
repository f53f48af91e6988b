package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketIndexFor(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 100, 0},
		{99, 100, 0},
		{100, 100, 1},
		{1000, 100, 10},
		{1099, 100, 10},
		{1100, 100, 11},
		{-5, 100, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketIndexFor(tt.count, tt.size), "count=%d", tt.count)
	}
}

func TestBucketItemIDRoundTrip(t *testing.T) {
	postID := "0d9f1c2e-6a3b-4c7e-9f00-123456789abc"
	bucketID := BucketID(postID, 10)
	require.Equal(t, postID+"_10", bucketID)

	id := NewBucketItemID(bucketID)
	assert.True(t, strings.HasPrefix(id, bucketID+"~"))

	loc, ok := ParseBucketItemID(id)
	require.True(t, ok)
	assert.Equal(t, postID, loc.PostID)
	assert.Equal(t, bucketID, loc.BucketID)
	assert.Equal(t, 10, loc.BucketIndex)
}

func TestParseBucketItemID_PrimaryIDs(t *testing.T) {
	for _, id := range []string{
		"0d9f1c2e-6a3b-4c7e-9f00-123456789abc",
		"post_x~abc",
		"~abc",
		"post_1~",
		"post_-1~abc",
	} {
		_, ok := ParseBucketItemID(id)
		assert.False(t, ok, id)
	}
}

func TestBucketLookups(t *testing.T) {
	b := Bucket{Items: []BucketItem{
		{ID: "a", UserID: "u1", IsDeleted: true},
		{ID: "b", UserID: "u2"},
		{ID: "c", UserID: "u1"},
	}}

	assert.Equal(t, 1, b.IndexOf("b"))
	assert.Equal(t, -1, b.IndexOf("zz"))
	assert.Equal(t, 2, b.LiveItemByUser("u1"))
	assert.Equal(t, -1, b.LiveItemByUser("u3"))
}
