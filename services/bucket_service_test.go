package services

import (
	"context"
	"testing"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// racingBucketStore reports the first append as full, as if a concurrent
// writer filled the bucket between selection and append.
type racingBucketStore struct {
	*MemoryStore
	appends int
}

func (r *racingBucketStore) AppendBucketItem(ctx context.Context, kind models.EngagementKind, postID, bucketID string, item models.BucketItem) (*models.Bucket, error) {
	r.appends++
	if r.appends == 1 {
		if err := r.MemoryStore.MarkBucketFull(ctx, kind, postID, bucketID); err != nil {
			return nil, err
		}
		return nil, ErrBucketFull
	}
	return r.MemoryStore.AppendBucketItem(ctx, kind, postID, bucketID, item)
}

func newBucketFixture(size int) (*BucketService, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewBucketService(store, size)
	svc.Now = newTickClock().Now
	return svc, store
}

func TestFindOrCreateActiveBucket_CreatesFromCount(t *testing.T) {
	svc, _ := newBucketFixture(100)
	ctx := context.Background()

	b, err := svc.FindOrCreateActiveBucket(ctx, models.KindComment, "p1", 1234)
	require.NoError(t, err)
	assert.Equal(t, "p1_12", b.BucketID)
	assert.Equal(t, 12, b.BucketIndex)
	assert.Empty(t, b.Items)

	// an open bucket is reused whatever the count says
	again, err := svc.FindOrCreateActiveBucket(ctx, models.KindComment, "p1", 1500)
	require.NoError(t, err)
	assert.Equal(t, "p1_12", again.BucketID)
}

func TestFindOrCreateActiveBucket_AdvancesPastFullBucket(t *testing.T) {
	svc, store := newBucketFixture(2)
	ctx := context.Background()

	require.NoError(t, store.CreateBucket(ctx, models.KindReaction, &models.Bucket{PostID: "p1", BucketID: "p1_5", BucketIndex: 5, Items: []models.BucketItem{}}))
	require.NoError(t, store.MarkBucketFull(ctx, models.KindReaction, "p1", "p1_5"))

	b, err := svc.FindOrCreateActiveBucket(ctx, models.KindReaction, "p1", 10)
	require.NoError(t, err)
	assert.Equal(t, "p1_6", b.BucketID)
}

func TestFindOrCreateActiveBucket_ClosesOverfilledOpenBucket(t *testing.T) {
	svc, store := newBucketFixture(1)
	ctx := context.Background()

	require.NoError(t, store.CreateBucket(ctx, models.KindComment, &models.Bucket{PostID: "p1", BucketID: "p1_0", Items: []models.BucketItem{}}))
	_, err := store.AppendBucketItem(ctx, models.KindComment, "p1", "p1_0", models.BucketItem{ID: "p1_0~a", UserID: "u"})
	require.NoError(t, err)

	b, err := svc.FindOrCreateActiveBucket(ctx, models.KindComment, "p1", 0)
	require.NoError(t, err)
	assert.Equal(t, "p1_1", b.BucketID)

	old, err := store.GetBucket(ctx, models.KindComment, "p1", "p1_0")
	require.NoError(t, err)
	assert.True(t, old.IsFull)
}

func TestAppendItem_RetriesOnceWhenBucketFills(t *testing.T) {
	store := &racingBucketStore{MemoryStore: NewMemoryStore()}
	svc := NewBucketService(store, 100)
	ctx := context.Background()

	item, bucket, err := svc.AppendItem(ctx, models.KindComment, "p1", 1000, models.BucketItem{UserID: "u1", TextContent: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.appends)
	assert.Equal(t, "p1_11", bucket.BucketID)
	assert.Equal(t, "p1_11", bucketIDOf(t, item.ID))
	assert.Equal(t, 1, bucket.Count)
}

func TestAppendItem_MarksFullAtCapacity(t *testing.T) {
	svc, _ := newBucketFixture(2)
	ctx := context.Background()

	_, first, err := svc.AppendItem(ctx, models.KindReaction, "p1", 4, models.BucketItem{UserID: "a"})
	require.NoError(t, err)
	assert.False(t, first.IsFull)

	_, second, err := svc.AppendItem(ctx, models.KindReaction, "p1", 5, models.BucketItem{UserID: "b"})
	require.NoError(t, err)
	assert.Equal(t, first.BucketID, second.BucketID)
	assert.True(t, second.IsFull)

	_, third, err := svc.AppendItem(ctx, models.KindReaction, "p1", 6, models.BucketItem{UserID: "c"})
	require.NoError(t, err)
	assert.Equal(t, "p1_3", third.BucketID)
}

func TestSoftDeleteItem_KeepsPositionsAndFloorsCount(t *testing.T) {
	svc, store := newBucketFixture(100)
	ctx := context.Background()

	a, _, err := svc.AppendItem(ctx, models.KindComment, "p1", 0, models.BucketItem{UserID: "a"})
	require.NoError(t, err)
	b, _, err := svc.AppendItem(ctx, models.KindComment, "p1", 1, models.BucketItem{UserID: "b"})
	require.NoError(t, err)

	found, err := svc.SoftDeleteItem(ctx, models.KindComment, a.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = svc.SoftDeleteItem(ctx, models.KindComment, a.ID)
	require.NoError(t, err)
	assert.False(t, found)

	bucket, err := store.GetBucket(ctx, models.KindComment, "p1", "p1_0")
	require.NoError(t, err)
	assert.Len(t, bucket.Items, 2)
	assert.Equal(t, 1, bucket.Count)
	assert.Equal(t, b.ID, bucket.Items[1].ID)

	_, _, err = svc.LocateItem(ctx, models.KindComment, a.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, _, err = svc.LocateItem(ctx, models.KindComment, "not-a-bucket-id")
	assert.True(t, apperr.IsNotFound(err))

	live, err := svc.LiveItems(ctx, models.KindComment, "p1")
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, b.ID, live[0].ID)
}

func TestReplaceItem_DetectsMovedItem(t *testing.T) {
	svc, _ := newBucketFixture(100)
	ctx := context.Background()

	item, _, err := svc.AppendItem(ctx, models.KindReaction, "p1", 0, models.BucketItem{UserID: "a", ReactionType: models.ReactionLike})
	require.NoError(t, err)
	bucket, idx, err := svc.LocateItem(ctx, models.KindReaction, item.ID)
	require.NoError(t, err)

	item.ReactionType = models.ReactionLove
	updated, err := svc.ReplaceItem(ctx, models.KindReaction, bucket, idx, item)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(time.Time{}))

	item.ID = "p1_0~someone-else"
	_, err = svc.ReplaceItem(ctx, models.KindReaction, bucket, idx, item)
	assert.True(t, apperr.IsNotFound(err))
}

func TestAppendItem_SoftDeletedItemsFreeCapacity(t *testing.T) {
	svc, store := newBucketFixture(2)
	ctx := context.Background()

	a, first, err := svc.AppendItem(ctx, models.KindComment, "p1", 0, models.BucketItem{UserID: "a"})
	require.NoError(t, err)
	found, err := svc.SoftDeleteItem(ctx, models.KindComment, a.ID)
	require.NoError(t, err)
	require.True(t, found)

	// two slots used, one live item: still open
	_, second, err := svc.AppendItem(ctx, models.KindComment, "p1", 1, models.BucketItem{UserID: "b"})
	require.NoError(t, err)
	assert.Equal(t, first.BucketID, second.BucketID)
	assert.Len(t, second.Items, 2)
	assert.Equal(t, 1, second.Count)
	assert.False(t, second.IsFull)

	_, third, err := svc.AppendItem(ctx, models.KindComment, "p1", 2, models.BucketItem{UserID: "c"})
	require.NoError(t, err)
	assert.Equal(t, first.BucketID, third.BucketID)
	assert.Equal(t, 2, third.Count)
	assert.True(t, third.IsFull)

	stored, err := store.GetBucket(ctx, models.KindComment, "p1", first.BucketID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 3)
	assert.True(t, stored.IsFull)
}
