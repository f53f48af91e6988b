package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/rs/zerolog/log"
)

// maxBucketProbe bounds how far creation advances past existing full buckets.
const maxBucketProbe = 64

// BucketService places overflow items into fixed-capacity buckets.
type BucketService struct {
	Store BucketStore
	Size  int
	Now   func() time.Time
}

func NewBucketService(store BucketStore, size int) *BucketService {
	if size < 1 {
		size = models.DefaultBucketSize
	}
	return &BucketService{Store: store, Size: size, Now: time.Now}
}

func (s *BucketService) now() time.Time {
	return utcNow(s.Now)
}

// atCapacity counts live items only. Soft-deleted items keep their slot in
// the list but free capacity.
func (s *BucketService) atCapacity(b *models.Bucket) bool {
	return b.Count >= s.Size
}

// FindOrCreateActiveBucket returns the lowest open bucket for the post, or
// creates bucket floor(count/size). A create that collides with an existing
// bucket reuses it when open and otherwise moves to the next index.
func (s *BucketService) FindOrCreateActiveBucket(ctx context.Context, kind models.EngagementKind, postID string, count int) (*models.Bucket, error) {
	open, err := s.Store.ListOpenBuckets(ctx, kind, postID)
	if err != nil {
		return nil, err
	}
	for i := range open {
		if !s.atCapacity(&open[i]) {
			return &open[i], nil
		}
		// filled by an append whose follow-up mark never landed
		if err := s.Store.MarkBucketFull(ctx, kind, postID, open[i].BucketID); err != nil {
			log.Warn().Err(err).Str("bucketId", open[i].BucketID).Msg("failed to close full bucket")
		}
	}

	index := models.BucketIndexFor(count, s.Size)
	for probe := 0; probe < maxBucketProbe; probe++ {
		now := s.now()
		bucket := &models.Bucket{
			PostID:      postID,
			BucketID:    models.BucketID(postID, index),
			BucketIndex: index,
			Items:       []models.BucketItem{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err := s.Store.CreateBucket(ctx, kind, bucket)
		if err == nil {
			log.Info().Str("kind", string(kind)).Str("bucketId", bucket.BucketID).Msg("🪣 Created overflow bucket")
			return bucket, nil
		}
		if !errors.Is(err, ErrBucketExists) {
			return nil, err
		}

		existing, err := s.Store.GetBucket(ctx, kind, postID, bucket.BucketID)
		if err != nil {
			return nil, err
		}
		if !existing.IsFull && !s.atCapacity(existing) {
			return existing, nil
		}
		index++
	}
	return nil, fmt.Errorf("no open %s bucket for post %s after %d attempts", kind, postID, maxBucketProbe)
}

// AppendItem assigns item an id in the selected bucket and appends it. A
// bucket that filled concurrently triggers one re-selection.
func (s *BucketService) AppendItem(ctx context.Context, kind models.EngagementKind, postID string, count int, item models.BucketItem) (models.BucketItem, *models.Bucket, error) {
	for attempt := 0; ; attempt++ {
		bucket, err := s.FindOrCreateActiveBucket(ctx, kind, postID, count)
		if err != nil {
			return models.BucketItem{}, nil, err
		}

		item.ID = models.NewBucketItemID(bucket.BucketID)
		updated, err := s.Store.AppendBucketItem(ctx, kind, postID, bucket.BucketID, item)
		if errors.Is(err, ErrBucketFull) && attempt == 0 {
			log.Debug().Str("bucketId", bucket.BucketID).Msg("bucket filled concurrently, reselecting")
			continue
		}
		if err != nil {
			return models.BucketItem{}, nil, err
		}

		if s.atCapacity(updated) {
			if err := s.Store.MarkBucketFull(ctx, kind, postID, updated.BucketID); err != nil {
				log.Warn().Err(err).Str("bucketId", updated.BucketID).Msg("failed to mark bucket full")
			} else {
				updated.IsFull = true
			}
		}
		return item, updated, nil
	}
}

// FindLiveItemByUser scans the post's buckets for a live item written by userID.
// It returns a nil bucket when there is none.
func (s *BucketService) FindLiveItemByUser(ctx context.Context, kind models.EngagementKind, postID, userID string) (*models.Bucket, int, error) {
	buckets, err := s.Store.ListBuckets(ctx, kind, postID)
	if err != nil {
		return nil, -1, err
	}
	for i := range buckets {
		if idx := buckets[i].LiveItemByUser(userID); idx >= 0 {
			return &buckets[i], idx, nil
		}
	}
	return nil, -1, nil
}

// LocateItem resolves a bucket item id to its bucket and position. Unknown,
// malformed and soft-deleted ids are NotFound.
func (s *BucketService) LocateItem(ctx context.Context, kind models.EngagementKind, itemID string) (*models.Bucket, int, error) {
	loc, ok := models.ParseBucketItemID(itemID)
	if !ok {
		return nil, -1, apperr.NotFound("%s %s not found", kind, itemID)
	}
	bucket, err := s.Store.GetBucket(ctx, kind, loc.PostID, loc.BucketID)
	if apperr.IsNotFound(err) {
		return nil, -1, apperr.NotFound("%s %s not found", kind, itemID)
	}
	if err != nil {
		return nil, -1, err
	}
	idx := bucket.IndexOf(itemID)
	if idx < 0 || bucket.Items[idx].IsDeleted {
		return nil, -1, apperr.NotFound("%s %s not found", kind, itemID)
	}
	return bucket, idx, nil
}

// SoftDeleteItem flags the item deleted. found is false when the item does
// not exist or is already deleted.
func (s *BucketService) SoftDeleteItem(ctx context.Context, kind models.EngagementKind, itemID string) (found bool, err error) {
	bucket, idx, err := s.LocateItem(ctx, kind, itemID)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.SoftDeleteAt(ctx, kind, bucket, idx)
}

// SoftDeleteAt flags the item at idx of an already loaded bucket.
func (s *BucketService) SoftDeleteAt(ctx context.Context, kind models.EngagementKind, bucket *models.Bucket, idx int) (bool, error) {
	itemID := bucket.Items[idx].ID
	_, err := s.Store.SoftDeleteBucketItem(ctx, kind, bucket.PostID, bucket.BucketID, idx, itemID, s.now())
	if errors.Is(err, ErrBucketItemChanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceItem writes item back at idx, stamping UpdatedAt.
func (s *BucketService) ReplaceItem(ctx context.Context, kind models.EngagementKind, bucket *models.Bucket, idx int, item models.BucketItem) (models.BucketItem, error) {
	item.UpdatedAt = s.now()
	err := s.Store.ReplaceBucketItem(ctx, kind, bucket.PostID, bucket.BucketID, idx, item)
	if errors.Is(err, ErrBucketItemChanged) {
		return models.BucketItem{}, apperr.NotFound("%s %s not found", kind, item.ID)
	}
	if err != nil {
		return models.BucketItem{}, err
	}
	return item, nil
}

// LiveItems flattens the live items of every bucket of the post.
func (s *BucketService) LiveItems(ctx context.Context, kind models.EngagementKind, postID string) ([]models.BucketItem, error) {
	buckets, err := s.Store.ListBuckets(ctx, kind, postID)
	if err != nil {
		return nil, err
	}
	var items []models.BucketItem
	for _, b := range buckets {
		for _, it := range b.Items {
			if !it.IsDeleted {
				items = append(items, it)
			}
		}
	}
	return items, nil
}
