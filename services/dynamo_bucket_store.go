package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"
	"socialnet_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func bucketTable(kind models.EngagementKind) string {
	if kind == models.KindReaction {
		return models.ReactionBucketsTable
	}
	return models.CommentBucketsTable
}

func bucketKey(postID, bucketID string) map[string]types.AttributeValue {
	return utils.CompositeKey("postId", postID, "bucketId", bucketID)
}

// COUNT and ITEMS are reserved words in DynamoDB expressions. Every name
// here is used by AppendBucketItem; DynamoDB rejects unused names.
var bucketNames = map[string]string{
	"#items":     "items",
	"#count":     "count",
	"#isFull":    "isFull",
	"#updatedAt": "updatedAt",
	"#bucketId":  "bucketId",
}

func unmarshalBuckets(items []map[string]types.AttributeValue) ([]models.Bucket, error) {
	buckets := []models.Bucket{}
	if err := attributevalue.UnmarshalListOfMaps(items, &buckets); err != nil {
		return nil, fmt.Errorf("failed to parse buckets: %w", err)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].BucketIndex < buckets[j].BucketIndex
	})
	return buckets, nil
}

func (s *DynamoStore) ListBuckets(ctx context.Context, kind models.EngagementKind, postID string) ([]models.Bucket, error) {
	items, err := s.queryByPartition(ctx, bucketTable(kind), "", "postId", postID, false, "", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalBuckets(items)
}

func (s *DynamoStore) ListOpenBuckets(ctx context.Context, kind models.EngagementKind, postID string) ([]models.Bucket, error) {
	items, err := s.queryByPartition(ctx, bucketTable(kind), "", "postId", postID, false,
		"isFull = :false", map[string]types.AttributeValue{":false": utils.BOOL(false)})
	if err != nil {
		return nil, err
	}
	return unmarshalBuckets(items)
}

func (s *DynamoStore) GetBucket(ctx context.Context, kind models.EngagementKind, postID, bucketID string) (*models.Bucket, error) {
	var bucket models.Bucket
	err := s.Dynamo.GetInto(ctx, bucketTable(kind), bucketKey(postID, bucketID), &bucket)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperr.NotFound("bucket %s not found", bucketID)
	}
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (s *DynamoStore) CreateBucket(ctx context.Context, kind models.EngagementKind, bucket *models.Bucket) error {
	if bucket.Items == nil {
		bucket.Items = []models.BucketItem{}
	}
	err := s.Dynamo.PutItemIfNotExists(ctx, bucketTable(kind), "bucketId", bucket)
	if errors.Is(err, ErrConditionFailed) {
		return ErrBucketExists
	}
	return err
}

// AppendBucketItem appends item and bumps count in one conditional update.
func (s *DynamoStore) AppendBucketItem(ctx context.Context, kind models.EngagementKind, postID, bucketID string, item models.BucketItem) (*models.Bucket, error) {
	itemValue, err := attributevalue.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bucket item: %w", err)
	}

	attrs, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:     bucketTable(kind),
		Key:       bucketKey(postID, bucketID),
		Update:    "SET #items = list_append(#items, :item), #count = #count + :one, #updatedAt = :now",
		Condition: "attribute_exists(#bucketId) AND #isFull = :false",
		Names:     bucketNames,
		Values: map[string]types.AttributeValue{
			":item":  &types.AttributeValueMemberL{Value: []types.AttributeValue{itemValue}},
			":one":   utils.N(1),
			":false": utils.BOOL(false),
			":now":   marshalValue(item.CreatedAt),
		},
	})
	if errors.Is(err, ErrConditionFailed) {
		return nil, ErrBucketFull
	}
	if err != nil {
		return nil, err
	}

	var bucket models.Bucket
	if err := attributevalue.UnmarshalMap(attrs, &bucket); err != nil {
		return nil, fmt.Errorf("failed to parse bucket: %w", err)
	}
	return &bucket, nil
}

func (s *DynamoStore) MarkBucketFull(ctx context.Context, kind models.EngagementKind, postID, bucketID string) error {
	_, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:      bucketTable(kind),
		Key:        bucketKey(postID, bucketID),
		Update:     "SET #isFull = :true",
		Condition:  "attribute_exists(#bucketId)",
		Names:      map[string]string{"#isFull": "isFull", "#bucketId": "bucketId"},
		Values:     map[string]types.AttributeValue{":true": utils.BOOL(true)},
		ReturnNone: true,
	})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.NotFound("bucket %s not found", bucketID)
	}
	return err
}

// ReplaceBucketItem overwrites the live item at index, provided it still has item.ID.
func (s *DynamoStore) ReplaceBucketItem(ctx context.Context, kind models.EngagementKind, postID, bucketID string, index int, item models.BucketItem) error {
	itemValue, err := attributevalue.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal bucket item: %w", err)
	}

	path := fmt.Sprintf("#items[%d]", index)
	_, err = s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:     bucketTable(kind),
		Key:       bucketKey(postID, bucketID),
		Update:    fmt.Sprintf("SET %s = :item, #updatedAt = :now", path),
		Condition: fmt.Sprintf("%s.#id = :id AND %s.#isDeleted = :false", path, path),
		Names: map[string]string{
			"#items":     "items",
			"#updatedAt": "updatedAt",
			"#id":        "id",
			"#isDeleted": "isDeleted",
		},
		Values: map[string]types.AttributeValue{
			":item":  itemValue,
			":id":    utils.S(item.ID),
			":false": utils.BOOL(false),
			":now":   marshalValue(item.UpdatedAt),
		},
		ReturnNone: true,
	})
	if errors.Is(err, ErrConditionFailed) {
		return ErrBucketItemChanged
	}
	return err
}

// SoftDeleteBucketItem flags the item deleted and decrements count, floored at zero.
func (s *DynamoStore) SoftDeleteBucketItem(ctx context.Context, kind models.EngagementKind, postID, bucketID string, index int, itemID string, at time.Time) (*models.Bucket, error) {
	path := fmt.Sprintf("#items[%d]", index)
	names := map[string]string{
		"#items":     "items",
		"#count":     "count",
		"#updatedAt": "updatedAt",
		"#id":        "id",
		"#isDeleted": "isDeleted",
	}
	values := map[string]types.AttributeValue{
		":id":    utils.S(itemID),
		":true":  utils.BOOL(true),
		":false": utils.BOOL(false),
		":zero":  utils.N(0),
		":now":   marshalValue(at),
	}
	live := fmt.Sprintf("%s.#id = :id AND %s.#isDeleted = :false", path, path)
	flag := fmt.Sprintf("SET %s.#isDeleted = :true, %s.#updatedAt = :now, #updatedAt = :now", path, path)

	decrementValues := map[string]types.AttributeValue{":one": utils.N(1)}
	for k, v := range values {
		decrementValues[k] = v
	}
	attrs, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:     bucketTable(kind),
		Key:       bucketKey(postID, bucketID),
		Update:    flag + ", #count = #count - :one",
		Condition: live + " AND #count > :zero",
		Names:     names,
		Values:    decrementValues,
	})
	if errors.Is(err, ErrConditionFailed) {
		attrs, err = s.Dynamo.UpdateItem(ctx, UpdateRequest{
			Table:     bucketTable(kind),
			Key:       bucketKey(postID, bucketID),
			Update:    flag,
			Condition: live + " AND #count <= :zero",
			Names:     names,
			Values:    values,
		})
	}
	if errors.Is(err, ErrConditionFailed) {
		return nil, ErrBucketItemChanged
	}
	if err != nil {
		return nil, err
	}

	var bucket models.Bucket
	if err := attributevalue.UnmarshalMap(attrs, &bucket); err != nil {
		return nil, fmt.Errorf("failed to parse bucket: %w", err)
	}
	return &bucket, nil
}
