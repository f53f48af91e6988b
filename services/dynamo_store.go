package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"
	"socialnet_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore implements Store on DynamoDB tables.
type DynamoStore struct {
	Dynamo *DynamoService
}

var _ Store = (*DynamoStore)(nil)

func NewDynamoStore(client DynamoAPI) *DynamoStore {
	return &DynamoStore{Dynamo: &DynamoService{Client: client}}
}

func marshalValue(v interface{}) types.AttributeValue {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		// only called with plain strings, times and model slices
		panic(fmt.Sprintf("marshal attribute value: %v", err))
	}
	return av
}

func (s *DynamoStore) CreatePost(ctx context.Context, post *models.Post) error {
	if post.RecentComments == nil {
		post.RecentComments = []models.RecentComment{}
	}
	err := s.Dynamo.PutItemIfNotExists(ctx, models.PostsTable, "postId", post)
	if errors.Is(err, ErrConditionFailed) {
		return apperr.Conflict("post %s already exists", post.PostID)
	}
	return err
}

func (s *DynamoStore) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := s.Dynamo.GetInto(ctx, models.PostsTable, utils.Key("postId", postID), &post)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperr.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *DynamoStore) AdjustPostCounter(ctx context.Context, postID string, field models.CounterField, delta int) error {
	if delta == 0 {
		return nil
	}
	names := map[string]string{"#c": string(field), "#pk": "postId"}

	if delta > 0 {
		_, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
			Table:      models.PostsTable,
			Key:        utils.Key("postId", postID),
			Update:     "ADD #c :d",
			Condition:  "attribute_exists(#pk)",
			Names:      names,
			Values:     map[string]types.AttributeValue{":d": utils.N(delta)},
			ReturnNone: true,
		})
		if errors.Is(err, ErrConditionFailed) {
			return apperr.ErrPostNotFound
		}
		return err
	}

	_, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:      models.PostsTable,
		Key:        utils.Key("postId", postID),
		Update:     "SET #c = #c - :d",
		Condition:  "attribute_exists(#pk) AND #c >= :d",
		Names:      names,
		Values:     map[string]types.AttributeValue{":d": utils.N(-delta)},
		ReturnNone: true,
	})
	if !errors.Is(err, ErrConditionFailed) {
		return err
	}

	// the decrement would go negative (or the post is gone): floor at zero
	_, err = s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:      models.PostsTable,
		Key:        utils.Key("postId", postID),
		Update:     "SET #c = :zero",
		Condition:  "attribute_exists(#pk)",
		Names:      names,
		Values:     map[string]types.AttributeValue{":zero": utils.N(0)},
		ReturnNone: true,
	})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.ErrPostNotFound
	}
	return err
}

func (s *DynamoStore) MarkPostViral(ctx context.Context, postID string) error {
	_, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:      models.PostsTable,
		Key:        utils.Key("postId", postID),
		Update:     "SET isViral = :true",
		Condition:  "attribute_exists(postId)",
		Values:     map[string]types.AttributeValue{":true": utils.BOOL(true)},
		ReturnNone: true,
	})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.ErrPostNotFound
	}
	return err
}

func (s *DynamoStore) SetRecentComments(ctx context.Context, postID string, recent []models.RecentComment) error {
	if recent == nil {
		recent = []models.RecentComment{}
	}
	_, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:     models.PostsTable,
		Key:       utils.Key("postId", postID),
		Update:    "SET recentComments = :rc, updatedAt = :now",
		Condition: "attribute_exists(postId)",
		Values: map[string]types.AttributeValue{
			":rc":  marshalValue(recent),
			":now": marshalValue(time.Now().UTC()),
		},
		ReturnNone: true,
	})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.ErrPostNotFound
	}
	return err
}

// queryByPartition reads every item under one partition (or index partition) value.
func (s *DynamoStore) queryByPartition(ctx context.Context, table, index, attribute, value string, newestFirst bool, filter string, filterValues map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    aws.String("#pk = :pk"),
		ExpressionAttributeNames:  map[string]string{"#pk": attribute},
		ExpressionAttributeValues: map[string]types.AttributeValue{":pk": utils.S(value)},
		ScanIndexForward:          aws.Bool(!newestFirst),
	}
	if index != "" {
		input.IndexName = aws.String(index)
	}
	if filter != "" {
		input.FilterExpression = aws.String(filter)
		for k, v := range filterValues {
			input.ExpressionAttributeValues[k] = v
		}
	}
	return s.Dynamo.QueryAll(ctx, input)
}
