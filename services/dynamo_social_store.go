package services

import (
	"context"
	"errors"
	"fmt"

	"socialnet_server/apperr"
	"socialnet_server/models"
	"socialnet_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func (s *DynamoStore) CreateThreshold(ctx context.Context, threshold *models.ThresholdConfig) error {
	err := s.Dynamo.PutItemIfNotExists(ctx, models.OutlierThresholdsTable, "thresholdId", threshold)
	if errors.Is(err, ErrConditionFailed) {
		return apperr.Conflict("threshold %s already exists", threshold.ThresholdID)
	}
	return err
}

func (s *DynamoStore) GetThreshold(ctx context.Context, thresholdID string) (*models.ThresholdConfig, error) {
	var threshold models.ThresholdConfig
	err := s.Dynamo.GetInto(ctx, models.OutlierThresholdsTable, utils.Key("thresholdId", thresholdID), &threshold)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperr.ErrThresholdNotFound
	}
	if err != nil {
		return nil, err
	}
	return &threshold, nil
}

// ListThresholds scans the thresholds table; it only ever holds a handful of versions.
func (s *DynamoStore) ListThresholds(ctx context.Context) ([]models.ThresholdConfig, error) {
	items, err := s.Dynamo.ScanAll(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(models.OutlierThresholdsTable),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	thresholds := []models.ThresholdConfig{}
	if err := attributevalue.UnmarshalListOfMaps(items, &thresholds); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds: %w", err)
	}
	return thresholds, nil
}

func (s *DynamoStore) SaveThreshold(ctx context.Context, threshold *models.ThresholdConfig) error {
	err := s.Dynamo.PutItemIf(ctx, models.OutlierThresholdsTable, threshold,
		"attribute_exists(#pk)", map[string]string{"#pk": "thresholdId"})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.ErrThresholdNotFound
	}
	return err
}

func (s *DynamoStore) DeleteThreshold(ctx context.Context, thresholdID string) error {
	err := s.Dynamo.DeleteItem(ctx, models.OutlierThresholdsTable, utils.Key("thresholdId", thresholdID),
		"attribute_exists(#pk)", map[string]string{"#pk": "thresholdId"})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.ErrThresholdNotFound
	}
	return err
}

func (s *DynamoStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.Dynamo.GetInto(ctx, models.UsersTable, utils.Key("userId", userID), &user)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DynamoStore) BatchGetUsers(ctx context.Context, userIDs []string) ([]models.User, error) {
	keys := make([]map[string]types.AttributeValue, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, utils.Key("userId", id))
	}
	if len(keys) == 0 {
		return []models.User{}, nil
	}

	items, err := s.Dynamo.BatchGetItems(ctx, models.UsersTable, keys)
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := attributevalue.UnmarshalListOfMaps(items, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}
	return users, nil
}

func (s *DynamoStore) GetFriendship(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	var friendship models.Friendship
	err := s.Dynamo.GetInto(ctx, models.FriendshipsTable, utils.CompositeKey("userId", userID, "friendId", friendID), &friendship)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperr.NotFound("friendship not found")
	}
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

func (s *DynamoStore) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return s.Dynamo.PutItem(ctx, models.NotificationsTable, notification)
}

func (s *DynamoStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	items, err := s.queryByPartition(ctx, models.NotificationsTable, "", "userId", userID, true, "", nil)
	if err != nil {
		return nil, err
	}
	notifications := []models.Notification{}
	if err := attributevalue.UnmarshalListOfMaps(items, &notifications); err != nil {
		return nil, fmt.Errorf("failed to parse notifications: %w", err)
	}
	return notifications, nil
}

func (s *DynamoStore) MarkNotificationRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	attrs, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:     models.NotificationsTable,
		Key:       utils.CompositeKey("userId", userID, "notificationId", notificationID),
		Update:    "SET isRead = :true",
		Condition: "attribute_exists(notificationId)",
		Values:    map[string]types.AttributeValue{":true": utils.BOOL(true)},
	})
	if errors.Is(err, ErrConditionFailed) {
		return nil, apperr.NotFound("notification not found")
	}
	if err != nil {
		return nil, err
	}
	var notification models.Notification
	if err := attributevalue.UnmarshalMap(attrs, &notification); err != nil {
		return nil, fmt.Errorf("failed to parse notification: %w", err)
	}
	return &notification, nil
}

func (s *DynamoStore) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	err := s.Dynamo.DeleteItem(ctx, models.NotificationsTable, utils.CompositeKey("userId", userID, "notificationId", notificationID),
		"attribute_exists(#sk)", map[string]string{"#sk": "notificationId"})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.NotFound("notification not found")
	}
	return err
}

func (s *DynamoStore) DeleteAllNotifications(ctx context.Context, userID string) (int, error) {
	items, err := s.queryByPartition(ctx, models.NotificationsTable, "", "userId", userID, false, "", nil)
	if err != nil {
		return 0, err
	}

	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: utils.CompositeKey("userId", userID, "notificationId", utils.ExtractString(item, "notificationId")),
			},
		})
	}
	if err := s.Dynamo.BatchWriteItems(ctx, models.NotificationsTable, requests); err != nil {
		return 0, err
	}
	return len(requests), nil
}

func (s *DynamoStore) CreateShare(ctx context.Context, share *models.Share) error {
	err := s.Dynamo.PutItemIfNotExists(ctx, models.SharesTable, "userId", share)
	if errors.Is(err, ErrConditionFailed) {
		return apperr.Conflict("you have already shared this post")
	}
	return err
}

func (s *DynamoStore) GetShare(ctx context.Context, postID, userID string) (*models.Share, error) {
	var share models.Share
	err := s.Dynamo.GetInto(ctx, models.SharesTable, utils.CompositeKey("postId", postID, "userId", userID), &share)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperr.NotFound("share not found")
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (s *DynamoStore) DeleteShare(ctx context.Context, postID, userID string) error {
	err := s.Dynamo.DeleteItem(ctx, models.SharesTable, utils.CompositeKey("postId", postID, "userId", userID),
		"attribute_exists(#sk)", map[string]string{"#sk": "userId"})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.NotFound("share not found")
	}
	return err
}

func (s *DynamoStore) ListSharesByPost(ctx context.Context, postID string) ([]models.Share, error) {
	items, err := s.queryByPartition(ctx, models.SharesTable, "", "postId", postID, false, "", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalShares(items)
}

func (s *DynamoStore) ListSharesByUser(ctx context.Context, userID string) ([]models.Share, error) {
	items, err := s.queryByPartition(ctx, models.SharesTable, models.SharesByUserIndex, "userId", userID, true, "", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalShares(items)
}

func unmarshalShares(items []map[string]types.AttributeValue) ([]models.Share, error) {
	shares := []models.Share{}
	if err := attributevalue.UnmarshalListOfMaps(items, &shares); err != nil {
		return nil, fmt.Errorf("failed to parse shares: %w", err)
	}
	return shares, nil
}
