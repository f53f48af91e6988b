package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"
	"socialnet_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func (s *DynamoStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := s.Dynamo.PutItemIfNotExists(ctx, models.CommentsTable, "commentId", comment)
	if errors.Is(err, ErrConditionFailed) {
		return apperr.Conflict("comment %s already exists", comment.CommentID)
	}
	return err
}

func (s *DynamoStore) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	var comment models.Comment
	err := s.Dynamo.GetInto(ctx, models.CommentsTable, utils.Key("commentId", commentID), &comment)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperr.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *DynamoStore) UpdateCommentText(ctx context.Context, commentID, text string, updatedAt time.Time) (*models.Comment, error) {
	attrs, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:     models.CommentsTable,
		Key:       utils.Key("commentId", commentID),
		Update:    "SET #comment = :text, updatedAt = :now",
		Condition: "attribute_exists(commentId)",
		Names:     map[string]string{"#comment": "comment"},
		Values: map[string]types.AttributeValue{
			":text": utils.S(text),
			":now":  marshalValue(updatedAt),
		},
	})
	if errors.Is(err, ErrConditionFailed) {
		return nil, apperr.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := attributevalue.UnmarshalMap(attrs, &comment); err != nil {
		return nil, fmt.Errorf("failed to parse comment: %w", err)
	}
	return &comment, nil
}

func (s *DynamoStore) DeleteComment(ctx context.Context, commentID string) error {
	err := s.Dynamo.DeleteItem(ctx, models.CommentsTable, utils.Key("commentId", commentID),
		"attribute_exists(#pk)", map[string]string{"#pk": "commentId"})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.ErrCommentNotFound
	}
	return err
}

func (s *DynamoStore) DeleteComments(ctx context.Context, commentIDs []string) error {
	if len(commentIDs) == 0 {
		return nil
	}
	requests := make([]types.WriteRequest, 0, len(commentIDs))
	for _, id := range commentIDs {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: utils.Key("commentId", id)},
		})
	}
	return s.Dynamo.BatchWriteItems(ctx, models.CommentsTable, requests)
}

func (s *DynamoStore) ListTopLevelComments(ctx context.Context, postID string) ([]models.Comment, error) {
	items, err := s.queryByPartition(ctx, models.CommentsTable, models.CommentsByPostIndex, "postId", postID, true,
		"attribute_not_exists(parentCommentId)", nil)
	if err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	if err := attributevalue.UnmarshalListOfMaps(items, &comments); err != nil {
		return nil, fmt.Errorf("failed to parse comments: %w", err)
	}
	return comments, nil
}

func (s *DynamoStore) ListReplies(ctx context.Context, parentCommentID string) ([]models.Comment, error) {
	items, err := s.queryByPartition(ctx, models.CommentsTable, models.CommentsByParentIndex, "parentCommentId", parentCommentID, true, "", nil)
	if err != nil {
		return nil, err
	}
	replies := []models.Comment{}
	if err := attributevalue.UnmarshalListOfMaps(items, &replies); err != nil {
		return nil, fmt.Errorf("failed to parse replies: %w", err)
	}
	return replies, nil
}

func (s *DynamoStore) GetReaction(ctx context.Context, postID, userID string) (*models.Reaction, error) {
	var reaction models.Reaction
	err := s.Dynamo.GetInto(ctx, models.ReactionsTable, utils.CompositeKey("postId", postID, "userId", userID), &reaction)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperr.ErrReactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// PutReaction inserts a new reaction; Conflict if the user already reacted.
func (s *DynamoStore) PutReaction(ctx context.Context, reaction *models.Reaction) error {
	err := s.Dynamo.PutItemIfNotExists(ctx, models.ReactionsTable, "userId", reaction)
	if errors.Is(err, ErrConditionFailed) {
		return apperr.Conflict("user %s already reacted to post %s", reaction.UserID, reaction.PostID)
	}
	return err
}

func (s *DynamoStore) UpdateReactionType(ctx context.Context, postID, userID, reactionType string, updatedAt time.Time) (*models.Reaction, error) {
	attrs, err := s.Dynamo.UpdateItem(ctx, UpdateRequest{
		Table:     models.ReactionsTable,
		Key:       utils.CompositeKey("postId", postID, "userId", userID),
		Update:    "SET reactionType = :type, updatedAt = :now",
		Condition: "attribute_exists(userId)",
		Values: map[string]types.AttributeValue{
			":type": utils.S(reactionType),
			":now":  marshalValue(updatedAt),
		},
	})
	if errors.Is(err, ErrConditionFailed) {
		return nil, apperr.ErrReactionNotFound
	}
	if err != nil {
		return nil, err
	}

	var reaction models.Reaction
	if err := attributevalue.UnmarshalMap(attrs, &reaction); err != nil {
		return nil, fmt.Errorf("failed to parse reaction: %w", err)
	}
	return &reaction, nil
}

func (s *DynamoStore) DeleteReaction(ctx context.Context, postID, userID string) error {
	err := s.Dynamo.DeleteItem(ctx, models.ReactionsTable, utils.CompositeKey("postId", postID, "userId", userID),
		"attribute_exists(#sk)", map[string]string{"#sk": "userId"})
	if errors.Is(err, ErrConditionFailed) {
		return apperr.ErrReactionNotFound
	}
	return err
}

func (s *DynamoStore) ListReactions(ctx context.Context, postID string) ([]models.Reaction, error) {
	items, err := s.queryByPartition(ctx, models.ReactionsTable, "", "postId", postID, false, "", nil)
	if err != nil {
		return nil, err
	}
	reactions := []models.Reaction{}
	if err := attributevalue.UnmarshalListOfMaps(items, &reactions); err != nil {
		return nil, fmt.Errorf("failed to parse reactions: %w", err)
	}
	return reactions, nil
}
