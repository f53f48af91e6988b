package services

import (
	"context"
	"strings"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/rs/zerolog/log"
)

// ReactionResult is the outcome of a create-or-update reaction call.
type ReactionResult struct {
	Reaction models.ReactionView `json:"reaction"`
	Created  bool                `json:"created"`
}

// ReactionService keeps one reaction per user per post across both tiers.
type ReactionService struct {
	Posts         PostStore
	Reactions     ReactionStore
	Users         UserStore
	Buckets       *BucketService
	Thresholds    *ThresholdService
	Access        *AccessPolicy
	Notifications *NotificationService
	Notifier      Notifier
	Now           func() time.Time
}

func (s *ReactionService) now() time.Time {
	return utcNow(s.Now)
}

func (s *ReactionService) notifier() Notifier {
	if s.Notifier == nil {
		return NopNotifier{}
	}
	return s.Notifier
}

// React creates the user's reaction or changes its type. An existing bucket
// reaction is updated in place, then an existing primary reaction; only a
// user with no reaction yet is routed by the threshold.
func (s *ReactionService) React(ctx context.Context, postID, userID, reactionType string) (*ReactionResult, error) {
	if !models.IsValidReactionType(reactionType) {
		return nil, apperr.Invalid("invalid reaction type, must be one of: %s", strings.Join(models.ReactionTypes, ", "))
	}

	post, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanAccess(ctx, post, userID); err != nil {
		return nil, err
	}

	bucket, idx, err := s.Buckets.FindLiveItemByUser(ctx, models.KindReaction, postID, userID)
	if err != nil {
		return nil, err
	}
	if bucket != nil {
		item := bucket.Items[idx]
		item.ReactionType = reactionType
		updated, err := s.Buckets.ReplaceItem(ctx, models.KindReaction, bucket, idx, item)
		if err != nil {
			return nil, err
		}
		result := &ReactionResult{Reaction: bucketReactionView(postID, updated)}
		s.notifier().BroadcastPost(postID, EventReaction, result.Reaction)
		return result, nil
	}

	if _, err := s.Reactions.GetReaction(ctx, postID, userID); err == nil {
		return s.updatePrimary(ctx, postID, userID, reactionType)
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	author, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var view models.ReactionView
	if post.ReactionsCount >= s.Thresholds.GetReactionThreshold(ctx) {
		item, _, err := s.Buckets.AppendItem(ctx, models.KindReaction, postID, post.ReactionsCount, models.BucketItem{
			UserID:       userID,
			FullName:     author.FullName,
			ReactionType: reactionType,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return nil, err
		}
		if !post.IsViral {
			if err := s.Posts.MarkPostViral(ctx, postID); err != nil {
				log.Error().Err(err).Str("postId", postID).Msg("❌ Failed to mark post viral")
			}
		}
		view = bucketReactionView(postID, item)
	} else {
		reaction := &models.Reaction{
			PostID:       postID,
			UserID:       userID,
			ReactionType: reactionType,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err := s.Reactions.PutReaction(ctx, reaction)
		if apperr.IsConflict(err) {
			// a concurrent request from the same user created it first
			return s.updatePrimary(ctx, postID, userID, reactionType)
		}
		if err != nil {
			return nil, err
		}
		view = primaryReactionView(*reaction)
		view.FullName = author.FullName
	}
	view.ProfilePic = author.ProfilePic

	if err := s.Posts.AdjustPostCounter(ctx, postID, models.CounterReactions, 1); err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("❌ Failed to increment reactionsCount")
	}
	if s.Notifications != nil {
		s.Notifications.NotifyEngagement(ctx, post, userID, models.NotificationReaction, author.FullName+" reacted to your post")
	}
	s.notifier().BroadcastPost(postID, EventReaction, view)

	log.Info().Str("postId", postID).Str("userId", userID).Str("tier", view.Tier).Msg("✅ Reaction created")
	return &ReactionResult{Reaction: view, Created: true}, nil
}

func (s *ReactionService) updatePrimary(ctx context.Context, postID, userID, reactionType string) (*ReactionResult, error) {
	updated, err := s.Reactions.UpdateReactionType(ctx, postID, userID, reactionType, s.now())
	if err != nil {
		return nil, err
	}
	result := &ReactionResult{Reaction: primaryReactionView(*updated)}
	s.notifier().BroadcastPost(postID, EventReaction, result.Reaction)
	return result, nil
}

// RemoveReaction deletes targetUserID's reaction on the post. The actor must
// be that user or the post owner. The Primary Store is tried first.
func (s *ReactionService) RemoveReaction(ctx context.Context, postID, actorID, targetUserID string) error {
	if targetUserID == "" {
		targetUserID = actorID
	}
	post, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if actorID != targetUserID && actorID != post.UserID {
		return apperr.Forbidden("not authorized to remove this reaction")
	}

	err = s.Reactions.DeleteReaction(ctx, postID, targetUserID)
	switch {
	case err == nil:
	case apperr.IsNotFound(err):
		bucket, idx, err := s.Buckets.FindLiveItemByUser(ctx, models.KindReaction, postID, targetUserID)
		if err != nil {
			return err
		}
		if bucket == nil {
			return apperr.ErrReactionNotFound
		}
		found, err := s.Buckets.SoftDeleteAt(ctx, models.KindReaction, bucket, idx)
		if err != nil {
			return err
		}
		if !found {
			return apperr.ErrReactionNotFound
		}
	default:
		return err
	}

	if err := s.Posts.AdjustPostCounter(ctx, postID, models.CounterReactions, -1); err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("❌ Failed to decrement reactionsCount")
	}
	s.notifier().BroadcastPost(postID, EventReactionRemove, map[string]string{"postId": postID, "userId": targetUserID})

	log.Info().Str("postId", postID).Str("userId", targetUserID).Msg("🗑️ Reaction removed")
	return nil
}

func primaryReactionView(r models.Reaction) models.ReactionView {
	return models.ReactionView{
		ReactionID:   models.PrimaryReactionID(r.PostID, r.UserID),
		PostID:       r.PostID,
		UserID:       r.UserID,
		ReactionType: r.ReactionType,
		Tier:         models.TierPrimary,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func bucketReactionView(postID string, it models.BucketItem) models.ReactionView {
	return models.ReactionView{
		ReactionID:   it.ID,
		PostID:       postID,
		UserID:       it.UserID,
		FullName:     it.FullName,
		ReactionType: it.ReactionType,
		Tier:         models.TierBucket,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}
