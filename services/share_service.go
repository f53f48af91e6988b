package services

import (
	"context"
	"sort"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/rs/zerolog/log"
)

// ShareView is a share with the sharer's display identity.
type ShareView struct {
	models.Share
	User *models.UserSummary `json:"user,omitempty"`
}

type ShareService struct {
	Posts         PostStore
	Shares        ShareStore
	Users         UserStore
	Thresholds    *ThresholdService
	Access        *AccessPolicy
	Directory     *UserDirectory
	Notifications *NotificationService
	Now           func() time.Time
}

// SharePost records a share once per user and post. Reaching the share
// threshold marks the post viral.
func (s *ShareService) SharePost(ctx context.Context, postID, userID string) (*models.Share, error) {
	post, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanAccess(ctx, post, userID); err != nil {
		return nil, err
	}
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	share := &models.Share{PostID: postID, UserID: userID, CreatedAt: utcNow(s.Now)}
	if err := s.Shares.CreateShare(ctx, share); err != nil {
		return nil, err
	}

	if err := s.Posts.AdjustPostCounter(ctx, postID, models.CounterShares, 1); err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("❌ Failed to increment shareCount")
	}
	if !post.IsViral && post.ShareCount+1 >= s.Thresholds.GetShareThreshold(ctx) {
		if err := s.Posts.MarkPostViral(ctx, postID); err != nil {
			log.Error().Err(err).Str("postId", postID).Msg("❌ Failed to mark post viral")
		}
	}
	if s.Notifications != nil {
		s.Notifications.NotifyEngagement(ctx, post, userID, models.NotificationShare, user.FullName+" shared your post")
	}

	log.Info().Str("postId", postID).Str("userId", userID).Msg("✅ Post shared")
	return share, nil
}

func (s *ShareService) UnsharePost(ctx context.Context, postID, userID string) error {
	if err := s.Shares.DeleteShare(ctx, postID, userID); err != nil {
		return err
	}
	if err := s.Posts.AdjustPostCounter(ctx, postID, models.CounterShares, -1); err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("❌ Failed to decrement shareCount")
	}
	return nil
}

func (s *ShareService) HasShared(ctx context.Context, postID, userID string) (bool, error) {
	_, err := s.Shares.GetShare(ctx, postID, userID)
	if err == nil {
		return true, nil
	}
	if apperr.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *ShareService) ListPostShares(ctx context.Context, postID, viewerID string, page, limit int) (models.Page[ShareView], error) {
	post, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		return models.Page[ShareView]{}, err
	}
	if err := s.Access.CanAccess(ctx, post, viewerID); err != nil {
		return models.Page[ShareView]{}, err
	}
	shares, err := s.Shares.ListSharesByPost(ctx, postID)
	if err != nil {
		return models.Page[ShareView]{}, err
	}
	return s.page(ctx, shares, page, limit)
}

func (s *ShareService) ListUserShares(ctx context.Context, userID string, page, limit int) (models.Page[ShareView], error) {
	shares, err := s.Shares.ListSharesByUser(ctx, userID)
	if err != nil {
		return models.Page[ShareView]{}, err
	}
	return s.page(ctx, shares, page, limit)
}

func (s *ShareService) page(ctx context.Context, shares []models.Share, page, limit int) (models.Page[ShareView], error) {
	sort.SliceStable(shares, func(i, j int) bool {
		return newestFirst(shares[i].CreatedAt, shares[j].CreatedAt, shares[i].UserID+shares[i].PostID, shares[j].UserID+shares[j].PostID)
	})
	views := make([]ShareView, len(shares))
	for i, sh := range shares {
		views[i] = ShareView{Share: sh}
	}
	result := models.Paginate(views, page, limit)
	if s.Directory == nil || len(result.Items) == 0 {
		return result, nil
	}

	ids := make([]string, len(result.Items))
	for i, v := range result.Items {
		ids[i] = v.UserID
	}
	users, err := s.Directory.Lookup(ctx, ids)
	if err != nil {
		return models.Page[ShareView]{}, err
	}
	for i := range result.Items {
		if u, ok := users[result.Items[i].UserID]; ok {
			u := u
			result.Items[i].User = &u
		}
	}
	return result, nil
}
