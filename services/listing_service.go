package services

import (
	"context"
	"sort"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"
)

// Default page sizes per listing.
const (
	DefaultCommentsLimit  = 20
	DefaultReactionsLimit = 50
	DefaultRepliesLimit   = 10
)

// ReactionSummary counts live reactions by type across both tiers.
type ReactionSummary struct {
	Summary map[string]int `json:"summary"`
	Total   int            `json:"total"`
}

// ListingService reads engagement from both tiers and serves one merged,
// newest-first view.
type ListingService struct {
	Posts     PostStore
	Comments  CommentStore
	Reactions ReactionStore
	Buckets   *BucketService
	Access    *AccessPolicy
	Directory *UserDirectory
}

func (s *ListingService) visiblePost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	post, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanAccess(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}

func newestFirst(aTime, bTime time.Time, aID, bID string) bool {
	if aTime.Equal(bTime) {
		return aID > bID
	}
	return aTime.After(bTime)
}

// ListComments merges primary top-level comments with live bucket comments.
func (s *ListingService) ListComments(ctx context.Context, postID, viewerID string, page, limit int) (models.Page[models.CommentView], error) {
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return models.Page[models.CommentView]{}, err
	}

	primary, err := s.Comments.ListTopLevelComments(ctx, postID)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	items, err := s.Buckets.LiveItems(ctx, models.KindComment, postID)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}

	merged := make([]models.CommentView, 0, len(primary)+len(items))
	for _, c := range primary {
		merged = append(merged, primaryCommentView(c))
	}
	for _, it := range items {
		merged = append(merged, bucketCommentView(postID, it))
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return newestFirst(merged[i].CreatedAt, merged[j].CreatedAt, merged[i].CommentID, merged[j].CommentID)
	})

	result := models.Paginate(merged, page, limit)
	if err := s.resolveComments(ctx, result.Items); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	return result, nil
}

// ListReplies lists the Primary Store replies to a comment of either tier.
func (s *ListingService) ListReplies(ctx context.Context, commentID, viewerID string, page, limit int) (models.Page[models.CommentView], error) {
	var postID string
	if _, ok := models.ParseBucketItemID(commentID); ok {
		bucket, _, err := s.Buckets.LocateItem(ctx, models.KindComment, commentID)
		if err != nil {
			return models.Page[models.CommentView]{}, apperr.ErrCommentNotFound
		}
		postID = bucket.PostID
	} else {
		parent, err := s.Comments.GetComment(ctx, commentID)
		if err != nil {
			return models.Page[models.CommentView]{}, err
		}
		postID = parent.PostID
	}
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return models.Page[models.CommentView]{}, err
	}

	replies, err := s.Comments.ListReplies(ctx, commentID)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	views := make([]models.CommentView, 0, len(replies))
	for _, r := range replies {
		views = append(views, primaryCommentView(r))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return newestFirst(views[i].CreatedAt, views[j].CreatedAt, views[i].CommentID, views[j].CommentID)
	})

	result := models.Paginate(views, page, limit)
	if err := s.resolveComments(ctx, result.Items); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	return result, nil
}

// ListReactions merges both tiers, optionally keeping one reaction type.
func (s *ListingService) ListReactions(ctx context.Context, postID, viewerID string, page, limit int, reactionType string) (models.Page[models.ReactionView], error) {
	if reactionType != "" && !models.IsValidReactionType(reactionType) {
		return models.Page[models.ReactionView]{}, apperr.Invalid("invalid reaction type %q", reactionType)
	}
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return models.Page[models.ReactionView]{}, err
	}

	merged, err := s.allReactions(ctx, postID)
	if err != nil {
		return models.Page[models.ReactionView]{}, err
	}
	if reactionType != "" {
		filtered := make([]models.ReactionView, 0, len(merged))
		for _, r := range merged {
			if r.ReactionType == reactionType {
				filtered = append(filtered, r)
			}
		}
		merged = filtered
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return newestFirst(merged[i].CreatedAt, merged[j].CreatedAt, merged[i].ReactionID, merged[j].ReactionID)
	})

	result := models.Paginate(merged, page, limit)
	if err := s.resolveReactions(ctx, result.Items); err != nil {
		return models.Page[models.ReactionView]{}, err
	}
	return result, nil
}

// ReactionSummary counts live reactions per type. Total is recomputed, not
// read from the post counter.
func (s *ListingService) ReactionSummary(ctx context.Context, postID, viewerID string) (*ReactionSummary, error) {
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	all, err := s.allReactions(ctx, postID)
	if err != nil {
		return nil, err
	}
	summary := &ReactionSummary{Summary: make(map[string]int, len(models.ReactionTypes))}
	for _, t := range models.ReactionTypes {
		summary.Summary[t] = 0
	}
	for _, r := range all {
		summary.Summary[r.ReactionType]++
		summary.Total++
	}
	return summary, nil
}

// GetUserReaction returns userID's live reaction on the post from either tier.
func (s *ListingService) GetUserReaction(ctx context.Context, postID, userID string) (*models.ReactionView, error) {
	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return nil, err
	}
	bucket, idx, err := s.Buckets.FindLiveItemByUser(ctx, models.KindReaction, postID, userID)
	if err != nil {
		return nil, err
	}
	if bucket != nil {
		view := bucketReactionView(postID, bucket.Items[idx])
		return &view, nil
	}
	reaction, err := s.Reactions.GetReaction(ctx, postID, userID)
	if apperr.IsNotFound(err) {
		return nil, apperr.NotFound("user has not reacted to this post")
	}
	if err != nil {
		return nil, err
	}
	view := primaryReactionView(*reaction)
	return &view, nil
}

func (s *ListingService) allReactions(ctx context.Context, postID string) ([]models.ReactionView, error) {
	primary, err := s.Reactions.ListReactions(ctx, postID)
	if err != nil {
		return nil, err
	}
	items, err := s.Buckets.LiveItems(ctx, models.KindReaction, postID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ReactionView, 0, len(primary)+len(items))
	for _, r := range primary {
		out = append(out, primaryReactionView(r))
	}
	for _, it := range items {
		out = append(out, bucketReactionView(postID, it))
	}
	return out, nil
}

// Identity is resolved for the returned page only.
func (s *ListingService) resolveComments(ctx context.Context, views []models.CommentView) error {
	if s.Directory == nil || len(views) == 0 {
		return nil
	}
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.UserID
	}
	users, err := s.Directory.Lookup(ctx, ids)
	if err != nil {
		return err
	}
	for i := range views {
		if u, ok := users[views[i].UserID]; ok {
			views[i].FullName = u.FullName
			views[i].ProfilePic = u.ProfilePic
		}
	}
	return nil
}

func (s *ListingService) resolveReactions(ctx context.Context, views []models.ReactionView) error {
	if s.Directory == nil || len(views) == 0 {
		return nil
	}
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.UserID
	}
	users, err := s.Directory.Lookup(ctx, ids)
	if err != nil {
		return err
	}
	for i := range views {
		if u, ok := users[views[i].UserID]; ok {
			views[i].FullName = u.FullName
			views[i].ProfilePic = u.ProfilePic
		}
	}
	return nil
}
