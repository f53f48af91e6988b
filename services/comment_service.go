package services

import (
	"context"
	"sort"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"
	"socialnet_server/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type CreateCommentInput struct {
	Comment         string `json:"comment"`
	Media           string `json:"media,omitempty"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
}

// CommentService routes comment writes between the Primary Store and the
// overflow buckets and keeps the post's counter and previews in step.
type CommentService struct {
	Posts         PostStore
	Comments      CommentStore
	Users         UserStore
	Buckets       *BucketService
	Thresholds    *ThresholdService
	Access        *AccessPolicy
	Notifications *NotificationService
	Notifier      Notifier

	// MarkViralOnOverflow flags the post viral when a comment lands in a bucket.
	MarkViralOnOverflow bool
	Now                 func() time.Time
}

func (s *CommentService) now() time.Time {
	return utcNow(s.Now)
}

func (s *CommentService) notifier() Notifier {
	if s.Notifier == nil {
		return NopNotifier{}
	}
	return s.Notifier
}

// CreateComment adds a comment, or a reply when ParentCommentID is set.
func (s *CommentService) CreateComment(ctx context.Context, postID, userID string, input CreateCommentInput) (*models.CommentView, error) {
	text := utils.SanitizeString(input.Comment, 0)
	if text == "" && input.Media == "" {
		return nil, apperr.Invalid("comment must have text or media")
	}
	if utils.ExceedsLength(text, models.MaxCommentLength) {
		return nil, apperr.Invalid("comment cannot exceed %d characters", models.MaxCommentLength)
	}

	post, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanAccess(ctx, post, userID); err != nil {
		return nil, err
	}
	author, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var view *models.CommentView
	if input.ParentCommentID != "" {
		view, err = s.createReply(ctx, post, author, text, input)
	} else {
		view, err = s.createTopLevel(ctx, post, author, text, input.Media)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Posts.AdjustPostCounter(ctx, postID, models.CounterComments, 1); err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("❌ Failed to increment commentsCount")
	}
	if !view.IsReply() {
		s.prependRecent(ctx, post, view)
	}
	if s.Notifications != nil {
		s.Notifications.NotifyEngagement(ctx, post, userID, models.NotificationComment, author.FullName+" commented on your post")
	}
	s.notifier().BroadcastPost(postID, EventCommentAdded, view)

	log.Info().Str("postId", postID).Str("commentId", view.CommentID).Str("tier", view.Tier).Msg("✅ Comment created")
	return view, nil
}

func (s *CommentService) createTopLevel(ctx context.Context, post *models.Post, author *models.User, text, media string) (*models.CommentView, error) {
	now := s.now()
	threshold := s.Thresholds.GetCommentThreshold(ctx)

	if post.CommentsCount >= threshold {
		item, _, err := s.Buckets.AppendItem(ctx, models.KindComment, post.PostID, post.CommentsCount, models.BucketItem{
			UserID:      author.UserID,
			FullName:    author.FullName,
			TextContent: text,
			Media:       media,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return nil, err
		}
		if s.MarkViralOnOverflow && !post.IsViral {
			if err := s.Posts.MarkPostViral(ctx, post.PostID); err != nil {
				log.Error().Err(err).Str("postId", post.PostID).Msg("❌ Failed to mark post viral")
			}
		}
		view := bucketCommentView(post.PostID, item)
		view.ProfilePic = author.ProfilePic
		return &view, nil
	}

	comment := &models.Comment{
		CommentID: uuid.NewString(),
		PostID:    post.PostID,
		UserID:    author.UserID,
		Comment:   text,
		Media:     media,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	view := primaryCommentView(*comment)
	view.FullName = author.FullName
	view.ProfilePic = author.ProfilePic
	return &view, nil
}

// Replies always live in the Primary Store, whatever tier holds the parent.
func (s *CommentService) createReply(ctx context.Context, post *models.Post, author *models.User, text string, input CreateCommentInput) (*models.CommentView, error) {
	parentPostID, err := s.commentPostID(ctx, input.ParentCommentID)
	if err != nil {
		return nil, err
	}
	if parentPostID != post.PostID {
		return nil, apperr.Invalid("parent comment belongs to another post")
	}

	now := s.now()
	reply := &models.Comment{
		CommentID:       uuid.NewString(),
		PostID:          post.PostID,
		UserID:          author.UserID,
		Comment:         text,
		Media:           input.Media,
		ParentCommentID: input.ParentCommentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Comments.CreateComment(ctx, reply); err != nil {
		return nil, err
	}
	view := primaryCommentView(*reply)
	view.FullName = author.FullName
	view.ProfilePic = author.ProfilePic
	return &view, nil
}

// commentPostID resolves the post of a live comment in either tier.
func (s *CommentService) commentPostID(ctx context.Context, commentID string) (string, error) {
	if _, ok := models.ParseBucketItemID(commentID); ok {
		bucket, _, err := s.Buckets.LocateItem(ctx, models.KindComment, commentID)
		if err != nil {
			return "", apperr.ErrCommentNotFound
		}
		return bucket.PostID, nil
	}
	comment, err := s.Comments.GetComment(ctx, commentID)
	if err != nil {
		return "", err
	}
	return comment.PostID, nil
}

// UpdateComment rewrites the text of the author's own comment in whichever
// tier holds it, and refreshes a matching preview on the post.
func (s *CommentService) UpdateComment(ctx context.Context, commentID, userID, text string) (*models.CommentView, error) {
	text = utils.SanitizeString(text, 0)
	if text == "" {
		return nil, apperr.Invalid("comment text is required")
	}
	if utils.ExceedsLength(text, models.MaxCommentLength) {
		return nil, apperr.Invalid("comment cannot exceed %d characters", models.MaxCommentLength)
	}

	var view models.CommentView
	if _, ok := models.ParseBucketItemID(commentID); ok {
		bucket, idx, err := s.Buckets.LocateItem(ctx, models.KindComment, commentID)
		if err != nil {
			return nil, apperr.ErrCommentNotFound
		}
		item := bucket.Items[idx]
		if item.UserID != userID {
			return nil, apperr.Forbidden("not authorized to update this comment")
		}
		item.TextContent = text
		updated, err := s.Buckets.ReplaceItem(ctx, models.KindComment, bucket, idx, item)
		if err != nil {
			return nil, err
		}
		view = bucketCommentView(bucket.PostID, updated)
	} else {
		existing, err := s.Comments.GetComment(ctx, commentID)
		if err != nil {
			return nil, err
		}
		if existing.UserID != userID {
			return nil, apperr.Forbidden("not authorized to update this comment")
		}
		updated, err := s.Comments.UpdateCommentText(ctx, commentID, text, s.now())
		if err != nil {
			return nil, err
		}
		view = primaryCommentView(*updated)
	}

	s.refreshRecent(ctx, view)
	s.notifier().BroadcastPost(view.PostID, EventCommentUpdated, view)
	return &view, nil
}

func (s *CommentService) refreshRecent(ctx context.Context, view models.CommentView) {
	post, err := s.Posts.GetPost(ctx, view.PostID)
	if err != nil {
		log.Error().Err(err).Str("postId", view.PostID).Msg("❌ Failed to load post for recent comments")
		return
	}
	changed := false
	for i := range post.RecentComments {
		if post.RecentComments[i].CommentID == view.CommentID {
			post.RecentComments[i].Comment = view.Comment
			post.RecentComments[i].UpdatedAt = view.UpdatedAt
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := s.Posts.SetRecentComments(ctx, post.PostID, post.RecentComments); err != nil {
		log.Error().Err(err).Str("postId", post.PostID).Msg("❌ Failed to update recent comments")
	}
}

// DeleteComment removes a comment and its replies. Primary comments are
// hard deleted; bucket comments are soft deleted. Only the comment author or
// the post owner may delete.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID string) error {
	var (
		post      *models.Post
		removeTop func() error
	)

	if _, ok := models.ParseBucketItemID(commentID); ok {
		bucket, idx, err := s.Buckets.LocateItem(ctx, models.KindComment, commentID)
		if err != nil {
			return apperr.ErrCommentNotFound
		}
		if post, err = s.Posts.GetPost(ctx, bucket.PostID); err != nil {
			return err
		}
		if bucket.Items[idx].UserID != userID && post.UserID != userID {
			return apperr.Forbidden("not authorized to delete this comment")
		}
		removeTop = func() error {
			found, err := s.Buckets.SoftDeleteAt(ctx, models.KindComment, bucket, idx)
			if err != nil {
				return err
			}
			if !found {
				return apperr.ErrCommentNotFound
			}
			return nil
		}
	} else {
		comment, err := s.Comments.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		if post, err = s.Posts.GetPost(ctx, comment.PostID); err != nil {
			return err
		}
		if comment.UserID != userID && post.UserID != userID {
			return apperr.Forbidden("not authorized to delete this comment")
		}
		removeTop = func() error { return s.Comments.DeleteComment(ctx, commentID) }
	}

	replies, err := s.Comments.ListReplies(ctx, commentID)
	if err != nil {
		return err
	}
	replyIDs := make([]string, 0, len(replies))
	for _, r := range replies {
		replyIDs = append(replyIDs, r.CommentID)
	}
	if err := s.Comments.DeleteComments(ctx, replyIDs); err != nil {
		return err
	}
	if err := removeTop(); err != nil {
		return err
	}

	if err := s.Posts.AdjustPostCounter(ctx, post.PostID, models.CounterComments, -(1 + len(replyIDs))); err != nil {
		log.Error().Err(err).Str("postId", post.PostID).Msg("❌ Failed to decrement commentsCount")
	}
	s.refillRecent(ctx, post, commentID)
	s.notifier().BroadcastPost(post.PostID, EventCommentDeleted, map[string]string{"commentId": commentID, "postId": post.PostID})

	log.Info().Str("postId", post.PostID).Str("commentId", commentID).Int("replies", len(replyIDs)).Msg("🗑️ Comment deleted")
	return nil
}

func (s *CommentService) prependRecent(ctx context.Context, post *models.Post, view *models.CommentView) {
	recent := append([]models.RecentComment{recentFromView(*view)}, post.RecentComments...)
	if len(recent) > models.RecentCommentsLimit {
		recent = recent[:models.RecentCommentsLimit]
	}
	if err := s.Posts.SetRecentComments(ctx, post.PostID, recent); err != nil {
		log.Error().Err(err).Str("postId", post.PostID).Msg("❌ Failed to update recent comments")
	}
}

// refillRecent drops the deleted comment from the previews and tops the list
// back up from the Primary Store, then from the buckets.
func (s *CommentService) refillRecent(ctx context.Context, post *models.Post, deletedID string) {
	present := false
	recent := make([]models.RecentComment, 0, models.RecentCommentsLimit)
	seen := map[string]bool{deletedID: true}
	for _, rc := range post.RecentComments {
		if rc.CommentID == deletedID {
			present = true
			continue
		}
		recent = append(recent, rc)
		seen[rc.CommentID] = true
	}
	if !present {
		return
	}

	if len(recent) < models.RecentCommentsLimit {
		candidates, err := s.recentCandidates(ctx, post.PostID)
		if err != nil {
			log.Error().Err(err).Str("postId", post.PostID).Msg("❌ Failed to load comments for recent refill")
		}
		for _, c := range candidates {
			if len(recent) == models.RecentCommentsLimit {
				break
			}
			if seen[c.CommentID] {
				continue
			}
			seen[c.CommentID] = true
			recent = append(recent, c)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	if err := s.Posts.SetRecentComments(ctx, post.PostID, recent); err != nil {
		log.Error().Err(err).Str("postId", post.PostID).Msg("❌ Failed to update recent comments")
	}
}

// recentCandidates lists primary top-level comments newest first, followed by
// live bucket comments newest first.
func (s *CommentService) recentCandidates(ctx context.Context, postID string) ([]models.RecentComment, error) {
	primary, err := s.Comments.ListTopLevelComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(primary, func(i, j int) bool { return primary[i].CreatedAt.After(primary[j].CreatedAt) })

	var out []models.RecentComment
	var missingNames []string
	for _, c := range primary {
		out = append(out, recentFromView(primaryCommentView(c)))
		missingNames = append(missingNames, c.UserID)
		if len(out) >= models.RecentCommentsLimit {
			break
		}
	}
	if len(missingNames) > 0 {
		users, err := s.Users.BatchGetUsers(ctx, missingNames)
		if err == nil {
			names := make(map[string]string, len(users))
			for _, u := range users {
				names[u.UserID] = u.FullName
			}
			for i := range out {
				out[i].FullName = names[out[i].UserID]
			}
		}
	}

	if len(out) < models.RecentCommentsLimit {
		items, err := s.Buckets.LiveItems(ctx, models.KindComment, postID)
		if err != nil {
			return out, err
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
		for _, it := range items {
			out = append(out, recentFromView(bucketCommentView(postID, it)))
		}
	}
	return out, nil
}

func primaryCommentView(c models.Comment) models.CommentView {
	return models.CommentView{
		CommentID:       c.CommentID,
		PostID:          c.PostID,
		UserID:          c.UserID,
		Comment:         c.Comment,
		Media:           c.Media,
		ParentCommentID: c.ParentCommentID,
		Tier:            models.TierPrimary,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func bucketCommentView(postID string, it models.BucketItem) models.CommentView {
	return models.CommentView{
		CommentID: it.ID,
		PostID:    postID,
		UserID:    it.UserID,
		FullName:  it.FullName,
		Comment:   it.TextContent,
		Media:     it.Media,
		Tier:      models.TierBucket,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func recentFromView(v models.CommentView) models.RecentComment {
	return models.RecentComment{
		CommentID: v.CommentID,
		UserID:    v.UserID,
		FullName:  v.FullName,
		Comment:   v.Comment,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
