package services

import (
	"context"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"
	"socialnet_server/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type CreatePostInput struct {
	TextContent string             `json:"textContent"`
	Media       []models.PostMedia `json:"media"`
	Privacy     string             `json:"privacy"`
	PostType    string             `json:"postType"`
	Tags        []string           `json:"tags"`
}

type PostService struct {
	Posts  PostStore
	Users  UserStore
	Access *AccessPolicy
	Now    func() time.Time
}

func NewPostService(posts PostStore, users UserStore, access *AccessPolicy) *PostService {
	return &PostService{Posts: posts, Users: users, Access: access, Now: time.Now}
}

func (s *PostService) CreatePost(ctx context.Context, userID string, input CreatePostInput) (*models.Post, error) {
	text := utils.SanitizeString(input.TextContent, 0)
	if text == "" && len(input.Media) == 0 {
		return nil, apperr.Invalid("post must have text or media")
	}
	if utils.ExceedsLength(text, models.MaxPostLength) {
		return nil, apperr.Invalid("post cannot exceed %d characters", models.MaxPostLength)
	}

	privacy := input.Privacy
	if privacy == "" {
		privacy = models.PrivacyFriends
	}
	if !models.IsValidPrivacy(privacy) {
		return nil, apperr.Invalid("invalid privacy %q", privacy)
	}
	postType := input.PostType
	if postType == "" {
		postType = models.PostTypePost
	}
	if postType != models.PostTypePost && postType != models.PostTypeStory {
		return nil, apperr.Invalid("invalid post type %q", postType)
	}

	author, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := utcNow(s.Now)
	post := &models.Post{
		PostID:         uuid.NewString(),
		UserID:         userID,
		FullName:       author.FullName,
		UserAvatar:     author.ProfilePic,
		TextContent:    text,
		Media:          input.Media,
		Privacy:        privacy,
		PostType:       postType,
		Tags:           input.Tags,
		RecentComments: []models.RecentComment{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	log.Info().Str("postId", post.PostID).Str("userId", userID).Msg("✅ Post created")
	return post, nil
}

// GetPost loads a post the viewer is allowed to see.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	post, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanAccess(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}
