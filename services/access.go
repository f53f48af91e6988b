package services

import (
	"context"

	"socialnet_server/apperr"
	"socialnet_server/models"
)

// AccessPolicy decides whether a viewer may see and engage with a post.
type AccessPolicy struct {
	Friends FriendshipStore
}

// CanAccess returns Forbidden when the post's privacy hides it from viewerID.
// The owner always has access.
func (a *AccessPolicy) CanAccess(ctx context.Context, post *models.Post, viewerID string) error {
	if post.UserID == viewerID {
		return nil
	}
	switch post.Privacy {
	case models.PrivacyOnlyMe:
		return apperr.Forbidden("this post is private")
	case models.PrivacyFriends, "":
		if viewerID == "" {
			return apperr.Forbidden("only friends can access this post")
		}
		ok, err := a.AreFriends(ctx, post.UserID, viewerID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("only friends can access this post")
		}
	}
	return nil
}

// AreFriends reports an accepted friendship stored in either direction.
func (a *AccessPolicy) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	for _, pair := range [][2]string{{userID, otherID}, {otherID, userID}} {
		f, err := a.Friends.GetFriendship(ctx, pair[0], pair[1])
		if apperr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return false, err
		}
		if f.Status == models.FriendshipAccepted {
			return true, nil
		}
	}
	return false, nil
}
