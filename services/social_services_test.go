package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessPolicy(t *testing.T) {
	store := NewMemoryStore()
	policy := &AccessPolicy{Friends: store}
	ctx := context.Background()

	store.AddFriendship(bobID, ownerID, models.FriendshipAccepted)
	store.AddFriendship(ownerID, aliceID, models.FriendshipPending)

	tests := []struct {
		name    string
		privacy string
		viewer  string
		allowed bool
	}{
		{"owner sees onlyme", models.PrivacyOnlyMe, ownerID, true},
		{"friend blocked from onlyme", models.PrivacyOnlyMe, bobID, false},
		{"public open to strangers", models.PrivacyPublic, aliceID, true},
		{"friend stored in reverse direction", models.PrivacyFriends, bobID, true},
		{"pending request is not a friendship", models.PrivacyFriends, aliceID, false},
		{"empty privacy treated as friends", "", aliceID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := &models.Post{PostID: "p", UserID: ownerID, Privacy: tt.privacy}
			err := policy.CanAccess(ctx, post, tt.viewer)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsForbidden(err), "expected forbidden, got %v", err)
			}
		})
	}
}

// strictFriendshipStore rejects empty key attributes the way DynamoDB does.
type strictFriendshipStore struct {
	FriendshipStore
	calls int
}

func (s *strictFriendshipStore) GetFriendship(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	s.calls++
	if userID == "" || friendID == "" {
		return nil, errors.New("ValidationException: empty key attribute")
	}
	return s.FriendshipStore.GetFriendship(ctx, userID, friendID)
}

func TestAccessPolicy_AnonymousViewer(t *testing.T) {
	friends := &strictFriendshipStore{FriendshipStore: NewMemoryStore()}
	policy := &AccessPolicy{Friends: friends}
	ctx := context.Background()

	for _, privacy := range []string{models.PrivacyFriends, "", models.PrivacyOnlyMe} {
		err := policy.CanAccess(ctx, &models.Post{PostID: "p", UserID: ownerID, Privacy: privacy}, "")
		assert.True(t, apperr.IsForbidden(err), "privacy %q: got %v", privacy, err)
	}
	assert.NoError(t, policy.CanAccess(ctx, &models.Post{PostID: "p", UserID: ownerID, Privacy: models.PrivacyPublic}, ""))
	assert.Zero(t, friends.calls)
}

func TestNotificationService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notifications

	_, err := svc.Create(env.ctx, CreateNotificationInput{UserID: aliceID, NotificationType: "spam", NotificationMessage: "x"})
	assert.True(t, apperr.IsInvalid(err))
	_, err = svc.Create(env.ctx, CreateNotificationInput{UserID: aliceID, NotificationType: models.NotificationSystem, NotificationMessage: strings.Repeat("a", models.MaxNotificationLength+1)})
	assert.True(t, apperr.IsInvalid(err))
	_, err = svc.Create(env.ctx, CreateNotificationInput{UserID: "nobody", NotificationType: models.NotificationSystem, NotificationMessage: "hi"})
	assert.True(t, apperr.IsNotFound(err))

	first, err := svc.Create(env.ctx, CreateNotificationInput{UserID: aliceID, NotificationType: models.NotificationSystem, NotificationMessage: "welcome"})
	require.NoError(t, err)
	second, err := svc.Create(env.ctx, CreateNotificationInput{UserID: aliceID, ActorID: bobID, NotificationType: models.NotificationTags, NotificationMessage: "Bob tagged you"})
	require.NoError(t, err)
	assert.Equal(t, 2, env.notifier.count(EventNotification))

	page, err := svc.List(env.ctx, aliceID, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.NotificationID, page.Items[0].NotificationID)

	tags, err := svc.List(env.ctx, aliceID, models.NotificationTags, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, tags.Total)

	unread, err := svc.UnreadCount(env.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	_, err = svc.MarkRead(env.ctx, bobID, first.NotificationID)
	assert.True(t, apperr.IsNotFound(err))

	read, err := svc.MarkRead(env.ctx, aliceID, first.NotificationID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	unread, err = svc.UnreadCount(env.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, svc.Delete(env.ctx, aliceID, first.NotificationID))
	assert.True(t, apperr.IsNotFound(svc.Delete(env.ctx, aliceID, first.NotificationID)))

	n, err := svc.DeleteAll(env.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestShareService(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})
	env.setThresholds(t, 1, 1000, 1000, 2)

	share, err := env.shares.SharePost(env.ctx, "p1", aliceID)
	require.NoError(t, err)
	assert.Equal(t, aliceID, share.UserID)
	assert.False(t, env.post(t, "p1").IsViral)

	_, err = env.shares.SharePost(env.ctx, "p1", aliceID)
	assert.True(t, apperr.IsConflict(err))

	_, err = env.shares.SharePost(env.ctx, "p1", bobID)
	require.NoError(t, err)
	post := env.post(t, "p1")
	assert.Equal(t, 2, post.ShareCount)
	assert.True(t, post.IsViral)

	shared, err := env.shares.HasShared(env.ctx, "p1", bobID)
	require.NoError(t, err)
	assert.True(t, shared)

	page, err := env.shares.ListPostShares(env.ctx, "p1", ownerID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, bobID, page.Items[0].UserID)
	require.NotNil(t, page.Items[0].User)
	assert.Equal(t, "Bob", page.Items[0].User.FullName)

	mine, err := env.shares.ListUserShares(env.ctx, aliceID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Total)

	require.NoError(t, env.shares.UnsharePost(env.ctx, "p1", bobID))
	assert.Equal(t, 1, env.post(t, "p1").ShareCount)
	assert.True(t, apperr.IsNotFound(env.shares.UnsharePost(env.ctx, "p1", bobID)))

	shared, err = env.shares.HasShared(env.ctx, "p1", bobID)
	require.NoError(t, err)
	assert.False(t, shared)

	notes, err := env.notifications.List(env.ctx, ownerID, models.NotificationShare, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, notes.Total)
}

func TestPostService(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.posts.CreatePost(env.ctx, aliceID, CreatePostInput{})
	assert.True(t, apperr.IsInvalid(err))
	_, err = env.posts.CreatePost(env.ctx, aliceID, CreatePostInput{TextContent: "x", Privacy: "secret"})
	assert.True(t, apperr.IsInvalid(err))

	post, err := env.posts.CreatePost(env.ctx, aliceID, CreatePostInput{TextContent: "  hello world  "})
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.TextContent)
	assert.Equal(t, models.PrivacyFriends, post.Privacy)
	assert.Equal(t, models.PostTypePost, post.PostType)
	assert.Equal(t, "Alice", post.FullName)
	assert.NotNil(t, post.RecentComments)

	_, err = env.posts.GetPost(env.ctx, post.PostID, bobID)
	assert.True(t, apperr.IsForbidden(err))

	env.store.AddFriendship(aliceID, bobID, models.FriendshipAccepted)
	got, err := env.posts.GetPost(env.ctx, post.PostID, bobID)
	require.NoError(t, err)
	assert.Equal(t, post.PostID, got.PostID)
}

func TestUserDirectory_WithoutCache(t *testing.T) {
	env := newTestEnv(t)
	dir := NewUserDirectory(env.store, nil, 0)

	users, err := dir.Lookup(env.ctx, []string{aliceID, bobID, aliceID, "ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "alice.png", users[aliceID].ProfilePic)
	assert.Equal(t, "Bob", users[bobID].FullName)

	empty, err := dir.Lookup(env.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserDirectory_UnreachableCacheFallsBackToStore(t *testing.T) {
	env := newTestEnv(t)
	cache := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = cache.Close() })
	dir := NewUserDirectory(env.store, cache, time.Minute)

	users, err := dir.Lookup(env.ctx, []string{bobID})
	require.NoError(t, err)
	assert.Equal(t, "Bob", users[bobID].FullName)

}

func TestMediaService_PresignsScopedKeys(t *testing.T) {
	client := s3.New(s3.Options{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	svc := NewMediaService(client, "media-bucket")
	ctx := context.Background()

	url, key, err := svc.GenerateUploadURL(ctx, "comment", "my photo.png", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "comments/"), key)
	assert.True(t, strings.HasSuffix(key, "-my_photo.png"), key)
	assert.Contains(t, url, "media-bucket")
	assert.Contains(t, url, "X-Amz-Signature")

	_, key, err = svc.GenerateUploadURL(ctx, "post", "a.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "posts/"), key)

	_, _, err = svc.GenerateUploadURL(ctx, "avatar", "a.jpg", "image/jpeg")
	assert.True(t, apperr.IsInvalid(err))
	_, _, err = svc.GenerateUploadURL(ctx, "post", "", "image/jpeg")
	assert.True(t, apperr.IsInvalid(err))

	readURL, err := svc.GenerateReadURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, readURL, "X-Amz-Signature")
}
