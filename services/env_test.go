package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialnet_server/models"

	"github.com/stretchr/testify/require"
)

// tickClock advances one millisecond on every read so writes get distinct times.
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTickClock() *tickClock {
	return &tickClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *tickClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type pushedEvent struct {
	Room  string
	Event string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []pushedEvent
}

func (n *recordingNotifier) NotifyUser(userID, event string, _ interface{}) {
	n.mu.Lock()
	n.events = append(n.events, pushedEvent{Room: "user:" + userID, Event: event})
	n.mu.Unlock()
}

func (n *recordingNotifier) BroadcastPost(postID, event string, _ interface{}) {
	n.mu.Lock()
	n.events = append(n.events, pushedEvent{Room: "post:" + postID, Event: event})
	n.mu.Unlock()
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Event == event {
			c++
		}
	}
	return c
}

const (
	ownerID = "u-owner"
	aliceID = "u-alice"
	bobID   = "u-bob"
)

type testEnv struct {
	ctx           context.Context
	store         *MemoryStore
	clock         *tickClock
	notifier      *recordingNotifier
	thresholds    *ThresholdService
	buckets       *BucketService
	notifications *NotificationService
	comments      *CommentService
	reactions     *ReactionService
	listing       *ListingService
	shares        *ShareService
	posts         *PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := NewMemoryStore()
	store.PutUser(models.User{UserID: ownerID, FullName: "Olivia Owner"})
	store.PutUser(models.User{UserID: aliceID, FullName: "Alice", ProfilePic: "alice.png"})
	store.PutUser(models.User{UserID: bobID, FullName: "Bob"})

	clock := newTickClock()
	notifier := &recordingNotifier{}
	access := &AccessPolicy{Friends: store}

	thresholds := NewThresholdService(store, models.DefaultThresholdCacheTTL, DefaultThresholds())
	thresholds.Now = clock.Now
	buckets := NewBucketService(store, models.DefaultBucketSize)
	buckets.Now = clock.Now
	notifications := NewNotificationService(store, store, notifier)
	notifications.Now = clock.Now
	directory := NewUserDirectory(store, nil, 0)

	env := &testEnv{
		ctx:           context.Background(),
		store:         store,
		clock:         clock,
		notifier:      notifier,
		thresholds:    thresholds,
		buckets:       buckets,
		notifications: notifications,
	}
	env.comments = &CommentService{
		Posts: store, Comments: store, Users: store,
		Buckets: buckets, Thresholds: thresholds, Access: access,
		Notifications: notifications, Notifier: notifier, Now: clock.Now,
	}
	env.reactions = &ReactionService{
		Posts: store, Reactions: store, Users: store,
		Buckets: buckets, Thresholds: thresholds, Access: access,
		Notifications: notifications, Notifier: notifier, Now: clock.Now,
	}
	env.listing = &ListingService{
		Posts: store, Comments: store, Reactions: store,
		Buckets: buckets, Access: access, Directory: directory,
	}
	env.shares = &ShareService{
		Posts: store, Shares: store, Users: store,
		Thresholds: thresholds, Access: access, Directory: directory,
		Notifications: notifications, Now: clock.Now,
	}
	env.posts = &PostService{Posts: store, Users: store, Access: access, Now: clock.Now}
	return env
}

// seedPost stores a public post owned by ownerID unless the caller overrides it.
func (e *testEnv) seedPost(t *testing.T, post models.Post) *models.Post {
	t.Helper()
	if post.UserID == "" {
		post.UserID = ownerID
	}
	if post.Privacy == "" {
		post.Privacy = models.PrivacyPublic
	}
	if post.PostType == "" {
		post.PostType = models.PostTypePost
	}
	post.CreatedAt = e.clock.Now()
	post.UpdatedAt = post.CreatedAt
	require.NoError(t, e.store.CreatePost(e.ctx, &post))
	return &post
}

func (e *testEnv) post(t *testing.T, postID string) *models.Post {
	t.Helper()
	post, err := e.store.GetPost(e.ctx, postID)
	require.NoError(t, err)
	return post
}

// setThresholds enables a fresh threshold version.
func (e *testEnv) setThresholds(t *testing.T, version, reaction, comment, share int) *models.ThresholdConfig {
	t.Helper()
	cfg, err := e.thresholds.CreateThreshold(e.ctx, models.ThresholdInput{
		ReactionThreshold: reaction,
		CommentThreshold:  comment,
		ShareThreshold:    share,
		Version:           version,
		Enabled:           true,
	})
	require.NoError(t, err)
	return cfg
}

func (e *testEnv) comment(t *testing.T, postID, userID, text string) *models.CommentView {
	t.Helper()
	view, err := e.comments.CreateComment(e.ctx, postID, userID, CreateCommentInput{Comment: text})
	require.NoError(t, err)
	return view
}

func bucketIDOf(t *testing.T, itemID string) string {
	t.Helper()
	loc, ok := models.ParseBucketItemID(itemID)
	require.True(t, ok, "expected a bucket item id, got %q", itemID)
	return loc.BucketID
}
