package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"
)

// MemoryStore is an in-process Store used for local development and tests.
// It mirrors the conditional-write semantics of DynamoStore.
type MemoryStore struct {
	mu sync.RWMutex

	posts         map[string]models.Post
	comments      map[string]models.Comment
	reactions     map[string]models.Reaction
	buckets       map[models.EngagementKind]map[string]models.Bucket
	thresholds    map[string]models.ThresholdConfig
	users         map[string]models.User
	friendships   map[string]models.Friendship
	notifications map[string]map[string]models.Notification
	shares        map[string]models.Share
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:     map[string]models.Post{},
		comments:  map[string]models.Comment{},
		reactions: map[string]models.Reaction{},
		buckets: map[models.EngagementKind]map[string]models.Bucket{
			models.KindComment:  {},
			models.KindReaction: {},
		},
		thresholds:    map[string]models.ThresholdConfig{},
		users:         map[string]models.User{},
		friendships:   map[string]models.Friendship{},
		notifications: map[string]map[string]models.Notification{},
		shares:        map[string]models.Share{},
	}
}

// PutUser seeds a user record.
func (m *MemoryStore) PutUser(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
}

// AddFriendship seeds a friendship row in one direction.
func (m *MemoryStore) AddFriendship(userID, friendID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.friendships[userID+"|"+friendID] = models.Friendship{UserID: userID, FriendID: friendID, Status: status}
}

func copyBucket(b models.Bucket) *models.Bucket {
	b.Items = append([]models.BucketItem{}, b.Items...)
	return &b
}

func bucketMapKey(postID, bucketID string) string {
	return postID + "|" + bucketID
}

func (m *MemoryStore) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[post.PostID]; ok {
		return apperr.Conflict("post %s already exists", post.PostID)
	}
	stored := *post
	stored.RecentComments = append([]models.RecentComment{}, post.RecentComments...)
	m.posts[post.PostID] = stored
	return nil
}

func (m *MemoryStore) GetPost(_ context.Context, postID string) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	post, ok := m.posts[postID]
	if !ok {
		return nil, apperr.ErrPostNotFound
	}
	post.RecentComments = append([]models.RecentComment{}, post.RecentComments...)
	return &post, nil
}

func (m *MemoryStore) AdjustPostCounter(_ context.Context, postID string, field models.CounterField, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return apperr.ErrPostNotFound
	}
	var counter *int
	switch field {
	case models.CounterReactions:
		counter = &post.ReactionsCount
	case models.CounterComments:
		counter = &post.CommentsCount
	case models.CounterShares:
		counter = &post.ShareCount
	default:
		return apperr.Invalid("unknown counter %q", field)
	}
	*counter += delta
	if *counter < 0 {
		*counter = 0
	}
	m.posts[postID] = post
	return nil
}

func (m *MemoryStore) MarkPostViral(_ context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return apperr.ErrPostNotFound
	}
	post.IsViral = true
	m.posts[postID] = post
	return nil
}

func (m *MemoryStore) SetRecentComments(_ context.Context, postID string, recent []models.RecentComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return apperr.ErrPostNotFound
	}
	post.RecentComments = append([]models.RecentComment{}, recent...)
	post.UpdatedAt = time.Now().UTC()
	m.posts[postID] = post
	return nil
}

func (m *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[comment.CommentID]; ok {
		return apperr.Conflict("comment %s already exists", comment.CommentID)
	}
	m.comments[comment.CommentID] = *comment
	return nil
}

func (m *MemoryStore) GetComment(_ context.Context, commentID string) (*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	comment, ok := m.comments[commentID]
	if !ok {
		return nil, apperr.ErrCommentNotFound
	}
	return &comment, nil
}

func (m *MemoryStore) UpdateCommentText(_ context.Context, commentID, text string, updatedAt time.Time) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment, ok := m.comments[commentID]
	if !ok {
		return nil, apperr.ErrCommentNotFound
	}
	comment.Comment = text
	comment.UpdatedAt = updatedAt
	m.comments[commentID] = comment
	return &comment, nil
}

func (m *MemoryStore) DeleteComment(_ context.Context, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[commentID]; !ok {
		return apperr.ErrCommentNotFound
	}
	delete(m.comments, commentID)
	return nil
}

func (m *MemoryStore) DeleteComments(_ context.Context, commentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range commentIDs {
		delete(m.comments, id)
	}
	return nil
}

func (m *MemoryStore) listComments(match func(models.Comment) bool) []models.Comment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CommentID > out[j].CommentID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *MemoryStore) ListTopLevelComments(_ context.Context, postID string) ([]models.Comment, error) {
	return m.listComments(func(c models.Comment) bool {
		return c.PostID == postID && !c.IsReply()
	}), nil
}

func (m *MemoryStore) ListReplies(_ context.Context, parentCommentID string) ([]models.Comment, error) {
	return m.listComments(func(c models.Comment) bool {
		return c.ParentCommentID == parentCommentID
	}), nil
}

func (m *MemoryStore) GetReaction(_ context.Context, postID, userID string) (*models.Reaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reaction, ok := m.reactions[models.PrimaryReactionID(postID, userID)]
	if !ok {
		return nil, apperr.ErrReactionNotFound
	}
	return &reaction, nil
}

func (m *MemoryStore) PutReaction(_ context.Context, reaction *models.Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.PrimaryReactionID(reaction.PostID, reaction.UserID)
	if _, ok := m.reactions[key]; ok {
		return apperr.Conflict("user %s already reacted to post %s", reaction.UserID, reaction.PostID)
	}
	m.reactions[key] = *reaction
	return nil
}

func (m *MemoryStore) UpdateReactionType(_ context.Context, postID, userID, reactionType string, updatedAt time.Time) (*models.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.PrimaryReactionID(postID, userID)
	reaction, ok := m.reactions[key]
	if !ok {
		return nil, apperr.ErrReactionNotFound
	}
	reaction.ReactionType = reactionType
	reaction.UpdatedAt = updatedAt
	m.reactions[key] = reaction
	return &reaction, nil
}

func (m *MemoryStore) DeleteReaction(_ context.Context, postID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.PrimaryReactionID(postID, userID)
	if _, ok := m.reactions[key]; !ok {
		return apperr.ErrReactionNotFound
	}
	delete(m.reactions, key)
	return nil
}

func (m *MemoryStore) ListReactions(_ context.Context, postID string) ([]models.Reaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Reaction{}
	for _, r := range m.reactions {
		if r.PostID == postID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MemoryStore) ListBuckets(_ context.Context, kind models.EngagementKind, postID string) ([]models.Bucket, error) {
	return m.listBuckets(kind, postID, false), nil
}

func (m *MemoryStore) ListOpenBuckets(_ context.Context, kind models.EngagementKind, postID string) ([]models.Bucket, error) {
	return m.listBuckets(kind, postID, true), nil
}

func (m *MemoryStore) listBuckets(kind models.EngagementKind, postID string, openOnly bool) []models.Bucket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Bucket{}
	for _, b := range m.buckets[kind] {
		if b.PostID != postID || (openOnly && b.IsFull) {
			continue
		}
		out = append(out, *copyBucket(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketIndex < out[j].BucketIndex })
	return out
}

func (m *MemoryStore) GetBucket(_ context.Context, kind models.EngagementKind, postID, bucketID string) (*models.Bucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[kind][bucketMapKey(postID, bucketID)]
	if !ok {
		return nil, apperr.NotFound("bucket %s not found", bucketID)
	}
	return copyBucket(b), nil
}

func (m *MemoryStore) CreateBucket(_ context.Context, kind models.EngagementKind, bucket *models.Bucket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucketMapKey(bucket.PostID, bucket.BucketID)
	if _, ok := m.buckets[kind][key]; ok {
		return ErrBucketExists
	}
	if bucket.Items == nil {
		bucket.Items = []models.BucketItem{}
	}
	m.buckets[kind][key] = *copyBucket(*bucket)
	return nil
}

func (m *MemoryStore) AppendBucketItem(_ context.Context, kind models.EngagementKind, postID, bucketID string, item models.BucketItem) (*models.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucketMapKey(postID, bucketID)
	b, ok := m.buckets[kind][key]
	if !ok || b.IsFull {
		return nil, ErrBucketFull
	}
	b.Items = append(append([]models.BucketItem{}, b.Items...), item)
	b.Count++
	b.UpdatedAt = item.CreatedAt
	m.buckets[kind][key] = b
	return copyBucket(b), nil
}

func (m *MemoryStore) MarkBucketFull(_ context.Context, kind models.EngagementKind, postID, bucketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucketMapKey(postID, bucketID)
	b, ok := m.buckets[kind][key]
	if !ok {
		return apperr.NotFound("bucket %s not found", bucketID)
	}
	b.IsFull = true
	m.buckets[kind][key] = b
	return nil
}

func (m *MemoryStore) ReplaceBucketItem(_ context.Context, kind models.EngagementKind, postID, bucketID string, index int, item models.BucketItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucketMapKey(postID, bucketID)
	b, ok := m.buckets[kind][key]
	if !ok || index < 0 || index >= len(b.Items) || b.Items[index].ID != item.ID || b.Items[index].IsDeleted {
		return ErrBucketItemChanged
	}
	b.Items = append([]models.BucketItem{}, b.Items...)
	b.Items[index] = item
	b.UpdatedAt = item.UpdatedAt
	m.buckets[kind][key] = b
	return nil
}

func (m *MemoryStore) SoftDeleteBucketItem(_ context.Context, kind models.EngagementKind, postID, bucketID string, index int, itemID string, at time.Time) (*models.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucketMapKey(postID, bucketID)
	b, ok := m.buckets[kind][key]
	if !ok || index < 0 || index >= len(b.Items) || b.Items[index].ID != itemID || b.Items[index].IsDeleted {
		return nil, ErrBucketItemChanged
	}
	b.Items = append([]models.BucketItem{}, b.Items...)
	b.Items[index].IsDeleted = true
	b.Items[index].UpdatedAt = at
	if b.Count > 0 {
		b.Count--
	}
	b.UpdatedAt = at
	m.buckets[kind][key] = b
	return copyBucket(b), nil
}

func (m *MemoryStore) CreateThreshold(_ context.Context, threshold *models.ThresholdConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.thresholds[threshold.ThresholdID]; ok {
		return apperr.Conflict("threshold %s already exists", threshold.ThresholdID)
	}
	m.thresholds[threshold.ThresholdID] = *threshold
	return nil
}

func (m *MemoryStore) GetThreshold(_ context.Context, thresholdID string) (*models.ThresholdConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.thresholds[thresholdID]
	if !ok {
		return nil, apperr.ErrThresholdNotFound
	}
	return &t, nil
}

func (m *MemoryStore) ListThresholds(_ context.Context) ([]models.ThresholdConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ThresholdConfig, 0, len(m.thresholds))
	for _, t := range m.thresholds {
		out = append(out, t)
	}
	return out, nil
}

func (m *MemoryStore) SaveThreshold(_ context.Context, threshold *models.ThresholdConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.thresholds[threshold.ThresholdID]; !ok {
		return apperr.ErrThresholdNotFound
	}
	m.thresholds[threshold.ThresholdID] = *threshold
	return nil
}

func (m *MemoryStore) DeleteThreshold(_ context.Context, thresholdID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.thresholds[thresholdID]; !ok {
		return apperr.ErrThresholdNotFound
	}
	delete(m.thresholds, thresholdID)
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	return &u, nil
}

func (m *MemoryStore) BatchGetUsers(_ context.Context, userIDs []string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.User{}
	seen := map[string]bool{}
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetFriendship(_ context.Context, userID, friendID string) (*models.Friendship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.friendships[userID+"|"+friendID]
	if !ok {
		return nil, apperr.NotFound("friendship not found")
	}
	return &f, nil
}

func (m *MemoryStore) CreateNotification(_ context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inbox, ok := m.notifications[notification.UserID]
	if !ok {
		inbox = map[string]models.Notification{}
		m.notifications[notification.UserID] = inbox
	}
	inbox[notification.NotificationID] = *notification
	return nil
}

func (m *MemoryStore) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Notification{}
	for _, n := range m.notifications[userID] {
		out = append(out, n)
	}
	// v7 ids sort by creation time
	sort.Slice(out, func(i, j int) bool { return out[i].NotificationID > out[j].NotificationID })
	return out, nil
}

func (m *MemoryStore) MarkNotificationRead(_ context.Context, userID, notificationID string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[userID][notificationID]
	if !ok {
		return nil, apperr.NotFound("notification not found")
	}
	n.IsRead = true
	m.notifications[userID][notificationID] = n
	return &n, nil
}

func (m *MemoryStore) DeleteNotification(_ context.Context, userID, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[userID][notificationID]; !ok {
		return apperr.NotFound("notification not found")
	}
	delete(m.notifications[userID], notificationID)
	return nil
}

func (m *MemoryStore) DeleteAllNotifications(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.notifications[userID])
	delete(m.notifications, userID)
	return n, nil
}

func (m *MemoryStore) CreateShare(_ context.Context, share *models.Share) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := share.PostID + "|" + share.UserID
	if _, ok := m.shares[key]; ok {
		return apperr.Conflict("you have already shared this post")
	}
	m.shares[key] = *share
	return nil
}

func (m *MemoryStore) GetShare(_ context.Context, postID, userID string) (*models.Share, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shares[postID+"|"+userID]
	if !ok {
		return nil, apperr.NotFound("share not found")
	}
	return &s, nil
}

func (m *MemoryStore) DeleteShare(_ context.Context, postID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := postID + "|" + userID
	if _, ok := m.shares[key]; !ok {
		return apperr.NotFound("share not found")
	}
	delete(m.shares, key)
	return nil
}

func (m *MemoryStore) listShares(match func(models.Share) bool) []models.Share {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Share{}
	for _, s := range m.shares {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryStore) ListSharesByPost(_ context.Context, postID string) ([]models.Share, error) {
	return m.listShares(func(s models.Share) bool { return s.PostID == postID }), nil
}

func (m *MemoryStore) ListSharesByUser(_ context.Context, userID string) ([]models.Share, error) {
	return m.listShares(func(s models.Share) bool { return s.UserID == userID }), nil
}
