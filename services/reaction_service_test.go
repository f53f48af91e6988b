package services

import (
	"testing"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReact_PrimaryCreateThenChangeType(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	created, err := env.reactions.React(env.ctx, "p1", aliceID, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, created.Created)
	assert.Equal(t, models.TierPrimary, created.Reaction.Tier)
	assert.Equal(t, "p1:"+aliceID, created.Reaction.ReactionID)
	assert.Equal(t, "Alice", created.Reaction.FullName)
	assert.Equal(t, 1, env.post(t, "p1").ReactionsCount)

	changed, err := env.reactions.React(env.ctx, "p1", aliceID, models.ReactionLove)
	require.NoError(t, err)
	assert.False(t, changed.Created)
	assert.Equal(t, models.ReactionLove, changed.Reaction.ReactionType)
	assert.Equal(t, 1, env.post(t, "p1").ReactionsCount)

	stored, err := env.store.GetReaction(env.ctx, "p1", aliceID)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionLove, stored.ReactionType)
}

func TestReact_InvalidTypeAndMissingPost(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	_, err := env.reactions.React(env.ctx, "p1", aliceID, "wow")
	assert.True(t, apperr.IsInvalid(err))

	_, err = env.reactions.React(env.ctx, "ghost", aliceID, models.ReactionLike)
	assert.True(t, apperr.IsNotFound(err))
}

func TestReact_OverflowGoesToBucketAndMarksViral(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1", ReactionsCount: 1500})

	res, err := env.reactions.React(env.ctx, "p1", aliceID, models.ReactionCare)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, models.TierBucket, res.Reaction.Tier)
	assert.Equal(t, "p1_15", bucketIDOf(t, res.Reaction.ReactionID))

	post := env.post(t, "p1")
	assert.True(t, post.IsViral)
	assert.Equal(t, 1501, post.ReactionsCount)

	again, err := env.reactions.React(env.ctx, "p1", aliceID, models.ReactionSad)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Reaction.ReactionID, again.Reaction.ReactionID)
	assert.Equal(t, models.ReactionSad, again.Reaction.ReactionType)
	assert.Equal(t, 1501, env.post(t, "p1").ReactionsCount)

	bucket, err := env.store.GetBucket(env.ctx, models.KindReaction, "p1", "p1_15")
	require.NoError(t, err)
	require.Len(t, bucket.Items, 1)
	assert.Equal(t, models.ReactionSad, bucket.Items[0].ReactionType)
}

func TestReact_ExistingPrimaryReactionStaysPrimaryAfterThreshold(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	_, err := env.reactions.React(env.ctx, "p1", aliceID, models.ReactionLike)
	require.NoError(t, err)

	env.setThresholds(t, 1, 1, 1000, 500)
	res, err := env.reactions.React(env.ctx, "p1", aliceID, models.ReactionAngry)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, models.TierPrimary, res.Reaction.Tier)

	items, err := env.buckets.LiveItems(env.ctx, models.KindReaction, "p1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveReaction_BothTiers(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	_, err := env.reactions.React(env.ctx, "p1", aliceID, models.ReactionLike)
	require.NoError(t, err)
	env.setThresholds(t, 1, 1, 1000, 500)
	bobs, err := env.reactions.React(env.ctx, "p1", bobID, models.ReactionLove)
	require.NoError(t, err)
	require.Equal(t, models.TierBucket, bobs.Reaction.Tier)
	require.Equal(t, 2, env.post(t, "p1").ReactionsCount)

	err = env.reactions.RemoveReaction(env.ctx, "p1", aliceID, bobID)
	assert.True(t, apperr.IsForbidden(err))

	require.NoError(t, env.reactions.RemoveReaction(env.ctx, "p1", bobID, ""))
	bucket, err := env.store.GetBucket(env.ctx, models.KindReaction, "p1", bucketIDOf(t, bobs.Reaction.ReactionID))
	require.NoError(t, err)
	assert.Len(t, bucket.Items, 1)
	assert.True(t, bucket.Items[0].IsDeleted)
	assert.Equal(t, 0, bucket.Count)

	// the post owner may remove anyone's reaction
	require.NoError(t, env.reactions.RemoveReaction(env.ctx, "p1", ownerID, aliceID))
	assert.Equal(t, 0, env.post(t, "p1").ReactionsCount)

	err = env.reactions.RemoveReaction(env.ctx, "p1", bobID, "")
	assert.ErrorIs(t, err, apperr.ErrReactionNotFound)
}

func TestReact_NotifiesPostOwner(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	_, err := env.reactions.React(env.ctx, "p1", bobID, models.ReactionLike)
	require.NoError(t, err)
	_, err = env.reactions.React(env.ctx, "p1", ownerID, models.ReactionLike)
	require.NoError(t, err)

	page, err := env.notifications.List(env.ctx, ownerID, models.NotificationReaction, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, bobID, page.Items[0].ActorID)
	assert.Equal(t, "Bob reacted to your post", page.Items[0].NotificationMessage)
	assert.Equal(t, 2, env.notifier.count(EventReaction))
}
