package services

import (
	"testing"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListComments_MergesTiersNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	p1 := env.comment(t, "p1", aliceID, "primary one")
	p2 := env.comment(t, "p1", bobID, "primary two")
	env.setThresholds(t, 1, 1000, 2, 500)
	b1 := env.comment(t, "p1", aliceID, "bucket one")
	b2 := env.comment(t, "p1", bobID, "bucket two")
	require.Equal(t, models.TierBucket, b1.Tier)

	_, err := env.comments.CreateComment(env.ctx, "p1", aliceID, CreateCommentInput{Comment: "a reply", ParentCommentID: p1.CommentID})
	require.NoError(t, err)

	page, err := env.listing.ListComments(env.ctx, "p1", bobID, 1, DefaultCommentsLimit)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 1, page.TotalPages)

	ids := make([]string, len(page.Items))
	for i, c := range page.Items {
		ids[i] = c.CommentID
	}
	assert.Equal(t, []string{b2.CommentID, b1.CommentID, p2.CommentID, p1.CommentID}, ids)
	assert.Equal(t, "Bob", page.Items[0].FullName)
	assert.Equal(t, "alice.png", page.Items[1].ProfilePic)

	second, err := env.listing.ListComments(env.ctx, "p1", bobID, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, second.TotalPages)
	require.Len(t, second.Items, 1)
	assert.Equal(t, p1.CommentID, second.Items[0].CommentID)

	require.NoError(t, env.comments.DeleteComment(env.ctx, b2.CommentID, bobID))
	after, err := env.listing.ListComments(env.ctx, "p1", bobID, 1, DefaultCommentsLimit)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Total)
}

func TestListComments_RespectsPrivacy(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1", Privacy: models.PrivacyFriends})

	_, err := env.listing.ListComments(env.ctx, "p1", bobID, 1, 10)
	assert.True(t, apperr.IsForbidden(err))

	_, err = env.listing.ListComments(env.ctx, "missing", bobID, 1, 10)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListReplies_UnknownParent(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	_, err := env.listing.ListReplies(env.ctx, "nope", aliceID, 1, 10)
	assert.True(t, apperr.IsNotFound(err))

	_, err = env.listing.ListReplies(env.ctx, "p1_0~gone", aliceID, 1, 10)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListReactions_SummaryAndFilter(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	_, err := env.reactions.React(env.ctx, "p1", aliceID, models.ReactionLike)
	require.NoError(t, err)
	env.setThresholds(t, 1, 1, 1000, 500)
	_, err = env.reactions.React(env.ctx, "p1", bobID, models.ReactionLove)
	require.NoError(t, err)
	_, err = env.reactions.React(env.ctx, "p1", ownerID, models.ReactionLike)
	require.NoError(t, err)

	all, err := env.listing.ListReactions(env.ctx, "p1", aliceID, 1, DefaultReactionsLimit, "")
	require.NoError(t, err)
	require.Equal(t, 3, all.Total)
	assert.Equal(t, ownerID, all.Items[0].UserID)
	assert.Equal(t, aliceID, all.Items[2].UserID)
	assert.Equal(t, "Olivia Owner", all.Items[0].FullName)

	likes, err := env.listing.ListReactions(env.ctx, "p1", aliceID, 1, DefaultReactionsLimit, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, 2, likes.Total)

	_, err = env.listing.ListReactions(env.ctx, "p1", aliceID, 1, 10, "meh")
	assert.True(t, apperr.IsInvalid(err))

	summary, err := env.listing.ReactionSummary(env.ctx, "p1", aliceID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Summary[models.ReactionLike])
	assert.Equal(t, 1, summary.Summary[models.ReactionLove])
	assert.Equal(t, 0, summary.Summary[models.ReactionAngry])
	assert.Len(t, summary.Summary, len(models.ReactionTypes))
}

func TestGetUserReaction(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{PostID: "p1"})

	_, err := env.listing.GetUserReaction(env.ctx, "p1", aliceID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = env.reactions.React(env.ctx, "p1", aliceID, models.ReactionSad)
	require.NoError(t, err)
	primary, err := env.listing.GetUserReaction(env.ctx, "p1", aliceID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPrimary, primary.Tier)
	assert.Equal(t, models.ReactionSad, primary.ReactionType)

	env.setThresholds(t, 1, 1, 1000, 500)
	_, err = env.reactions.React(env.ctx, "p1", bobID, models.ReactionCare)
	require.NoError(t, err)
	bucketed, err := env.listing.GetUserReaction(env.ctx, "p1", bobID)
	require.NoError(t, err)
	assert.Equal(t, models.TierBucket, bucketed.Tier)
	assert.Equal(t, models.ReactionCare, bucketed.ReactionType)
}
