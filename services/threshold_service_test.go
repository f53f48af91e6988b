package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingThresholdStore struct {
	ThresholdStore
	lists atomic.Int32
	fail  error
}

func (c *countingThresholdStore) ListThresholds(ctx context.Context) ([]models.ThresholdConfig, error) {
	c.lists.Add(1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.ThresholdStore.ListThresholds(ctx)
}

func newThresholdFixture() (*ThresholdService, *countingThresholdStore, *tickClock) {
	store := &countingThresholdStore{ThresholdStore: NewMemoryStore()}
	clock := newTickClock()
	svc := NewThresholdService(store, 5*time.Minute, DefaultThresholds())
	svc.Now = clock.Now
	return svc, store, clock
}

func TestThresholds_DefaultsWithoutEnabledConfig(t *testing.T) {
	svc, store, _ := newThresholdFixture()
	ctx := context.Background()

	assert.Equal(t, models.DefaultReactionThreshold, svc.GetReactionThreshold(ctx))
	assert.Equal(t, models.DefaultCommentThreshold, svc.GetCommentThreshold(ctx))
	assert.Equal(t, models.DefaultShareThreshold, svc.GetShareThreshold(ctx))

	cfg, err := svc.GetCurrentThreshold(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)
	assert.EqualValues(t, 1, store.lists.Load())
}

func TestThresholds_NoneEnabledIsCachedUntilTTL(t *testing.T) {
	svc, store, clock := newThresholdFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.Equal(t, models.DefaultCommentThreshold, svc.GetCommentThreshold(ctx))
	}
	assert.EqualValues(t, 1, store.lists.Load())

	clock.Advance(5 * time.Minute)
	assert.Equal(t, models.DefaultCommentThreshold, svc.GetCommentThreshold(ctx))
	assert.EqualValues(t, 2, store.lists.Load())

	// a write through the service drops the cached "none enabled"
	_, err := svc.CreateThreshold(ctx, models.ThresholdInput{ReactionThreshold: 3, CommentThreshold: 4, ShareThreshold: 5, Version: 1, Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, 4, svc.GetCommentThreshold(ctx))
}

func TestThresholds_CacheHonoursTTL(t *testing.T) {
	svc, store, clock := newThresholdFixture()
	ctx := context.Background()

	_, err := svc.CreateThreshold(ctx, models.ThresholdInput{ReactionThreshold: 10, CommentThreshold: 20, ShareThreshold: 30, Version: 1, Enabled: true})
	require.NoError(t, err)
	store.lists.Store(0)

	assert.Equal(t, 10, svc.GetReactionThreshold(ctx))
	assert.Equal(t, 20, svc.GetCommentThreshold(ctx))
	assert.Equal(t, 30, svc.GetShareThreshold(ctx))
	assert.EqualValues(t, 1, store.lists.Load())

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 10, svc.GetReactionThreshold(ctx))
	assert.EqualValues(t, 2, store.lists.Load())
}

func TestThresholds_StoreErrorFallsBackToDefaults(t *testing.T) {
	svc, store, _ := newThresholdFixture()
	store.fail = errors.New("table unavailable")

	assert.Equal(t, models.DefaultCommentThreshold, svc.GetCommentThreshold(context.Background()))

	_, err := svc.GetCurrentThreshold(context.Background())
	assert.Error(t, err)
}

func TestThresholds_CreateValidation(t *testing.T) {
	svc, _, _ := newThresholdFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		input models.ThresholdInput
	}{
		{"zero reaction", models.ThresholdInput{ReactionThreshold: 0, CommentThreshold: 1, ShareThreshold: 1, Version: 1}},
		{"negative share", models.ThresholdInput{ReactionThreshold: 1, CommentThreshold: 1, ShareThreshold: -5, Version: 1}},
		{"missing version", models.ThresholdInput{ReactionThreshold: 1, CommentThreshold: 1, ShareThreshold: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateThreshold(ctx, tt.input)
			assert.True(t, apperr.IsInvalid(err))
		})
	}

	valid := models.ThresholdInput{ReactionThreshold: 1, CommentThreshold: 1, ShareThreshold: 1, Version: 1}
	_, err := svc.CreateThreshold(ctx, valid)
	require.NoError(t, err)
	_, err = svc.CreateThreshold(ctx, valid)
	assert.True(t, apperr.IsConflict(err))
}

func TestThresholds_AtMostOneEnabled(t *testing.T) {
	svc, _, _ := newThresholdFixture()
	ctx := context.Background()

	v1, err := svc.CreateThreshold(ctx, models.ThresholdInput{ReactionThreshold: 1, CommentThreshold: 1, ShareThreshold: 1, Version: 1, Enabled: true})
	require.NoError(t, err)
	v2, err := svc.CreateThreshold(ctx, models.ThresholdInput{ReactionThreshold: 2, CommentThreshold: 2, ShareThreshold: 2, Version: 2, Enabled: true})
	require.NoError(t, err)

	enabledVersions := func() []int {
		all, err := svc.ListThresholds(ctx)
		require.NoError(t, err)
		var out []int
		for _, th := range all {
			if th.Enabled {
				out = append(out, th.Version)
			}
		}
		return out
	}
	assert.Equal(t, []int{2}, enabledVersions())

	_, err = svc.EnableThreshold(ctx, v1.ThresholdID)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, enabledVersions())
	assert.Equal(t, 1, svc.GetReactionThreshold(ctx))

	_, err = svc.DisableThreshold(ctx, v1.ThresholdID)
	require.NoError(t, err)
	assert.Empty(t, enabledVersions())
	assert.Equal(t, models.DefaultReactionThreshold, svc.GetReactionThreshold(ctx))

	all, err := svc.ListThresholds(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, v2.ThresholdID, all[0].ThresholdID)
}

func TestThresholds_UpdateAndDelete(t *testing.T) {
	svc, _, _ := newThresholdFixture()
	ctx := context.Background()

	cfg, err := svc.CreateThreshold(ctx, models.ThresholdInput{ReactionThreshold: 5, CommentThreshold: 5, ShareThreshold: 5, Version: 3, Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, 5, svc.GetShareThreshold(ctx))

	share := 7
	updated, err := svc.UpdateThreshold(ctx, cfg.ThresholdID, models.ThresholdPatch{ShareThreshold: &share})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.ShareThreshold)
	assert.Equal(t, 5, updated.CommentThreshold)
	assert.True(t, updated.Enabled)
	assert.Equal(t, 7, svc.GetShareThreshold(ctx))

	bad := 0
	_, err = svc.UpdateThreshold(ctx, cfg.ThresholdID, models.ThresholdPatch{CommentThreshold: &bad})
	assert.True(t, apperr.IsInvalid(err))

	_, err = svc.UpdateThreshold(ctx, "missing", models.ThresholdPatch{ShareThreshold: &share})
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, svc.DeleteThreshold(ctx, cfg.ThresholdID))
	assert.Equal(t, models.DefaultShareThreshold, svc.GetShareThreshold(ctx))
	assert.True(t, apperr.IsNotFound(svc.DeleteThreshold(ctx, cfg.ThresholdID)))
}
