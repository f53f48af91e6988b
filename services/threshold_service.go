package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Thresholds are the fallback values used when no config is enabled.
type Thresholds struct {
	Reaction int
	Comment  int
	Share    int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Reaction: models.DefaultReactionThreshold,
		Comment:  models.DefaultCommentThreshold,
		Share:    models.DefaultShareThreshold,
	}
}

// ThresholdService serves the enabled outlier threshold from a TTL cache and
// manages threshold versions.
type ThresholdService struct {
	Store    ThresholdStore
	TTL      time.Duration
	Defaults Thresholds
	Now      func() time.Time

	mu       sync.RWMutex
	cached   *models.ThresholdConfig
	loaded   bool
	cachedAt time.Time
}

func NewThresholdService(store ThresholdStore, ttl time.Duration, defaults Thresholds) *ThresholdService {
	if ttl <= 0 {
		ttl = models.DefaultThresholdCacheTTL
	}
	return &ThresholdService{Store: store, TTL: ttl, Defaults: defaults, Now: time.Now}
}

func (s *ThresholdService) now() time.Time {
	return utcNow(s.Now)
}

// GetCurrentThreshold returns the enabled config, or nil when none is enabled.
// The last lookup, including "none enabled", is served until TTL elapses.
func (s *ThresholdService) GetCurrentThreshold(ctx context.Context) (*models.ThresholdConfig, error) {
	now := s.now()

	s.mu.RLock()
	if s.loaded && now.Sub(s.cachedAt) < s.TTL {
		defer s.mu.RUnlock()
		if s.cached == nil {
			return nil, nil
		}
		cfg := *s.cached
		return &cfg, nil
	}
	s.mu.RUnlock()

	log.Debug().Msg("outlier threshold cache miss")
	all, err := s.Store.ListThresholds(ctx)
	if err != nil {
		return nil, err
	}

	var enabled *models.ThresholdConfig
	for i := range all {
		if all[i].Enabled {
			enabled = &all[i]
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.cachedAt = now
	if enabled == nil {
		s.cached = nil
		return nil, nil
	}
	cfg := *enabled
	s.cached = &cfg
	return enabled, nil
}

// current never fails: store errors fall back to the defaults.
func (s *ThresholdService) current(ctx context.Context) *models.ThresholdConfig {
	cfg, err := s.GetCurrentThreshold(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to load outlier threshold, using defaults")
		return nil
	}
	return cfg
}

func (s *ThresholdService) GetReactionThreshold(ctx context.Context) int {
	if cfg := s.current(ctx); cfg != nil && cfg.ReactionThreshold > 0 {
		return cfg.ReactionThreshold
	}
	return s.Defaults.Reaction
}

func (s *ThresholdService) GetCommentThreshold(ctx context.Context) int {
	if cfg := s.current(ctx); cfg != nil && cfg.CommentThreshold > 0 {
		return cfg.CommentThreshold
	}
	return s.Defaults.Comment
}

func (s *ThresholdService) GetShareThreshold(ctx context.Context) int {
	if cfg := s.current(ctx); cfg != nil && cfg.ShareThreshold > 0 {
		return cfg.ShareThreshold
	}
	return s.Defaults.Share
}

func (s *ThresholdService) InvalidateCache() {
	s.mu.Lock()
	s.cached = nil
	s.loaded = false
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

func validateThresholdValue(name string, v int) error {
	if v < 1 {
		return apperr.Invalid("%s must be a positive number", name)
	}
	return nil
}

// CreateThreshold stores a new version. Enabling it disables every other version.
func (s *ThresholdService) CreateThreshold(ctx context.Context, input models.ThresholdInput) (*models.ThresholdConfig, error) {
	if input.ReactionThreshold < 1 || input.CommentThreshold < 1 || input.ShareThreshold < 1 {
		return nil, apperr.Invalid("thresholds must be positive numbers")
	}
	if input.Version < 1 {
		return nil, apperr.Invalid("version must be a positive number")
	}

	all, err := s.Store.ListThresholds(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.Version == input.Version {
			return nil, apperr.Conflict("threshold version %d already exists", input.Version)
		}
	}

	if input.Enabled {
		if err := s.disableAll(ctx, all, ""); err != nil {
			return nil, err
		}
	}

	now := s.now()
	threshold := &models.ThresholdConfig{
		ThresholdID:       uuid.NewString(),
		ReactionThreshold: input.ReactionThreshold,
		CommentThreshold:  input.CommentThreshold,
		ShareThreshold:    input.ShareThreshold,
		Version:           input.Version,
		Enabled:           input.Enabled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Store.CreateThreshold(ctx, threshold); err != nil {
		return nil, err
	}

	log.Info().Int("version", threshold.Version).Bool("enabled", threshold.Enabled).Msg("✅ Outlier threshold created")
	s.InvalidateCache()
	return threshold, nil
}

// UpdateThreshold applies a partial update. Enabling disables the others first.
func (s *ThresholdService) UpdateThreshold(ctx context.Context, thresholdID string, patch models.ThresholdPatch) (*models.ThresholdConfig, error) {
	checks := []struct {
		name  string
		value *int
	}{
		{"reactionThreshold", patch.ReactionThreshold},
		{"commentThreshold", patch.CommentThreshold},
		{"shareThreshold", patch.ShareThreshold},
	}
	for _, c := range checks {
		if c.value != nil {
			if err := validateThresholdValue(c.name, *c.value); err != nil {
				return nil, err
			}
		}
	}

	threshold, err := s.Store.GetThreshold(ctx, thresholdID)
	if err != nil {
		return nil, err
	}

	if patch.Enabled != nil && *patch.Enabled {
		all, err := s.Store.ListThresholds(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.disableAll(ctx, all, thresholdID); err != nil {
			return nil, err
		}
	}

	if patch.ReactionThreshold != nil {
		threshold.ReactionThreshold = *patch.ReactionThreshold
	}
	if patch.CommentThreshold != nil {
		threshold.CommentThreshold = *patch.CommentThreshold
	}
	if patch.ShareThreshold != nil {
		threshold.ShareThreshold = *patch.ShareThreshold
	}
	if patch.Enabled != nil {
		threshold.Enabled = *patch.Enabled
	}
	threshold.UpdatedAt = s.now()

	if err := s.Store.SaveThreshold(ctx, threshold); err != nil {
		return nil, err
	}

	log.Info().Str("thresholdId", thresholdID).Bool("enabled", threshold.Enabled).Msg("✅ Outlier threshold updated")
	s.InvalidateCache()
	return threshold, nil
}

func (s *ThresholdService) EnableThreshold(ctx context.Context, thresholdID string) (*models.ThresholdConfig, error) {
	enabled := true
	return s.UpdateThreshold(ctx, thresholdID, models.ThresholdPatch{Enabled: &enabled})
}

func (s *ThresholdService) DisableThreshold(ctx context.Context, thresholdID string) (*models.ThresholdConfig, error) {
	disabled := false
	return s.UpdateThreshold(ctx, thresholdID, models.ThresholdPatch{Enabled: &disabled})
}

// ListThresholds returns every version, newest version first.
func (s *ThresholdService) ListThresholds(ctx context.Context) ([]models.ThresholdConfig, error) {
	all, err := s.Store.ListThresholds(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Version != all[j].Version {
			return all[i].Version > all[j].Version
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (s *ThresholdService) DeleteThreshold(ctx context.Context, thresholdID string) error {
	if err := s.Store.DeleteThreshold(ctx, thresholdID); err != nil {
		return err
	}
	log.Info().Str("thresholdId", thresholdID).Msg("🗑️ Outlier threshold deleted")
	s.InvalidateCache()
	return nil
}

func (s *ThresholdService) disableAll(ctx context.Context, all []models.ThresholdConfig, except string) error {
	for i := range all {
		if !all[i].Enabled || all[i].ThresholdID == except {
			continue
		}
		all[i].Enabled = false
		all[i].UpdatedAt = s.now()
		if err := s.Store.SaveThreshold(ctx, &all[i]); err != nil {
			return err
		}
	}
	return nil
}
