package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"socialnet_server/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const profileKeyPrefix = "user:profile:"

// UserDirectory resolves display identities for a set of users.
type UserDirectory struct {
	Users UserStore
	Cache redis.Cmdable // optional
	TTL   time.Duration
}

func NewUserDirectory(users UserStore, cache redis.Cmdable, ttl time.Duration) *UserDirectory {
	return &UserDirectory{Users: users, Cache: cache, TTL: ttl}
}

// Lookup returns a summary for every known id. Cache failures fall through to
// the store; unknown users are absent from the result.
func (d *UserDirectory) Lookup(ctx context.Context, userIDs []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(userIDs))
	ids := uniqueIDs(userIDs)
	if len(ids) == 0 {
		return out, nil
	}

	missing := ids
	if d.Cache != nil {
		missing = d.fromCache(ctx, ids, out)
	}
	if len(missing) == 0 {
		return out, nil
	}

	users, err := d.Users.BatchGetUsers(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.UserID] = u.Summary()
	}
	if d.Cache != nil {
		d.toCache(ctx, users)
	}
	return out, nil
}

func (d *UserDirectory) fromCache(ctx context.Context, ids []string, out map[string]models.UserSummary) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKeyPrefix + id
	}
	values, err := d.Cache.MGet(ctx, keys...).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("profile cache read failed")
		}
		return ids
	}

	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var summary models.UserSummary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		out[ids[i]] = summary
	}
	return missing
}

func (d *UserDirectory) toCache(ctx context.Context, users []models.User) {
	if len(users) == 0 {
		return
	}
	pipe := d.Cache.Pipeline()
	for _, u := range users {
		raw, err := json.Marshal(u.Summary())
		if err != nil {
			continue
		}
		pipe.Set(ctx, profileKeyPrefix+u.UserID, raw, d.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("profile cache write failed")
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
