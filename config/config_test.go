package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "MARK_VIRAL_ON_COMMENT_OVERFLOW"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreDriverDynamo, cfg.Store.Driver)
	assert.Equal(t, 100, cfg.Outlier.BucketSize)
	assert.Equal(t, 5*time.Minute, cfg.Outlier.CacheTTL)
	assert.Equal(t, 1000, cfg.Outlier.DefaultCommentThreshold)
	assert.Equal(t, 500, cfg.Outlier.DefaultShareThreshold)
	assert.False(t, cfg.Outlier.MarkViralOnCommentOverflow)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: "9000"
store:
  driver: memory
outlier:
  cache_ttl: 30s
  default_comment_threshold: 50
admin:
  user_ids: ["root"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "9100")
	t.Setenv("ADMIN_USER_IDS", "alice, bob,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 30*time.Second, cfg.Outlier.CacheTTL)
	assert.Equal(t, 50, cfg.Outlier.DefaultCommentThreshold)
	assert.Equal(t, 1000, cfg.Outlier.DefaultReactionThreshold)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Admin.UserIDs)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Outlier.BucketSize = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Outlier.DefaultShareThreshold = 0
	assert.Error(t, cfg.Validate())
}
