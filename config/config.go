// Package config loads server configuration from a YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreDriverDynamo = "dynamodb"
	StoreDriverMemory = "memory"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	AWS struct {
		Region         string `yaml:"region"`
		DynamoEndpoint string `yaml:"dynamodb_endpoint"`
		S3Bucket       string `yaml:"s3_bucket"`
	} `yaml:"aws"`

	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`

	Redis struct {
		Addr       string        `yaml:"addr"`
		Password   string        `yaml:"password"`
		DB         int           `yaml:"db"`
		ProfileTTL time.Duration `yaml:"profile_ttl"`
	} `yaml:"redis"`

	Outlier struct {
		BucketSize                 int           `yaml:"bucket_size"`
		CacheTTL                   time.Duration `yaml:"cache_ttl"`
		DefaultReactionThreshold   int           `yaml:"default_reaction_threshold"`
		DefaultCommentThreshold    int           `yaml:"default_comment_threshold"`
		DefaultShareThreshold      int           `yaml:"default_share_threshold"`
		MarkViralOnCommentOverflow bool          `yaml:"mark_viral_on_comment_overflow"`
	} `yaml:"outlier"`

	Admin struct {
		UserIDs []string `yaml:"user_ids"`
	} `yaml:"admin"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.AWS.Region = "us-east-1"
	cfg.Store.Driver = StoreDriverDynamo
	cfg.Redis.ProfileTTL = 10 * time.Minute
	cfg.Outlier.BucketSize = 100
	cfg.Outlier.CacheTTL = 5 * time.Minute
	cfg.Outlier.DefaultReactionThreshold = 1000
	cfg.Outlier.DefaultCommentThreshold = 1000
	cfg.Outlier.DefaultShareThreshold = 500
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.AWS.Region = v
	}
	if v := os.Getenv("DYNAMODB_ENDPOINT"); v != "" {
		c.AWS.DynamoEndpoint = v
	}
	if v := os.Getenv("S3_BUCKET_NAME"); v != "" {
		c.AWS.S3Bucket = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("ADMIN_USER_IDS"); v != "" {
		c.Admin.UserIDs = splitList(v)
	}
	if v := os.Getenv("MARK_VIRAL_ON_COMMENT_OVERFLOW"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Outlier.MarkViralOnCommentOverflow = b
		}
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverDynamo, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Outlier.BucketSize < 1 {
		return fmt.Errorf("outlier.bucket_size must be >= 1, got %d", c.Outlier.BucketSize)
	}
	if c.Outlier.CacheTTL < 0 {
		return fmt.Errorf("outlier.cache_ttl must not be negative")
	}
	if c.Outlier.DefaultReactionThreshold < 1 || c.Outlier.DefaultCommentThreshold < 1 || c.Outlier.DefaultShareThreshold < 1 {
		return fmt.Errorf("outlier default thresholds must be >= 1")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
