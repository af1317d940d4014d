package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	RedisAddr   string `envconfig:"REDIS_ADDR"`

	Generation generationConfig
	Staging    stagingConfig
	Reconcile  reconcileConfig
	Snapshot   snapshotConfig

	ModelCatalogPath string `envconfig:"MODEL_CATALOG_PATH" default:""`
}

type generationConfig struct {
	APIURL              string        `envconfig:"GENERATION_API_URL"`
	APIToken            string        `envconfig:"GENERATION_API_TOKEN" default:""`
	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	DispatchConcurrency int           `envconfig:"DISPATCH_CONCURRENCY" default:"0"`
}

type stagingConfig struct {
	Endpoint  string        `envconfig:"STAGING_ENDPOINT" default:"localhost:9000"`
	AccessKey string        `envconfig:"STAGING_ACCESS_KEY" default:""`
	SecretKey string        `envconfig:"STAGING_SECRET_KEY" default:""`
	Bucket    string        `envconfig:"STAGING_BUCKET" default:"animator-assets"`
	PublicURL string        `envconfig:"STAGING_PUBLIC_URL" default:""`
	UseSSL    bool          `envconfig:"STAGING_USE_SSL" default:"false"`
	BlobTTL   time.Duration `envconfig:"BLOB_TTL" default:"1h"`
}

type reconcileConfig struct {
	ChannelPrefix    string        `envconfig:"FEED_CHANNEL_PREFIX" default:"generation:status"`
	PollInterval     time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	PollJitter       time.Duration `envconfig:"POLL_JITTER" default:"0s"`
	ResubscribeDelay time.Duration `envconfig:"RESUBSCRIBE_DELAY" default:"5s"`
}

type snapshotConfig struct {
	Backend    string        `envconfig:"SNAPSHOT_BACKEND" default:"file"`
	Path       string        `envconfig:"SNAPSHOT_PATH" default:"./data"`
	Key        string        `envconfig:"SNAPSHOT_KEY" default:"shot-animator-store"`
	QuotaBytes int64         `envconfig:"SNAPSHOT_QUOTA_BYTES" default:"5242880"`
	Debounce   time.Duration `envconfig:"SNAPSHOT_DEBOUNCE" default:"1s"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	return cfg, nil
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var problems []string

	required := map[string]string{
		"POSTGRES_DSN":       c.PostgresDSN,
		"REDIS_ADDR":         c.RedisAddr,
		"GENERATION_API_URL": c.Generation.APIURL,
	}
	for _, key := range []string{"POSTGRES_DSN", "REDIS_ADDR", "GENERATION_API_URL"} {
		if strings.TrimSpace(required[key]) == "" {
			problems = append(problems, "missing env: "+key)
		}
	}

	positive := []struct {
		key string
		d   time.Duration
	}{
		{"REQUEST_TIMEOUT", c.Generation.RequestTimeout},
		{"BLOB_TTL", c.Staging.BlobTTL},
		{"POLL_INTERVAL", c.Reconcile.PollInterval},
		{"RESUBSCRIBE_DELAY", c.Reconcile.ResubscribeDelay},
		{"SNAPSHOT_DEBOUNCE", c.Snapshot.Debounce},
	}
	for _, p := range positive {
		if p.d <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %s", p.key, p.d))
		}
	}
	if c.Reconcile.PollJitter < 0 {
		problems = append(problems, "POLL_JITTER must not be negative")
	}
	// jitter is the stdev of a normal offset, keep ticks from going negative
	if c.Reconcile.PollInterval > 0 && c.Reconcile.PollJitter > c.Reconcile.PollInterval/4 {
		problems = append(problems, fmt.Sprintf("POLL_JITTER must be at most a quarter of POLL_INTERVAL (%s), got %s",
			c.Reconcile.PollInterval/4, c.Reconcile.PollJitter))
	}
	if c.Generation.DispatchConcurrency < 0 {
		problems = append(problems, "DISPATCH_CONCURRENCY must not be negative")
	}
	if c.Snapshot.QuotaBytes <= 0 {
		problems = append(problems, "SNAPSHOT_QUOTA_BYTES must be positive")
	}
	switch c.Snapshot.Backend {
	case "file", "redis":
	default:
		problems = append(problems, fmt.Sprintf("SNAPSHOT_BACKEND must be file or redis, got %q", c.Snapshot.Backend))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// String is safe to log: credentials are masked.
func (c *Config) String() string {
	return fmt.Sprintf("http_addr=%s redis_addr=%s postgres_dsn=%s generation_api=%s generation_token=%s staging=%s/%s snapshot=%s:%s poll_interval=%s",
		c.HTTPAddr,
		c.RedisAddr,
		RedactDSN(c.PostgresDSN),
		c.Generation.APIURL,
		mask(c.Generation.APIToken),
		c.Staging.Endpoint,
		c.Staging.Bucket,
		c.Snapshot.Backend,
		c.Snapshot.Key,
		c.Reconcile.PollInterval,
	)
}

var dsnPassword = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// RedactDSN masks the password of a URL-style DSN: user:pass@ -> user:****@
func RedactDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, `://$1:****@`)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
