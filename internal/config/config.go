package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration for the storefront bot.
type Config struct {
	// Token is the bot API token used for the chat transport.
	Token string `yaml:"token"`
	// OperatorID is the chat user allowed to run catalog administration.
	OperatorID int64 `yaml:"operator_id"`
	// ContactTag is shown on the help screen as the support contact.
	ContactTag string `yaml:"contact_tag"`
	// DBPath is the sqlite database file for the catalog and carts.
	DBPath string `yaml:"db_path"`

	// Render tuning.
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	RenderTimeout  time.Duration `yaml:"render_timeout"`
	DecodeWorkers  int           `yaml:"decode_workers"`
	ThumbnailSide  int           `yaml:"thumbnail_side"`
	ImageCacheSize int           `yaml:"image_cache_size"`

	// Session eviction bounds.
	SessionCacheSize int           `yaml:"session_cache_size"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
}

// Default returns a Config with every tunable set to its default.
// Token and OperatorID have no defaults and must come from the file
// or the environment.
func Default() Config {
	return Config{
		ContactTag:       "@hotwheels_kriak",
		DBPath:           "hotwheels.db",
		FetchTimeout:     10 * time.Second,
		RenderTimeout:    30 * time.Second,
		DecodeWorkers:    4,
		ThumbnailSide:    400,
		ImageCacheSize:   256,
		SessionCacheSize: 1024,
		SessionTTL:       12 * time.Hour,
	}
}

// Load reads a YAML config file, applies defaults for unset fields and
// validates the result. Environment variables HOTWHEELS_TOKEN and
// HOTWHEELS_OPERATOR_ID override the file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HOTWHEELS_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("HOTWHEELS_OPERATOR_ID"); v != "" {
		var id int64
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			cfg.OperatorID = id
		}
	}
}

// Validate checks that required fields are present and tunables are sane.
func (c Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("config: token is required")
	}
	if c.OperatorID == 0 {
		return fmt.Errorf("config: operator_id is required")
	}
	if c.DecodeWorkers < 1 {
		return fmt.Errorf("config: decode_workers must be at least 1")
	}
	if c.ThumbnailSide < 1 {
		return fmt.Errorf("config: thumbnail_side must be positive")
	}
	if c.ImageCacheSize < 1 || c.SessionCacheSize < 1 {
		return fmt.Errorf("config: cache sizes must be positive")
	}
	return nil
}
