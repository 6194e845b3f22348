package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys: APP_YANDERE__SCORE_THRESHOLD -> yandere.score_threshold
const EnvPrefix = "APP_"

// MaxGroupSize is the Bot API limit on items in one media group.
const MaxGroupSize = 10

type Config struct {
	Core     Core     `koanf:"core"`
	DB       Database `koanf:"db"`
	Telegram Telegram `koanf:"telegram"`
	Yandere  Yandere  `koanf:"yandere"`
}

type Core struct {
	LogLevel     string `koanf:"log_level"`
	Scheduler    string `koanf:"scheduler"`
	RunAtStartup bool   `koanf:"run_at_startup"`
	HTTPPort     string `koanf:"http_port"`
}

type Database struct {
	DatabaseURL string `koanf:"database_url"`
	Expire      int    `koanf:"expire"`
	StoragePath string `koanf:"storage_path"`
}

type Telegram struct {
	Token        string `koanf:"token"`
	ChannelID    string `koanf:"channel_id"`
	APIURL       string `koanf:"api_url"`
	SendInterval int    `koanf:"send_interval"`
	MaxGroupSize int    `koanf:"max_group_size"`
}

type Yandere struct {
	RSSURL         string `koanf:"rss_url"`
	APIURL         string `koanf:"api_url"`
	ScoreThreshold int    `koanf:"score_threshold"`
	UpdatedResend  bool   `koanf:"updated_resend"`
}

var defaults = map[string]any{
	"core.log_level":          "info",
	"core.scheduler":          "0 0 0,9,12,15,18,21 * * *",
	"core.run_at_startup":     false,
	"core.http_port":          "8080",
	"db.expire":               7776000,
	"db.storage_path":         "./data",
	"telegram.api_url":        "https://api.telegram.org",
	"telegram.send_interval":  1,
	"telegram.max_group_size": MaxGroupSize,
	"yandere.rss_url":         "https://yande.re/post/popular_recent",
	"yandere.api_url":         "https://yande.re",
	"yandere.score_threshold": 0,
	"yandere.updated_resend":  false,
}

// Load reads the first config file found in the working directory, then
// .env, then APP_ prefixed environment variables, each layer overriding the
// previous one.
func Load() (*Config, error) {
	configFiles := []string{
		"configs.toml",
		"config.toml",
		"config.yaml",
		"config.yml",
		"config.json",
	}

	configFile, _ := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	// A missing .env is the normal case in containers
	_ = godotenv.Load()

	return LoadFile(configFile)
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(configFile string) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// APP_TELEGRAM__CHANNEL_ID -> telegram.channel_id
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if cfg.Telegram.Token == "" {
		return nil, errors.ErrMissingBotToken
	}
	if cfg.Telegram.ChannelID == "" {
		return nil, errors.ErrMissingChannelID
	}

	for key, value := range map[string]int{
		"db.expire":              cfg.DB.Expire,
		"telegram.send_interval": cfg.Telegram.SendInterval,
	} {
		if value < 0 {
			return nil, oops.With("key", key, "value", value).Wrapf(errors.ErrNegativeValue, "%s", key)
		}
	}

	cfg.Telegram.MaxGroupSize = lo.Clamp(cfg.Telegram.MaxGroupSize, 1, MaxGroupSize)

	return &cfg, nil
}

// CacheTTL is the expiry applied to every dedup record.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.DB.Expire) * time.Second
}

func (c *Config) SendInterval() time.Duration {
	return time.Duration(c.Telegram.SendInterval) * time.Second
}

// SlogLevel maps core.log_level onto a slog level. The second return value
// is false when the configured name is unknown and info was used instead.
func (c *Config) SlogLevel() (slog.Level, bool) {
	switch strings.ToLower(c.Core.LogLevel) {
	case "trace", "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LogValue keeps the bot token and the redis credentials out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Group("core",
			"log_level", c.Core.LogLevel,
			"scheduler", c.Core.Scheduler,
			"run_at_startup", c.Core.RunAtStartup,
			"http_port", c.Core.HTTPPort,
		),
		slog.Group("db",
			"database_url", mask(c.DB.DatabaseURL),
			"expire", c.DB.Expire,
			"storage_path", c.DB.StoragePath,
		),
		slog.Group("telegram",
			"token", mask(c.Telegram.Token),
			"channel_id", c.Telegram.ChannelID,
			"api_url", c.Telegram.APIURL,
			"send_interval", c.Telegram.SendInterval,
			"max_group_size", c.Telegram.MaxGroupSize,
		),
		slog.Group("yandere",
			"rss_url", c.Yandere.RSSURL,
			"api_url", c.Yandere.APIURL,
			"score_threshold", c.Yandere.ScoreThreshold,
			"updated_resend", c.Yandere.UpdatedResend,
		),
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "******"
}
