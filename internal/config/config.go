// Package config loads the application configuration from a YAML file
// with AUTOPOST_-prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Debug     bool            `mapstructure:"debug"`
	WordPress WordPressConfig `mapstructure:"wordpress"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Unsplash  UnsplashConfig  `mapstructure:"unsplash"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Images    ImagesConfig    `mapstructure:"images"`
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
}

type WordPressConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Username    string `mapstructure:"username"`
	AppPassword string `mapstructure:"app_password"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type UnsplashConfig struct {
	AccessKey string `mapstructure:"access_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ScheduleConfig struct {
	Hour             int      `mapstructure:"hour"`
	Minute           int      `mapstructure:"minute"`
	ExcludedWeekdays []string `mapstructure:"excluded_weekdays"`
	PostsPerRun      int      `mapstructure:"posts_per_run"`
}

type PipelineConfig struct {
	InterPostDelay    time.Duration `mapstructure:"inter_post_delay"`
	MinWords          int           `mapstructure:"min_words"`
	MinPlausibleWords int           `mapstructure:"min_plausible_words"`
	TitleWindow       int           `mapstructure:"title_window"`
	Status            string        `mapstructure:"status"`
}

type ImagesConfig struct {
	RegistryPath       string `mapstructure:"registry_path"`
	IllustrationTarget int    `mapstructure:"illustration_target"`
}

type ThumbnailConfig struct {
	BaseImageURL string `mapstructure:"base_image_url"`
	// BaseMediaID points at a media library item to use as the
	// thumbnail base; it takes precedence over BaseImageURL.
	BaseMediaID int `mapstructure:"base_media_id"`
}

type DaemonConfig struct {
	CronSpec string `mapstructure:"cron_spec"`
}

// Load reads the config file at path (optional when every required
// value arrives via environment) and applies env overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AUTOPOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindAliases(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// bindAliases accepts the conventional unprefixed variable names in
// addition to the AUTOPOST_ forms.
func bindAliases(v *viper.Viper) {
	aliases := map[string]string{
		"wordpress.base_url":     "WP_BASE_URL",
		"wordpress.username":     "WP_USERNAME",
		"wordpress.app_password": "WP_APP_PASSWORD",
		"openai.api_key":         "OPENAI_API_KEY",
		"openai.model":           "OPENAI_MODEL",
		"openai.base_url":        "OPENAI_BASE_URL",
		"unsplash.access_key":    "UNSPLASH_ACCESS_KEY",
		"redis.addr":             "REDIS_ADDR",
		"redis.password":         "REDIS_PASSWORD",
	}
	for key, env := range aliases {
		// The prefixed form is listed first so it wins when both are set.
		_ = v.BindEnv(key, "AUTOPOST_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
}

// setDefaults registers every key with viper so env overrides bind even
// without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("wordpress.base_url", "")
	v.SetDefault("wordpress.username", "")
	v.SetDefault("wordpress.app_password", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("unsplash.access_key", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("schedule.hour", 9)
	v.SetDefault("schedule.minute", 0)
	v.SetDefault("schedule.excluded_weekdays", []string{})
	v.SetDefault("schedule.posts_per_run", 3)
	v.SetDefault("pipeline.inter_post_delay", 15*time.Second)
	v.SetDefault("pipeline.min_words", 600)
	v.SetDefault("pipeline.min_plausible_words", 300)
	v.SetDefault("pipeline.title_window", 20)
	v.SetDefault("pipeline.status", "future")
	v.SetDefault("images.registry_path", "used_images.txt")
	v.SetDefault("images.illustration_target", 3)
	v.SetDefault("thumbnail.base_image_url", "")
	v.SetDefault("thumbnail.base_media_id", 0)
	v.SetDefault("daemon.cron_spec", "0 7 * * *")
}

// Validate rejects configurations that cannot reach the CMS at all.
// Optional integrations (search, redis, thumbnails) degrade at runtime
// instead of failing here.
func (c *Config) Validate() error {
	if c.WordPress.BaseURL == "" {
		return errors.New("wordpress.base_url is required")
	}
	if c.WordPress.Username == "" || c.WordPress.AppPassword == "" {
		return errors.New("wordpress credentials are required")
	}
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		return fmt.Errorf("schedule.hour must be 0-23, got %d", c.Schedule.Hour)
	}
	if c.Schedule.Minute < 0 || c.Schedule.Minute > 59 {
		return fmt.Errorf("schedule.minute must be 0-59, got %d", c.Schedule.Minute)
	}
	if c.Schedule.PostsPerRun <= 0 {
		return fmt.Errorf("schedule.posts_per_run must be positive, got %d", c.Schedule.PostsPerRun)
	}
	if _, err := c.Schedule.ExcludedWeekdayMap(); err != nil {
		return err
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ExcludedWeekdayMap parses the configured weekday names.
func (s ScheduleConfig) ExcludedWeekdayMap() (map[time.Weekday]bool, error) {
	if len(s.ExcludedWeekdays) == 0 {
		return nil, nil
	}
	out := make(map[time.Weekday]bool, len(s.ExcludedWeekdays))
	for _, name := range s.ExcludedWeekdays {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q in schedule.excluded_weekdays", name)
		}
		out[day] = true
	}
	return out, nil
}
