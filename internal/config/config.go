// Package config provides the configuration structures for the voicevox-service.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied by ApplyDefaults.
const (
	defaultCommandSubject   = "voicevox.command"
	defaultReplySubject     = "voicevox.reply"
	defaultQueueGroup       = "voicevox-workers"
	defaultPrefsBucket      = "VOICEVOX_PREFS"
	defaultAudioBucket      = "VOICEVOX_AUDIO"
	defaultSettingsPath     = "config/voicevox.toml"
	defaultScratchDir       = "temp"
	defaultTransliterateURL = "https://namehenkan.com/ajax.php"
	defaultDelayMillis      = 50
	defaultTimeoutSeconds   = 60
	defaultRedisAddr        = "127.0.0.1:6379"
)

// Preference store backends.
const (
	BackendNATS  = "nats"
	BackendRedis = "redis"
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                    string `toml:"url"`
	CommandSubject         string `toml:"command_subject"`
	ReplySubject           string `toml:"reply_subject"`
	QueueGroup             string `toml:"queue_group"`
	PrefsBucket            string `toml:"prefs_bucket"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
}

// PrefsConfig selects where per-user preferences are kept.
type PrefsConfig struct {
	Backend string `toml:"backend"`
}

// RedisConfig holds the connection settings of the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// TelegramConfig enables the Telegram surface when Token is set.
type TelegramConfig struct {
	Token   string  `toml:"token"`
	Masters []int64 `toml:"masters"`
}

// VoiceVoxConfig holds the synthesis-side settings of the service.
type VoiceVoxConfig struct {
	SettingsPath         string `toml:"settings_path"`
	ScratchDir           string `toml:"scratch_dir"`
	TransliterateURL     string `toml:"transliterate_url"`
	TransliterateDelayMs int    `toml:"transliterate_delay_ms"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request HTTP timeout.
func (v VoiceVoxConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// TransliterateDelay returns the spacing between reading lookups.
func (v VoiceVoxConfig) TransliterateDelay() time.Duration {
	return time.Duration(v.TransliterateDelayMs) * time.Millisecond
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS     NATSConfig     `toml:"nats"`
	Prefs    PrefsConfig    `toml:"prefs"`
	Redis    RedisConfig    `toml:"redis"`
	Telegram TelegramConfig `toml:"telegram"`
	VoiceVox VoiceVoxConfig `toml:"voicevox"`
	Paths    PathsConfig    `toml:"paths"`
}

// ApplyDefaults fills every unset field with its default.
func (c *Config) ApplyDefaults() {
	setDefault(&c.NATS.CommandSubject, defaultCommandSubject)
	setDefault(&c.NATS.ReplySubject, defaultReplySubject)
	setDefault(&c.NATS.QueueGroup, defaultQueueGroup)
	setDefault(&c.NATS.PrefsBucket, defaultPrefsBucket)
	setDefault(&c.NATS.AudioObjectStoreBucket, defaultAudioBucket)
	setDefault(&c.Prefs.Backend, BackendNATS)
	setDefault(&c.Redis.Addr, defaultRedisAddr)
	setDefault(&c.VoiceVox.SettingsPath, defaultSettingsPath)
	setDefault(&c.VoiceVox.ScratchDir, defaultScratchDir)
	setDefault(&c.VoiceVox.TransliterateURL, defaultTransliterateURL)

	if c.VoiceVox.TransliterateDelayMs <= 0 {
		c.VoiceVox.TransliterateDelayMs = defaultDelayMillis
	}

	if c.VoiceVox.TimeoutSeconds <= 0 {
		c.VoiceVox.TimeoutSeconds = defaultTimeoutSeconds
	}
}

// IsMaster reports whether a Telegram user id may run admin commands.
func (t TelegramConfig) IsMaster(userID int64) bool {
	return slices.Contains(t.Masters, userID)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Load loads the configuration for the voicevox-service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}
