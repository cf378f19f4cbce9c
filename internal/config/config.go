// Package config loads roomwatch configuration from a YAML file, a .env file
// and ROOMWATCH_* environment variables, in increasing precedence. Command
// line flags are applied on top by the binaries.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roomwatch/roomwatch-go/pkg/duration"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
	"github.com/roomwatch/roomwatch-go/pkg/subscription"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ROOMWATCH_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete roomwatch configuration.
type Config struct {
	// Listen is the HTTP API address. Empty disables the API.
	Listen string `yaml:"listen"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Journal is the path of the CBOR journal file. Empty disables it.
	Journal string `yaml:"journal"`

	// Interactive starts the readline shell.
	Interactive bool `yaml:"interactive"`

	// Scenario is a scenario file replayed at startup.
	Scenario string `yaml:"scenario"`

	// InboxLimit is the per-destination message history of the API inbox.
	InboxLimit int `yaml:"inbox_limit"`

	Invite    InviteConfig    `yaml:"invite"`
	Durations DurationConfig  `yaml:"durations"`
	Rooms     []presence.Room `yaml:"rooms"`
	Entities  []Seat          `yaml:"entities"`
}

// InviteConfig configures invite links.
type InviteConfig struct {
	BaseURL string `yaml:"base_url"`
	Secret  string `yaml:"secret"`
	TTL     string `yaml:"ttl"`
}

// DurationConfig holds default and maximum subscription durations as
// duration arguments ("30m", "2h", or bare minutes).
type DurationConfig struct {
	Notify   string `yaml:"notify"`
	Follow   string `yaml:"follow"`
	VCNotify string `yaml:"vcnotify"`
	Max      string `yaml:"max"`
}

// Seat is a seeded entity, optionally placed in a room.
type Seat struct {
	ID   presence.EntityID `yaml:"id"`
	Name string            `yaml:"name"`
	Room presence.RoomID   `yaml:"room,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:     ":8080",
		LogLevel:   "info",
		InboxLimit: 100,
		Invite: InviteConfig{
			BaseURL: "http://localhost:8080",
			TTL:     "24h",
		},
		Durations: DurationConfig{
			Notify:   "10m",
			Follow:   "10m",
			VCNotify: "10m",
			Max:      "24h",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are ignored. Without arguments ".env" is tried.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from ROOMWATCH_* environment variables.
func (c *Config) ApplyEnv() {
	c.Listen = getenvDefault("LISTEN", c.Listen)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
	c.Journal = getenvDefault("JOURNAL", c.Journal)
	c.Scenario = getenvDefault("SCENARIO", c.Scenario)
	c.Interactive = getenvBoolDefault("INTERACTIVE", c.Interactive)
	c.InboxLimit = getenvIntDefault("INBOX_LIMIT", c.InboxLimit)

	c.Invite.BaseURL = strings.TrimRight(getenvDefault("INVITE_BASE_URL", c.Invite.BaseURL), "/")
	c.Invite.Secret = getenvDefault("INVITE_SECRET", c.Invite.Secret)
	c.Invite.TTL = getenvDefault("INVITE_TTL", c.Invite.TTL)

	c.Durations.Notify = getenvDefault("NOTIFY_DURATION", c.Durations.Notify)
	c.Durations.Follow = getenvDefault("FOLLOW_DURATION", c.Durations.Follow)
	c.Durations.VCNotify = getenvDefault("VCNOTIFY_DURATION", c.Durations.VCNotify)
	c.Durations.Max = getenvDefault("MAX_DURATION", c.Durations.Max)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, _, _, err := c.Limits(); err != nil {
		return err
	}
	if _, err := c.InviteTTL(); err != nil {
		return err
	}

	rooms := make(map[presence.RoomID]bool, len(c.Rooms))
	for _, r := range c.Rooms {
		if r.ID == "" {
			return fmt.Errorf("%w: room without id", ErrInvalidConfig)
		}
		rooms[r.ID] = true
	}
	for _, s := range c.Entities {
		if s.ID == "" {
			return fmt.Errorf("%w: entity without id", ErrInvalidConfig)
		}
		if s.Room != "" && !rooms[s.Room] {
			return fmt.Errorf("%w: entity %s placed in unknown room %s", ErrInvalidConfig, s.ID, s.Room)
		}
	}
	return nil
}

// Limits returns the duration limits of notify, follow and vcnotify.
func (c Config) Limits() (notify, follow, vcnotify duration.Limits, err error) {
	limit, err := duration.Parse(c.Durations.Max, duration.MaxDuration)
	if err != nil {
		return notify, follow, vcnotify, fmt.Errorf("%w: max duration: %v", ErrInvalidConfig, err)
	}

	parse := func(name, s string, def time.Duration) (duration.Limits, error) {
		d, err := duration.Parse(s, def)
		if err != nil {
			return duration.Limits{}, fmt.Errorf("%w: %s duration: %v", ErrInvalidConfig, name, err)
		}
		l := duration.Limits{Default: d, Max: limit}
		if err := l.Check(d); err != nil {
			return duration.Limits{}, fmt.Errorf("%w: %s duration: %v", ErrInvalidConfig, name, err)
		}
		return l, nil
	}

	if notify, err = parse("notify", c.Durations.Notify, subscription.DefaultDuration); err != nil {
		return
	}
	if follow, err = parse("follow", c.Durations.Follow, subscription.DefaultDuration); err != nil {
		return
	}
	vcnotify, err = parse("vcnotify", c.Durations.VCNotify, subscription.DefaultDuration)
	return
}

// InviteTTL returns the parsed invite lifetime.
func (c Config) InviteTTL() (time.Duration, error) {
	d, err := duration.Parse(c.Invite.TTL, 24*time.Hour)
	if err != nil {
		return 0, fmt.Errorf("%w: invite ttl: %v", ErrInvalidConfig, err)
	}
	return d, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
	}
}

func getenvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(EnvPrefix + key)); v != "" {
		return v
	}
	return fallback
}

func getenvIntDefault(key string, fallback int) int {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBoolDefault(key string, fallback bool) bool {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
