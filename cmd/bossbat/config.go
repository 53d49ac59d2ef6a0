package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/xraph/bossbat"
	"github.com/xraph/bossbat/job"
	"github.com/xraph/bossbat/middleware"
)

// duration decodes TOML strings like "1m30s".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the worker's file configuration.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Redis  RedisConfig  `toml:"redis"`
	Log    LogConfig    `toml:"log"`
	Jobs   []JobConfig  `toml:"jobs"`
}

// EngineConfig mirrors bossbat.Config.
type EngineConfig struct {
	Prefix          string   `toml:"prefix"`
	LockTTL         duration `toml:"lock_ttl"`
	Timezone        string   `toml:"timezone"`
	ArmAttempts     int      `toml:"arm_attempts"`
	QueueSize       int      `toml:"queue_size"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
	Concurrency     int      `toml:"concurrency"`

	// MaxRate caps occurrences per second of each job in this process.
	// Zero disables the limit.
	MaxRate float64 `toml:"max_rate"`
	Burst   int     `toml:"burst"`
}

// RedisConfig holds connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	// SkipConfigure leaves notify-keyspace-events alone, for servers where
	// CONFIG is disabled and the flags are set by an operator.
	SkipConfigure bool `toml:"skip_configure"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`

	// Audit writes one record per lifecycle event through the logger.
	Audit bool `toml:"audit"`
}

// JobConfig declares a job that runs a command. Exactly one of Every and
// Cron may be set; with neither the job only runs on demand.
type JobConfig struct {
	Name     string   `toml:"name"`
	Every    string   `toml:"every"`
	Cron     string   `toml:"cron"`
	Timezone string   `toml:"timezone"`
	Command  []string `toml:"command"`
	Timeout  string   `toml:"timeout"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	d := bossbat.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			Prefix:          d.Prefix,
			LockTTL:         duration{d.LockTTL},
			Timezone:        d.Timezone,
			ArmAttempts:     d.ArmAttempts,
			QueueSize:       d.QueueSize,
			ShutdownTimeout: duration{d.ShutdownTimeout},
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads path over the defaults, then applies environment
// overrides. An empty path means defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BOSSBAT_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("BOSSBAT_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("BOSSBAT_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOSSBAT_REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v := os.Getenv("BOSSBAT_PREFIX"); v != "" {
		c.Engine.Prefix = v
	}
	if v := os.Getenv("BOSSBAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks the parts the engine does not check itself.
func (c *Config) Validate() error {
	if c.Engine.MaxRate < 0 {
		return fmt.Errorf("engine: max_rate %v is negative", c.Engine.MaxRate)
	}
	seen := make(map[string]bool, len(c.Jobs))
	for i, j := range c.Jobs {
		if j.Name == "" {
			return fmt.Errorf("jobs[%d]: name must be specified", i)
		}
		if seen[j.Name] {
			return fmt.Errorf("jobs[%d]: duplicate job name %q", i, j.Name)
		}
		seen[j.Name] = true
		if j.Every != "" && j.Cron != "" {
			return fmt.Errorf("job %s: every and cron are mutually exclusive", j.Name)
		}
		if len(j.Command) == 0 {
			return fmt.Errorf("job %s: command must be specified", j.Name)
		}
		if j.Timeout != "" {
			if _, err := time.ParseDuration(j.Timeout); err != nil {
				return fmt.Errorf("job %s: timeout: %w", j.Name, err)
			}
		}
	}
	return nil
}

// Bossbat converts the engine section.
func (c *Config) Bossbat() bossbat.Config {
	cfg := bossbat.DefaultConfig()
	cfg.Prefix = c.Engine.Prefix
	cfg.LockTTL = c.Engine.LockTTL.Duration
	cfg.Timezone = c.Engine.Timezone
	cfg.ArmAttempts = c.Engine.ArmAttempts
	cfg.QueueSize = c.Engine.QueueSize
	cfg.ShutdownTimeout = c.Engine.ShutdownTimeout.Duration
	return cfg
}

// Trigger converts the job's schedule fields.
func (j JobConfig) Trigger() job.Trigger {
	switch {
	case j.Every != "":
		return job.Every(j.Every)
	case j.Cron != "":
		return job.Cron(j.Cron, j.Timezone)
	default:
		return job.Manual()
	}
}

// Metadata carries the per-job timeout to the Timeout middleware.
func (j JobConfig) Metadata() map[string]string {
	md := map[string]string{"command": strings.Join(j.Command, " ")}
	if j.Timeout != "" {
		md[middleware.TimeoutKey] = j.Timeout
	}
	return md
}

// Logger builds the process logger.
func (l LogConfig) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
