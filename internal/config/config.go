// Package config loads server settings. Sources are layered, later ones
// winning: built-in defaults, an optional TOML file, a .env file, then
// HOMEDASH_* environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dukerupert/homedash/internal/backup"
	"github.com/dukerupert/homedash/internal/push"
	"github.com/dukerupert/homedash/internal/simulate"
	"github.com/dukerupert/homedash/internal/weather"
)

// EnvPrefix prefixes every environment variable, e.g. HOMEDASH_PORT.
const EnvPrefix = "HOMEDASH"

type Config struct {
	Port      string `toml:"port" envconfig:"PORT" validate:"required,numeric"`
	DBPath    string `toml:"db_path" envconfig:"DB_PATH" validate:"required"`
	LogLevel  string `toml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `toml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`

	// AutomationFailureRate is the chance a new automation fails to save.
	AutomationFailureRate float64 `toml:"automation_failure_rate" envconfig:"AUTOMATION_FAILURE_RATE" validate:"gte=0,lte=1"`

	// LoginAttemptsPerMinute limits login requests per client IP.
	LoginAttemptsPerMinute int `toml:"login_attempts_per_minute" envconfig:"LOGIN_ATTEMPTS_PER_MINUTE" validate:"gte=1"`

	Simulators SimulatorConfig `toml:"simulators" envconfig:"SIM"`
	Push       PushConfig      `toml:"push" envconfig:"PUSH"`
	Backup     BackupConfig    `toml:"backup" envconfig:"BACKUP"`
	Weather    WeatherConfig   `toml:"weather" envconfig:"WEATHER"`
}

type SimulatorConfig struct {
	Enabled           bool          `toml:"enabled" envconfig:"ENABLED"`
	MotionEvery       time.Duration `toml:"motion_every" envconfig:"MOTION_EVERY" validate:"gte=1s"`
	MotionProbability float64       `toml:"motion_probability" envconfig:"MOTION_PROBABILITY" validate:"gte=0,lte=1"`
	DoorEvery         time.Duration `toml:"door_every" envconfig:"DOOR_EVERY" validate:"gte=1s"`
	DoorProbability   float64       `toml:"door_probability" envconfig:"DOOR_PROBABILITY" validate:"gte=0,lte=1"`
}

// PushConfig enables browser notifications for warning and danger alerts
// once both VAPID keys are set. `homedash vapid` generates a pair.
type PushConfig struct {
	VAPIDPublicKey  string `toml:"vapid_public_key" envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `toml:"vapid_private_key" envconfig:"VAPID_PRIVATE_KEY"`
	Subscriber      string `toml:"subscriber" envconfig:"SUBSCRIBER" validate:"required"`
}

func (p PushConfig) Enabled() bool {
	return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

// BackupConfig describes where encrypted database snapshots are uploaded.
// Backups stay off until the bucket, both keys and the passphrase are set.
type BackupConfig struct {
	Endpoint      string `toml:"endpoint" envconfig:"ENDPOINT" validate:"omitempty,url"`
	Bucket        string `toml:"bucket" envconfig:"BUCKET"`
	Region        string `toml:"region" envconfig:"REGION" validate:"required"`
	AccessKey     string `toml:"access_key" envconfig:"ACCESS_KEY"`
	SecretKey     string `toml:"secret_key" envconfig:"SECRET_KEY"`
	Passphrase    string `toml:"passphrase" envconfig:"PASSPHRASE"`
	Prefix        string `toml:"prefix" envconfig:"PREFIX" validate:"required"`
	Schedule      string `toml:"schedule" envconfig:"SCHEDULE"`
	RetentionDays int    `toml:"retention_days" envconfig:"RETENTION_DAYS" validate:"gte=1"`
}

// WeatherConfig places the home for the outdoor conditions card. The card
// stays hidden until both coordinates are set.
type WeatherConfig struct {
	Latitude  string `toml:"latitude" envconfig:"LATITUDE" validate:"omitempty,latitude"`
	Longitude string `toml:"longitude" envconfig:"LONGITUDE" validate:"omitempty,longitude"`
	Unit      string `toml:"unit" envconfig:"UNIT" validate:"oneof=celsius fahrenheit"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	motion, door := simulate.Motion(), simulate.Door()
	return &Config{
		Port:                   "8080",
		DBPath:                 "homedash.db",
		LogLevel:               "info",
		LogFormat:              "text",
		AutomationFailureRate:  0.2,
		LoginAttemptsPerMinute: 10,
		Simulators: SimulatorConfig{
			Enabled:           true,
			MotionEvery:       motion.Every,
			MotionProbability: motion.Probability,
			DoorEvery:         door.Every,
			DoorProbability:   door.Probability,
		},
		Push: PushConfig{
			Subscriber: "mailto:admin@example.com",
		},
		Backup: BackupConfig{
			Region:        "us-east-1",
			Prefix:        "homedash",
			Schedule:      "@daily",
			RetentionDays: 30,
		},
		Weather: WeatherConfig{
			Unit: "celsius",
		},
	}
}

// Load builds the configuration. configPath may be empty; when set the file
// must exist. envFile is loaded if present and ignored otherwise.
func Load(configPath, envFile string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SimulatorList returns the background simulators with configured periods
// and probabilities, or nil when they are disabled.
func (c *Config) SimulatorList() []simulate.Simulator {
	if !c.Simulators.Enabled {
		return nil
	}
	motion, door := simulate.Motion(), simulate.Door()
	motion.Every, motion.Probability = c.Simulators.MotionEvery, c.Simulators.MotionProbability
	door.Every, door.Probability = c.Simulators.DoorEvery, c.Simulators.DoorProbability
	return []simulate.Simulator{motion, door}
}

// PushService returns the web push settings.
func (c *Config) PushService() push.Config {
	return push.Config{
		VAPIDPublicKey:  c.Push.VAPIDPublicKey,
		VAPIDPrivateKey: c.Push.VAPIDPrivateKey,
		Subscriber:      c.Push.Subscriber,
	}
}

// BackupManager returns the backup settings.
func (c *Config) BackupManager() backup.Config {
	b := c.Backup
	return backup.Config{
		S3: backup.S3Config{
			Endpoint:  b.Endpoint,
			Bucket:    b.Bucket,
			Region:    b.Region,
			AccessKey: b.AccessKey,
			SecretKey: b.SecretKey,
		},
		Passphrase:    b.Passphrase,
		Prefix:        b.Prefix,
		Schedule:      b.Schedule,
		RetentionDays: b.RetentionDays,
	}
}

func (c *Config) WeatherService() weather.Config {
	return weather.Config{
		Latitude:  c.Weather.Latitude,
		Longitude: c.Weather.Longitude,
		Unit:      c.Weather.Unit,
	}
}
