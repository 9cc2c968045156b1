package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "homedash.db" {
		t.Errorf("port/db = %q/%q", cfg.Port, cfg.DBPath)
	}
	if cfg.AutomationFailureRate != 0.2 {
		t.Errorf("failure rate = %v, want 0.2", cfg.AutomationFailureRate)
	}
	sims := cfg.SimulatorList()
	if len(sims) != 2 || sims[0].Every != 7*time.Second || sims[1].Every != 9*time.Second {
		t.Errorf("simulators = %+v", sims)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "homedash.toml", `
port = "9090"
db_path = "/tmp/home.db"
log_level = "debug"

[simulators]
enabled = true
motion_every = "2s"
motion_probability = 0.5
door_every = "3s"
door_probability = 0.25
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBPath != "/tmp/home.db" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	// Unset keys keep their defaults
	if cfg.LogFormat != "text" {
		t.Errorf("log format = %q, want text", cfg.LogFormat)
	}
	sims := cfg.SimulatorList()
	if sims[0].Every != 2*time.Second || sims[0].Probability != 0.5 {
		t.Errorf("motion = %+v", sims[0])
	}
	if sims[1].Every != 3*time.Second || sims[1].Probability != 0.25 {
		t.Errorf("door = %+v", sims[1])
	}
}

func TestLoadMissingTOML(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), ""); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverridesTOML(t *testing.T) {
	path := writeFile(t, "homedash.toml", `port = "9090"`)
	t.Setenv("HOMEDASH_PORT", "7070")
	t.Setenv("HOMEDASH_SIM_ENABLED", "false")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("port = %q, want 7070", cfg.Port)
	}
	if cfg.SimulatorList() != nil {
		t.Error("expected simulators disabled")
	}
}

func TestPushAndBackupFromEnv(t *testing.T) {
	t.Setenv("HOMEDASH_PUSH_VAPID_PUBLIC_KEY", "pub")
	t.Setenv("HOMEDASH_PUSH_VAPID_PRIVATE_KEY", "priv")
	t.Setenv("HOMEDASH_BACKUP_BUCKET", "snapshots")
	t.Setenv("HOMEDASH_BACKUP_ACCESS_KEY", "ak")
	t.Setenv("HOMEDASH_BACKUP_SECRET_KEY", "sk")
	t.Setenv("HOMEDASH_BACKUP_PASSPHRASE", "pass")
	t.Setenv("HOMEDASH_BACKUP_RETENTION_DAYS", "7")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Push.Enabled() {
		t.Error("expected push enabled")
	}
	pc := cfg.PushService()
	if pc.VAPIDPrivateKey != "priv" || pc.Subscriber != "mailto:admin@example.com" {
		t.Errorf("push config = %+v", pc)
	}

	bc := cfg.BackupManager()
	if !bc.Enabled() {
		t.Errorf("expected backups enabled: %+v", bc)
	}
	if bc.S3.Bucket != "snapshots" || bc.RetentionDays != 7 || bc.Schedule != "@daily" {
		t.Errorf("backup config = %+v", bc)
	}
}

func TestPushAndBackupOffByDefault(t *testing.T) {
	cfg := Default()
	if cfg.Push.Enabled() {
		t.Error("push enabled without keys")
	}
	if cfg.BackupManager().Enabled() {
		t.Error("backups enabled without credentials")
	}
}

func TestWeatherFromTOML(t *testing.T) {
	path := writeFile(t, "homedash.toml", `
[weather]
latitude = "47.6062"
longitude = "-122.3321"
unit = "fahrenheit"
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	wc := cfg.WeatherService()
	if !wc.Configured() || wc.Unit != "fahrenheit" || wc.Latitude != "47.6062" {
		t.Errorf("weather config = %+v", wc)
	}
}

func TestDotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "HOMEDASH_LOG_FORMAT=json\n")
	// godotenv sets real environment variables; make sure t cleans up.
	t.Setenv("HOMEDASH_LOG_FORMAT", "")
	os.Unsetenv("HOMEDASH_LOG_FORMAT")

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("log format = %q, want json", cfg.LogFormat)
	}
}

func TestMissingDotEnvIgnored(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port not numeric", func(c *Config) { c.Port = "http" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
		{"failure rate above one", func(c *Config) { c.AutomationFailureRate = 1.5 }},
		{"zero login limit", func(c *Config) { c.LoginAttemptsPerMinute = 0 }},
		{"sub-second simulator", func(c *Config) { c.Simulators.MotionEvery = time.Millisecond }},
		{"negative probability", func(c *Config) { c.Simulators.DoorProbability = -0.1 }},
		{"empty push subscriber", func(c *Config) { c.Push.Subscriber = "" }},
		{"backup endpoint not a url", func(c *Config) { c.Backup.Endpoint = "not a url" }},
		{"zero retention", func(c *Config) { c.Backup.RetentionDays = 0 }},
		{"latitude out of range", func(c *Config) { c.Weather.Latitude = "123.4" }},
		{"bad temperature unit", func(c *Config) { c.Weather.Unit = "kelvin" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}
