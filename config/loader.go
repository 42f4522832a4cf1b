// Package config loads config.yml, overlays secrets from the environment and
// validates the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var DefaultPaths = []string{"config.yml", "./config/config.yml"}

// Defaults is the configuration used for any field config.yml leaves out.
func Defaults() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:            3058,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Carriers: CarriersConfig{
			Zim:             CarrierConfig{APIKeyEnv: "ZIM_API_KEY", Timeout: 30 * time.Second},
			Maersk:          CarrierConfig{APIKeyEnv: "CONSUMER_KEY", Timeout: 30 * time.Second},
			Hapag:           CarrierConfig{APIKeyEnv: "HAPAG_CLIENT_ID", Timeout: 30 * time.Second},
			SearchTimeout:   45 * time.Second,
			SessionTokenEnv: "CARRIER_SESSION_TOKEN",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			Name:    "vessels",
			SSLMode: "disable",
		},
		AIS: AISConfig{
			URL:        "wss://stream.aisstream.io/v0/stream",
			TopN:       50,
			ArchiveDir: "ais_messages",
		},
		Kafka: KafkaConfig{Topic: "itinerary-events"},
		Seeder: SeederConfig{
			CSVPath:   "unlocode.csv",
			BatchSize: 12000,
		},
	}
}

// LoadEnv reads .env into the process environment. A missing file is fine.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no .env file, using process environment")
			return
		}
		slog.Warn("failed to load .env", "error", err)
	}
}

// Load reads the first existing file among paths (DefaultPaths when empty)
// over Defaults, applies environment overrides and validates. Finding no file
// at all is not an error.
func Load(paths ...string) (*AppConfig, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}

	cfg := Defaults()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		slog.Debug("loaded config", "path", p)
		break
	}

	applyEnv(&cfg)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.Database.Host, "POSTGRES_HOST")
	setString(&cfg.Database.User, "POSTGRES_USER")
	setString(&cfg.Database.Password, "POSTGRES_PASSWORD")
	setString(&cfg.Database.Name, "POSTGRES_DB")
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	setString(&cfg.AIS.APIKey, "AIS_STREAM_API_KEY")

	for _, c := range []*CarrierConfig{&cfg.Carriers.Zim, &cfg.Carriers.Maersk, &cfg.Carriers.Hapag} {
		if c.APIKeyEnv != "" {
			c.APIKey = os.Getenv(c.APIKeyEnv)
		}
	}
	if cfg.Carriers.SessionTokenEnv != "" {
		cfg.Carriers.SessionToken = os.Getenv(cfg.Carriers.SessionTokenEnv)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
