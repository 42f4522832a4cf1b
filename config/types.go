package config

import (
	"fmt"
	"net/url"
	"time"
)

type ServerConfig struct {
	Port            int           `yaml:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gte=0"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
}

// CarrierConfig points at one carrier API. The key itself is read from the
// environment variable named by APIKeyEnv.
type CarrierConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"baseURL" validate:"required_if=Enabled true,omitempty,url"`
	APIKeyEnv string        `yaml:"apiKeyEnv"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	APIKey    string        `yaml:"-"`
}

type CarriersConfig struct {
	Zim    CarrierConfig `yaml:"zim"`
	Maersk CarrierConfig `yaml:"maersk"`
	Hapag  CarrierConfig `yaml:"hapag"`
	// per-carrier budget for one itinerary search
	SearchTimeout   time.Duration `yaml:"searchTimeout" validate:"gte=0"`
	SessionTokenEnv string        `yaml:"sessionTokenEnv"`
	SessionToken    string        `yaml:"-"`
}

type CalendarConfig struct {
	Timezone string `yaml:"timezone" validate:"omitempty,timezone"`
}

// Location resolves Timezone, falling back to the host's local zone.
func (c CalendarConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"gt=0,lte=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
	Name     string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"sslMode" validate:"oneof=disable require verify-ca verify-full"`
}

// DSN builds a lib/pq URL connection string.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

type AISConfig struct {
	Enabled    bool   `yaml:"enabled"`
	URL        string `yaml:"url" validate:"required_if=Enabled true,omitempty,url"`
	TopN       int    `yaml:"topN" validate:"gte=0"`
	ArchiveDir string `yaml:"archiveDir" validate:"required"`
	APIKey     string `yaml:"-"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" validate:"dive,hostname_port"`
	Topic   string   `yaml:"topic" validate:"required_with=Brokers"`
}

type SeederConfig struct {
	Enabled   bool   `yaml:"enabled"`
	CSVPath   string `yaml:"csvPath" validate:"required_if=Enabled true"`
	BatchSize int    `yaml:"batchSize" validate:"gt=0"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Carriers CarriersConfig `yaml:"carriers"`
	Calendar CalendarConfig `yaml:"calendar"`
	Database DatabaseConfig `yaml:"database"`
	AIS      AISConfig      `yaml:"ais"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Seeder   SeederConfig   `yaml:"seeder"`
}
