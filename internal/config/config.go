package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata" // reference zone must resolve in minimal images

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	DeletePolicySoft = "soft"
	DeletePolicyHard = "hard"
)

type Config struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	Storage        string        `envconfig:"STORAGE" default:"postgres"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	RabbitMQURL    string        `envconfig:"RABBITMQ_URL"`
	EventsExchange string        `envconfig:"EVENTS_EXCHANGE" default:"rides"`
	FrontendURL    string        `envconfig:"FRONTEND_URL" default:"http://localhost:3000"` // base for ride share links
	JWTSecret      string        `envconfig:"JWT_SECRET"`
	JWTTTL         int           `envconfig:"JWT_TTL_HOURS" default:"24"` // hours
	RideTimezone   string        `envconfig:"RIDE_TIMEZONE" default:"Europe/Berlin"`
	DeletePolicy   string        `envconfig:"DELETE_POLICY" default:"soft"`
	AdminEmails    []string      `envconfig:"ADMIN_EMAILS"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	CO2PerSeatKg   float64       `envconfig:"CO2_PER_SEAT_KG" default:"2.3"`
	StatsCacheTTL  time.Duration `envconfig:"STATS_CACHE_TTL" default:"60s"`

	RateLimitRPS       float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst     int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
	RateLimitAuthRPS   float64 `envconfig:"RATE_LIMIT_AUTH_RPS" default:"2"`
	RateLimitAuthBurst int     `envconfig:"RATE_LIMIT_AUTH_BURST" default:"5"`
}

// Load reads an optional .env file and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the rules envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE=%s", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}

	if c.DeletePolicy != DeletePolicySoft && c.DeletePolicy != DeletePolicyHard {
		return fmt.Errorf("unknown DELETE_POLICY %q", c.DeletePolicy)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the reference time zone ride departures are declared in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.RideTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid RIDE_TIMEZONE %q: %w", c.RideTimezone, err)
	}
	return loc, nil
}

func (c *Config) SoftDelete() bool {
	return c.DeletePolicy == DeletePolicySoft
}
