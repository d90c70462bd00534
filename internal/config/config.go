// Package config loads the dispatcher's runtime configuration from
// environment variables, using a godotenv-plus-getEnv style.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/riftline/geodispatch/internal/planner"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Area     AreaConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port    string
	GinMode string
	CORS    CORSConfig
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DatabaseConfig holds the Postgres connection configuration used by the
// event source's database-backed adapter.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AreaConfig holds the dispatcher tunables that apply uniformly to every
// configured area.
type AreaConfig struct {
	MaxRadius              float64
	MaxPerCluster           int
	Calctype               planner.Algorithm
	StarveRoute             bool
	RemoveFromQueueBacklog  float64
	InitModeRounds          int
	IdleTimeoutSeconds      int
	PriorityWindowSeconds   float64
	PriorityWindowMeters    float64
	PriorityUpdateInterval  time.Duration
	AreaConfigPath          string
	RouteCacheDir           string
	EventSource             EventSourceConfig
}

// EventSourceConfig selects and parameterizes the priority event feed an
// area's PriorityOverlayMode pulls from.
type EventSourceConfig struct {
	// Kind is one of "postgres", "browser", "remote", or "" (none, i.e.
	// StandardMode with no priority overlay).
	Kind string

	BrowserURL string

	RemoteTokenURL     string
	RemoteClientID     string
	RemoteClientSecret string
	RemoteFeedURL      string
}

// Load reads configuration from environment variables, loading a .env file
// first if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
			CORS: CORSConfig{
				AllowOrigins:     []string{"*"},
				AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Area: AreaConfig{
			MaxRadius:              getEnvAsFloat("MAX_RADIUS_METERS", 100),
			MaxPerCluster:          getEnvAsInt("MAX_PER_CLUSTER", 5),
			Calctype:               planner.Algorithm(getEnv("CALC_TYPE", string(planner.AlgorithmOptimized))),
			StarveRoute:            getEnvAsBool("STARVE_ROUTE", false),
			RemoveFromQueueBacklog: getEnvAsFloat("REMOVE_FROM_QUEUE_BACKLOG", 0),
			InitModeRounds:         getEnvAsInt("INIT_MODE_ROUNDS", 1),
			IdleTimeoutSeconds:     getEnvAsInt("WORKER_IDLE_TIMEOUT_SECONDS", 300),
			PriorityWindowSeconds:  getEnvAsFloat("PRIORITY_WINDOW_SECONDS", 60),
			PriorityWindowMeters:   getEnvAsFloat("PRIORITY_WINDOW_METERS", 50),
			PriorityUpdateInterval: time.Duration(getEnvAsInt("PRIORITY_UPDATE_INTERVAL_SECONDS", 30)) * time.Second,
			AreaConfigPath:         getEnv("AREA_CONFIG_PATH", "areas.json"),
			RouteCacheDir:          getEnv("ROUTE_CACHE_DIR", "."),
			EventSource: EventSourceConfig{
				Kind:               getEnv("EVENT_SOURCE_KIND", "postgres"),
				BrowserURL:         getEnv("EVENT_SOURCE_BROWSER_URL", ""),
				RemoteTokenURL:     getEnv("EVENT_SOURCE_REMOTE_TOKEN_URL", ""),
				RemoteClientID:     getEnv("EVENT_SOURCE_REMOTE_CLIENT_ID", ""),
				RemoteClientSecret: getEnv("EVENT_SOURCE_REMOTE_CLIENT_SECRET", ""),
				RemoteFeedURL:      getEnv("EVENT_SOURCE_REMOTE_FEED_URL", ""),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the clustering tunables MaxRadius and MaxPerCluster
// are positive. Database settings are not validated here; buildEventSource
// checks DB_HOST only when the Postgres event source adapter is selected.
func (c *Config) Validate() error {
	if c.Area.MaxRadius <= 0 {
		return fmt.Errorf("MAX_RADIUS_METERS must be positive")
	}
	if c.Area.MaxPerCluster <= 0 {
		return fmt.Errorf("MAX_PER_CLUSTER must be positive")
	}
	return nil
}

// ConnectionString returns a libpq-style connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
