package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Planner  PlannerConfig
	Narrator NarratorConfig
	Recorder RecorderConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig carries the default search bounds and engine tuning.
type PlannerConfig struct {
	Enabled         bool
	GlobalThreshold float64
	SearchDays      int
	MinWindow       int
	MaxWindow       int
	TopN            int
	Workers         int
	CacheTTL        time.Duration
	Timezone        string
}

// Location resolves the timezone used to decide what "today" is.
func (p PlannerConfig) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NarratorConfig points at an OpenAI-compatible chat completions endpoint.
type NarratorConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RecorderConfig sizes the background run history queue.
type RecorderConfig struct {
	Workers int
	Retries int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planner = PlannerConfig{
		Enabled:         v.GetBool("ENABLE_PLANNER"),
		GlobalThreshold: v.GetFloat64("PLANNER_GLOBAL_THRESHOLD"),
		SearchDays:      v.GetInt("PLANNER_SEARCH_DAYS"),
		MinWindow:       v.GetInt("PLANNER_MIN_WINDOW"),
		MaxWindow:       v.GetInt("PLANNER_MAX_WINDOW"),
		TopN:            v.GetInt("PLANNER_TOP_N"),
		Workers:         v.GetInt("PLANNER_WORKERS"),
		CacheTTL:        parseDuration(v.GetString("PLANNER_CACHE_TTL"), 10*time.Minute),
		Timezone:        v.GetString("PLANNER_TIMEZONE"),
	}

	cfg.Narrator = NarratorConfig{
		Enabled: v.GetBool("ENABLE_NARRATOR"),
		BaseURL: strings.TrimRight(v.GetString("NARRATOR_BASE_URL"), "/"),
		APIKey:  v.GetString("NARRATOR_API_KEY"),
		Model:   v.GetString("NARRATOR_MODEL"),
		Timeout: parseDuration(v.GetString("NARRATOR_TIMEOUT"), 20*time.Second),
	}

	cfg.Recorder = RecorderConfig{
		Workers: v.GetInt("PLANNER_RECORDER_WORKERS"),
		Retries: v.GetInt("PLANNER_RECORDER_RETRIES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "leave_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_PLANNER", true)
	v.SetDefault("PLANNER_GLOBAL_THRESHOLD", 75.0)
	v.SetDefault("PLANNER_SEARCH_DAYS", 60)
	v.SetDefault("PLANNER_MIN_WINDOW", 2)
	v.SetDefault("PLANNER_MAX_WINDOW", 7)
	v.SetDefault("PLANNER_TOP_N", 3)
	v.SetDefault("PLANNER_WORKERS", 4)
	v.SetDefault("PLANNER_CACHE_TTL", "10m")
	v.SetDefault("PLANNER_TIMEZONE", "UTC")

	v.SetDefault("ENABLE_NARRATOR", false)
	v.SetDefault("NARRATOR_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("NARRATOR_API_KEY", "")
	v.SetDefault("NARRATOR_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("NARRATOR_TIMEOUT", "20s")

	v.SetDefault("PLANNER_RECORDER_WORKERS", 1)
	v.SetDefault("PLANNER_RECORDER_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
