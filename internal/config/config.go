package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret    string
	CookieSecure bool

	LogMode  string
	LogLevel string

	// Location defines local midnight for the daily reset and the daypart windows.
	Location       *time.Location
	RecommendCount int
	SeedOnStart    bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("CORS_ALLOW_CREDENTIALS", false)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("LOG_MODE", "dev")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("RECOMMEND_COUNT", 4)
	v.SetDefault("SEED_ON_START", false)

	cfg := Config{
		HTTPAddr:             getenv(v, "HTTP_ADDR"),
		DatabaseURL:          getenv(v, "DATABASE_URL"),
		CORSAllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
		JWTSecret:            getenv(v, "JWT_SECRET"),
		CookieSecure:         v.GetBool("COOKIE_SECURE"),
		LogMode:              getenv(v, "LOG_MODE"),
		LogLevel:             getenv(v, "LOG_LEVEL"),
		RecommendCount:       v.GetInt("RECOMMEND_COUNT"),
		SeedOnStart:          v.GetBool("SEED_ON_START"),
	}

	for _, o := range strings.Split(getenv(v, "CORS_ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	loc, err := time.LoadLocation(getenv(v, "TIMEZONE"))
	if err != nil {
		return cfg, err
	}
	cfg.Location = loc

	if cfg.RecommendCount <= 0 {
		cfg.RecommendCount = 4
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("missing env: DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("missing env: JWT_SECRET")
	}
	return cfg, nil
}

func getenv(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}
