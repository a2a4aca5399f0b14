package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	AMQPURL                  string
	EventsExchange           string
	JWTSecret                string
	CORSOrigins              []string
	DefaultRounds            int
	DefaultDiscussionSeconds int
	DefaultVotingSeconds     int
	DefaultMaxPlayers        int
	DefaultRoundSeconds      int
	DefaultCategory          string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
}

func Default() Config {
	return Config{
		EventsExchange:           "room.events",
		JWTSecret:                "dev-secret-change-me",
		CORSOrigins:              []string{"*"},
		DefaultRounds:            4,
		DefaultDiscussionSeconds: 300,
		DefaultVotingSeconds:     60,
		DefaultMaxPlayers:        10,
		DefaultRoundSeconds:      300,
		DefaultCategory:          "countries",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("AMQP_URL"); raw != "" {
		cfg.AMQPURL = raw
	}
	if raw := os.Getenv("EVENTS_EXCHANGE"); raw != "" {
		cfg.EventsExchange = raw
	}
	if raw := os.Getenv("JWT_SECRET"); raw != "" {
		cfg.JWTSecret = raw
	}
	if raw := os.Getenv("CORS_ORIGIN"); raw != "" {
		cfg.CORSOrigins = []string{raw}
	}
	if raw := os.Getenv("DEFAULT_ROUNDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultRounds = value
		}
	}
	if raw := os.Getenv("DISCUSSION_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultDiscussionSeconds = value
		}
	}
	if raw := os.Getenv("VOTING_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultVotingSeconds = value
		}
	}
	if raw := os.Getenv("MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultMaxPlayers = value
		}
	}
	if raw := os.Getenv("ROUND_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultRoundSeconds = value
		}
	}
	if raw := os.Getenv("DEFAULT_CATEGORY"); raw != "" {
		cfg.DefaultCategory = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	return cfg
}
