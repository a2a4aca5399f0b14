package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"word-imposter/internal/auth"
	"word-imposter/internal/config"
	"word-imposter/internal/db"
	"word-imposter/internal/events"
	"word-imposter/internal/game"
	"word-imposter/internal/server"

	"github.com/lmittmann/tint"
)

// Rooms idle past the timeout get swept and closed.
const (
	roomSweepInterval = 5 * time.Minute
	roomIdleTimeout   = 30 * time.Minute
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		log.Fatalf("database handle unavailable: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	broker, err := events.Dial(cfg.AMQPURL, cfg.EventsExchange, conn, logger)
	if err != nil {
		log.Fatalf("event broker connection failed: %v", err)
	}
	defer broker.Close()

	engine := game.New(conn, broker, logger)
	authService := auth.New(conn, cfg.JWTSecret, 0)
	srv := server.New(engine, authService, cfg, logger)

	go engine.SweepStaleRooms(context.Background(), roomSweepInterval, roomIdleTimeout)

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	logger.Info("word-imposter server listening", "addr", addr)
	if err := srv.Router().Run(addr); err != nil {
		log.Fatal(err)
	}
}
