// Package server exposes the round engine over HTTP. Routing and binding
// live here; all game rules live in internal/game.
package server

import (
	"log/slog"
	"time"

	"word-imposter/internal/auth"
	"word-imposter/internal/config"
	"word-imposter/internal/game"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	engine *game.Engine
	auth   *auth.Service
	cfg    config.Config
	log    *slog.Logger
}

func New(engine *game.Engine, authService *auth.Service, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, auth: authService, cfg: cfg, log: logger}
}

func (s *Server) Router() *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Guest-Token"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")

	public := api.Group("")
	public.Use(s.rateLimit("auth", 1, 10))
	public.POST("/register", s.handleRegister)
	public.POST("/login", s.handleLogin)
	public.POST("/guest", s.handleGuest)

	private := api.Group("")
	private.Use(s.requireActor())
	private.Use(s.rateLimit("rooms", 10, 30))

	private.GET("/me", s.handleMe)
	private.POST("/logout", s.handleLogout)
	private.GET("/auth/introspect", s.handleIntrospect)

	private.POST("/rooms", s.handleCreateRoom)
	private.GET("/rooms/:code", s.handleShowRoom)
	private.POST("/rooms/:code/join", s.handleJoinRoom)
	private.POST("/rooms/:code/leave", s.handleLeaveRoom)
	private.POST("/rooms/:code/ready", s.handleSetReady)

	private.POST("/rooms/:code/rounds/start", s.handleStartRound)
	private.GET("/rounds/:roundId/role", s.handleRole)
	private.POST("/rounds/:roundId/questions", s.handleAskQuestion)
	private.POST("/rounds/:roundId/answers", s.handleAnswerQuestion)
	private.POST("/rounds/:roundId/ready-for-voting", s.handleReadyForVoting)
	private.POST("/rounds/:roundId/votes", s.handleVote)
	private.POST("/rounds/:roundId/guess", s.handleGuess)
	private.POST("/rounds/:roundId/guess/skip", s.handleSkipGuess)
	private.GET("/rounds/:roundId/results", s.handleResults)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
