package server

import (
	"net/http"

	"word-imposter/internal/game"

	"github.com/gin-gonic/gin"
)

type createRoomRequest struct {
	Nickname             string `json:"nickname" binding:"required,nickname"`
	Rounds               int    `json:"rounds" binding:"omitempty,min=1,max=10"`
	DiscussionSeconds    int    `json:"discussion_seconds" binding:"omitempty,min=30,max=900"`
	VotingSeconds        int    `json:"voting_seconds" binding:"omitempty,min=10,max=180"`
	MaxPlayers           int    `json:"max_players" binding:"omitempty,min=3,max=12"`
	Category             string `json:"category" binding:"omitempty,category"`
	RoundDurationSeconds int    `json:"round_duration_seconds" binding:"omitempty,min=300,max=900"`
}

type joinRoomRequest struct {
	Nickname string `json:"nickname" binding:"required,nickname"`
}

type setReadyRequest struct {
	Ready *bool `json:"ready" binding:"required"`
}

// roomSettings fills request gaps from the configured defaults, so env-tuned
// deployments shape rooms without every client sending full settings.
func (s *Server) roomSettings(req createRoomRequest) game.RoomSettings {
	settings := game.RoomSettings{
		Rounds:               req.Rounds,
		DiscussionSeconds:    req.DiscussionSeconds,
		VotingSeconds:        req.VotingSeconds,
		MaxPlayers:           req.MaxPlayers,
		Category:             req.Category,
		RoundDurationSeconds: req.RoundDurationSeconds,
	}
	if settings.Rounds == 0 {
		settings.Rounds = s.cfg.DefaultRounds
	}
	if settings.DiscussionSeconds == 0 {
		settings.DiscussionSeconds = s.cfg.DefaultDiscussionSeconds
	}
	if settings.VotingSeconds == 0 {
		settings.VotingSeconds = s.cfg.DefaultVotingSeconds
	}
	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = s.cfg.DefaultMaxPlayers
	}
	if settings.Category == "" {
		settings.Category = s.cfg.DefaultCategory
	}
	if settings.RoundDurationSeconds == 0 {
		settings.RoundDurationSeconds = s.cfg.DefaultRoundSeconds
	}
	return settings
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	result, err := s.engine.CreateRoom(c.Request.Context(), actorFrom(c), req.Nickname, s.roomSettings(req))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleShowRoom(c *gin.Context) {
	room, err := s.engine.GetRoom(c.Request.Context(), c.Param("code"), actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	result, err := s.engine.JoinRoom(c.Request.Context(), c.Param("code"), actorFrom(c), req.Nickname)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleLeaveRoom(c *gin.Context) {
	room, err := s.engine.LeaveRoom(c.Request.Context(), c.Param("code"), actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if room == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Room closed by host"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left room", "room": room})
}

func (s *Server) handleSetReady(c *gin.Context) {
	var req setReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	result, err := s.engine.SetReady(c.Request.Context(), c.Param("code"), actorFrom(c), *req.Ready)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Ready status updated",
		"participant": result.Participant,
		"room":        result.Room,
	})
}
