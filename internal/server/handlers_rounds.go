package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type askQuestionRequest struct {
	TargetParticipantID uint   `json:"target_participant_id" binding:"required"`
	Text                string `json:"text" binding:"required,max=500"`
}

type answerQuestionRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Text       string `json:"text" binding:"required,max=500"`
}

type voteRequest struct {
	TargetParticipantID uint `json:"target_participant_id" binding:"required"`
}

type guessRequest struct {
	WordID uint `json:"word_id" binding:"required"`
}

func roundID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("roundId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Round not found"})
		return 0, false
	}
	return uint(id), true
}

func (s *Server) handleStartRound(c *gin.Context) {
	result, err := s.engine.StartRound(c.Request.Context(), c.Param("code"), actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":                "Round started",
		"round_id":               result.RoundID,
		"round_number":           result.RoundNumber,
		"started_at":             result.StartedAt,
		"countdown_seconds":      result.CountdownSeconds,
		"round_duration_seconds": result.RoundDurationSeconds,
		"first_question":         result.FirstQuestion,
	})
}

func (s *Server) handleRole(c *gin.Context) {
	id, ok := roundID(c)
	if !ok {
		return
	}
	role, err := s.engine.Role(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (s *Server) handleAskQuestion(c *gin.Context) {
	id, ok := roundID(c)
	if !ok {
		return
	}
	var req askQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	result, err := s.engine.AskQuestion(c.Request.Context(), id, actorFrom(c), req.TargetParticipantID, req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleAnswerQuestion(c *gin.Context) {
	id, ok := roundID(c)
	if !ok {
		return
	}
	var req answerQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	result, err := s.engine.AnswerQuestion(c.Request.Context(), id, actorFrom(c), req.QuestionID, req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Answered", "id": result.AnswerID})
}

func (s *Server) handleReadyForVoting(c *gin.Context) {
	id, ok := roundID(c)
	if !ok {
		return
	}
	result, err := s.engine.ReadyForVoting(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as ready", "all_ready": result.AllReady})
}

func (s *Server) handleVote(c *gin.Context) {
	id, ok := roundID(c)
	if !ok {
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	result, err := s.engine.Vote(c.Request.Context(), id, actorFrom(c), req.TargetParticipantID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded", "id": result.VoteID})
}

func (s *Server) handleGuess(c *gin.Context) {
	id, ok := roundID(c)
	if !ok {
		return
	}
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	result, err := s.engine.Guess(c.Request.Context(), id, actorFrom(c), req.WordID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Guess recorded", "correct": result.Correct, "id": result.GuessID})
}

func (s *Server) handleSkipGuess(c *gin.Context) {
	id, ok := roundID(c)
	if !ok {
		return
	}
	result, err := s.engine.SkipGuess(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Skipped", "id": result.GuessID})
}

func (s *Server) handleResults(c *gin.Context) {
	id, ok := roundID(c)
	if !ok {
		return
	}
	results, err := s.engine.Results(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
