package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type guestRequest struct {
	Nickname string `json:"nickname" binding:"required,nickname"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	session, err := s.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": session.Token,
		"user": gin.H{
			"id":    session.User.ID,
			"name":  session.User.Name,
			"email": session.User.Email,
		},
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	session, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"user": gin.H{
			"id":    session.User.ID,
			"name":  session.User.Name,
			"email": session.User.Email,
		},
	})
}

func (s *Server) handleMe(c *gin.Context) {
	identity, err := s.auth.Identify(c.Request.Context(), actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), actorFrom(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// handleIntrospect reports on the presented credential. requireActor has
// already vouched for it, so this only attaches the resolved identity.
func (s *Server) handleIntrospect(c *gin.Context) {
	identity, err := s.auth.Identify(c.Request.Context(), actorFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "identity": identity})
}

func (s *Server) handleGuest(c *gin.Context) {
	var req guestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	guest, err := s.auth.CreateGuest(c.Request.Context(), req.Nickname)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": guest.Token,
		"guest": gin.H{"nickname": guest.Nickname},
	})
}
