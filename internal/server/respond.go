package server

import (
	"net/http"

	"word-imposter/internal/game"

	"github.com/gin-gonic/gin"
)

// respondError maps the engine taxonomy onto HTTP status codes. Anything
// outside the taxonomy is an internal fault and gets logged.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch game.KindOf(err) {
	case game.KindUnauthenticated:
		status = http.StatusUnauthorized
	case game.KindForbidden:
		status = http.StatusForbidden
	case game.KindNotFound:
		status = http.StatusNotFound
	case game.KindInvalidPhase, game.KindAlreadyDone, game.KindValidation:
		status = http.StatusUnprocessableEntity
	default:
		s.log.Error("unhandled engine error", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"message": "Internal error"})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
}
