package handlers

import (
	"errors"
	"net/http"

	"entangle_backend/internal/domain"
	"entangle_backend/internal/game"
	"entangle_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler bundles the services behind the HTTP API.
type Handler struct {
	Sessions *service.SessionService
	Games    *service.GameService
	Queue    *service.QueueService
}

func NewHandler(sessions *service.SessionService, games *service.GameService, queue *service.QueueService) *Handler {
	return &Handler{Sessions: sessions, Games: games, Queue: queue}
}

// respondErr maps service errors onto HTTP statuses: validation 400,
// conflict 409, missing rows 404, anything else 500.
func respondErr(c *gin.Context, err error) {
	var verr *game.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "code": verr.Code})
		return
	}
	if game.IsConflict(err) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func sessionID(c *gin.Context) (int64, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return id, true
}
