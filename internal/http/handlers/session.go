package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

type createSessionRequest struct {
	HostID   int64 `json:"host_id" binding:"required"`
	GameSize int   `json:"game_size" binding:"required"`
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "host_id and game_size required"})
		return
	}
	res, err := h.Sessions.Create(c.Request.Context(), req.HostID, req.GameSize)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.Sessions.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

type playerRequest struct {
	PlayerID int64 `json:"player_id" binding:"required"`
}

func (h *Handler) JoinSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
		return
	}
	res, err := h.Sessions.Join(c.Request.Context(), id, req.PlayerID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) LeaveSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
		return
	}
	if err := h.Sessions.Leave(c.Request.Context(), id, req.PlayerID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) StartSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
		return
	}
	if err := h.Sessions.Start(c.Request.Context(), id, req.PlayerID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) EndSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
		return
	}
	if err := h.Sessions.End(c.Request.Context(), id, req.PlayerID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
