package handlers

import (
	"net/http"

	"entangle_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SeatingState(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := h.Games.SeatingState(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type pickSeatRequest struct {
	PickerID int64 `json:"picker_id" binding:"required"`
	TargetID int64 `json:"target_id" binding:"required"`
}

func (h *Handler) PickSeat(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req pickSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picker_id and target_id required"})
		return
	}
	st, err := h.Games.PickSeat(c.Request.Context(), id, req.PickerID, req.TargetID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) RoundState(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := h.Games.RoundState(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type intentRequest struct {
	PlayerID int64  `json:"player_id" binding:"required"`
	Action   string `json:"action" binding:"required"`
	TargetID *int64 `json:"target_id"`
}

func (h *Handler) SubmitIntent(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req intentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id and action required"})
		return
	}
	res, err := h.Games.SubmitIntent(c.Request.Context(), id, req.PlayerID, domain.IntentAction(req.Action), req.TargetID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if res == nil {
		c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CloseRound(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	res, err := h.Games.CloseRound(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) FinalState(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	st, err := h.Games.FinalState(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) Propose(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req pickSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picker_id and target_id required"})
		return
	}
	st, err := h.Games.Propose(c.Request.Context(), id, req.PickerID, req.TargetID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type respondRequest struct {
	PlayerID int64 `json:"player_id" binding:"required"`
	Accept   *bool `json:"accept" binding:"required"`
}

func (h *Handler) Respond(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id and accept required"})
		return
	}
	res, err := h.Games.Respond(c.Request.Context(), id, req.PlayerID, *req.Accept)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
