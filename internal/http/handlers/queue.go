package handlers

import (
	"net/http"

	"entangle_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type enqueueRequest struct {
	PlayerID int64  `json:"player_id" binding:"required"`
	Gender   string `json:"gender" binding:"required"`
}

func (h *Handler) Enqueue(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id and gender required"})
		return
	}
	gender := domain.Gender(req.Gender)
	if gender != domain.GenderMale && gender != domain.GenderFemale {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gender must be male or female"})
		return
	}
	res, err := h.Queue.Enqueue(c.Request.Context(), req.PlayerID, gender)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
