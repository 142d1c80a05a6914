package handlers

import (
	"net/http"
	"strconv"

	"skincase_backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// TopUsers returns the monthly leaderboard by cases opened
func (h *Handler) TopUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	top, err := h.UserRepo.GetMonthlyTop(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"top": top})
}

// MyRank returns the authenticated user's leaderboard position
func (h *Handler) MyRank(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	rank, opened, err := h.UserRepo.GetUserRank(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load rank"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rank": rank, "cases_opened": opened})
}
