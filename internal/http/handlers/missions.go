package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"skincase_backend/internal/http/middleware"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMissions returns active missions with the user's current-period
// progress
func (h *Handler) GetMissions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	views, err := h.MissionService.ListWithProgress(c.Request.Context(), userID)
	if err != nil {
		logger.Error("mission list failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load missions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"missions": views})
}

// ClaimMission pays out a completed mission
func (h *Handler) ClaimMission(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	userMissionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid mission id"})
		return
	}

	result, err := h.MissionService.Claim(c.Request.Context(), userID, userMissionID)
	if err != nil {
		if errors.Is(err, service.ErrMissionNotClaimable) {
			c.JSON(http.StatusConflict, gin.H{"error": "not_claimable", "message": "mission not completed or already claimed"})
			return
		}
		logger.Error("mission claim failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to claim mission"})
		return
	}

	c.JSON(http.StatusOK, result)
}
