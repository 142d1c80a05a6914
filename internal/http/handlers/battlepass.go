package handlers

import (
	"errors"
	"net/http"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/http/middleware"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// GetBattlepass returns the active season and its tier ladder
func (h *Handler) GetBattlepass(c *gin.Context) {
	view, err := h.BattlepassService.Season(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoBattlepass) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_battlepass", "message": "no active battlepass"})
			return
		}
		logger.Error("battlepass load failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load battlepass"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetMyBattlepass returns the user's progress for the active season
func (h *Handler) GetMyBattlepass(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	view, err := h.BattlepassService.UserProgress(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoBattlepass) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_battlepass", "message": "no active battlepass"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load progress"})
		return
	}
	c.JSON(http.StatusOK, view)
}

type claimRewardRequest struct {
	Level int    `json:"level"`
	Track string `json:"track"`
}

// ClaimBattlepassReward consumes one (level, track) claim
func (h *Handler) ClaimBattlepassReward(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	var req claimRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "malformed JSON body"})
		return
	}

	track := domain.ClaimTrack(req.Track)
	if track != domain.TrackFree && track != domain.TrackPremium {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_track", "message": "track must be free or premium"})
		return
	}

	rewards, err := h.BattlepassService.ClaimReward(c.Request.Context(), userID, req.Level, track)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoBattlepass):
			c.JSON(http.StatusNotFound, gin.H{"error": "no_battlepass", "message": "no active battlepass"})
		case errors.Is(err, service.ErrTierNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "tier_not_found", "message": "no such tier"})
		case errors.Is(err, service.ErrNotUnlocked):
			c.JSON(http.StatusConflict, gin.H{"error": "not_unlocked", "message": "tier not reached yet"})
		case errors.Is(err, service.ErrPremiumRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "premium_required", "message": "premium track requires the premium battlepass"})
		case errors.Is(err, service.ErrAlreadyClaimed):
			c.JSON(http.StatusConflict, gin.H{"error": "already_claimed", "message": "reward already claimed"})
		default:
			logger.Error("battlepass claim failed", "error", err, "user_id", userID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to claim reward"})
		}
		return
	}

	h.AuditService.LogRewardClaim(c.Request.Context(), userID, req.Level, req.Track)

	c.JSON(http.StatusOK, gin.H{"rewards": rewards, "level": req.Level, "track": req.Track})
}

// PurchasePremium upgrades the user to the premium track
func (h *Handler) PurchasePremium(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	ctx := c.Request.Context()
	bp, err := h.BattlepassService.PurchasePremium(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoBattlepass):
			c.JSON(http.StatusNotFound, gin.H{"error": "no_battlepass", "message": "no active battlepass"})
		case errors.Is(err, service.ErrAlreadyPremium):
			c.JSON(http.StatusConflict, gin.H{"error": "already_premium", "message": "premium already active"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient_funds", "message": "not enough Xcoins"})
		default:
			logger.Error("premium purchase failed", "error", err, "user_id", userID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to purchase premium"})
		}
		return
	}

	h.AuditService.LogPremiumPurchase(ctx, userID, bp.ID, bp.PremiumPrice)

	c.JSON(http.StatusOK, gin.H{"premium": true, "battlepass_id": bp.ID, "price": bp.PremiumPrice})
}
