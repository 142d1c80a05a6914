package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"skincase_backend/internal/http/middleware"
	"skincase_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Me returns the authenticated user's profile
func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	user, err := h.UserRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CSRFToken issues the session's CSRF token
func (h *Handler) CSRFToken(c *gin.Context) {
	token, err := middleware.IssueCSRFToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}

// MyTransactions returns the user's Xcoins ledger
func (h *Handler) MyTransactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	txs, err := h.BalanceService.GetTransactionHistory(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// ClaimBonus tops up a user whose balance fell under the threshold
func (h *Handler) ClaimBonus(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	ctx := c.Request.Context()
	newBalance, err := h.BalanceService.ClaimBonus(ctx, userID, h.Cfg.BonusXcoins, h.Cfg.BonusThreshold)
	if err != nil {
		if errors.Is(err, service.ErrBonusNotEligible) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "not_eligible",
				"message": "balance too high for bonus",
				"balance": newBalance,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to claim bonus"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"new_balance": newBalance, "bonus": h.Cfg.BonusXcoins})
}
