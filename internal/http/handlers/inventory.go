package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"skincase_backend/internal/http/middleware"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// MyInventory returns the user's unsold skins
func (h *Handler) MyInventory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	items, err := h.CaseService.Inventory(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("inventory list failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load inventory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SellItem sells a skin back for Xcoins
func (h *Handler) SellItem(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid item id"})
		return
	}

	result, err := h.CaseService.SellItem(c.Request.Context(), userID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotSellable) {
			c.JSON(http.StatusConflict, gin.H{"error": "not_sellable", "message": "item not found or already sold"})
			return
		}
		logger.Error("sell failed", "error", err, "user_id", userID, "item_id", itemID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to sell item"})
		return
	}

	c.JSON(http.StatusOK, result)
}
