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

// ListCases returns all purchasable cases
func (h *Handler) ListCases(c *gin.Context) {
	cases, err := h.CaseService.ListCases(c.Request.Context())
	if err != nil {
		logger.Error("case list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load cases"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases})
}

// GetCase returns one case with its drop table
func (h *Handler) GetCase(c *gin.Context) {
	caseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid case id"})
		return
	}

	cs, err := h.CaseService.GetCase(c.Request.Context(), caseID)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "case not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load case"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"case": cs})
}

// OpenCase buys and opens a case, returning the rolled skin
func (h *Handler) OpenCase(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	caseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid case id"})
		return
	}

	result, err := h.CaseService.OpenCase(c.Request.Context(), userID, caseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "case not found"})
		case errors.Is(err, service.ErrCaseInactive):
			c.JSON(http.StatusConflict, gin.H{"error": "case_inactive", "message": "case not available"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient_funds", "message": "not enough Xcoins"})
		default:
			logger.Error("case open failed", "error", err, "user_id", userID, "case_id", caseID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to open case"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecentDrops backfills the live feed for clients without a websocket
func (h *Handler) RecentDrops(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	drops, err := h.CaseService.RecentDrops(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load drops"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"drops": drops})
}
