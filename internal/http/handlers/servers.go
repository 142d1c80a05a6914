package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/http/middleware"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListServers returns the community server listing
func (h *Handler) ListServers(c *gin.Context) {
	servers, err := h.ServerRepo.ActiveServers(c.Request.Context())
	if err != nil {
		logger.Error("server list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load servers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"servers": servers})
}

type registerServerRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address" binding:"required"`
	MaxPlayers  int    `json:"max_players" binding:"required"`
}

// RegisterServer adds the caller's server to the community listing
func (h *Handler) RegisterServer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	var req registerServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid payload"})
		return
	}

	server := &domain.CommunityServer{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		MaxPlayers:  req.MaxPlayers,
		IsActive:    true,
	}
	if err := h.ServerRepo.Create(c.Request.Context(), server); err != nil {
		if errors.Is(err, repository.ErrDuplicateServer) {
			c.JSON(http.StatusConflict, gin.H{"error": "name_taken", "message": "server name already registered"})
			return
		}
		logger.Error("server register failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to register server"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"server": server})
}

// DelistServer removes the caller's server from the listing
func (h *Handler) DelistServer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid server id"})
		return
	}

	if err := h.ServerRepo.Delist(c.Request.Context(), userID, serverID); err != nil {
		if errors.Is(err, repository.ErrServerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "server not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to delist server"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "server delisted"})
}
