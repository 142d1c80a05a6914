package handlers

import (
	"errors"
	"net/http"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/repository"
	"skincase_backend/internal/service"
	"skincase_backend/internal/validation"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account, credits the welcome balance and returns
// a session token
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "malformed JSON body"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to create account"})
		return
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        validation.NormalizeEmail(req.Email),
		PasswordHash: string(hash),
	}

	ctx := c.Request.Context()
	if err := h.UserRepo.Create(ctx, user, h.Cfg.WelcomeXcoins); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			c.JSON(http.StatusConflict, gin.H{"error": "duplicate_user", "message": "username or email already taken"})
			return
		}
		logger.Error("register failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to create account"})
		return
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to issue token"})
		return
	}

	h.AuditService.LogRegister(ctx, user.ID, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login verifies credentials and returns a session token
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "malformed JSON body"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		// same answer as a wrong password, no username probing
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": "wrong username or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": "wrong username or password"})
		return
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to issue token"})
		return
	}

	h.AuditService.LogLogin(ctx, user.ID, c.ClientIP(), c.Request.UserAgent())
	h.MissionService.Track(ctx, user.ID, domain.MetricLogins, 1)

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
