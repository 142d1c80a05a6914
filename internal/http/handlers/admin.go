package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/game"
	"skincase_backend/internal/http/middleware"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/repository"
	"skincase_backend/internal/service"

	"github.com/gin-gonic/gin"
)

func adminID(c *gin.Context) int64 {
	if p, ok := middleware.GetPrincipal(c); ok {
		return p.UserID
	}
	id, _ := middleware.UserID(c)
	return id
}

type banRequest struct {
	Reason string `json:"reason"`
	// 0 or absent means permanent
	ExpiresHours int `json:"expires_hours"`
}

// AdminBanUser bans an account
func (h *Handler) AdminBanUser(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid user id"})
		return
	}

	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "malformed JSON body"})
		return
	}

	var expires *time.Time
	if req.ExpiresHours > 0 {
		t := time.Now().Add(time.Duration(req.ExpiresHours) * time.Hour)
		expires = &t
	}

	if err := h.AdminService.BanUser(c.Request.Context(), adminID(c), targetID, req.Reason, expires); err != nil {
		logger.Error("ban failed", "error", err, "target_id", targetID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to ban user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"banned": true, "user_id": targetID})
}

// AdminUnbanUser lifts a ban
func (h *Handler) AdminUnbanUser(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid user id"})
		return
	}

	if err := h.AdminService.UnbanUser(c.Request.Context(), adminID(c), targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to unban user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"banned": false, "user_id": targetID})
}

type grantRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// AdminGrantXcoins credits currency from the back-office
func (h *Handler) AdminGrantXcoins(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid user id"})
		return
	}

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "amount must be positive"})
		return
	}

	newBalance, err := h.AdminService.GrantXcoins(c.Request.Context(), adminID(c), targetID, req.Amount, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to grant xcoins"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "new_balance": newBalance})
}

// AdminGrantXP awards battlepass XP from the back-office
func (h *Handler) AdminGrantXP(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid user id"})
		return
	}

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "amount must be positive"})
		return
	}

	newXP, newLevel, err := h.AdminService.GrantXP(c.Request.Context(), adminID(c), targetID, req.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to grant xp"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "new_xp": newXP, "new_level": newLevel})
}

// AdminGetUser returns any user's full record
func (h *Handler) AdminGetUser(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid user id"})
		return
	}

	user, err := h.AdminService.GetUser(c.Request.Context(), targetID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// AdminCreateCase adds a case after validating its drop table
func (h *Handler) AdminCreateCase(c *gin.Context) {
	var cs domain.Case
	if err := c.ShouldBindJSON(&cs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "malformed JSON body"})
		return
	}

	if err := h.AdminService.CreateCase(c.Request.Context(), adminID(c), &cs); err != nil {
		if errors.Is(err, game.ErrBadOddsTable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_odds", "message": "case odds must be positive and sum to 1"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to create case"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"case": cs})
}

// AdminUpdateCase rewrites a case definition
func (h *Handler) AdminUpdateCase(c *gin.Context) {
	caseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid case id"})
		return
	}

	var cs domain.Case
	if err := c.ShouldBindJSON(&cs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "malformed JSON body"})
		return
	}
	cs.ID = caseID

	if err := h.AdminService.UpdateCase(c.Request.Context(), adminID(c), &cs); err != nil {
		switch {
		case errors.Is(err, game.ErrBadOddsTable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_odds", "message": "case odds must be positive and sum to 1"})
		case errors.Is(err, repository.ErrCaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "case not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to update case"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": cs})
}

// AdminCreateMission adds a mission template
func (h *Handler) AdminCreateMission(c *gin.Context) {
	var m domain.Mission
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "malformed JSON body"})
		return
	}

	if err := h.AdminService.CreateMission(c.Request.Context(), adminID(c), &m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to create mission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mission": m})
}

// AdminUpdateMission rewrites a mission template
func (h *Handler) AdminUpdateMission(c *gin.Context) {
	missionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid mission id"})
		return
	}

	var m domain.Mission
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "malformed JSON body"})
		return
	}
	m.ID = missionID

	if err := h.AdminService.UpdateMission(c.Request.Context(), adminID(c), &m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to update mission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mission": m})
}

// AdminAuditLogs lists recent audit entries, optionally filtered
func (h *Handler) AdminAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	ctx := c.Request.Context()

	if category := c.Query("category"); category != "" {
		logs, err := h.AuditService.GetLogsByCategory(ctx, category, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load audit logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs})
		return
	}

	if uid := c.Query("user_id"); uid != "" {
		userID, err := strconv.ParseInt(uid, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "invalid user id"})
			return
		}
		logs, err := h.AuditService.GetUserAuditLogs(ctx, userID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load audit logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs})
		return
	}

	logs, err := h.AuditService.GetRecentLogs(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
