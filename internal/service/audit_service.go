package service

import (
	"context"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditService handles audit logging
type AuditService struct {
	repo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(db *pgxpool.Pool) *AuditService {
	return &AuditService{
		repo: repository.NewAuditRepository(db),
	}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	log := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogCaseOpen logs a case opening with the rolled skin
func (s *AuditService) LogCaseOpen(ctx context.Context, userID, caseID int64, skinName, rarity string, value int64) {
	details := map[string]interface{}{
		"case_id":   caseID,
		"skin_name": skinName,
		"rarity":    rarity,
		"value":     value,
	}

	s.Log(ctx, userID, domain.AuditActionCaseOpen, domain.AuditCategoryCase, details)
}

// LogSkinSell logs a sell-back
func (s *AuditService) LogSkinSell(ctx context.Context, userID, itemID int64, payout int64) {
	details := map[string]interface{}{
		"item_id": itemID,
		"payout":  payout,
	}

	s.Log(ctx, userID, domain.AuditActionSkinSell, domain.AuditCategoryCase, details)
}

// LogBalanceChange logs a balance change
func (s *AuditService) LogBalanceChange(ctx context.Context, userID int64, change int64, reason string, details map[string]interface{}) {
	action := domain.AuditActionBalanceCredit
	if change < 0 {
		action = domain.AuditActionBalanceDebit
	}

	if details == nil {
		details = make(map[string]interface{})
	}
	details["change"] = change
	details["reason"] = reason

	s.Log(ctx, userID, action, domain.AuditCategoryBalance, details)
}

// LogPremiumPurchase logs a battlepass premium upgrade
func (s *AuditService) LogPremiumPurchase(ctx context.Context, userID, battlepassID, price int64) {
	details := map[string]interface{}{
		"battlepass_id": battlepassID,
		"price":         price,
	}

	s.Log(ctx, userID, domain.AuditActionPremiumPurchase, domain.AuditCategoryBattlepass, details)
}

// LogRewardClaim logs a battlepass tier claim
func (s *AuditService) LogRewardClaim(ctx context.Context, userID int64, level int, track string) {
	details := map[string]interface{}{
		"level": level,
		"track": track,
	}

	s.Log(ctx, userID, domain.AuditActionRewardClaim, domain.AuditCategoryBattlepass, details)
}

// LogAdminAction logs an admin action against a target user
func (s *AuditService) LogAdminAction(ctx context.Context, adminID int64, action string, targetUserID int64, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["admin_id"] = adminID
	details["target_user_id"] = targetUserID

	s.Log(ctx, targetUserID, action, domain.AuditCategoryAdmin, details)
}

// LogLogin logs a user login
func (s *AuditService) LogLogin(ctx context.Context, userID int64, ip, userAgent string) {
	s.LogWithRequest(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, ip, userAgent, nil)
}

// LogRegister logs a new account
func (s *AuditService) LogRegister(ctx context.Context, userID int64, ip, userAgent string) {
	s.LogWithRequest(ctx, userID, domain.AuditActionRegister, domain.AuditCategoryAuth, ip, userAgent, nil)
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

// GetRecentLogs returns recent audit logs
func (s *AuditService) GetRecentLogs(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetRecent(ctx, limit)
}

// GetLogsByCategory returns logs by category
func (s *AuditService) GetLogsByCategory(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByCategory(ctx, category, limit)
}
