package service

import (
	"context"
	"time"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/game"
	"skincase_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminService is the back-office: moderation, currency grants and
// content management. Every mutation lands in the audit log.
type AdminService struct {
	users      *repository.UserRepository
	cases      *repository.CaseRepository
	missions   *repository.MissionRepository
	balance    *BalanceService
	battlepass *BattlepassService
	audit      *AuditService
}

func NewAdminService(db *pgxpool.Pool, battlepass *BattlepassService, audit *AuditService) *AdminService {
	return &AdminService{
		users:      repository.NewUserRepository(db),
		cases:      repository.NewCaseRepository(db),
		missions:   repository.NewMissionRepository(db),
		balance:    NewBalanceService(db),
		battlepass: battlepass,
		audit:      audit,
	}
}

// BanUser bans an account. A nil expiry is permanent.
func (s *AdminService) BanUser(ctx context.Context, adminID, targetID int64, reason string, expires *time.Time) error {
	if err := s.users.Ban(ctx, targetID, reason, expires); err != nil {
		return err
	}
	details := map[string]interface{}{"reason": reason}
	if expires != nil {
		details["expires"] = expires.Format(time.RFC3339)
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminBanUser, targetID, details)
	return nil
}

func (s *AdminService) UnbanUser(ctx context.Context, adminID, targetID int64) error {
	if err := s.users.Unban(ctx, targetID); err != nil {
		return err
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminUnbanUser, targetID, nil)
	return nil
}

// GrantXcoins credits currency to a user from the back-office
func (s *AdminService) GrantXcoins(ctx context.Context, adminID, targetID, amount int64, reason string) (int64, error) {
	newBalance, err := s.balance.Credit(ctx, targetID, amount, domain.TxAdminGrant,
		map[string]interface{}{"admin_id": adminID, "reason": reason})
	if err != nil {
		return 0, err
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminGrantXcoins, targetID,
		map[string]interface{}{"amount": amount, "reason": reason})
	return newBalance, nil
}

// GrantXP awards battlepass XP to a user from the back-office
func (s *AdminService) GrantXP(ctx context.Context, adminID, targetID, amount int64) (newXP int64, newLevel int, err error) {
	newXP, newLevel, err = s.battlepass.GrantXP(ctx, targetID, amount)
	if err != nil {
		return 0, 0, err
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminGrantXP, targetID,
		map[string]interface{}{"amount": amount})
	return newXP, newLevel, nil
}

func (s *AdminService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// CreateCase validates the drop table before saving
func (s *AdminService) CreateCase(ctx context.Context, adminID int64, cs *domain.Case) error {
	if err := game.ValidateOdds(cs.Items); err != nil {
		return err
	}
	if err := s.cases.Create(ctx, cs); err != nil {
		return err
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminCaseChange, 0,
		map[string]interface{}{"case_id": cs.ID, "op": "create"})
	return nil
}

func (s *AdminService) UpdateCase(ctx context.Context, adminID int64, cs *domain.Case) error {
	if err := game.ValidateOdds(cs.Items); err != nil {
		return err
	}
	if err := s.cases.Update(ctx, cs); err != nil {
		return err
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminCaseChange, 0,
		map[string]interface{}{"case_id": cs.ID, "op": "update"})
	return nil
}

func (s *AdminService) CreateMission(ctx context.Context, adminID int64, m *domain.Mission) error {
	if err := s.missions.Create(ctx, m); err != nil {
		return err
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminMissionChange, 0,
		map[string]interface{}{"mission_id": m.ID, "op": "create"})
	return nil
}

func (s *AdminService) UpdateMission(ctx context.Context, adminID int64, m *domain.Mission) error {
	if err := s.missions.Update(ctx, m); err != nil {
		return err
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminMissionChange, 0,
		map[string]interface{}{"mission_id": m.ID, "op": "update"})
	return nil
}
