package service

import (
	"context"
	"errors"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/game"
	"skincase_backend/internal/logger"
	"skincase_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrCaseInactive = errors.New("case not available")
)

// DropBroadcaster pushes a won skin to the live drop feed.
// *ws.Hub is the production implementation.
type DropBroadcaster interface {
	BroadcastDrop(userID int64, username, caseName, skinName, rarity string, value int64)
}

// CaseService opens cases and handles skin sell-backs
type CaseService struct {
	db          *pgxpool.Pool
	cases       *repository.CaseRepository
	users       *repository.UserRepository
	inventory   *repository.InventoryRepository
	txRepo      *repository.TransactionRepository
	balance     *BalanceService
	missions    *MissionService
	battlepass  *BattlepassService
	audit       *AuditService
	broadcaster DropBroadcaster

	caseOpenXP  int64
	sellRatePct int64
}

func NewCaseService(db *pgxpool.Pool, missions *MissionService, battlepass *BattlepassService,
	audit *AuditService, broadcaster DropBroadcaster, caseOpenXP, sellRatePct int64) *CaseService {
	return &CaseService{
		db:          db,
		cases:       repository.NewCaseRepository(db),
		users:       repository.NewUserRepository(db),
		inventory:   repository.NewInventoryRepository(db),
		txRepo:      repository.NewTransactionRepository(db),
		balance:     NewBalanceService(db),
		missions:    missions,
		battlepass:  battlepass,
		audit:       audit,
		broadcaster: broadcaster,
		caseOpenXP:  caseOpenXP,
		sellRatePct: sellRatePct,
	}
}

// OpenResult is the outcome of a case opening
type OpenResult struct {
	Item       *domain.InventoryItem `json:"item"`
	NewBalance int64                 `json:"new_balance"`
	XPGranted  int64                 `json:"xp_granted"`
}

// OpenCase debits the price, rolls the drop table and stores the won
// skin, all in one transaction. Mission tracking, XP and the live feed
// run after commit and never undo a purchase.
func (s *CaseService) OpenCase(ctx context.Context, userID, caseID int64) (*OpenResult, error) {
	cs, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	if !cs.IsActive {
		return nil, ErrCaseInactive
	}
	if err := game.ValidateOdds(cs.Items); err != nil {
		return nil, err
	}

	drop := game.Roll(cs.Items)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err := s.balance.DebitWithTx(ctx, tx, userID, cs.Price)
	if err != nil {
		return nil, err
	}

	item := &domain.InventoryItem{
		UserID:   userID,
		CaseID:   cs.ID,
		CaseName: cs.Name,
		SkinName: drop.SkinName,
		Rarity:   drop.Rarity,
		Value:    drop.Value,
	}
	if err := s.inventory.AddWithTx(ctx, tx, item); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Type:   domain.TxCaseOpen,
		Amount: -cs.Price,
		Meta:   map[string]interface{}{"case_id": cs.ID, "skin_name": drop.SkinName},
	}
	if err := s.txRepo.CreateWithTx(ctx, tx, record); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.afterOpen(ctx, userID, cs, item)

	return &OpenResult{Item: item, NewBalance: newBalance, XPGranted: s.caseOpenXP}, nil
}

func (s *CaseService) afterOpen(ctx context.Context, userID int64, cs *domain.Case, item *domain.InventoryItem) {
	s.missions.Track(ctx, userID, domain.MetricCasesOpened, 1)
	s.missions.Track(ctx, userID, domain.MetricXcoinsSpent, cs.Price)

	if s.caseOpenXP > 0 {
		if _, _, err := s.battlepass.GrantXP(ctx, userID, s.caseOpenXP); err != nil {
			logger.Error("case open xp grant failed", "error", err, "user_id", userID)
		}
	}

	s.audit.LogCaseOpen(ctx, userID, cs.ID, item.SkinName, item.Rarity, item.Value)

	if s.broadcaster != nil {
		username := ""
		if u, err := s.users.GetByID(ctx, userID); err == nil {
			username = u.Username
		}
		s.broadcaster.BroadcastDrop(userID, username, cs.Name, item.SkinName, item.Rarity, item.Value)
	}
}

// SellResult is the outcome of a sell-back
type SellResult struct {
	Payout     int64 `json:"payout"`
	NewBalance int64 `json:"new_balance"`
}

// SellItem sells a skin back at the configured rate. The sold_at flip
// and the credit commit together; a double sell matches zero rows and
// pays nothing.
func (s *CaseService) SellItem(ctx context.Context, userID, itemID int64) (*SellResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	value, err := s.inventory.MarkSoldWithTx(ctx, tx, userID, itemID)
	if err != nil {
		return nil, err
	}

	payout := value * s.sellRatePct / 100
	newBalance, err := s.balance.CreditWithTx(ctx, tx, userID, payout)
	if err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Type:   domain.TxSkinSell,
		Amount: payout,
		Meta:   map[string]interface{}{"item_id": itemID},
	}
	if err := s.txRepo.CreateWithTx(ctx, tx, record); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.missions.Track(ctx, userID, domain.MetricSkinsSold, 1)
	s.audit.LogSkinSell(ctx, userID, itemID, payout)

	return &SellResult{Payout: payout, NewBalance: newBalance}, nil
}

// ListCases returns all purchasable cases
func (s *CaseService) ListCases(ctx context.Context) ([]*domain.Case, error) {
	return s.cases.ActiveCases(ctx)
}

// GetCase returns one case with its drop table
func (s *CaseService) GetCase(ctx context.Context, caseID int64) (*domain.Case, error) {
	cs, err := s.cases.GetByID(ctx, caseID)
	if errors.Is(err, repository.ErrCaseNotFound) {
		return nil, ErrCaseNotFound
	}
	return cs, err
}

// Inventory returns the user's unsold skins
func (s *CaseService) Inventory(ctx context.Context, userID int64, limit int) ([]*domain.InventoryItem, error) {
	return s.inventory.ListByUser(ctx, userID, limit)
}

// RecentDrops returns the latest wins for the live feed backfill
func (s *CaseService) RecentDrops(ctx context.Context, limit int) ([]*domain.InventoryItem, error) {
	return s.inventory.RecentDrops(ctx, limit)
}
