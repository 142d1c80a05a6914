package handlers

import (
	"skincase_backend/internal/config"
	"skincase_backend/internal/repository"
	"skincase_backend/internal/service"
	"skincase_backend/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB         *pgxpool.Pool
	Cfg        *config.Config
	UserRepo   *repository.UserRepository
	ServerRepo *repository.ServerRepository

	BalanceService    *service.BalanceService
	BattlepassService *service.BattlepassService
	MissionService    *service.MissionService
	CaseService       *service.CaseService
	AdminService      *service.AdminService
	AuditService      *service.AuditService
}

func NewHandler(db *pgxpool.Pool, hub *ws.Hub, cfg *config.Config) *Handler {
	audit := service.NewAuditService(db)
	battlepass := service.NewBattlepassService(
		repository.NewBattlepassRepository(db),
		service.NewPgRewardSink(db),
	)
	missions := service.NewMissionService(db, battlepass)

	var broadcaster service.DropBroadcaster
	if hub != nil {
		broadcaster = hub
	}

	return &Handler{
		DB:                db,
		Cfg:               cfg,
		UserRepo:          repository.NewUserRepository(db),
		ServerRepo:        repository.NewServerRepository(db),
		BalanceService:    service.NewBalanceService(db),
		BattlepassService: battlepass,
		MissionService:    missions,
		CaseService: service.NewCaseService(db, missions, battlepass, audit, broadcaster,
			cfg.CaseOpenXP, cfg.SellRatePct),
		AdminService: service.NewAdminService(db, battlepass, audit),
		AuditService: audit,
	}
}
