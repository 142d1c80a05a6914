package http

import (
	"context"

	"skincase_backend/internal/config"
	"skincase_backend/internal/http/handlers"
	"skincase_backend/internal/http/middleware"
	"skincase_backend/internal/repository"
	"skincase_backend/internal/validation"
	"skincase_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// principalLoader adapts the user repository to the permission gate
type principalLoader struct {
	users *repository.UserRepository
}

func (l *principalLoader) LoadPrincipal(ctx context.Context, userID int64) (*middleware.Principal, error) {
	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &middleware.Principal{
		UserID:      u.ID,
		Username:    u.Username,
		IsAdmin:     u.IsAdmin,
		IsBanned:    u.IsBanned,
		BanReason:   u.BanReason,
		BanExpires:  u.BanExpires,
		Permissions: u.Permissions,
	}, nil
}

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, rdb *redis.Client, hub *ws.Hub, cfg *config.Config, version string) {
	h := handlers.NewHandler(db, hub, cfg)
	healthHandler := handlers.NewHealthHandler(db, rdb, version)
	loader := &principalLoader{users: h.UserRepo}

	// every route gets hardening headers, input sanitization and the
	// broad general limiter
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.SanitizeInput())
	r.Use(middleware.RateLimit("general"))

	// Health checks (no API rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit("api"))

	// Auth: failed attempts count against the limiter, successes are
	// refunded
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit("auth"))
	auth.POST("/register",
		middleware.Validate(validation.Username("username"), validation.Email("email"), validation.Password("password")),
		h.Register)
	auth.POST("/login", h.Login)

	// Public catalog
	v1.GET("/cases", h.ListCases)
	v1.GET("/cases/:id", middleware.Validate(validation.ID("id")), h.GetCase)
	v1.GET("/battlepass", h.GetBattlepass)
	v1.GET("/top", middleware.Validate(validation.Pagination()...), h.TopUsers)
	v1.GET("/drops", h.RecentDrops)
	v1.GET("/servers", h.ListServers)

	// Authenticated, non-mutating
	me := v1.Group("")
	me.Use(middleware.JWT(), middleware.RequirePermissions(loader))
	me.GET("/me", h.Me)
	me.GET("/csrf", h.CSRFToken)
	me.GET("/me/transactions", h.MyTransactions)
	me.GET("/me/inventory", h.MyInventory)
	me.GET("/me/battlepass", h.GetMyBattlepass)
	me.GET("/me/missions", h.GetMissions)
	me.GET("/me/rank", h.MyRank)

	// Authenticated, mutating: CSRF guarded
	act := v1.Group("")
	act.Use(middleware.JWT(), middleware.RequirePermissions(loader), middleware.CSRFProtect())
	act.POST("/cases/:id/open",
		middleware.RateLimit("expensive"),
		middleware.Validate(validation.ID("id")),
		h.OpenCase)
	act.POST("/inventory/:id/sell", middleware.Validate(validation.ID("id")), h.SellItem)
	act.POST("/battlepass/claim", h.ClaimBattlepassReward)
	act.POST("/battlepass/premium", h.PurchasePremium)
	act.POST("/missions/:id/claim", middleware.Validate(validation.ID("id")), h.ClaimMission)
	act.POST("/me/bonus", h.ClaimBonus)
	act.POST("/servers", middleware.Validate(validation.ServerRules()...), h.RegisterServer)
	act.DELETE("/servers/:id", middleware.Validate(validation.ID("id")), h.DelistServer)

	// Back-office: admins or holders of the named permission
	admin := v1.Group("/admin")
	admin.Use(middleware.JWT(), middleware.CSRFProtect())
	admin.GET("/users/:id",
		middleware.RequirePermissions(loader, "users.read"),
		middleware.Validate(validation.ID("id")),
		h.AdminGetUser)
	admin.POST("/users/:id/ban",
		middleware.RequirePermissions(loader, "users.moderate"),
		middleware.Validate(validation.ID("id")),
		h.AdminBanUser)
	admin.POST("/users/:id/unban",
		middleware.RequirePermissions(loader, "users.moderate"),
		middleware.Validate(validation.ID("id")),
		h.AdminUnbanUser)
	admin.POST("/users/:id/xcoins",
		middleware.RequirePermissions(loader, "economy.grant"),
		middleware.Validate(validation.ID("id"), validation.XcoinsAmount("amount")),
		h.AdminGrantXcoins)
	admin.POST("/users/:id/xp",
		middleware.RequirePermissions(loader, "economy.grant"),
		middleware.Validate(validation.ID("id")),
		h.AdminGrantXP)
	admin.POST("/cases",
		middleware.RequirePermissions(loader, "content.manage"),
		middleware.Validate(validation.CaseRules()...),
		h.AdminCreateCase)
	admin.PUT("/cases/:id",
		middleware.RequirePermissions(loader, "content.manage"),
		middleware.Validate(validation.ID("id")),
		h.AdminUpdateCase)
	admin.POST("/missions",
		middleware.RequirePermissions(loader, "content.manage"),
		h.AdminCreateMission)
	admin.PUT("/missions/:id",
		middleware.RequirePermissions(loader, "content.manage"),
		middleware.Validate(validation.ID("id")),
		h.AdminUpdateMission)
	admin.GET("/audit",
		middleware.RequirePermissions(loader, "audit.read"),
		h.AdminAuditLogs)

	// Live drop feed
	r.GET("/ws/feed", ws.HandleFeed(hub))
}
