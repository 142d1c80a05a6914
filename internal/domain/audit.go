package domain

import "time"

// AuditLog records important actions for the admin back-office
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit categories
const (
	AuditCategoryAuth       = "auth"
	AuditCategoryCase       = "case"
	AuditCategoryBalance    = "balance"
	AuditCategoryBattlepass = "battlepass"
	AuditCategoryAdmin      = "admin"
)

// Audit actions
const (
	AuditActionRegister = "register"
	AuditActionLogin    = "login"

	AuditActionCaseOpen = "case_open"
	AuditActionSkinSell = "skin_sell"

	AuditActionBalanceCredit = "balance_credit"
	AuditActionBalanceDebit  = "balance_debit"
	AuditActionBonusClaim    = "bonus_claim"

	AuditActionPremiumPurchase = "premium_purchase"
	AuditActionRewardClaim     = "reward_claim"

	AuditActionAdminGrantXcoins   = "admin_grant_xcoins"
	AuditActionAdminGrantXP       = "admin_grant_xp"
	AuditActionAdminBanUser       = "admin_ban_user"
	AuditActionAdminUnbanUser     = "admin_unban_user"
	AuditActionAdminCaseChange    = "admin_case_change"
	AuditActionAdminMissionChange = "admin_mission_change"
)
