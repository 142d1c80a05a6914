package domain

import "time"

// Rarity grades, lowest to highest
const (
	RarityConsumer   = "consumer"
	RarityIndustrial = "industrial"
	RarityMilSpec    = "mil-spec"
	RarityRestricted = "restricted"
	RarityClassified = "classified"
	RarityCovert     = "covert"
	RarityGold       = "gold"
)

// CaseItem is one possible drop inside a case. Odds is the drop
// probability in [0,1]; odds of all items in a case sum to 1.
type CaseItem struct {
	SkinName string  `json:"skin_name"`
	Rarity   string  `json:"rarity"`
	Value    int64   `json:"value"`
	Odds     float64 `json:"odds"`
}

// Case is a purchasable loot case
type Case struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Price       int64      `db:"price" json:"price"`
	ImageURL    string     `db:"image_url" json:"image_url,omitempty"`
	Items       []CaseItem `db:"items" json:"items"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// InventoryItem is a skin owned by a user. SoldAt marks sell-backs;
// sold items stay on record for history and leaderboards.
type InventoryItem struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	CaseID     int64      `db:"case_id" json:"case_id"`
	CaseName   string     `db:"case_name" json:"case_name"`
	SkinName   string     `db:"skin_name" json:"skin_name"`
	Rarity     string     `db:"rarity" json:"rarity"`
	Value      int64      `db:"value" json:"value"`
	AcquiredAt time.Time  `db:"acquired_at" json:"acquired_at"`
	SoldAt     *time.Time `db:"sold_at" json:"sold_at,omitempty"`
}
