package game

import (
	"testing"

	"skincase_backend/internal/domain"
)

func table() []domain.CaseItem {
	return []domain.CaseItem{
		{SkinName: "Sand Dune", Rarity: domain.RarityConsumer, Value: 10, Odds: 0.70},
		{SkinName: "Crimson Web", Rarity: domain.RarityRestricted, Value: 150, Odds: 0.25},
		{SkinName: "Dragon Lore", Rarity: domain.RarityCovert, Value: 5000, Odds: 0.05},
	}
}

func TestValidateOdds(t *testing.T) {
	if err := ValidateOdds(table()); err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}

	bad := table()
	bad[0].Odds = 0.5
	if err := ValidateOdds(bad); err == nil {
		t.Fatal("table with odds sum != 1 accepted")
	}

	zero := table()
	zero[1].Odds = 0
	zero[0].Odds = 0.95
	if err := ValidateOdds(zero); err == nil {
		t.Fatal("table with zero odds accepted")
	}

	if err := ValidateOdds(nil); err == nil {
		t.Fatal("empty table accepted")
	}
}

func TestRollReturnsTableEntry(t *testing.T) {
	items := table()
	names := make(map[string]bool, len(items))
	for _, it := range items {
		names[it.SkinName] = true
	}

	for i := 0; i < 1000; i++ {
		drop := Roll(items)
		if !names[drop.SkinName] {
			t.Fatalf("roll returned skin outside the table: %q", drop.SkinName)
		}
	}
}

func TestRollSingleEntry(t *testing.T) {
	items := []domain.CaseItem{{SkinName: "Only One", Odds: 1.0, Value: 1}}
	for i := 0; i < 10; i++ {
		if got := Roll(items); got.SkinName != "Only One" {
			t.Fatalf("single-entry roll returned %q", got.SkinName)
		}
	}
}

func TestRollCommonDominates(t *testing.T) {
	// with a 70% common the common must show up in 1000 draws
	items := table()
	seen := make(map[string]int)
	for i := 0; i < 1000; i++ {
		seen[Roll(items).SkinName]++
	}
	if seen["Sand Dune"] == 0 {
		t.Fatal("common drop never rolled in 1000 draws")
	}
	if seen["Sand Dune"] < seen["Dragon Lore"] {
		t.Fatalf("rare outnumbered common: common=%d rare=%d", seen["Sand Dune"], seen["Dragon Lore"])
	}
}

func TestExpectedReturn(t *testing.T) {
	items := []domain.CaseItem{
		{Value: 100, Odds: 0.5},
		{Value: 300, Odds: 0.5},
	}
	if got := ExpectedReturn(items); got != 200 {
		t.Fatalf("ExpectedReturn = %v, want 200", got)
	}
}
