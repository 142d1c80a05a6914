package service

import (
	"context"
	"sync"
	"testing"

	"skincase_backend/internal/domain"
	"skincase_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps battlepass state in memory with the same semantics
// the Postgres repository provides: unique claims, conditional debits.
type fakeStore struct {
	mu sync.Mutex

	bp    *domain.Battlepass
	tiers []*domain.BattlepassTier

	progress map[int64]*domain.UserBattlepassProgress // by user id
	claims   map[[3]interface{}]bool                  // progress id, level, track
	balances map[int64]int64

	nextProgressID int64
}

func newFakeStore(bp *domain.Battlepass, tiers []*domain.BattlepassTier) *fakeStore {
	return &fakeStore{
		bp:             bp,
		tiers:          tiers,
		progress:       map[int64]*domain.UserBattlepassProgress{},
		claims:         map[[3]interface{}]bool{},
		balances:       map[int64]int64{},
		nextProgressID: 100,
	}
}

func (f *fakeStore) ActiveBattlepass(_ context.Context) (*domain.Battlepass, error) {
	if f.bp == nil {
		return nil, repository.ErrNoActiveBattlepass
	}
	return f.bp, nil
}

func (f *fakeStore) Tiers(_ context.Context, _ int64) ([]*domain.BattlepassTier, error) {
	return f.tiers, nil
}

func (f *fakeStore) Progress(_ context.Context, userID, battlepassID int64) (*domain.UserBattlepassProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.progress[userID]; ok {
		return p, nil
	}
	f.nextProgressID++
	p := &domain.UserBattlepassProgress{ID: f.nextProgressID, UserID: userID, BattlepassID: battlepassID}
	f.progress[userID] = p
	return p, nil
}

func (f *fakeStore) byProgressID(id int64) *domain.UserBattlepassProgress {
	for _, p := range f.progress {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (f *fakeStore) AddXP(_ context.Context, progressID, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.byProgressID(progressID)
	p.CurrentXP += amount
	return p.CurrentXP, nil
}

func (f *fakeStore) PromoteLevel(_ context.Context, progressID int64, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.byProgressID(progressID)
	if level > p.CurrentLevel {
		p.CurrentLevel = level
	}
	return nil
}

func (f *fakeStore) InsertClaim(_ context.Context, progressID int64, level int, track domain.ClaimTrack) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [3]interface{}{progressID, level, track}
	if f.claims[key] {
		return false, nil
	}
	f.claims[key] = true
	return true, nil
}

func (f *fakeStore) Claims(_ context.Context, progressID int64) ([]domain.ClaimedReward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ClaimedReward
	for key := range f.claims {
		if key[0].(int64) == progressID {
			out = append(out, domain.ClaimedReward{Level: key[1].(int), Track: key[2].(domain.ClaimTrack)})
		}
	}
	return out, nil
}

func (f *fakeStore) SetPremium(_ context.Context, progressID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byProgressID(progressID).IsPremium = true
	return nil
}

func (f *fakeStore) PurchasePremium(_ context.Context, userID, progressID, price int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[userID] < price {
		return repository.ErrInsufficientFunds
	}
	p := f.byProgressID(progressID)
	if p.IsPremium {
		return nil
	}
	f.balances[userID] -= price
	p.IsPremium = true
	return nil
}

// fakeSink records every grant it receives
type fakeSink struct {
	mu     sync.Mutex
	xcoins map[int64]int64
	items  []domain.RewardItem
	titles []string
	badges []string
}

func newFakeSink() *fakeSink {
	return &fakeSink{xcoins: map[int64]int64{}}
}

func (f *fakeSink) GrantXcoins(_ context.Context, userID, amount int64, _ map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.xcoins[userID] += amount
	return nil
}

func (f *fakeSink) GrantItem(_ context.Context, _ int64, item domain.RewardItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return nil
}

func (f *fakeSink) GrantTitle(_ context.Context, _ int64, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	return nil
}

func (f *fakeSink) GrantBadge(_ context.Context, _ int64, badge string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badges = append(f.badges, badge)
	return nil
}

func seasonTiers() []*domain.BattlepassTier {
	return []*domain.BattlepassTier{
		{ID: 1, Level: 1, XPRequired: 0,
			FreeRewards:    []domain.RewardItem{{Type: domain.RewardXcoins, Amount: 100}},
			PremiumRewards: []domain.RewardItem{{Type: domain.RewardXcoins, Amount: 250}}},
		{ID: 2, Level: 2, XPRequired: 100,
			FreeRewards:    []domain.RewardItem{{Type: domain.RewardSkin, Name: "Desert Eagle | Blaze", Amount: 900}},
			PremiumRewards: []domain.RewardItem{{Type: domain.RewardTitle, Name: "High Roller"}}},
		{ID: 3, Level: 3, XPRequired: 250,
			FreeRewards:    []domain.RewardItem{{Type: domain.RewardBadge, Name: "season-one"}},
			PremiumRewards: []domain.RewardItem{{Type: domain.RewardPremiumDays, Amount: 30}}},
	}
}

func activeSeason() *domain.Battlepass {
	return &domain.Battlepass{ID: 1, Name: "Season One", Season: 1, PremiumPrice: 5000, IsActive: true}
}

func TestGrantXPPromotesLevel(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	xp, level, err := svc.GrantXP(context.Background(), 1, 150)
	require.NoError(t, err)
	assert.Equal(t, int64(150), xp)
	assert.Equal(t, 2, level)

	xp, level, err = svc.GrantXP(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(250), xp)
	assert.Equal(t, 3, level)
}

func TestGrantXPNeverLowersLevel(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	_, _, err := svc.GrantXP(context.Background(), 1, 300)
	require.NoError(t, err)

	// a small grant must not report a lower level
	_, level, err := svc.GrantXP(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, level)
}

func TestGrantXPOffSeasonIsDropped(t *testing.T) {
	store := newFakeStore(nil, nil)
	svc := NewBattlepassService(store, newFakeSink())

	xp, level, err := svc.GrantXP(context.Background(), 1, 50)
	require.NoError(t, err)
	assert.Zero(t, xp)
	assert.Zero(t, level)
}

func TestGrantXPRejectsNonPositive(t *testing.T) {
	svc := NewBattlepassService(newFakeStore(activeSeason(), seasonTiers()), newFakeSink())

	_, _, err := svc.GrantXP(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = svc.GrantXP(context.Background(), 1, -10)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestClaimFreeReward(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	sink := newFakeSink()
	svc := NewBattlepassService(store, sink)

	_, _, err := svc.GrantXP(context.Background(), 1, 150)
	require.NoError(t, err)

	rewards, err := svc.ClaimReward(context.Background(), 1, 1, domain.TrackFree)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, int64(100), sink.xcoins[1])
}

func TestClaimTwiceFails(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	sink := newFakeSink()
	svc := NewBattlepassService(store, sink)

	_, _, err := svc.GrantXP(context.Background(), 1, 150)
	require.NoError(t, err)

	_, err = svc.ClaimReward(context.Background(), 1, 1, domain.TrackFree)
	require.NoError(t, err)

	_, err = svc.ClaimReward(context.Background(), 1, 1, domain.TrackFree)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, int64(100), sink.xcoins[1], "duplicate claim must not grant again")
}

func TestClaimLockedTier(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	_, _, err := svc.GrantXP(context.Background(), 1, 50)
	require.NoError(t, err)

	_, err = svc.ClaimReward(context.Background(), 1, 2, domain.TrackFree)
	assert.ErrorIs(t, err, ErrNotUnlocked)
}

func TestClaimUnknownTier(t *testing.T) {
	svc := NewBattlepassService(newFakeStore(activeSeason(), seasonTiers()), newFakeSink())

	_, err := svc.ClaimReward(context.Background(), 1, 99, domain.TrackFree)
	assert.ErrorIs(t, err, ErrTierNotFound)
}

func TestClaimPremiumWithoutPremium(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	_, _, err := svc.GrantXP(context.Background(), 1, 150)
	require.NoError(t, err)

	_, err = svc.ClaimReward(context.Background(), 1, 1, domain.TrackPremium)
	assert.ErrorIs(t, err, ErrPremiumRequired)
}

func TestClaimFreeAndPremiumSeparately(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	sink := newFakeSink()
	svc := NewBattlepassService(store, sink)

	store.balances[1] = 10000
	_, _, err := svc.GrantXP(context.Background(), 1, 150)
	require.NoError(t, err)
	_, err = svc.PurchasePremium(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ClaimReward(context.Background(), 1, 1, domain.TrackFree)
	require.NoError(t, err)
	_, err = svc.ClaimReward(context.Background(), 1, 1, domain.TrackPremium)
	require.NoError(t, err)

	assert.Equal(t, int64(350), sink.xcoins[1])
}

func TestClaimUsesXPNotStaleLevel(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	// XP qualifies for level 2 but the level column never caught up
	p, err := store.Progress(context.Background(), 1, 1)
	require.NoError(t, err)
	p.CurrentXP = 150
	p.CurrentLevel = 0

	_, err = svc.ClaimReward(context.Background(), 1, 2, domain.TrackFree)
	require.NoError(t, err)
}

func TestConcurrentClaimsGrantOnce(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	sink := newFakeSink()
	svc := NewBattlepassService(store, sink)

	_, _, err := svc.GrantXP(context.Background(), 1, 150)
	require.NoError(t, err)

	const workers = 16
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClaimReward(context.Background(), 1, 1, domain.TrackFree)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes int
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, int64(100), sink.xcoins[1])
}

func TestPremiumDaysRewardFlipsFlag(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	store.balances[1] = 10000
	_, _, err := svc.GrantXP(context.Background(), 1, 300)
	require.NoError(t, err)
	_, err = svc.PurchasePremium(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ClaimReward(context.Background(), 1, 3, domain.TrackPremium)
	require.NoError(t, err)

	p, _ := store.Progress(context.Background(), 1, 1)
	assert.True(t, p.IsPremium)
}

func TestPurchasePremium(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	store.balances[1] = 6000
	bp, err := svc.PurchasePremium(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bp.PremiumPrice)
	assert.Equal(t, int64(1000), store.balances[1])

	p, _ := store.Progress(context.Background(), 1, 1)
	assert.True(t, p.IsPremium)
}

func TestPurchasePremiumInsufficientFunds(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	store.balances[1] = 100
	_, err := svc.PurchasePremium(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(100), store.balances[1], "failed purchase must not debit")
}

func TestPurchasePremiumTwice(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	store.balances[1] = 20000
	_, err := svc.PurchasePremium(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.PurchasePremium(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlreadyPremium)
	assert.Equal(t, int64(15000), store.balances[1], "second purchase must not debit")
}

func TestSeasonView(t *testing.T) {
	svc := NewBattlepassService(newFakeStore(activeSeason(), seasonTiers()), newFakeSink())

	view, err := svc.Season(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Season One", view.Battlepass.Name)
	assert.Len(t, view.Tiers, 3)
}

func TestSeasonViewOffSeason(t *testing.T) {
	svc := NewBattlepassService(newFakeStore(nil, nil), newFakeSink())

	_, err := svc.Season(context.Background())
	assert.ErrorIs(t, err, ErrNoBattlepass)
}

func TestUserProgressIncludesClaims(t *testing.T) {
	store := newFakeStore(activeSeason(), seasonTiers())
	svc := NewBattlepassService(store, newFakeSink())

	_, _, err := svc.GrantXP(context.Background(), 1, 150)
	require.NoError(t, err)
	_, err = svc.ClaimReward(context.Background(), 1, 1, domain.TrackFree)
	require.NoError(t, err)

	view, err := svc.UserProgress(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), view.Progress.CurrentXP)
	require.Len(t, view.Claims, 1)
	assert.Equal(t, 1, view.Claims[0].Level)
}
