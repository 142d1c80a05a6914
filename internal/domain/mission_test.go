package domain

import (
	"testing"
	"time"
)

func TestMissionPeriodStartDaily(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 42, 7, 0, time.UTC)
	got := MissionPeriodStart(MissionTypeDaily, now)
	want := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("daily period = %v, want %v", got, want)
	}
}

func TestMissionPeriodStartWeekly(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"wednesday", time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC), time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)},
		{"monday", time.Date(2025, 6, 16, 0, 0, 1, 0, time.UTC), time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)},
		{"sunday rolls back to monday", time.Date(2025, 6, 22, 23, 59, 0, 0, time.UTC), time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)},
		{"month boundary", time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MissionPeriodStart(MissionTypeWeekly, tc.now)
			if !got.Equal(tc.want) {
				t.Errorf("weekly period = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMissionPeriodStartSeasonalIsFixed(t *testing.T) {
	a := MissionPeriodStart(MissionTypeSeasonal, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := MissionPeriodStart(MissionTypeSeasonal, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	if !a.Equal(b) {
		t.Errorf("seasonal period must be stable, got %v and %v", a, b)
	}
}

func TestMeetsRequirements(t *testing.T) {
	m := &Mission{Requirements: map[string]int64{MetricCasesOpened: 5, MetricSkinsSold: 2}}

	um := &UserMission{Progress: map[string]int64{MetricCasesOpened: 5, MetricSkinsSold: 1}}
	if um.MeetsRequirements(m) {
		t.Error("partial progress must not satisfy requirements")
	}

	um.Progress[MetricSkinsSold] = 2
	if !um.MeetsRequirements(m) {
		t.Error("exact progress must satisfy requirements")
	}

	um.Progress[MetricCasesOpened] = 100
	if !um.MeetsRequirements(m) {
		t.Error("overshoot must satisfy requirements")
	}
}

func TestMeetsRequirementsEmptyProgress(t *testing.T) {
	m := &Mission{Requirements: map[string]int64{MetricLogins: 1}}
	um := &UserMission{}
	if um.MeetsRequirements(m) {
		t.Error("nil progress must not satisfy a nonzero requirement")
	}
}

func TestProgressPercent(t *testing.T) {
	m := &Mission{Requirements: map[string]int64{MetricCasesOpened: 10}}

	cases := []struct {
		progress int64
		want     int
	}{
		{0, 0},
		{5, 50},
		{10, 100},
		{25, 100}, // overshoot clamps
	}
	for _, tc := range cases {
		um := &UserMission{Progress: map[string]int64{MetricCasesOpened: tc.progress}}
		if got := um.ProgressPercent(m); got != tc.want {
			t.Errorf("ProgressPercent(%d) = %d, want %d", tc.progress, got, tc.want)
		}
	}
}

func TestProgressPercentMultipleMetrics(t *testing.T) {
	m := &Mission{Requirements: map[string]int64{MetricCasesOpened: 8, MetricSkinsSold: 2}}
	um := &UserMission{Progress: map[string]int64{MetricCasesOpened: 4, MetricSkinsSold: 1}}
	if got := um.ProgressPercent(m); got != 50 {
		t.Errorf("ProgressPercent = %d, want 50", got)
	}
}

func TestProgressPercentNoRequirements(t *testing.T) {
	um := &UserMission{}
	if got := um.ProgressPercent(&Mission{}); got != 100 {
		t.Errorf("ProgressPercent = %d, want 100", got)
	}
}

func TestCanClaim(t *testing.T) {
	um := &UserMission{}
	if um.CanClaim() {
		t.Error("incomplete mission must not be claimable")
	}
	um.Completed = true
	if !um.CanClaim() {
		t.Error("completed unclaimed mission must be claimable")
	}
	um.RewardClaimed = true
	if um.CanClaim() {
		t.Error("claimed mission must not be claimable again")
	}
}
