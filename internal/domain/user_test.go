package domain

import (
	"testing"
	"time"
)

func TestBanActive(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name string
		user User
		want bool
	}{
		{"not banned", User{}, false},
		{"permanent ban", User{IsBanned: true}, true},
		{"timed ban in effect", User{IsBanned: true, BanExpires: &future}, true},
		{"expired ban", User{IsBanned: true, BanExpires: &past}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.BanActive(now); got != tc.want {
				t.Errorf("BanActive = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	u := User{Permissions: []string{"users.read", "content.manage"}}
	if !u.HasPermission("content.manage") {
		t.Error("expected permission to be present")
	}
	if u.HasPermission("economy.grant") {
		t.Error("unexpected permission")
	}
	if (&User{}).HasPermission("users.read") {
		t.Error("empty permission set must not match")
	}
}
