package domain

import "time"

type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Xcoins       int64      `db:"xcoins" json:"xcoins"`
	IsAdmin      bool       `db:"is_admin" json:"is_admin"`
	IsBanned     bool       `db:"is_banned" json:"is_banned"`
	BanReason    string     `db:"ban_reason" json:"ban_reason,omitempty"`
	BanExpires   *time.Time `db:"ban_expires" json:"ban_expires,omitempty"`
	Permissions  []string   `db:"permissions" json:"permissions,omitempty"`
	Title        string     `db:"title" json:"title,omitempty"`
	Badges       []string   `db:"badges" json:"badges,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// BanActive reports whether the ban is still in effect at the given time.
// A ban without an expiry is permanent.
func (u *User) BanActive(now time.Time) bool {
	if !u.IsBanned {
		return false
	}
	if u.BanExpires == nil {
		return true
	}
	return now.Before(*u.BanExpires)
}

// HasPermission checks a single named permission.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
