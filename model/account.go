package model

import "time"

// Role values accepted in Account.Role.
const (
	RoleAdmin    = "admin"
	RoleArmourer = "armourer"
	RoleOfficer  = "officer"
)

// Account represents a system user (customs/law-enforcement staff).
type Account struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:32;not null" json:"username"`
	PasswordHash string     `gorm:"size:64;not null" json:"-"`
	DisplayName  string     `gorm:"size:64" json:"display_name"`
	Email        string     `gorm:"size:128" json:"email"`
	Role         string     `gorm:"size:16;default:officer" json:"role"`
	Status       int        `gorm:"default:1" json:"status"` // 0=disabled 1=active
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastLoginIP  string     `gorm:"size:45" json:"last_login_ip"`
}

// CanCommit reports whether the role may commit staged batches.
func (a *Account) CanCommit() bool {
	return a.Role == RoleAdmin || a.Role == RoleArmourer
}
