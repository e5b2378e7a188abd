package model

import "time"

// Weapon is a serialized weapon entry held by an armory. Weapon entries
// never stack across serials: every serial number is its own row, and
// availability for a (type, manufacturer) pair is the sum of available
// quantities over rows sharing the stock key.
type Weapon struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ArmoryID     int64  `gorm:"index:idx_weapon_armory;not null" json:"armory_id"`
	StockKey     string `gorm:"index:idx_weapon_key;size:191;not null" json:"-"`
	WeaponType   string `gorm:"size:64;not null" json:"weapon_type"`
	Manufacturer string `gorm:"size:64;not null" json:"manufacturer"`
	SerialNumber string `gorm:"uniqueIndex:idx_weapon_serial;size:64;not null" json:"serial_number"`
	// Quantity and AvailableQuantity carry no column default: gorm omits
	// zero-valued ints on insert, so a default would silently turn a fully
	// issued row (available 0) into 1. The commit path always sets both.
	Quantity          int        `json:"quantity"`
	AvailableQuantity int        `json:"available_quantity"` // drops as units are issued
	Condition         string     `gorm:"size:32" json:"condition"`
	Notes             string     `gorm:"type:text" json:"notes"`
	CaseID            *int64     `gorm:"index" json:"case_id"`
	RegisteredBy      int64      `json:"registered_by"`
	IssuedAt          *time.Time `json:"issued_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
