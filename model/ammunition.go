package model

import "time"

// Ammunition is one stacked ammunition holding in an armory. Exactly one row
// exists per (armory, stock key); commits of the same caliber/type/
// manufacturer merge into it.
type Ammunition struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ArmoryID          int64     `gorm:"uniqueIndex:idx_ammo_armory_key;not null" json:"armory_id"`
	StockKey          string    `gorm:"uniqueIndex:idx_ammo_armory_key;size:191;not null" json:"-"`
	Caliber           string    `gorm:"size:32;not null" json:"caliber"`
	AmmoType          string    `gorm:"size:64;not null" json:"ammo_type"`
	Manufacturer      string    `gorm:"size:64;not null" json:"manufacturer"`
	Description       string    `gorm:"size:128" json:"description"`
	Quantity          int       `gorm:"default:0" json:"quantity"`
	AvailableQuantity int       `gorm:"default:0" json:"available_quantity"` // drops as rounds are issued/consumed
	LotNumber         string    `gorm:"size:64" json:"lot_number"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
