package model

import "time"

// Equipment is one stacked equipment holding in an armory (vests, radios,
// restraints and similar non-serialized gear). One row per (armory, stock
// key), merged on commit like ammunition.
type Equipment struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ArmoryID          int64     `gorm:"uniqueIndex:idx_equip_armory_key;not null" json:"armory_id"`
	StockKey          string    `gorm:"uniqueIndex:idx_equip_armory_key;size:191;not null" json:"-"`
	ItemType          string    `gorm:"size:64;not null" json:"item_type"`
	Size              string    `gorm:"size:16" json:"size"`
	Description       string    `gorm:"size:128" json:"description"`
	Quantity          int       `gorm:"default:0" json:"quantity"`
	AvailableQuantity int       `gorm:"default:0" json:"available_quantity"`
	Condition         string    `gorm:"size:32" json:"condition"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
