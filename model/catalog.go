package model

import "time"

// WeaponCatalog is a reference entry for a procurable weapon model. The
// pool tracks how many units remain drawable when armouries register
// weapons "from catalog"; a plain inventory addition does not touch it.
type WeaponCatalog struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WeaponType        string    `gorm:"uniqueIndex:idx_wcat_type_manu;size:64;not null" json:"weapon_type"`
	Manufacturer      string    `gorm:"uniqueIndex:idx_wcat_type_manu;size:64;not null" json:"manufacturer"`
	Description       string    `gorm:"size:128" json:"description"`
	AvailableQuantity int       `gorm:"default:0" json:"available_quantity"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AmmunitionCatalog is a reference entry for an ammunition model, listed
// grouped by caliber in the catalog endpoints.
type AmmunitionCatalog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Caliber      string    `gorm:"uniqueIndex:idx_acat_identity;size:32;not null" json:"caliber"`
	AmmoType     string    `gorm:"uniqueIndex:idx_acat_identity;size:64;not null" json:"ammo_type"`
	Manufacturer string    `gorm:"uniqueIndex:idx_acat_identity;size:64;not null" json:"manufacturer"`
	Description  string    `gorm:"size:128" json:"description"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// EquipmentCatalog is a reference entry for an equipment item type.
type EquipmentCatalog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemType  string    `gorm:"uniqueIndex;size:64;not null" json:"item_type"`
	Sized     bool      `gorm:"default:false" json:"sized"` // whether entries carry a size (e.g. vests)
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
