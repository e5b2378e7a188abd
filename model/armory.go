package model

import "time"

// Armory is a physical storage location holding weapon, ammunition and
// equipment inventories.
type Armory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Location  string    `gorm:"size:128" json:"location"`
	Region    string    `gorm:"size:64" json:"region"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
