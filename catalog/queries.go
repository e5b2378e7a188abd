package catalog

import (
	"context"

	"github.com/armoryops/armoryd/model"
	"gorm.io/gorm"
)

// CaliberGroup is one caliber's ammunition models for the grouped listing.
type CaliberGroup struct {
	Caliber string                    `json:"caliber"`
	Entries []model.AmmunitionCatalog `json:"entries"`
}

// ListWeapons returns all weapon catalog entries with their remaining pools.
func ListWeapons(ctx context.Context, db *gorm.DB) ([]model.WeaponCatalog, error) {
	var entries []model.WeaponCatalog
	err := db.WithContext(ctx).
		Order("weapon_type, manufacturer").
		Find(&entries).Error
	return entries, err
}

// AmmunitionByCaliber returns ammunition catalog entries grouped by caliber,
// calibers in stable sorted order.
func AmmunitionByCaliber(ctx context.Context, db *gorm.DB) ([]CaliberGroup, error) {
	var entries []model.AmmunitionCatalog
	err := db.WithContext(ctx).
		Order("caliber, ammo_type, manufacturer").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	var groups []CaliberGroup
	for _, e := range entries {
		if len(groups) == 0 || groups[len(groups)-1].Caliber != e.Caliber {
			groups = append(groups, CaliberGroup{Caliber: e.Caliber})
		}
		g := &groups[len(groups)-1]
		g.Entries = append(g.Entries, e)
	}
	return groups, nil
}

// ListEquipment returns all equipment catalog entries.
func ListEquipment(ctx context.Context, db *gorm.DB) ([]model.EquipmentCatalog, error) {
	var entries []model.EquipmentCatalog
	err := db.WithContext(ctx).Order("item_type").Find(&entries).Error
	return entries, err
}
