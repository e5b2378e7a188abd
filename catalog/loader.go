// Package catalog syncs procurement reference data from JSON seed files
// into the database and serves the grouped views the registration forms
// need (weapon models, ammunition by caliber, equipment types).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/armoryops/armoryd/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed file schemas. Quantity seeds the procurement pool only on first
// sight of an entry; resync never resets a pool that commits have drawn
// down.

type weaponSeed struct {
	WeaponType   string `json:"weaponType"`
	Manufacturer string `json:"manufacturer"`
	Description  string `json:"description"`
	Quantity     int    `json:"quantity"`
}

type ammoSeed struct {
	Caliber      string `json:"caliber"`
	AmmoType     string `json:"ammoType"`
	Manufacturer string `json:"manufacturer"`
	Description  string `json:"description"`
}

type equipmentSeed struct {
	ItemType string `json:"itemType"`
	Sized    bool   `json:"sized"`
}

// Loader reads catalog seed files and keeps the DB tables in step.
type Loader struct {
	dir    string
	db     *gorm.DB
	logger *zap.Logger
}

// NewLoader creates a Loader for the given seed directory.
func NewLoader(dir string, db *gorm.DB, logger *zap.Logger) *Loader {
	return &Loader{dir: dir, db: db, logger: logger}
}

// Sync loads every seed file and upserts its entries. Missing files are
// skipped so a deployment can ship only the catalogs it uses. Wired to a
// scheduler ticker for periodic resync.
func (l *Loader) Sync(ctx context.Context) error {
	if l.dir == "" {
		return nil
	}
	syncs := []func(context.Context) error{
		l.syncWeapons,
		l.syncAmmunition,
		l.syncEquipment,
	}
	for _, fn := range syncs {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) syncWeapons(ctx context.Context) error {
	seeds, ok, err := loadSeedFile[weaponSeed](l.path("weapons.json"))
	if err != nil || !ok {
		return err
	}
	for _, s := range seeds {
		if s.WeaponType == "" || s.Manufacturer == "" {
			continue
		}
		entry := model.WeaponCatalog{
			WeaponType:        s.WeaponType,
			Manufacturer:      s.Manufacturer,
			Description:       s.Description,
			AvailableQuantity: s.Quantity,
		}
		// On conflict only the description refreshes; the pool belongs to
		// the commit path once the entry exists.
		err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "weapon_type"}, {Name: "manufacturer"}},
			DoUpdates: clause.AssignmentColumns([]string{"description"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("catalog: upsert weapon %s/%s: %w", s.WeaponType, s.Manufacturer, err)
		}
	}
	l.logger.Info("weapon catalog synced", zap.Int("entries", len(seeds)))
	return nil
}

func (l *Loader) syncAmmunition(ctx context.Context) error {
	seeds, ok, err := loadSeedFile[ammoSeed](l.path("ammunition.json"))
	if err != nil || !ok {
		return err
	}
	for _, s := range seeds {
		if s.Caliber == "" || s.AmmoType == "" || s.Manufacturer == "" {
			continue
		}
		entry := model.AmmunitionCatalog{
			Caliber:      s.Caliber,
			AmmoType:     s.AmmoType,
			Manufacturer: s.Manufacturer,
			Description:  s.Description,
		}
		err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "caliber"}, {Name: "ammo_type"}, {Name: "manufacturer"}},
			DoUpdates: clause.AssignmentColumns([]string{"description"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("catalog: upsert ammunition %s %s: %w", s.Caliber, s.AmmoType, err)
		}
	}
	l.logger.Info("ammunition catalog synced", zap.Int("entries", len(seeds)))
	return nil
}

func (l *Loader) syncEquipment(ctx context.Context) error {
	seeds, ok, err := loadSeedFile[equipmentSeed](l.path("equipment.json"))
	if err != nil || !ok {
		return err
	}
	for _, s := range seeds {
		if s.ItemType == "" {
			continue
		}
		entry := model.EquipmentCatalog{ItemType: s.ItemType, Sized: s.Sized}
		err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"sized"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("catalog: upsert equipment %s: %w", s.ItemType, err)
		}
	}
	l.logger.Info("equipment catalog synced", zap.Int("entries", len(seeds)))
	return nil
}

func (l *Loader) path(file string) string {
	return filepath.Join(l.dir, file)
}

// loadSeedFile parses one JSON seed array. The second return is false when
// the file does not exist.
func loadSeedFile[T any](path string) ([]T, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var seeds []T
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, false, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return seeds, true, nil
}
