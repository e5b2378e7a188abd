// Package inventory owns the persistent side of stock: committing validated
// batches atomically and listing an armory's holdings.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/armoryops/armoryd/model"
	"github.com/armoryops/armoryd/stock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSerialExists is returned when a weapon line's serial number is already
// registered in the stored weapon set.
var ErrSerialExists = errors.New("inventory: serial number already registered")

// ErrCatalogExhausted is returned when a from-catalog weapon line asks for
// more units than the catalog pool still holds. This is the commit-time race
// the staging preview cannot rule out.
var ErrCatalogExhausted = errors.New("inventory: catalog pool exhausted")

// Service commits staged batches and reads stored inventory.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates an inventory Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// CommitBatch persists every line of a validated batch in one transaction.
// Weapons become individual serialized rows; ammunition and equipment merge
// into the stacked row for their stock key, creating it on first sight.
// Callers must have run stock.Validate first; the DB-level checks here
// (serial uniqueness, catalog pool) cover what validation cannot see.
func (svc *Service) CommitBatch(ctx context.Context, armoryID, actorID int64, caseID *int64, items []stock.StagedItem) error {
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, it := range items {
			key, ok := stock.ResolveKey(it)
			if !ok {
				return fmt.Errorf("inventory: line %d has incomplete identity", i)
			}
			var err error
			switch it.Category {
			case stock.CategoryWeapon:
				err = svc.commitWeapon(tx, armoryID, actorID, caseID, key, it)
			case stock.CategoryAmmunition:
				err = svc.commitAmmunition(tx, armoryID, key, it)
			case stock.CategoryEquipment:
				err = svc.commitEquipment(tx, armoryID, key, it)
			default:
				err = fmt.Errorf("inventory: line %d has unknown category %q", i, it.Category)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		svc.logger.Warn("batch commit failed",
			zap.Int64("armory_id", armoryID),
			zap.Int("lines", len(items)),
			zap.Error(err))
		return err
	}
	svc.logger.Info("batch committed",
		zap.Int64("armory_id", armoryID),
		zap.Int64("actor_id", actorID),
		zap.Int("lines", len(items)))
	return nil
}

func (svc *Service) commitWeapon(tx *gorm.DB, armoryID, actorID int64, caseID *int64, key stock.Key, it stock.StagedItem) error {
	var count int64
	if err := tx.Model(&model.Weapon{}).
		Where("serial_number = ?", it.SerialNumber).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrSerialExists, it.SerialNumber)
	}

	if it.CatalogID != 0 {
		// Draw down the finite catalog pool. The guarded update fails when
		// a concurrent commit shrank the pool below the requested quantity.
		res := tx.Model(&model.WeaponCatalog{}).
			Where("id = ? AND available_quantity >= ?", it.CatalogID, it.QuantityToAdd).
			Update("available_quantity", gorm.Expr("available_quantity - ?", it.QuantityToAdd))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: catalog entry %d", ErrCatalogExhausted, it.CatalogID)
		}
	}

	w := &model.Weapon{
		ArmoryID:          armoryID,
		StockKey:          string(key),
		WeaponType:        it.WeaponType,
		Manufacturer:      it.Manufacturer,
		SerialNumber:      it.SerialNumber,
		Quantity:          it.QuantityToAdd,
		AvailableQuantity: it.QuantityToAdd,
		Condition:         it.Condition,
		Notes:             it.Notes,
		CaseID:            caseID,
		RegisteredBy:      actorID,
	}
	return tx.Create(w).Error
}

func (svc *Service) commitAmmunition(tx *gorm.DB, armoryID int64, key stock.Key, it stock.StagedItem) error {
	var existing model.Ammunition
	err := tx.Where("armory_id = ? AND stock_key = ?", armoryID, string(key)).
		First(&existing).Error
	if err == nil {
		return tx.Model(&existing).Updates(map[string]interface{}{
			"quantity":           gorm.Expr("quantity + ?", it.QuantityToAdd),
			"available_quantity": gorm.Expr("available_quantity + ?", it.QuantityToAdd),
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	a := &model.Ammunition{
		ArmoryID:          armoryID,
		StockKey:          string(key),
		Caliber:           it.Caliber,
		AmmoType:          it.AmmoType,
		Manufacturer:      it.Manufacturer,
		Description:       it.Description,
		Quantity:          it.QuantityToAdd,
		AvailableQuantity: it.QuantityToAdd,
		LotNumber:         it.LotNumber,
	}
	return tx.Create(a).Error
}

func (svc *Service) commitEquipment(tx *gorm.DB, armoryID int64, key stock.Key, it stock.StagedItem) error {
	var existing model.Equipment
	err := tx.Where("armory_id = ? AND stock_key = ?", armoryID, string(key)).
		First(&existing).Error
	if err == nil {
		return tx.Model(&existing).Updates(map[string]interface{}{
			"quantity":           gorm.Expr("quantity + ?", it.QuantityToAdd),
			"available_quantity": gorm.Expr("available_quantity + ?", it.QuantityToAdd),
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	e := &model.Equipment{
		ArmoryID:          armoryID,
		StockKey:          string(key),
		ItemType:          it.ItemType,
		Size:              it.Size,
		Description:       it.Description,
		Quantity:          it.QuantityToAdd,
		AvailableQuantity: it.QuantityToAdd,
		Condition:         it.Condition,
	}
	return tx.Create(e).Error
}

// ListWeapons returns all weapon rows held by an armory.
func (svc *Service) ListWeapons(ctx context.Context, armoryID int64) ([]model.Weapon, error) {
	var items []model.Weapon
	err := svc.db.WithContext(ctx).Where("armory_id = ?", armoryID).Find(&items).Error
	return items, err
}

// ListAmmunition returns all stacked ammunition rows held by an armory.
func (svc *Service) ListAmmunition(ctx context.Context, armoryID int64) ([]model.Ammunition, error) {
	var items []model.Ammunition
	err := svc.db.WithContext(ctx).Where("armory_id = ?", armoryID).Find(&items).Error
	return items, err
}

// ListEquipment returns all stacked equipment rows held by an armory.
func (svc *Service) ListEquipment(ctx context.Context, armoryID int64) ([]model.Equipment, error) {
	var items []model.Equipment
	err := svc.db.WithContext(ctx).Where("armory_id = ?", armoryID).Find(&items).Error
	return items, err
}
