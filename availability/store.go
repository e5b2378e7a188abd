package availability

import (
	"context"
	"errors"

	"github.com/armoryops/armoryd/model"
	"github.com/armoryops/armoryd/stock"
	"gorm.io/gorm"
)

// Store answers availability lookups from the local database.
type Store struct {
	db *gorm.DB
}

// NewStore creates a gorm-backed Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Fetch returns the available quantity for the item's stock key. Weapons sum
// across serialized rows sharing the key; ammunition and equipment read
// their single stacked row. No matching row is a zero result, not an error.
func (s *Store) Fetch(ctx context.Context, armoryID int64, item stock.StagedItem) (Result, error) {
	key, ok := stock.ResolveKey(item)
	if !ok {
		return Result{}, ErrIncompleteIdentity
	}

	switch item.Category {
	case stock.CategoryWeapon:
		return s.fetchWeapon(ctx, armoryID, key)
	case stock.CategoryAmmunition:
		return s.fetchAmmunition(ctx, armoryID, key)
	case stock.CategoryEquipment:
		return s.fetchEquipment(ctx, armoryID, key)
	}
	return Result{}, ErrIncompleteIdentity
}

func (s *Store) fetchWeapon(ctx context.Context, armoryID int64, key stock.Key) (Result, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&model.Weapon{}).
		Where("armory_id = ? AND stock_key = ?", armoryID, string(key)).
		Select("COALESCE(SUM(available_quantity), 0)").Scan(&total).Error
	if err != nil {
		return Result{}, errors.Join(ErrUnavailable, err)
	}
	res := Result{AvailableQuantity: int(total)}

	// First matching row, for condition prefill. Optional: its absence just
	// means nothing to prefill.
	var w model.Weapon
	err = s.db.WithContext(ctx).
		Where("armory_id = ? AND stock_key = ?", armoryID, string(key)).
		Order("id").First(&w).Error
	if err == nil {
		res.Existing = &ExistingItem{ID: w.ID, Condition: w.Condition}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, errors.Join(ErrUnavailable, err)
	}
	return res, nil
}

func (s *Store) fetchAmmunition(ctx context.Context, armoryID int64, key stock.Key) (Result, error) {
	var a model.Ammunition
	err := s.db.WithContext(ctx).
		Where("armory_id = ? AND stock_key = ?", armoryID, string(key)).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, errors.Join(ErrUnavailable, err)
	}
	return Result{
		AvailableQuantity: a.AvailableQuantity,
		Existing:          &ExistingItem{ID: a.ID, Description: a.Description},
	}, nil
}

func (s *Store) fetchEquipment(ctx context.Context, armoryID int64, key stock.Key) (Result, error) {
	var e model.Equipment
	err := s.db.WithContext(ctx).
		Where("armory_id = ? AND stock_key = ?", armoryID, string(key)).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, errors.Join(ErrUnavailable, err)
	}
	return Result{
		AvailableQuantity: e.AvailableQuantity,
		Existing:          &ExistingItem{ID: e.ID, Description: e.Description, Condition: e.Condition},
	}, nil
}
