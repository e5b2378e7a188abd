package availability_test

import (
	"context"
	"testing"

	"github.com/armoryops/armoryd/availability"
	"github.com/armoryops/armoryd/model"
	"github.com/armoryops/armoryd/stock"
	"github.com/armoryops/armoryd/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WeaponSumsAcrossSerials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	arm := &model.Armory{Name: "Central"}
	require.NoError(t, db.Create(arm).Error)

	for i, sn := range []string{"S1", "S2", "S3"} {
		avail := 1
		if i == 2 {
			avail = 0 // issued
		}
		require.NoError(t, db.Create(&model.Weapon{
			ArmoryID: arm.ID, StockKey: "weapon|rifle|acme",
			WeaponType: "Rifle", Manufacturer: "Acme", SerialNumber: sn,
			Quantity: 1, AvailableQuantity: avail, Condition: "serviceable",
		}).Error)
	}
	// A different key in the same armory must not leak in.
	require.NoError(t, db.Create(&model.Weapon{
		ArmoryID: arm.ID, StockKey: "weapon|pistol|acme",
		WeaponType: "Pistol", Manufacturer: "Acme", SerialNumber: "P1",
		Quantity: 1, AvailableQuantity: 1,
	}).Error)

	s := availability.NewStore(db)
	item := stock.StagedItem{Category: stock.CategoryWeapon, WeaponType: "Rifle", Manufacturer: "Acme"}
	res, err := s.Fetch(context.Background(), arm.ID, item)
	require.NoError(t, err)
	assert.Equal(t, 2, res.AvailableQuantity)
	require.NotNil(t, res.Existing)
	assert.Equal(t, "serviceable", res.Existing.Condition)
}

// A fully issued serial must persist with zero availability and contribute
// nothing to the sum. Guards against column defaults rewriting the zero on
// insert.
func TestStore_FullyIssuedSerialStoresZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	arm := &model.Armory{Name: "Central"}
	require.NoError(t, db.Create(arm).Error)

	w := &model.Weapon{
		ArmoryID: arm.ID, StockKey: "weapon|rifle|acme",
		WeaponType: "Rifle", Manufacturer: "Acme", SerialNumber: "OUT-1",
		Quantity: 1, AvailableQuantity: 0,
	}
	require.NoError(t, db.Create(w).Error)

	var stored model.Weapon
	require.NoError(t, db.First(&stored, w.ID).Error)
	assert.Equal(t, 0, stored.AvailableQuantity)

	s := availability.NewStore(db)
	item := stock.StagedItem{Category: stock.CategoryWeapon, WeaponType: "Rifle", Manufacturer: "Acme"}
	res, err := s.Fetch(context.Background(), arm.ID, item)
	require.NoError(t, err)
	assert.Equal(t, 0, res.AvailableQuantity)
}

func TestStore_AmmunitionStackedRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	arm := &model.Armory{Name: "Central"}
	require.NoError(t, db.Create(arm).Error)
	require.NoError(t, db.Create(&model.Ammunition{
		ArmoryID: arm.ID, StockKey: "ammunition|9mm|fmj|acme",
		Caliber: "9mm", AmmoType: "FMJ", Manufacturer: "Acme",
		Description: "9mm FMJ (Acme)", Quantity: 500, AvailableQuantity: 420,
	}).Error)

	s := availability.NewStore(db)
	item := stock.StagedItem{
		Category: stock.CategoryAmmunition,
		Caliber:  "9MM", AmmoType: " fmj ", Manufacturer: "Acme",
	}
	res, err := s.Fetch(context.Background(), arm.ID, item)
	require.NoError(t, err)
	assert.Equal(t, 420, res.AvailableQuantity, "normalized identity must hit the stored key")
	require.NotNil(t, res.Existing)
	assert.Equal(t, "9mm FMJ (Acme)", res.Existing.Description)
}

func TestStore_MissingItemIsZeroNotError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	arm := &model.Armory{Name: "Central"}
	require.NoError(t, db.Create(arm).Error)

	s := availability.NewStore(db)
	for _, item := range []stock.StagedItem{
		{Category: stock.CategoryWeapon, WeaponType: "Rifle", Manufacturer: "Nobody"},
		{Category: stock.CategoryAmmunition, Caliber: "10mm", AmmoType: "JHP", Manufacturer: "Nobody"},
		{Category: stock.CategoryEquipment, ItemType: "Drone"},
	} {
		res, err := s.Fetch(context.Background(), arm.ID, item)
		require.NoError(t, err)
		assert.Equal(t, 0, res.AvailableQuantity)
		assert.Nil(t, res.Existing)
	}
}

func TestStore_IncompleteIdentityRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := availability.NewStore(db)
	_, err := s.Fetch(context.Background(), 1, stock.StagedItem{
		Category: stock.CategoryWeapon, WeaponType: "Rifle",
	})
	assert.ErrorIs(t, err, availability.ErrIncompleteIdentity)
}

func TestStore_EquipmentSizeDistinguishes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	arm := &model.Armory{Name: "Central"}
	require.NoError(t, db.Create(arm).Error)
	require.NoError(t, db.Create(&model.Equipment{
		ArmoryID: arm.ID, StockKey: "equipment|vest|l",
		ItemType: "Vest", Size: "L", Quantity: 10, AvailableQuantity: 7,
	}).Error)

	s := availability.NewStore(db)

	sized, err := s.Fetch(context.Background(), arm.ID, stock.StagedItem{
		Category: stock.CategoryEquipment, ItemType: "Vest", Size: "L",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, sized.AvailableQuantity)

	unsized, err := s.Fetch(context.Background(), arm.ID, stock.StagedItem{
		Category: stock.CategoryEquipment, ItemType: "Vest",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, unsized.AvailableQuantity)
}
