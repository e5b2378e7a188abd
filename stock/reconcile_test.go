package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustApply(t *testing.T, it StagedItem, f Field, v string) StagedItem {
	t.Helper()
	out, err := Apply(it, f, v)
	require.NoError(t, err)
	return out
}

// The worked weapon scenario: staged rifle, lookup finds 3 in stock,
// quantity edits keep the triple consistent.
func TestApply_WeaponScenario(t *testing.T) {
	it := NewStagedItem("w1", CategoryWeapon)
	assert.Equal(t, 1, it.QuantityToAdd)

	it = mustApply(t, it, FieldWeaponType, "Rifle")
	it = mustApply(t, it, FieldManufacturer, "Acme")
	it = mustApply(t, it, FieldSerialNumber, "S1")
	it = mustApply(t, it, FieldQuantity, "2")

	it = WithAvailability(it, 3, false)
	assert.Equal(t, 3, it.ExistingAvailable)
	assert.Equal(t, 5, it.AvailableQuantity)

	// Quantity edit with no identity change leaves the snapshot alone.
	it = mustApply(t, it, FieldQuantity, "4")
	assert.Equal(t, 3, it.ExistingAvailable)
	assert.Equal(t, 7, it.AvailableQuantity)
}

func TestApply_AmmunitionScenario(t *testing.T) {
	it := NewStagedItem("a1", CategoryAmmunition)
	it = mustApply(t, it, FieldCaliber, "9mm")
	it = mustApply(t, it, FieldAmmoType, "FMJ")
	it = mustApply(t, it, FieldManufacturer, "Acme")
	it = mustApply(t, it, FieldQuantity, "10")

	it = WithAvailability(it, 20, false)
	assert.Equal(t, 30, it.AvailableQuantity)

	it = mustApply(t, it, FieldQuantity, "5")
	assert.Equal(t, 20, it.ExistingAvailable)
	assert.Equal(t, 25, it.AvailableQuantity)
}

// availableQuantity == quantityToAdd + existingAvailable after any edit
// sequence.
func TestApply_TripleInvariant(t *testing.T) {
	it := NewStagedItem("a1", CategoryAmmunition)
	steps := [][2]string{
		{string(FieldQuantity), "10"},
		{string(FieldCaliber), "9mm"},
		{string(FieldQuantity), "25"},
		{string(FieldAmmoType), "FMJ"},
		{string(FieldManufacturer), "Acme"},
		{string(FieldLotNumber), "LOT-77"},
		{string(FieldQuantity), "5"},
		{string(FieldCaliber), "5.56"},
	}
	for _, s := range steps {
		it = mustApply(t, it, Field(s[0]), s[1])
		assert.Equal(t, it.QuantityToAdd+it.ExistingAvailable, it.AvailableQuantity,
			"after setting %s=%s", s[0], s[1])
	}
}

func TestApply_IdentityChangeResetsAvailability(t *testing.T) {
	it := NewStagedItem("a1", CategoryAmmunition)
	it = mustApply(t, it, FieldCaliber, "9mm")
	it = mustApply(t, it, FieldAmmoType, "FMJ")
	it = mustApply(t, it, FieldManufacturer, "Acme")
	it = mustApply(t, it, FieldDescription, "9mm FMJ Acme 124gr")
	it = WithAvailability(it, 20, false)
	require.Equal(t, 20, it.ExistingAvailable)

	// Changing the caliber invalidates the manufacturer choice, the derived
	// description and the availability snapshot.
	it = mustApply(t, it, FieldCaliber, "7.62")
	assert.Equal(t, "", it.Manufacturer)
	assert.Equal(t, "", it.Description)
	assert.Equal(t, 0, it.ExistingAvailable)
	assert.Equal(t, it.QuantityToAdd, it.AvailableQuantity)
	assert.Equal(t, "FMJ", it.AmmoType, "type is not dependent on caliber")

	_, ok := ResolveKey(it)
	assert.False(t, ok, "key incomplete until manufacturer is re-picked")
}

func TestApply_WeaponTypeChangeClearsManufacturer(t *testing.T) {
	it := NewStagedItem("w1", CategoryWeapon)
	it = mustApply(t, it, FieldWeaponType, "Rifle")
	it = mustApply(t, it, FieldManufacturer, "Acme")
	it = mustApply(t, it, FieldWeaponType, "Pistol")
	assert.Equal(t, "", it.Manufacturer)
}

func TestApply_QuantityClamping(t *testing.T) {
	w := NewStagedItem("w", CategoryWeapon)
	w = mustApply(t, w, FieldQuantity, "-5")
	assert.Equal(t, 1, w.QuantityToAdd, "weapons floor at 1")

	a := NewStagedItem("a", CategoryAmmunition)
	a = mustApply(t, a, FieldQuantity, "-5")
	assert.Equal(t, 0, a.QuantityToAdd, "ammunition may rest at 0 while editing")

	// A line drawing from a finite catalog pool is capped by it.
	w.MaxAddable = 3
	w = mustApply(t, w, FieldQuantity, "10")
	assert.Equal(t, 3, w.QuantityToAdd)
	w = mustApply(t, w, FieldQuantity, "2")
	assert.Equal(t, 2, w.QuantityToAdd)
}

func TestApply_QuantityNotInteger(t *testing.T) {
	it := NewStagedItem("w", CategoryWeapon)
	_, err := Apply(it, FieldQuantity, "lots")
	assert.Error(t, err)
}

func TestApply_FieldCategoryMismatch(t *testing.T) {
	it := NewStagedItem("e", CategoryEquipment)
	_, err := Apply(it, FieldSerialNumber, "S1")
	assert.Error(t, err, "equipment has no serial number")

	_, err = Apply(it, FieldCaliber, "9mm")
	assert.Error(t, err)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	orig := NewStagedItem("w", CategoryWeapon)
	orig.WeaponType = "Rifle"
	_, err := Apply(orig, FieldWeaponType, "Pistol")
	require.NoError(t, err)
	assert.Equal(t, "Rifle", orig.WeaponType)
}

// Lookup failure degrades to zero availability with the flag set; quantity
// editing keeps working.
func TestWithAvailability_Failure(t *testing.T) {
	it := NewStagedItem("w", CategoryWeapon)
	it = mustApply(t, it, FieldWeaponType, "Rifle")
	it = mustApply(t, it, FieldManufacturer, "Acme")
	it = mustApply(t, it, FieldQuantity, "2")

	it = WithAvailability(it, 0, true)
	assert.True(t, it.LookupFailed)
	assert.Equal(t, 0, it.ExistingAvailable)
	assert.Equal(t, 2, it.AvailableQuantity)

	it = mustApply(t, it, FieldQuantity, "6")
	assert.Equal(t, 6, it.AvailableQuantity)

	// A later successful lookup clears the flag.
	it = WithAvailability(it, 4, false)
	assert.False(t, it.LookupFailed)
	assert.Equal(t, 10, it.AvailableQuantity)
}

// Two lines with the same identity reconcile independently against the same
// stored quantity; neither sees the other's uncommitted addition.
func TestWithAvailability_DuplicateKeysIndependent(t *testing.T) {
	mk := func(id string, qty string) StagedItem {
		it := NewStagedItem(id, CategoryAmmunition)
		it = mustApply(t, it, FieldCaliber, "9mm")
		it = mustApply(t, it, FieldAmmoType, "FMJ")
		it = mustApply(t, it, FieldManufacturer, "Acme")
		it = mustApply(t, it, FieldQuantity, qty)
		return WithAvailability(it, 20, false)
	}
	a := mk("a", "10")
	b := mk("b", "5")
	assert.Equal(t, 30, a.AvailableQuantity)
	assert.Equal(t, 25, b.AvailableQuantity)
}
