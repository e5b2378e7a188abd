package stock

// Category distinguishes the three armory inventory categories.
type Category string

const (
	CategoryWeapon     Category = "weapon"
	CategoryAmmunition Category = "ammunition"
	CategoryEquipment  Category = "equipment"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryWeapon, CategoryAmmunition, CategoryEquipment:
		return true
	}
	return false
}

// MinQuantity is the editing floor for QuantityToAdd. Ammunition may sit at
// zero while the user is still filling the line; a committed line must be
// positive regardless.
func (c Category) MinQuantity() int {
	if c == CategoryAmmunition {
		return 0
	}
	return 1
}

// Field names a single editable attribute of a staged item.
type Field string

const (
	FieldWeaponType   Field = "weapon_type"
	FieldManufacturer Field = "manufacturer"
	FieldSerialNumber Field = "serial_number"
	FieldCaliber      Field = "caliber"
	FieldAmmoType     Field = "ammo_type"
	FieldItemType     Field = "item_type"
	FieldSize         Field = "size"
	FieldQuantity     Field = "quantity_to_add"
	FieldDescription  Field = "description"
	FieldCondition    Field = "condition"
	FieldLotNumber    Field = "lot_number"
	FieldNotes        Field = "notes"
)

// identityFields maps each category to the classifying fields that make up
// its stock key, in canonical key order.
var identityFields = map[Category][]Field{
	CategoryWeapon:     {FieldWeaponType, FieldManufacturer},
	CategoryAmmunition: {FieldCaliber, FieldAmmoType, FieldManufacturer},
	CategoryEquipment:  {FieldItemType, FieldSize},
}

// dependentFields maps an identity field to the fields invalidated by
// changing it: the catalog groups manufacturers under a weapon type and
// ammunition models under a caliber, and equipment sizes belong to an item
// type, so the subordinate choice cannot survive a change of its parent.
var dependentFields = map[Category]map[Field][]Field{
	CategoryWeapon:     {FieldWeaponType: {FieldManufacturer}},
	CategoryAmmunition: {FieldCaliber: {FieldManufacturer}},
	CategoryEquipment:  {FieldItemType: {FieldSize}},
}

// IdentityFields returns the classifying fields for a category in canonical
// key order.
func IdentityFields(c Category) []Field {
	return identityFields[c]
}

// IsIdentityField reports whether f participates in c's stock key.
func IsIdentityField(c Category, f Field) bool {
	for _, idf := range identityFields[c] {
		if idf == f {
			return true
		}
	}
	return false
}

// StagedItem is an in-memory inventory line being edited before commit.
// Only the fields matching the category are used; the rest stay empty.
type StagedItem struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`

	WeaponType   string `json:"weapon_type,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Caliber      string `json:"caliber,omitempty"`
	AmmoType     string `json:"ammo_type,omitempty"`
	ItemType     string `json:"item_type,omitempty"`
	Size         string `json:"size,omitempty"`

	QuantityToAdd int `json:"quantity_to_add"`
	// ExistingAvailable is the snapshot returned by the last availability
	// lookup for the current identity. It is a preview, not authoritative;
	// the backend revalidates at commit time.
	ExistingAvailable int `json:"existing_available"`
	// AvailableQuantity is always QuantityToAdd + ExistingAvailable. It is
	// recomputed on every change and never edited directly.
	AvailableQuantity int  `json:"available_quantity"`
	LookupFailed      bool `json:"lookup_failed,omitempty"`

	// MaxAddable caps QuantityToAdd when the line draws down a finite
	// catalog pool; zero means no ceiling.
	MaxAddable int   `json:"max_addable,omitempty"`
	CatalogID  int64 `json:"catalog_id,omitempty"`

	Description string `json:"description,omitempty"`
	Condition   string `json:"condition,omitempty"`
	LotNumber   string `json:"lot_number,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// fieldValue returns the current value of a text field.
func (it *StagedItem) fieldValue(f Field) string {
	switch f {
	case FieldWeaponType:
		return it.WeaponType
	case FieldManufacturer:
		return it.Manufacturer
	case FieldSerialNumber:
		return it.SerialNumber
	case FieldCaliber:
		return it.Caliber
	case FieldAmmoType:
		return it.AmmoType
	case FieldItemType:
		return it.ItemType
	case FieldSize:
		return it.Size
	case FieldDescription:
		return it.Description
	case FieldCondition:
		return it.Condition
	case FieldLotNumber:
		return it.LotNumber
	case FieldNotes:
		return it.Notes
	}
	return ""
}

// setFieldValue writes a text field in place.
func (it *StagedItem) setFieldValue(f Field, v string) {
	switch f {
	case FieldWeaponType:
		it.WeaponType = v
	case FieldManufacturer:
		it.Manufacturer = v
	case FieldSerialNumber:
		it.SerialNumber = v
	case FieldCaliber:
		it.Caliber = v
	case FieldAmmoType:
		it.AmmoType = v
	case FieldItemType:
		it.ItemType = v
	case FieldSize:
		it.Size = v
	case FieldDescription:
		it.Description = v
	case FieldCondition:
		it.Condition = v
	case FieldLotNumber:
		it.LotNumber = v
	case FieldNotes:
		it.Notes = v
	}
}
