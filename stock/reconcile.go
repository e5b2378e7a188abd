package stock

import (
	"fmt"
	"strconv"
)

// Apply sets one field on a copy of item and returns the copy with its
// derived quantities consistent. It never mutates the input, so callers can
// re-stage the result deterministically.
//
// Identity edits clear the fields invalidated by the change (and any
// description derived from the old identity), reset ExistingAvailable to
// zero and drop a stale LookupFailed flag; the caller is expected to run a
// fresh availability lookup afterwards if the new key is complete.
//
// Quantity edits are clamped to the category floor and, when MaxAddable is
// set, to that ceiling.
func Apply(item StagedItem, field Field, value string) (StagedItem, error) {
	if !item.Category.Valid() {
		return item, fmt.Errorf("stock: unknown category %q", item.Category)
	}
	if !fieldAllowed(item.Category, field) {
		return item, fmt.Errorf("stock: field %q not valid for category %q", field, item.Category)
	}

	if field == FieldQuantity {
		qty, err := strconv.Atoi(value)
		if err != nil {
			return item, fmt.Errorf("stock: quantity %q is not an integer", value)
		}
		return applyQuantity(item, qty), nil
	}

	if IsIdentityField(item.Category, field) {
		item.setFieldValue(field, value)
		for _, dep := range dependentFields[item.Category][field] {
			item.setFieldValue(dep, "")
		}
		item.Description = ""
		item.ExistingAvailable = 0
		item.LookupFailed = false
		item.AvailableQuantity = item.QuantityToAdd
		return item, nil
	}

	// Descriptive fields (and the weapon serial) pass through untouched by
	// the quantity triple.
	item.setFieldValue(field, value)
	return item, nil
}

func applyQuantity(item StagedItem, qty int) StagedItem {
	if min := item.Category.MinQuantity(); qty < min {
		qty = min
	}
	if item.MaxAddable > 0 && qty > item.MaxAddable {
		qty = item.MaxAddable
	}
	item.QuantityToAdd = qty
	item.AvailableQuantity = item.QuantityToAdd + item.ExistingAvailable
	return item
}

// WithAvailability applies an availability lookup result to a copy of item.
// A failed lookup degrades to zero existing stock with the LookupFailed
// flag set; editing continues normally and the backend revalidates at
// commit time.
func WithAvailability(item StagedItem, existing int, failed bool) StagedItem {
	if failed {
		item.ExistingAvailable = 0
		item.LookupFailed = true
	} else {
		if existing < 0 {
			existing = 0
		}
		item.ExistingAvailable = existing
		item.LookupFailed = false
	}
	item.AvailableQuantity = item.QuantityToAdd + item.ExistingAvailable
	return item
}

// NewStagedItem returns a fresh line for a category: empty identity, the
// category's minimum quantity and no known existing stock.
func NewStagedItem(id string, c Category) StagedItem {
	it := StagedItem{ID: id, Category: c}
	return applyQuantity(it, c.MinQuantity())
}

// fieldAllowed reports whether a field may be edited on the given category.
func fieldAllowed(c Category, f Field) bool {
	switch f {
	case FieldQuantity, FieldDescription, FieldCondition, FieldNotes:
		return true
	case FieldSerialNumber:
		return c == CategoryWeapon
	case FieldLotNumber:
		return c == CategoryAmmunition
	case FieldManufacturer:
		return c == CategoryWeapon || c == CategoryAmmunition
	}
	return IsIdentityField(c, f)
}
