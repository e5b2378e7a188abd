package stock

import (
	"fmt"
	"strings"
)

// Validation error codes.
const (
	CodeRequired        = "required"
	CodeNonPositiveQty  = "non_positive_quantity"
	CodeDuplicateSerial = "duplicate_serial_number"
	CodeUnknownCategory = "unknown_category"
)

// ValidationError points at one problem in one staged line.
type ValidationError struct {
	Index   int    `json:"index"`
	Field   Field  `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every problem found in a batch so the caller
// can highlight all of them at once.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = fmt.Sprintf("line %d: %s (%s)", e.Index, e.Message, e.Code)
	}
	return "stock: " + strings.Join(msgs, "; ")
}

// requiredFields lists the fields a committable line of each category must
// carry. Equipment size stays optional.
var requiredFields = map[Category][]Field{
	CategoryWeapon:     {FieldWeaponType, FieldSerialNumber, FieldManufacturer},
	CategoryAmmunition: {FieldCaliber, FieldAmmoType, FieldManufacturer},
	CategoryEquipment:  {FieldItemType},
}

// Validate checks a whole staged batch before commit. It returns nil for a
// valid batch (including the empty batch; minimum size is the workflow
// layer's concern) and a ValidationErrors otherwise. The duplicate-serial
// check always runs, regardless of other per-line problems. Duplicate stock
// keys across ammunition or equipment lines are legal: their quantities
// merge into the same stored row at commit. The input is not mutated.
func Validate(items []StagedItem) error {
	var errs ValidationErrors

	for i, it := range items {
		if !it.Category.Valid() {
			errs = append(errs, ValidationError{
				Index: i, Code: CodeUnknownCategory,
				Message: fmt.Sprintf("unknown category %q", it.Category),
			})
			continue
		}
		for _, f := range requiredFields[it.Category] {
			if normalize(it.fieldValue(f)) == "" {
				errs = append(errs, ValidationError{
					Index: i, Field: f, Code: CodeRequired,
					Message: fmt.Sprintf("%s is required", f),
				})
			}
		}
		if it.QuantityToAdd <= 0 {
			errs = append(errs, ValidationError{
				Index: i, Field: FieldQuantity, Code: CodeNonPositiveQty,
				Message: "quantity to add must be positive",
			})
		}
	}

	// Weapons are serialized: the same serial may not appear twice in one
	// submission. Compared normalized so "sn-1" and " SN-1 " collide.
	seen := make(map[string][]int)
	for i, it := range items {
		if it.Category != CategoryWeapon {
			continue
		}
		sn := normalize(it.SerialNumber)
		if sn == "" {
			continue
		}
		seen[sn] = append(seen[sn], i)
	}
	for sn, idxs := range seen {
		if len(idxs) < 2 {
			continue
		}
		for _, i := range idxs {
			errs = append(errs, ValidationError{
				Index: i, Field: FieldSerialNumber, Code: CodeDuplicateSerial,
				Message: fmt.Sprintf("serial number %q appears %d times in this batch", sn, len(idxs)),
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
