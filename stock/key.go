package stock

import "strings"

// Key is the normalized composite identity of an inventory item. Two items
// of the same category whose identity fields match after normalization
// resolve to the same key and therefore the same stored stock row.
type Key string

// normalize trims, collapses inner whitespace and lowercases a field value.
// Applied in exactly this one place so every consumer agrees on equality.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ResolveKey derives the stock key for a staged item. ok is false when any
// required identity field is still empty, an expected mid-edit state, not
// an error; callers must not query availability until the key is complete.
// Construction order of the item does not matter: fields are assembled in
// the category's canonical order.
func ResolveKey(it StagedItem) (Key, bool) {
	fields := identityFields[it.Category]
	if fields == nil {
		return "", false
	}
	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, string(it.Category))
	for _, f := range fields {
		v := normalize(it.fieldValue(f))
		if v == "" {
			// Equipment size is the one optional identity field: absent
			// size keys to the unsized item, any other gap is incomplete.
			if it.Category == CategoryEquipment && f == FieldSize {
				continue
			}
			return "", false
		}
		parts = append(parts, v)
	}
	return Key(strings.Join(parts, "|")), true
}
