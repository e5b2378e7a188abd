// Package availability answers "how much of this exact item does the armory
// already hold" for staged lines whose identity is complete.
package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/armoryops/armoryd/config"
	"github.com/armoryops/armoryd/stock"
	"gorm.io/gorm"
)

// ErrUnavailable signals a transient lookup failure (backend or network).
// Callers degrade to zero existing stock and keep editing; the commit path
// revalidates against real stored quantities regardless.
var ErrUnavailable = errors.New("availability: lookup failed")

// ErrIncompleteIdentity is returned when a fetch is attempted before the
// item's identity fields are all populated. Callers are expected to gate on
// stock.ResolveKey and never hit this.
var ErrIncompleteIdentity = errors.New("availability: identity fields incomplete")

// ExistingItem carries display data about the matching stored record, used
// by the form layer to prefill descriptive fields.
type ExistingItem struct {
	ID          int64  `json:"id"`
	Description string `json:"description,omitempty"`
	Condition   string `json:"condition,omitempty"`
}

// Result is the outcome of a successful lookup. A missing item is a normal
// result with zero quantity and no existing record, not an error.
type Result struct {
	AvailableQuantity int           `json:"available_quantity"`
	Existing          *ExistingItem `json:"existing_item,omitempty"`
}

// Lookup fetches the available quantity of the staged item's exact identity
// in the given armory. Safe to call redundantly.
type Lookup interface {
	Fetch(ctx context.Context, armoryID int64, item stock.StagedItem) (Result, error)
}

// New returns the Lookup for the configured mode: the local gorm store, or
// the resty client for deployments where an upstream registry owns the
// armory's inventory.
func New(cfg config.AvailabilityConfig, db *gorm.DB) (Lookup, error) {
	switch cfg.Mode {
	case "", "local":
		return NewStore(db), nil
	case "remote":
		return NewRemote(cfg), nil
	default:
		return nil, fmt.Errorf("availability: unknown mode %q", cfg.Mode)
	}
}
