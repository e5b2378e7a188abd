package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/armoryops/armoryd/config"
	"github.com/armoryops/armoryd/stock"
	"github.com/go-resty/resty/v2"
)

// Remote is a resty-backed Lookup that queries an upstream inventory
// registry over HTTP.
type Remote struct {
	httpClient *resty.Client
}

// NewRemote builds the registry client from configuration.
func NewRemote(cfg config.AvailabilityConfig) *Remote {
	timeout := cfg.RemoteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.RemoteBaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if cfg.RemoteToken != "" {
		restyClient.SetHeader("Authorization", "Bearer "+cfg.RemoteToken)
	}

	return &Remote{httpClient: restyClient}
}

// remoteResult mirrors the registry's availability payload.
type remoteResult struct {
	AvailableQuantity int           `json:"available_quantity"`
	ExistingItem      *ExistingItem `json:"existing_item"`
}

type remoteError struct {
	Error string `json:"error"`
}

// Fetch queries GET /api/armories/{id}/availability with the item's
// identity fields. Transport and server errors surface as ErrUnavailable so
// callers degrade to zero availability instead of blocking the edit.
func (r *Remote) Fetch(ctx context.Context, armoryID int64, item stock.StagedItem) (Result, error) {
	if _, ok := stock.ResolveKey(item); !ok {
		return Result{}, ErrIncompleteIdentity
	}

	params := map[string]string{"category": string(item.Category)}
	switch item.Category {
	case stock.CategoryWeapon:
		params["weapon_type"] = item.WeaponType
		params["manufacturer"] = item.Manufacturer
	case stock.CategoryAmmunition:
		params["caliber"] = item.Caliber
		params["ammo_type"] = item.AmmoType
		params["manufacturer"] = item.Manufacturer
	case stock.CategoryEquipment:
		params["item_type"] = item.ItemType
		if item.Size != "" {
			params["size"] = item.Size
		}
	}

	result := new(remoteResult)
	apiErr := new(remoteError)
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/api/armories/%d/availability", armoryID))
	if err != nil {
		return Result{}, errors.Join(ErrUnavailable, err)
	}
	if resp.IsError() {
		return Result{}, fmt.Errorf("%w: registry returned %d: %s", ErrUnavailable, resp.StatusCode(), apiErr.Error)
	}

	return Result{
		AvailableQuantity: result.AvailableQuantity,
		Existing:          result.ExistingItem,
	}, nil
}
