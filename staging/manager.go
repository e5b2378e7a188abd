// Package staging holds in-memory submission batches while a user fills
// them in. Nothing here is persisted; abandoning a batch has no side
// effects, and stored quantities only change when a commit succeeds.
package staging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/armoryops/armoryd/availability"
	"github.com/armoryops/armoryd/cache"
	"github.com/armoryops/armoryd/config"
	"github.com/armoryops/armoryd/inventory"
	"github.com/armoryops/armoryd/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventsChannel is the pub/sub channel carrying committed-batch events.
const EventsChannel = "armory:events"

var (
	ErrBatchNotFound = errors.New("staging: batch not found")
	ErrLineNotFound  = errors.New("staging: line not found")
	ErrNotOwner      = errors.New("staging: batch belongs to another account")
)

// CatalogRef prefills a weapon line from a catalog entry and caps its
// quantity by the entry's remaining pool.
type CatalogRef struct {
	ID           int64
	WeaponType   string
	Manufacturer string
	MaxAddable   int
}

// line pairs a staged item with its lookup generation. gen is bumped on
// every identity edit; an availability result is applied only if the
// generation it was fetched under is still current (last-write-wins).
type line struct {
	item stock.StagedItem
	gen  uint64
}

// Batch is one user's staged submission for one armory.
type Batch struct {
	ID        string
	ArmoryID  int64
	AccountID int64
	CaseID    *int64

	mu        sync.Mutex
	lines     []*line
	updatedAt time.Time
}

// View is a read-only snapshot of a batch for serialization.
type View struct {
	ID        string             `json:"id"`
	ArmoryID  int64              `json:"armory_id"`
	CaseID    *int64             `json:"case_id,omitempty"`
	Lines     []stock.StagedItem `json:"lines"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Manager owns all live staged batches.
type Manager struct {
	mu      sync.RWMutex
	batches map[string]*Batch

	lookup availability.Lookup
	inv    *inventory.Service
	pubsub cache.PubSub
	cfg    config.StagingConfig
	logger *zap.Logger
}

// NewManager creates a staging Manager.
func NewManager(lookup availability.Lookup, inv *inventory.Service, pubsub cache.PubSub, cfg config.StagingConfig, logger *zap.Logger) *Manager {
	return &Manager{
		batches: make(map[string]*Batch),
		lookup:  lookup,
		inv:     inv,
		pubsub:  pubsub,
		cfg:     cfg,
		logger:  logger,
	}
}

// Create opens a new empty batch for the account against an armory.
func (m *Manager) Create(accountID, armoryID int64, caseID *int64) View {
	b := &Batch{
		ID:        uuid.NewString(),
		ArmoryID:  armoryID,
		AccountID: accountID,
		CaseID:    caseID,
		updatedAt: time.Now(),
	}
	m.mu.Lock()
	m.batches[b.ID] = b
	m.mu.Unlock()
	return b.view()
}

// Get returns a snapshot of the batch, enforcing ownership.
func (m *Manager) Get(accountID int64, batchID string) (View, error) {
	b, err := m.owned(accountID, batchID)
	if err != nil {
		return View{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked(), nil
}

// AddLine appends a fresh line of the given category. A non-nil CatalogRef
// prefills the weapon identity and caps the quantity by the pool; the
// prefilled identity is complete, so availability is fetched immediately.
func (m *Manager) AddLine(ctx context.Context, accountID int64, batchID string, c stock.Category, ref *CatalogRef) (stock.StagedItem, error) {
	b, err := m.owned(accountID, batchID)
	if err != nil {
		return stock.StagedItem{}, err
	}

	it := stock.NewStagedItem(uuid.NewString(), c)
	if ref != nil {
		it.CatalogID = ref.ID
		it.WeaponType = ref.WeaponType
		it.Manufacturer = ref.Manufacturer
		it.MaxAddable = ref.MaxAddable
	}

	b.mu.Lock()
	ln := &line{item: it, gen: 1}
	b.lines = append(b.lines, ln)
	b.updatedAt = time.Now()
	myGen := ln.gen
	b.mu.Unlock()

	if _, ok := stock.ResolveKey(it); ok {
		m.refreshAvailability(ctx, b, it.ID, it, myGen)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cur := b.findLocked(it.ID); cur != nil {
		return cur.item, nil
	}
	return it, nil
}

// UpdateField applies one field edit through the reconciler and returns the
// reconciled line. Identity edits trigger a fresh availability lookup; a
// result is discarded if another edit superseded it while the fetch was in
// flight.
func (m *Manager) UpdateField(ctx context.Context, accountID int64, batchID, lineID string, field stock.Field, value string) (stock.StagedItem, error) {
	b, err := m.owned(accountID, batchID)
	if err != nil {
		return stock.StagedItem{}, err
	}

	b.mu.Lock()
	ln := b.findLocked(lineID)
	if ln == nil {
		b.mu.Unlock()
		return stock.StagedItem{}, ErrLineNotFound
	}

	updated, err := stock.Apply(ln.item, field, value)
	if err != nil {
		b.mu.Unlock()
		return stock.StagedItem{}, err
	}
	ln.item = updated
	b.updatedAt = time.Now()

	identityEdit := stock.IsIdentityField(updated.Category, field)
	var myGen uint64
	if identityEdit {
		ln.gen++
		myGen = ln.gen
	}
	b.mu.Unlock()

	if identityEdit {
		if _, ok := stock.ResolveKey(updated); ok {
			m.refreshAvailability(ctx, b, lineID, updated, myGen)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cur := b.findLocked(lineID); cur != nil {
		return cur.item, nil
	}
	return updated, nil
}

// refreshAvailability fetches existing stock for the item and applies the
// result under the batch lock, but only if the line's generation still
// matches the one the fetch was started under. A slow response for an old
// identity never overwrites a newer edit.
func (m *Manager) refreshAvailability(ctx context.Context, b *Batch, lineID string, it stock.StagedItem, gen uint64) {
	fetchCtx := ctx
	if m.cfg.LookupTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, m.cfg.LookupTimeout)
		defer cancel()
	}

	res, err := m.lookup.Fetch(fetchCtx, b.ArmoryID, it)
	failed := err != nil
	if failed {
		m.logger.Warn("availability lookup failed",
			zap.Int64("armory_id", b.ArmoryID),
			zap.String("line_id", lineID),
			zap.Error(err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	ln := b.findLocked(lineID)
	if ln == nil || ln.gen != gen {
		// Superseded by a newer edit or the line is gone; drop the result.
		return
	}
	ln.item = stock.WithAvailability(ln.item, res.AvailableQuantity, failed)
	if !failed && res.Existing != nil && ln.item.Description == "" {
		ln.item.Description = res.Existing.Description
	}
}

// RemoveLine deletes a line from the batch.
func (m *Manager) RemoveLine(accountID int64, batchID, lineID string) error {
	b, err := m.owned(accountID, batchID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ln := range b.lines {
		if ln.item.ID == lineID {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			b.updatedAt = time.Now()
			return nil
		}
	}
	return ErrLineNotFound
}

// Commit validates the whole batch and hands it to the inventory service in
// one transaction. On success the batch is dropped and a stock-committed
// event is published; on failure the batch stays staged for correction.
func (m *Manager) Commit(ctx context.Context, accountID int64, batchID string) (View, error) {
	b, err := m.owned(accountID, batchID)
	if err != nil {
		return View{}, err
	}

	b.mu.Lock()
	items := make([]stock.StagedItem, len(b.lines))
	for i, ln := range b.lines {
		items[i] = ln.item
	}
	v := b.viewLocked()
	b.mu.Unlock()

	if err := stock.Validate(items); err != nil {
		return v, err
	}
	if err := m.inv.CommitBatch(ctx, b.ArmoryID, accountID, b.CaseID, items); err != nil {
		return v, err
	}

	m.mu.Lock()
	delete(m.batches, batchID)
	m.mu.Unlock()

	m.publishCommitted(ctx, v, accountID)
	return v, nil
}

func (m *Manager) publishCommitted(ctx context.Context, v View, accountID int64) {
	payload, _ := json.Marshal(map[string]interface{}{
		"type":       "stock_committed",
		"armory_id":  v.ArmoryID,
		"batch_id":   v.ID,
		"account_id": accountID,
		"lines":      len(v.Lines),
	})
	if err := m.pubsub.Publish(ctx, EventsChannel, string(payload)); err != nil {
		m.logger.Warn("commit event publish failed", zap.Error(err))
	}
}

// SweepExpired drops batches untouched for longer than the configured TTL
// and returns how many were removed. Wired to a scheduler ticker.
func (m *Manager) SweepExpired() int {
	ttl := m.cfg.BatchTTL
	if ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, b := range m.batches {
		b.mu.Lock()
		stale := b.updatedAt.Before(cutoff)
		b.mu.Unlock()
		if stale {
			delete(m.batches, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("swept stale staged batches", zap.Int("removed", removed))
	}
	return removed
}

// Count returns the number of live staged batches.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.batches)
}

func (m *Manager) owned(accountID int64, batchID string) (*Batch, error) {
	m.mu.RLock()
	b, ok := m.batches[batchID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrBatchNotFound
	}
	if b.AccountID != accountID {
		return nil, ErrNotOwner
	}
	return b, nil
}

func (b *Batch) findLocked(lineID string) *line {
	for _, ln := range b.lines {
		if ln.item.ID == lineID {
			return ln
		}
	}
	return nil
}

func (b *Batch) view() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

func (b *Batch) viewLocked() View {
	items := make([]stock.StagedItem, len(b.lines))
	for i, ln := range b.lines {
		items[i] = ln.item
	}
	return View{
		ID:        b.ID,
		ArmoryID:  b.ArmoryID,
		CaseID:    b.CaseID,
		Lines:     items,
		UpdatedAt: b.updatedAt,
	}
}
