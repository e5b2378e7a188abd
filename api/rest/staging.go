package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/armoryops/armoryd/audit"
	"github.com/armoryops/armoryd/inventory"
	mw "github.com/armoryops/armoryd/middleware"
	"github.com/armoryops/armoryd/model"
	"github.com/armoryops/armoryd/staging"
	"github.com/armoryops/armoryd/stock"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StagingHandler exposes the staged-batch edit loop over HTTP.
type StagingHandler struct {
	db      *gorm.DB
	manager *staging.Manager
	auditor *audit.Service
}

// NewStagingHandler creates a new StagingHandler.
func NewStagingHandler(db *gorm.DB, manager *staging.Manager, auditor *audit.Service) *StagingHandler {
	return &StagingHandler{db: db, manager: manager, auditor: auditor}
}

type createBatchRequest struct {
	CaseID *int64 `json:"case_id"`
}

// CreateBatch handles POST /api/armories/:id/batches.
func (h *StagingHandler) CreateBatch(c *gin.Context) {
	armoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var count int64
	if err := h.db.Model(&model.Armory{}).Where("id = ?", armoryID).Count(&count).Error; err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "armory not found"})
		return
	}

	var req createBatchRequest
	_ = c.ShouldBindJSON(&req)
	if req.CaseID != nil {
		var cases int64
		if err := h.db.Model(&model.SeizureCase{}).Where("id = ?", *req.CaseID).Count(&cases).Error; err != nil || cases == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
			return
		}
	}

	v := h.manager.Create(mw.GetAccountID(c), armoryID, req.CaseID)
	c.JSON(http.StatusCreated, gin.H{"batch": v})
}

// GetBatch handles GET /api/batches/:id.
func (h *StagingHandler) GetBatch(c *gin.Context) {
	v, err := h.manager.Get(mw.GetAccountID(c), c.Param("id"))
	if err != nil {
		h.stagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch": v})
}

type addLineRequest struct {
	Category  string `json:"category" binding:"required"`
	CatalogID int64  `json:"catalog_id"`
}

// AddLine handles POST /api/batches/:id/lines. A catalog_id prefills the
// weapon identity and caps the quantity by the entry's remaining pool.
func (h *StagingHandler) AddLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat := stock.Category(req.Category)
	if !cat.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	var ref *staging.CatalogRef
	if req.CatalogID != 0 {
		if cat != stock.CategoryWeapon {
			c.JSON(http.StatusBadRequest, gin.H{"error": "catalog_id applies to weapon lines only"})
			return
		}
		var entry model.WeaponCatalog
		if err := h.db.First(&entry, req.CatalogID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "catalog entry not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}
		if entry.AvailableQuantity <= 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "catalog pool exhausted"})
			return
		}
		ref = &staging.CatalogRef{
			ID:           entry.ID,
			WeaponType:   entry.WeaponType,
			Manufacturer: entry.Manufacturer,
			MaxAddable:   entry.AvailableQuantity,
		}
	}

	line, err := h.manager.AddLine(c.Request.Context(), mw.GetAccountID(c), c.Param("id"), cat, ref)
	if err != nil {
		h.stagingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"line": line})
}

type updateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// UpdateLine handles PATCH /api/batches/:id/lines/:line_id. One field per
// call, mirroring the form's per-input change events; the response carries
// the fully reconciled line.
func (h *StagingHandler) UpdateLine(c *gin.Context) {
	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.manager.UpdateField(
		c.Request.Context(),
		mw.GetAccountID(c),
		c.Param("id"),
		c.Param("line_id"),
		stock.Field(req.Field),
		req.Value,
	)
	if err != nil {
		if errors.Is(err, staging.ErrBatchNotFound) || errors.Is(err, staging.ErrLineNotFound) || errors.Is(err, staging.ErrNotOwner) {
			h.stagingError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"line": line})
}

// RemoveLine handles DELETE /api/batches/:id/lines/:line_id.
func (h *StagingHandler) RemoveLine(c *gin.Context) {
	if err := h.manager.RemoveLine(mw.GetAccountID(c), c.Param("id"), c.Param("line_id")); err != nil {
		h.stagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Commit handles POST /api/batches/:id/commit. The route carries the
// armourer/admin role gate; here the batch is validated and persisted.
func (h *StagingHandler) Commit(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	start := time.Now()

	v, err := h.manager.Commit(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		var verrs stock.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation failed",
				"issues": verrs,
			})
		case errors.Is(err, inventory.ErrSerialExists), errors.Is(err, inventory.ErrCatalogExhausted):
			// The preview raced a concurrent commit; the batch is retained
			// so the user can correct and resubmit.
			c.JSON(http.StatusConflict, gin.H{"error": "commit failed"})
		case errors.Is(err, staging.ErrBatchNotFound), errors.Is(err, staging.ErrNotOwner):
			h.stagingError(c, err)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "commit failed"})
		}
		h.auditCommit(c, accountID, v, err, time.Since(start))
		return
	}

	h.auditCommit(c, accountID, v, nil, time.Since(start))
	c.JSON(http.StatusOK, gin.H{"batch": v})
}

func (h *StagingHandler) auditCommit(c *gin.Context, accountID int64, v staging.View, commitErr error, took time.Duration) {
	entry := audit.Entry{
		TraceID:    mw.GetTraceID(c),
		AccountID:  &accountID,
		Action:     "batch_commit",
		CaseID:     v.CaseID,
		Request:    map[string]interface{}{"batch_id": v.ID, "lines": len(v.Lines)},
		IP:         c.ClientIP(),
		DurationMs: int(took.Milliseconds()),
	}
	if v.ArmoryID != 0 {
		armoryID := v.ArmoryID
		entry.ArmoryID = &armoryID
	}
	if commitErr != nil {
		entry.Error = commitErr.Error()
	} else {
		entry.Response = map[string]bool{"ok": true}
	}
	h.auditor.Log(entry)
}

func (h *StagingHandler) stagingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, staging.ErrBatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
	case errors.Is(err, staging.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "line not found"})
	case errors.Is(err, staging.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "batch belongs to another account"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
