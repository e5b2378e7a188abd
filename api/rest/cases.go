package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/armoryops/armoryd/audit"
	mw "github.com/armoryops/armoryd/middleware"
	"github.com/armoryops/armoryd/model"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CaseHandler handles seizure case REST endpoints.
type CaseHandler struct {
	db      *gorm.DB
	auditor *audit.Service
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(db *gorm.DB, auditor *audit.Service) *CaseHandler {
	return &CaseHandler{db: db, auditor: auditor}
}

// List handles GET /api/cases?status=.
func (h *CaseHandler) List(c *gin.Context) {
	q := h.db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var cases []model.SeizureCase
	if err := q.Find(&cases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases})
}

type createCaseRequest struct {
	CaseNumber  string          `json:"case_number" binding:"required,min=2,max=32"`
	OfficerName string          `json:"officer_name" binding:"max=64"`
	Description string          `json:"description"`
	Details     json.RawMessage `json:"details"`
	SeizedAt    *time.Time      `json:"seized_at"`
}

// Create handles POST /api/cases.
func (h *CaseHandler) Create(c *gin.Context) {
	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accountID := mw.GetAccountID(c)
	sc := model.SeizureCase{
		CaseNumber:  req.CaseNumber,
		Status:      model.CaseStatusOpen,
		OfficerID:   accountID,
		OfficerName: req.OfficerName,
		Description: req.Description,
		Details:     datatypes.JSON(req.Details),
	}
	if req.SeizedAt != nil {
		sc.SeizedAt = *req.SeizedAt
	} else {
		sc.SeizedAt = time.Now()
	}

	if err := h.db.Create(&sc).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "case number already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.auditor.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		Action:    "case_create",
		CaseID:    &sc.ID,
		Request:   map[string]string{"case_number": sc.CaseNumber},
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusCreated, gin.H{"case": sc})
}

// Get handles GET /api/cases/:id.
func (h *CaseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var sc model.SeizureCase
	if err := h.db.First(&sc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"case": sc})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// allowedCaseTransitions maps each status to the statuses it may move to.
var allowedCaseTransitions = map[string][]string{
	model.CaseStatusOpen:      {model.CaseStatusProcessed, model.CaseStatusClosed},
	model.CaseStatusProcessed: {model.CaseStatusClosed},
	model.CaseStatusClosed:    {},
}

// UpdateStatus handles PUT /api/cases/:id/status. A case moves forward
// only: open -> processed -> closed.
func (h *CaseHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sc model.SeizureCase
	if err := h.db.First(&sc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	if !transitionAllowed(sc.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "invalid status transition",
			"from":  sc.Status,
			"to":    req.Status,
		})
		return
	}

	from := sc.Status
	if err := h.db.Model(&sc).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	accountID := mw.GetAccountID(c)
	h.auditor.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		Action:    "case_status",
		CaseID:    &sc.ID,
		Request:   map[string]string{"from": from, "to": req.Status},
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"case": sc})
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedCaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
