package rest

import (
	"net/http"
	"strconv"

	"github.com/armoryops/armoryd/audit"
	mw "github.com/armoryops/armoryd/middleware"
	"github.com/armoryops/armoryd/model"
	"github.com/armoryops/armoryd/scheduler"
	"github.com/armoryops/armoryd/staging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only REST endpoints. Routes are gated by the
// admin role and the optional admin IP whitelist.
type AdminHandler struct {
	db      *gorm.DB
	manager *staging.Manager
	sched   *scheduler.Scheduler
	auditor *audit.Service
	logger  *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	db *gorm.DB,
	manager *staging.Manager,
	sched *scheduler.Scheduler,
	auditor *audit.Service,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{db: db, manager: manager, sched: sched, auditor: auditor, logger: logger}
}

// Metrics returns service health metrics.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	counts := map[string]int64{}
	for name, m := range map[string]interface{}{
		"armories":   &model.Armory{},
		"weapons":    &model.Weapon{},
		"ammunition": &model.Ammunition{},
		"equipment":  &model.Equipment{},
		"cases":      &model.SeizureCase{},
		"accounts":   &model.Account{},
	} {
		var n int64
		if err := h.db.Model(m).Count(&n).Error; err == nil {
			counts[name] = n
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":            counts,
		"staged_batches":  h.manager.Count(),
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

// ListAccounts returns all accounts.
// GET /api/admin/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	var accounts []model.Account
	if err := h.db.Order("username").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole assigns a role to an account. A role change takes effect on the
// account's next login since the role travels in the JWT.
// PUT /api/admin/accounts/:id/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Role {
	case model.RoleAdmin, model.RoleArmourer, model.RoleOfficer:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	result := h.db.Model(&model.Account{}).Where("id = ?", accountID).Update("role", req.Role)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	actor := mw.GetAccountID(c)
	h.auditor.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &actor,
		Action:    "account_role",
		Request:   map[string]interface{}{"account_id": accountID, "role": req.Role},
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"ok": true, "role": req.Role})
}

// BanAccount disables or re-enables an account.
// POST /api/admin/accounts/:id/ban
func (h *AdminHandler) BanAccount(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Ban bool `json:"ban"`
	}
	_ = c.ShouldBindJSON(&req)

	status := 1
	if req.Ban {
		status = 0
	}
	result := h.db.Model(&model.Account{}).Where("id = ?", accountID).Update("status", status)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	actor := mw.GetAccountID(c)
	h.auditor.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &actor,
		Action:    "account_ban",
		Request:   map[string]interface{}{"account_id": accountID, "ban": req.Ban},
		IP:        c.ClientIP(),
	})
	h.logger.Info("account status changed",
		zap.Int64("account_id", accountID),
		zap.Int("status", status))
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}

// ListSchedulerTasks returns run statistics for all registered ticker tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Tickers()})
}
