package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/armoryops/armoryd/availability"
	"github.com/armoryops/armoryd/inventory"
	"github.com/armoryops/armoryd/model"
	"github.com/armoryops/armoryd/stock"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ArmoryHandler handles armory CRUD, inventory listings and the
// availability endpoint remote peers query.
type ArmoryHandler struct {
	db     *gorm.DB
	inv    *inventory.Service
	lookup availability.Lookup
}

// NewArmoryHandler creates a new ArmoryHandler.
func NewArmoryHandler(db *gorm.DB, inv *inventory.Service, lookup availability.Lookup) *ArmoryHandler {
	return &ArmoryHandler{db: db, inv: inv, lookup: lookup}
}

// List handles GET /api/armories.
func (h *ArmoryHandler) List(c *gin.Context) {
	var armories []model.Armory
	if err := h.db.Order("name").Find(&armories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"armories": armories})
}

type createArmoryRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=64"`
	Location string `json:"location" binding:"max=128"`
	Region   string `json:"region" binding:"max=64"`
}

// Create handles POST /api/armories (admin only).
func (h *ArmoryHandler) Create(c *gin.Context) {
	var req createArmoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	arm := model.Armory{Name: req.Name, Location: req.Location, Region: req.Region}
	if err := h.db.Create(&arm).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "armory name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"armory": arm})
}

// Get handles GET /api/armories/:id.
func (h *ArmoryHandler) Get(c *gin.Context) {
	arm, ok := h.armoryByParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"armory": arm})
}

// Inventory handles GET /api/armories/:id/inventory?category=.
// Without a category it returns all three listings.
func (h *ArmoryHandler) Inventory(c *gin.Context) {
	arm, ok := h.armoryByParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch cat := stock.Category(c.Query("category")); cat {
	case stock.CategoryWeapon:
		items, err := h.inv.ListWeapons(ctx, arm.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"weapons": items})
	case stock.CategoryAmmunition:
		items, err := h.inv.ListAmmunition(ctx, arm.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ammunition": items})
	case stock.CategoryEquipment:
		items, err := h.inv.ListEquipment(ctx, arm.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"equipment": items})
	case "":
		weapons, err1 := h.inv.ListWeapons(ctx, arm.ID)
		ammo, err2 := h.inv.ListAmmunition(ctx, arm.ID)
		equipment, err3 := h.inv.ListEquipment(ctx, arm.ID)
		if err1 != nil || err2 != nil || err3 != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"weapons":    weapons,
			"ammunition": ammo,
			"equipment":  equipment,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
	}
}

// Availability handles GET /api/armories/:id/availability. This is the
// registry endpoint remote armoryd instances query; the identity arrives
// as query parameters.
func (h *ArmoryHandler) Availability(c *gin.Context) {
	arm, ok := h.armoryByParam(c)
	if !ok {
		return
	}

	item := stock.StagedItem{
		Category:     stock.Category(c.Query("category")),
		WeaponType:   c.Query("weapon_type"),
		Manufacturer: c.Query("manufacturer"),
		Caliber:      c.Query("caliber"),
		AmmoType:     c.Query("ammo_type"),
		ItemType:     c.Query("item_type"),
		Size:         c.Query("size"),
	}
	if !item.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	res, err := h.lookup.Fetch(c.Request.Context(), arm.ID, item)
	if err != nil {
		if errors.Is(err, availability.ErrIncompleteIdentity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete identity"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "availability lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"available_quantity": res.AvailableQuantity,
		"existing_item":      res.Existing,
	})
}

func (h *ArmoryHandler) armoryByParam(c *gin.Context) (model.Armory, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return model.Armory{}, false
	}
	var arm model.Armory
	if err := h.db.First(&arm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "armory not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return model.Armory{}, false
	}
	return arm, true
}
