package rest

import (
	"net/http"

	"github.com/armoryops/armoryd/catalog"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CatalogHandler serves the procurement reference listings the
// registration forms populate their pickers from.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// Weapons handles GET /api/catalog/weapons.
func (h *CatalogHandler) Weapons(c *gin.Context) {
	entries, err := catalog.ListWeapons(c.Request.Context(), h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"weapons": entries})
}

// Ammunition handles GET /api/catalog/ammunition, grouped by caliber.
func (h *CatalogHandler) Ammunition(c *gin.Context) {
	groups, err := catalog.AmmunitionByCaliber(c.Request.Context(), h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calibers": groups})
}

// Equipment handles GET /api/catalog/equipment.
func (h *CatalogHandler) Equipment(c *gin.Context) {
	entries, err := catalog.ListEquipment(c.Request.Context(), h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": entries})
}
