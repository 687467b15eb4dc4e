package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smarteats/backend/apperr"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/utils"
)

type SearchController struct {
	DB *gorm.DB
}

func NewSearchController(db *gorm.DB) *SearchController {
	return &SearchController{DB: db}
}

// Search -> GET /api/search?q= does a case-insensitive substring match over
// restaurant and menu item names. Plain LIKE, no search engine.
func (sc *SearchController) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		utils.RespondAppError(c, apperr.Validation("Search query missing"))
		return
	}
	pattern := "%" + q + "%"

	var restaurants []models.Restaurant
	if err := sc.DB.Where("name LIKE ?", pattern).Find(&restaurants).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	var items []models.MenuItem
	if err := sc.DB.Where("name LIKE ?", pattern).Find(&items).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Search results", gin.H{
		"query":       q,
		"restaurants": restaurants,
		"items":       items,
	})
}
