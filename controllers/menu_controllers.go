package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smarteats/backend/apperr"
	"github.com/smarteats/backend/cache"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/tracking"
	"github.com/smarteats/backend/utils"
)

type MenuController struct {
	DB    *gorm.DB
	Cache *cache.Cache
	Hub   *tracking.Hub
}

func NewMenuController(db *gorm.DB, ca *cache.Cache, hub *tracking.Hub) *MenuController {
	return &MenuController{DB: db, Cache: ca, Hub: hub}
}

// CreateMenuItem -> POST /api/menu (restaurant owner only)
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	uid, _ := currentUser(c)

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Image       string  `json:"image"`
		Category    string  `json:"category"`
		Restaurant  uint    `json:"restaurant"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Restaurant == 0 {
		utils.RespondAppError(c, apperr.Validation("restaurant id required"))
		return
	}

	var rest models.Restaurant
	if err := mc.DB.First(&rest, req.Restaurant).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}
	if rest.OwnerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("Access denied. Not the owner."))
		return
	}

	item := models.MenuItem{
		RestaurantID: req.Restaurant,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Image:        req.Image,
		Category:     req.Category,
		Available:    true,
	}
	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	mc.invalidate(c, req.Restaurant)
	emit(mc.Hub, tracking.RestaurantRoom(req.Restaurant), tracking.EventMenuItemCreated, item)

	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// GetAllMenuItems -> GET /api/menu (public)
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	var items []models.MenuItem
	if err := mc.DB.Preload("Restaurant").Find(&items).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetMenuByRestaurant -> GET /api/menu/restaurant/:restaurant_id (public, cached)
func (mc *MenuController) GetMenuByRestaurant(c *gin.Context) {
	rid, _ := strconv.Atoi(c.Param("restaurant_id"))
	key := cache.MenuKey(uint(rid))

	if cached, ok := mc.Cache.Get(c.Request.Context(), key); ok {
		var items []models.MenuItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			utils.RespondJSON(c, http.StatusOK, "Restaurant menu", items)
			return
		}
	}

	var items []models.MenuItem
	if err := mc.DB.Where("restaurant_id = ?", rid).Find(&items).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	if raw, err := json.Marshal(items); err == nil {
		if err := mc.Cache.Set(c.Request.Context(), key, string(raw)); err != nil {
			utils.ErrorLogger.Errorf("cache set failed (%s): %v", key, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant menu", items)
}

// GetMenuItemByID -> GET /api/menu/:id
func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var item models.MenuItem
	if err := mc.DB.Preload("Restaurant").First(&item, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Menu item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// UpdateMenuItem -> PUT /api/menu/:id (owner only)
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	uid, _ := currentUser(c)

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Menu item not found"))
		return
	}

	var rest models.Restaurant
	if err := mc.DB.First(&rest, item.RestaurantID).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}
	if rest.OwnerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("Access denied. Not the owner."))
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Image       *string  `json:"image"`
		Category    *string  `json:"category"`
		Available   *bool    `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Image != nil {
		item.Image = *req.Image
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	mc.invalidate(c, item.RestaurantID)
	emit(mc.Hub, tracking.RestaurantRoom(item.RestaurantID), tracking.EventMenuItemUpdated, item)

	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// DeleteMenuItem -> DELETE /api/menu/:id (owner only)
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	uid, _ := currentUser(c)

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Menu item not found"))
		return
	}

	var rest models.Restaurant
	if err := mc.DB.First(&rest, item.RestaurantID).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}
	if rest.OwnerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("Access denied. Not the owner."))
		return
	}

	if err := mc.DB.Delete(&item).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	mc.invalidate(c, item.RestaurantID)
	emit(mc.Hub, tracking.RestaurantRoom(item.RestaurantID), tracking.EventMenuItemDeleted, gin.H{"id": item.ID})

	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}

func (mc *MenuController) invalidate(c *gin.Context, restaurantID uint) {
	if err := mc.Cache.Del(c.Request.Context(), cache.MenuKey(restaurantID), cache.KeyAllRestaurants); err != nil {
		utils.ErrorLogger.Errorf("cache clear failed (menu for restaurant %d): %v", restaurantID, err)
	}
}
