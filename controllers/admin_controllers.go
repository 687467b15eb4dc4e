package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smarteats/backend/apperr"
	"github.com/smarteats/backend/cache"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/utils"
)

type AdminController struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

func NewAdminController(db *gorm.DB, ca *cache.Cache) *AdminController {
	return &AdminController{DB: db, Cache: ca}
}

func requireAdmin(c *gin.Context) bool {
	_, role := currentUser(c)
	if role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return false
	}
	return true
}

// GetAllUsers -> GET /api/admin/users
func (ac *AdminController) GetAllUsers(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var users []models.User
	if err := ac.DB.Find(&users).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", users)
}

// GetAllRestaurants -> GET /api/admin/restaurants
func (ac *AdminController) GetAllRestaurants(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var restaurants []models.Restaurant
	if err := ac.DB.Find(&restaurants).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// ApproveRestaurant -> PUT /api/admin/restaurants/:id/approve.
// Optionally reassigns the owner, promoting them to restaurant_owner.
func (ac *AdminController) ApproveRestaurant(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id, _ := strconv.Atoi(c.Param("id"))

	var restaurant models.Restaurant
	if err := ac.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}

	var req struct {
		OwnerID *uint `json:"owner_id"`
	}
	_ = c.ShouldBindJSON(&req)

	restaurant.Approved = true

	if req.OwnerID != nil {
		var owner models.User
		if err := ac.DB.First(&owner, *req.OwnerID).Error; err != nil {
			utils.RespondAppError(c, apperr.Validation("Owner not found"))
			return
		}
		restaurant.OwnerID = owner.ID
		if owner.Role != models.RoleRestaurantOwner {
			if err := ac.DB.Model(&owner).Update("role", models.RoleRestaurantOwner).Error; err != nil {
				utils.RespondAppError(c, apperr.Server("Server error"))
				return
			}
		}
	}

	if err := ac.DB.Save(&restaurant).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	if err := ac.Cache.Del(c.Request.Context(), cache.KeyAllRestaurants); err != nil {
		utils.ErrorLogger.Errorf("cache clear failed (approve restaurant): %v", err)
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant approved", restaurant)
}

// ClearCache -> POST /api/admin/cache/clear
func (ac *AdminController) ClearCache(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	ctx := c.Request.Context()
	if err := ac.Cache.Del(ctx, cache.KeyAllRestaurants); err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	if err := ac.Cache.DelPattern(ctx, "menu:restaurant:*"); err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "cache cleared", nil)
}

// GetStats -> GET /api/admin/stats (counts by entity and order status)
func (ac *AdminController) GetStats(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var userCount, restaurantCount, orderCount int64
	ac.DB.Model(&models.User{}).Count(&userCount)
	ac.DB.Model(&models.Restaurant{}).Count(&restaurantCount)
	ac.DB.Model(&models.Order{}).Count(&orderCount)

	var byStatus []struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	ac.DB.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&byStatus)

	utils.RespondJSON(c, http.StatusOK, "Platform stats", gin.H{
		"users":            userCount,
		"restaurants":      restaurantCount,
		"orders":           orderCount,
		"orders_by_status": byStatus,
	})
}
