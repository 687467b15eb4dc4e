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
	"github.com/smarteats/backend/utils"
)

type RestaurantController struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

func NewRestaurantController(db *gorm.DB, ca *cache.Cache) *RestaurantController {
	return &RestaurantController{DB: db, Cache: ca}
}

// CreateRestaurant -> POST /api/restaurants (authenticated user becomes owner)
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	uid, _ := currentUser(c)

	var req struct {
		Name        string `json:"name" binding:"required"`
		Address     string `json:"address"`
		Description string `json:"description"`
		Phone       string `json:"phone"`
		ImageUrl    string `json:"image_url"`
		Category    string `json:"category"`
		Timings     string `json:"timings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{
		OwnerID:     uid,
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Phone:       req.Phone,
		ImageUrl:    req.ImageUrl,
		Category:    req.Category,
		Timings:     req.Timings,
	}
	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	rc.invalidate(c, restaurant.ID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// GetAllRestaurants -> GET /api/restaurants (public, read-through cache)
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	if cached, ok := rc.Cache.Get(c.Request.Context(), cache.KeyAllRestaurants); ok {
		var restaurants []models.Restaurant
		if err := json.Unmarshal([]byte(cached), &restaurants); err == nil {
			utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
			return
		}
	}

	var restaurants []models.Restaurant
	if err := rc.DB.Preload("Owner").Find(&restaurants).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	if raw, err := json.Marshal(restaurants); err == nil {
		if err := rc.Cache.Set(c.Request.Context(), cache.KeyAllRestaurants, string(raw)); err != nil {
			utils.ErrorLogger.Errorf("cache set failed (restaurants:all): %v", err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetMyRestaurants -> GET /api/restaurants/my
func (rc *RestaurantController) GetMyRestaurants(c *gin.Context) {
	uid, _ := currentUser(c)

	var restaurants []models.Restaurant
	if err := rc.DB.Where("owner_id = ?", uid).Find(&restaurants).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My restaurants", restaurants)
}

// GetRestaurantByID -> GET /api/restaurants/:id
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var restaurant models.Restaurant
	if err := rc.DB.Preload("Owner").First(&restaurant, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// UpdateRestaurant -> PUT /api/restaurants/:id (owner only, whitelisted fields)
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	uid, _ := currentUser(c)

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}
	if restaurant.OwnerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("Access denied. Not the owner."))
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Address     *string `json:"address"`
		Phone       *string `json:"phone"`
		Timings     *string `json:"timings"`
		ImageUrl    *string `json:"image_url"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Address != nil {
		restaurant.Address = *req.Address
	}
	if req.Phone != nil {
		restaurant.Phone = *req.Phone
	}
	if req.Timings != nil {
		restaurant.Timings = *req.Timings
	}
	if req.ImageUrl != nil {
		restaurant.ImageUrl = *req.ImageUrl
	}
	if req.Category != nil {
		restaurant.Category = *req.Category
	}
	if req.Description != nil {
		restaurant.Description = *req.Description
	}

	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	rc.invalidate(c, restaurant.ID)
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

// DeleteRestaurant -> DELETE /api/restaurants/:id (owner only)
func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	uid, _ := currentUser(c)

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}
	if restaurant.OwnerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("Access denied. Not the owner."))
		return
	}

	if err := rc.DB.Delete(&restaurant).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	rc.invalidate(c, restaurant.ID)
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", nil)
}

func (rc *RestaurantController) invalidate(c *gin.Context, restaurantID uint) {
	if err := rc.Cache.Del(c.Request.Context(), cache.KeyAllRestaurants, cache.MenuKey(restaurantID)); err != nil {
		utils.ErrorLogger.Errorf("cache clear failed (restaurant %d): %v", restaurantID, err)
	}
}
