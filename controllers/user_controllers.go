package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smarteats/backend/apperr"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

var knownRoles = map[string]bool{
	models.RoleCustomer:        true,
	models.RoleRestaurantOwner: true,
	models.RoleDeliveryPartner: true,
	models.RoleAdmin:           true,
}

// Register -> POST /api/auth/register
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !knownRoles[role] {
		utils.RespondAppError(c, apperr.Validation("unknown role"))
		return
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondAppError(c, apperr.Validation("Email already exists"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "User created", gin.H{"user_id": user.ID})
}

// RegisterDeliveryPartner -> POST /api/auth/register/delivery and
// POST /api/delivery/register. Role is forced and the partner starts available.
func (uc *UserController) RegisterDeliveryPartner(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Vehicle  string `json:"vehicle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondAppError(c, apperr.Validation("Email already exists"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	user := models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashed),
		Role:        models.RoleDeliveryPartner,
		Vehicle:     req.Vehicle,
		IsAvailable: true,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Delivery partner registered", user)
}

// Login -> POST /api/auth/login
func (uc *UserController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.RespondAppError(c, apperr.Validation("Invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondAppError(c, apperr.Validation("Invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{"token": token})
}

// GetProfile -> GET /api/auth/profile
func (uc *UserController) GetProfile(c *gin.Context) {
	uid, _ := currentUser(c)

	var user models.User
	if err := uc.DB.First(&user, uid).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("User not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", user)
}
