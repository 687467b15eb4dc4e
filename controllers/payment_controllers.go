package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smarteats/backend/apperr"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/utils"
)

// PaymentController is the mock provider flow: a payment record is created
// against an order and later confirmed or failed by the customer.
type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// CreatePayment -> POST /api/payments/create
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	uid, _ := currentUser(c)

	var req struct {
		OrderID uint `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := pc.DB.First(&order, req.OrderID).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Order not found"))
		return
	}
	if order.CustomerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("You can only pay for your own orders"))
		return
	}

	payment := models.Payment{
		OrderID:           order.ID,
		Amount:            order.TotalPrice,
		Status:            "created",
		Provider:          "mock",
		ProviderPaymentID: fmt.Sprintf("mock_pay_%d", time.Now().UnixMilli()),
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Payment created (mock)", payment)
}

// ConfirmPayment -> POST /api/payments/confirm
func (pc *PaymentController) ConfirmPayment(c *gin.Context) {
	uid, _ := currentUser(c)

	var req struct {
		PaymentID uint  `json:"payment_id" binding:"required"`
		Success   *bool `json:"success" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var payment models.Payment
	if err := pc.DB.Preload("Order").First(&payment, req.PaymentID).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Payment not found"))
		return
	}
	if payment.Order.CustomerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("You can only confirm your own payments"))
		return
	}

	if *req.Success {
		payment.Status = "success"
		payment.Order.PaymentStatus = "paid"
	} else {
		payment.Status = "failed"
		payment.Order.PaymentStatus = "failed"
	}

	if err := pc.DB.Save(&payment).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	if err := pc.DB.Save(&payment.Order).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	msg := "Payment marked as success"
	if !*req.Success {
		msg = "Payment marked as failed"
	}
	utils.RespondJSON(c, http.StatusOK, msg, gin.H{"payment": payment, "order": payment.Order})
}
