package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smarteats/backend/apperr"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/queue"
	"github.com/smarteats/backend/tracking"
	"github.com/smarteats/backend/utils"
)

type DeliveryController struct {
	DB    *gorm.DB
	Hub   *tracking.Hub
	Queue queue.Publisher
}

func NewDeliveryController(db *gorm.DB, hub *tracking.Hub, q queue.Publisher) *DeliveryController {
	return &DeliveryController{DB: db, Hub: hub, Queue: q}
}

var errNoPartners = errors.New("no available delivery partners")

// GetAvailablePartners -> GET /api/delivery/available (and /partners alias)
func (dc *DeliveryController) GetAvailablePartners(c *gin.Context) {
	var partners []models.User
	if err := dc.DB.Where("role = ? AND is_available = ?", models.RoleDeliveryPartner, true).
		Find(&partners).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available delivery partners", partners)
}

// claimPartner selects the least-recently-touched available partner and
// marks them unavailable in one conditional update per candidate. Losing the
// compare-and-set means another assigner claimed the same candidate first;
// we simply pick again, so two concurrent auto-assigns can never end up with
// the same partner.
func (dc *DeliveryController) claimPartner() (*models.User, error) {
	for {
		var partner models.User
		err := dc.DB.Where("role = ? AND is_available = ?", models.RoleDeliveryPartner, true).
			Order("updated_at asc").
			First(&partner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoPartners
		}
		if err != nil {
			return nil, err
		}

		res := dc.DB.Model(&models.User{}).
			Where("id = ? AND is_available = ?", partner.ID, true).
			Update("is_available", false)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			partner.IsAvailable = false
			return &partner, nil
		}
	}
}

func (dc *DeliveryController) releasePartner(partnerID uint) {
	if err := dc.DB.Model(&models.User{}).Where("id = ?", partnerID).
		Update("is_available", true).Error; err != nil {
		utils.ErrorLogger.Errorf("partner %d availability release failed: %v", partnerID, err)
	}
}

// AutoAssignOrder -> POST /api/delivery/auto-assign/:order_id.
// Admin or restaurant owner only. Picks the oldest-updated available partner,
// an approximation of round-robin fairness rather than proximity.
func (dc *DeliveryController) AutoAssignOrder(c *gin.Context) {
	_, role := currentUser(c)
	if role != models.RoleAdmin && role != models.RoleRestaurantOwner {
		utils.RespondAppError(c, apperr.Forbidden("Only admin or restaurant owner can auto-assign"))
		return
	}

	id, _ := strconv.Atoi(c.Param("order_id"))

	var order models.Order
	if err := dc.DB.First(&order, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Order not found"))
		return
	}
	if models.ParseStatus(order.Status) == models.StatusCompleted {
		utils.RespondAppError(c, apperr.Conflict("Order already completed"))
		return
	}
	if order.AssignedToID != nil {
		utils.RespondAppError(c, apperr.Conflict("Order already assigned"))
		return
	}

	partner, err := dc.claimPartner()
	if errors.Is(err, errNoPartners) {
		utils.RespondAppError(c, apperr.Conflict("No available delivery partners"))
		return
	}
	if err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	order.AssignedToID = &partner.ID
	order.Status = models.StatusAssigned.String()
	if err := dc.DB.Save(&order).Error; err != nil {
		dc.releasePartner(partner.ID)
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	emit(dc.Hub, tracking.OrderRoom(order.ID), tracking.EventOrderUpdate, orderUpdatePayload(&order))
	emit(dc.Hub, tracking.PartnerRoom(partner.ID), tracking.EventOrderAssigned, gin.H{
		"orderId":         order.ID,
		"restaurantId":    order.RestaurantID,
		"totalPrice":      order.TotalPrice,
		"deliveryAddress": order.DeliveryAddress,
	})
	publish(dc.Queue, queue.Event{
		Type:              queue.EventOrderAutoAssigned,
		OrderID:           order.ID,
		DeliveryPartnerID: partner.ID,
	})

	utils.RespondJSON(c, http.StatusOK, "Order auto-assigned", gin.H{
		"order": order,
		"partner": gin.H{
			"id":      partner.ID,
			"name":    partner.Name,
			"email":   partner.Email,
			"vehicle": partner.Vehicle,
		},
	})
}

// AcceptOrder -> PUT /api/delivery/accept/:order_id.
// A partner taking an order commits to immediate pickup, so the assigned
// intermediate state is skipped and the order goes straight out for delivery.
func (dc *DeliveryController) AcceptOrder(c *gin.Context) {
	uid, role := currentUser(c)
	if role != models.RoleDeliveryPartner {
		utils.RespondAppError(c, apperr.Forbidden("Delivery partner only"))
		return
	}

	id, _ := strconv.Atoi(c.Param("order_id"))

	var order models.Order
	if err := dc.DB.First(&order, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Order not found"))
		return
	}
	if models.ParseStatus(order.Status) == models.StatusCompleted {
		utils.RespondAppError(c, apperr.Conflict("Order already completed"))
		return
	}
	if order.AssignedToID != nil && *order.AssignedToID != uid {
		utils.RespondAppError(c, apperr.Conflict("Order already assigned"))
		return
	}

	order.AssignedToID = &uid
	order.Status = models.StatusOutForDelivery.String()
	if err := dc.DB.Save(&order).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	if err := dc.DB.Model(&models.User{}).Where("id = ?", uid).
		Update("is_available", false).Error; err != nil {
		utils.ErrorLogger.Errorf("partner %d availability update failed (accept): %v", uid, err)
	}

	emit(dc.Hub, tracking.OrderRoom(order.ID), tracking.EventOrderUpdate, orderUpdatePayload(&order))
	publish(dc.Queue, queue.Event{
		Type:              queue.EventOrderAccepted,
		OrderID:           order.ID,
		DeliveryPartnerID: uid,
	})

	utils.RespondJSON(c, http.StatusOK, "Order accepted", order)
}

// CompleteOrder -> PUT /api/delivery/complete/:order_id.
// Only the assigned partner may complete. The order save is authoritative:
// if returning the partner to the pool fails afterwards the request still
// succeeds and the failure is only logged.
func (dc *DeliveryController) CompleteOrder(c *gin.Context) {
	uid, role := currentUser(c)
	if role != models.RoleDeliveryPartner {
		utils.RespondAppError(c, apperr.Forbidden("Delivery partner only"))
		return
	}

	id, _ := strconv.Atoi(c.Param("order_id"))

	var order models.Order
	if err := dc.DB.First(&order, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Order not found"))
		return
	}
	if !order.IsAssignedTo(uid) {
		utils.RespondAppError(c, apperr.Forbidden("You are not assigned to this order"))
		return
	}

	order.Status = models.StatusCompleted.String()
	if err := dc.DB.Save(&order).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Failed to save order"))
		return
	}

	if err := dc.DB.Model(&models.User{}).Where("id = ?", uid).
		Update("is_available", true).Error; err != nil {
		utils.ErrorLogger.Errorf("partner %d availability update failed (complete): %v", uid, err)
	}

	emit(dc.Hub, tracking.OrderRoom(order.ID), tracking.EventOrderUpdate, orderUpdatePayload(&order))
	publish(dc.Queue, queue.Event{
		Type:              queue.EventOrderCompleted,
		OrderID:           order.ID,
		DeliveryPartnerID: uid,
	})

	utils.RespondJSON(c, http.StatusOK, "Order marked as delivered", order)
}

// UpdateLocation -> PUT /api/delivery/location.
// HTTP variant for the partner's resting position; live per-order tracking
// goes through the websocket location:update event instead.
func (dc *DeliveryController) UpdateLocation(c *gin.Context) {
	uid, role := currentUser(c)
	if role != models.RoleDeliveryPartner {
		utils.RespondAppError(c, apperr.Forbidden("Delivery partner only"))
		return
	}

	var req struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		utils.RespondAppError(c, apperr.Validation("lat and lng numeric required"))
		return
	}

	if err := dc.DB.Model(&models.User{}).Where("id = ?", uid).Updates(map[string]interface{}{
		"current_lat": *req.Lat,
		"current_lng": *req.Lng,
	}).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	emit(dc.Hub, tracking.PartnerRoom(uid), tracking.EventPartnerLocation, gin.H{
		"partnerId": uid,
		"lat":       *req.Lat,
		"lng":       *req.Lng,
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})

	utils.RespondJSON(c, http.StatusOK, "Location updated", nil)
}

// GetMyDeliveries -> GET /api/delivery/orders (active assignments)
func (dc *DeliveryController) GetMyDeliveries(c *gin.Context) {
	uid, role := currentUser(c)
	if role != models.RoleDeliveryPartner {
		utils.RespondAppError(c, apperr.Forbidden("Delivery partner only"))
		return
	}

	var orders []models.Order
	if err := dc.DB.Preload("Restaurant").
		Where("assigned_to_id = ? AND status <> ?", uid, models.StatusCompleted.String()).
		Order("updated_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active deliveries", orders)
}

// GetDeliveryHistory -> GET /api/delivery/history (completed, capped at 200)
func (dc *DeliveryController) GetDeliveryHistory(c *gin.Context) {
	uid, role := currentUser(c)
	if role != models.RoleDeliveryPartner {
		utils.RespondAppError(c, apperr.Forbidden("Delivery partner only"))
		return
	}

	var orders []models.Order
	if err := dc.DB.Preload("Restaurant").
		Where("assigned_to_id = ? AND status = ?", uid, models.StatusCompleted.String()).
		Order("updated_at desc").
		Limit(200).
		Find(&orders).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery history", orders)
}
