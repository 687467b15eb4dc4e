package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smarteats/backend/apperr"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/queue"
	"github.com/smarteats/backend/tracking"
	"github.com/smarteats/backend/utils"
)

type OrderController struct {
	DB    *gorm.DB
	Hub   *tracking.Hub
	Queue queue.Publisher
}

func NewOrderController(db *gorm.DB, hub *tracking.Hub, q queue.Publisher) *OrderController {
	return &OrderController{DB: db, Hub: hub, Queue: q}
}

// orderUpdatePayload is the order:update wire shape.
func orderUpdatePayload(o *models.Order) gin.H {
	return gin.H{
		"orderId":    o.ID,
		"status":     o.Status,
		"assignedTo": o.AssignedToID,
		"updatedAt":  o.UpdatedAt,
	}
}

// CreateOrder -> POST /api/orders (customer).
// Item names and prices are snapshotted from the live catalog; the total is
// computed once here and never recomputed afterwards.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	uid, _ := currentUser(c)

	var req struct {
		Restaurant      uint `json:"restaurant"`
		Items           []struct {
			MenuItem uint `json:"menu_item"`
			Qty      int  `json:"qty"`
		} `json:"items"`
		DeliveryAddress string `json:"delivery_address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Restaurant == 0 || len(req.Items) == 0 || strings.TrimSpace(req.DeliveryAddress) == "" {
		utils.RespondAppError(c, apperr.Validation("restaurant, items & delivery_address required"))
		return
	}

	var rest models.Restaurant
	if err := oc.DB.First(&rest, req.Restaurant).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}

	var total float64
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		var menu models.MenuItem
		if err := oc.DB.First(&menu, it.MenuItem).Error; err != nil {
			utils.RespondAppError(c, apperr.Validation("Invalid menu item"))
			return
		}

		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		total += menu.Price * float64(qty)

		orderItems = append(orderItems, models.OrderItem{
			MenuItemID: menu.ID,
			Name:       menu.Name,
			Price:      menu.Price,
			Qty:        qty,
		})
	}

	order := models.Order{
		RestaurantID:    req.Restaurant,
		CustomerID:      uid,
		Items:           orderItems,
		TotalPrice:      total,
		DeliveryAddress: req.DeliveryAddress,
		Status:          models.StatusPending.String(),
	}
	if err := oc.DB.Create(&order).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	publish(oc.Queue, queue.Event{
		Type:         queue.EventOrderCreated,
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		RestaurantID: order.RestaurantID,
		TotalPrice:   order.TotalPrice,
	})
	emit(oc.Hub, tracking.OrderRoom(order.ID), tracking.EventOrderUpdate, orderUpdatePayload(&order))

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetMyOrders -> GET /api/orders/my (customer)
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	uid, _ := currentUser(c)

	var orders []models.Order
	if err := oc.DB.Preload("Restaurant").Preload("Items").
		Where("customer_id = ?", uid).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My orders", orders)
}

// GetRestaurantOrders -> GET /api/orders/restaurant/:restaurant_id (owner only)
func (oc *OrderController) GetRestaurantOrders(c *gin.Context) {
	rid, _ := strconv.Atoi(c.Param("restaurant_id"))
	uid, _ := currentUser(c)

	var rest models.Restaurant
	if err := oc.DB.First(&rest, rid).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Restaurant not found"))
		return
	}
	if rest.OwnerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("Access denied"))
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("Customer").Preload("Items").
		Where("restaurant_id = ?", rid).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant orders", orders)
}

// UpdateOrderStatus -> PUT /api/orders/:order_id/status.
// Allowed for the restaurant owner or the currently assigned partner. The
// requested token is normalized (hyphens to underscores) and must be in the
// canonical set; the transition graph itself is deliberately not enforced,
// admin flows depend on being able to jump states.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	uid, _ := currentUser(c)

	var order models.Order
	if err := oc.DB.Preload("Restaurant").First(&order, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Order not found"))
		return
	}

	isOwner := order.Restaurant.OwnerID == uid
	if !isOwner && !order.IsAssignedTo(uid) {
		utils.RespondAppError(c, apperr.Forbidden("Access denied"))
		return
	}

	var req struct {
		Status     string `json:"status"`
		AssignedTo *uint  `json:"assigned_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Status != "" {
		parsed := models.ParseStatus(req.Status)
		if parsed == models.StatusUnrecognized {
			utils.RespondAppError(c, apperr.Validation("invalid status value"))
			return
		}
		order.Status = parsed.String()
	}

	// owner may move the assignment in the same call
	if req.AssignedTo != nil {
		order.AssignedToID = req.AssignedTo
	}

	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	emit(oc.Hub, tracking.OrderRoom(order.ID), tracking.EventOrderUpdate, orderUpdatePayload(&order))

	utils.RespondJSON(c, http.StatusOK, "Status updated", order)
}

// AssignOrder -> PUT /api/orders/:order_id/assign (owner picks the partner)
func (oc *OrderController) AssignOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	uid, _ := currentUser(c)

	var order models.Order
	if err := oc.DB.Preload("Restaurant").First(&order, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Order not found"))
		return
	}
	if order.Restaurant.OwnerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("Not allowed"))
		return
	}

	var req struct {
		AssignedTo uint `json:"assigned_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AssignedTo == 0 {
		utils.RespondAppError(c, apperr.Validation("assigned_to (user id) required"))
		return
	}

	var partner models.User
	if err := oc.DB.First(&partner, req.AssignedTo).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Delivery partner not found"))
		return
	}
	if partner.Role != models.RoleDeliveryPartner {
		utils.RespondAppError(c, apperr.Validation("user is not a delivery partner"))
		return
	}

	order.AssignedToID = &partner.ID
	order.Status = models.StatusAssigned.String()
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	// secondary effect; the assignment stands even if this write fails
	if err := oc.DB.Model(&models.User{}).Where("id = ?", partner.ID).
		Update("is_available", false).Error; err != nil {
		utils.ErrorLogger.Errorf("partner %d availability update failed (assign): %v", partner.ID, err)
	}

	emit(oc.Hub, tracking.PartnerRoom(partner.ID), tracking.EventOrderAssigned, gin.H{
		"orderId":         order.ID,
		"restaurantId":    order.RestaurantID,
		"totalPrice":      order.TotalPrice,
		"deliveryAddress": order.DeliveryAddress,
	})
	emit(oc.Hub, tracking.OrderRoom(order.ID), tracking.EventOrderUpdate, orderUpdatePayload(&order))

	publish(oc.Queue, queue.Event{
		Type:              queue.EventOrderManualAssigned,
		OrderID:           order.ID,
		DeliveryPartnerID: partner.ID,
	})

	utils.RespondJSON(c, http.StatusOK, "Order assigned", order)
}

// CancelOrder -> PUT /api/orders/:order_id/cancel (customer, pending only).
// The window closes as soon as any party has acted on the order.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	uid, _ := currentUser(c)

	var order models.Order
	if err := oc.DB.Preload("Restaurant").First(&order, id).Error; err != nil {
		utils.RespondAppError(c, apperr.NotFound("Order not found"))
		return
	}
	if order.CustomerID != uid {
		utils.RespondAppError(c, apperr.Forbidden("Not allowed to cancel this order"))
		return
	}
	if models.ParseStatus(order.Status) != models.StatusPending {
		utils.RespondAppError(c, apperr.Conflict("Order cannot be cancelled at this stage"))
		return
	}

	order.Status = models.StatusCancelled.String()
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondAppError(c, apperr.Server("Server error"))
		return
	}

	emit(oc.Hub, tracking.OrderRoom(order.ID), tracking.EventOrderUpdate, orderUpdatePayload(&order))
	emit(oc.Hub, tracking.RestaurantRoom(order.RestaurantID), tracking.EventOrderByCustomer, gin.H{
		"orderId": order.ID,
		"status":  order.Status,
	})

	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}
