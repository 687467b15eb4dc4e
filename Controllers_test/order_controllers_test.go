package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smarteats/backend/controllers"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/queue"
	"github.com/smarteats/backend/tracking"
	"github.com/smarteats/backend/utils"
)

func setupTestDBForOrders() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:orders_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(&models.User{}, &models.Restaurant{}, &models.MenuItem{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		panic(err)
	}
	db.Exec("DELETE FROM orders")
	db.Exec("DELETE FROM order_items")
	db.Exec("DELETE FROM menu_items")
	db.Exec("DELETE FROM restaurants")
	db.Exec("DELETE FROM users")
	db.Exec("DELETE FROM sqlite_sequence")

	owner := models.User{Name: "Owner", Email: "owner@test.com", Password: "x", Role: models.RoleRestaurantOwner}
	db.Create(&owner)
	customer := models.User{Name: "Customer", Email: "customer@test.com", Password: "x", Role: models.RoleCustomer}
	db.Create(&customer)
	partner := models.User{Name: "Partner", Email: "partner@test.com", Password: "x", Role: models.RoleDeliveryPartner, IsAvailable: true}
	db.Create(&partner)

	rest := models.Restaurant{OwnerID: owner.ID, Name: "Test Kitchen", Address: "1 Main St", Approved: true}
	db.Create(&rest)

	dosa := models.MenuItem{RestaurantID: rest.ID, Name: "Masala Dosa", Price: 100.0, Available: true}
	db.Create(&dosa)
	chai := models.MenuItem{RestaurantID: rest.ID, Name: "Chai", Price: 50.0, Available: true}
	db.Create(&chai)

	return db
}

// actAs mimics the auth middleware for a fixed identity.
func actAs(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func setupOrderRouter(db *gorm.DB, userID uint, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db, tracking.NewHub(db), queue.Nop{})
	auth := router.Group("/", actAs(userID, role))
	auth.POST("/orders", orderCtrl.CreateOrder)
	auth.GET("/orders/my", orderCtrl.GetMyOrders)
	auth.GET("/orders/restaurant/:restaurant_id", orderCtrl.GetRestaurantOrders)
	auth.PUT("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	auth.PUT("/orders/:order_id/assign", orderCtrl.AssignOrder)
	auth.PUT("/orders/:order_id/cancel", orderCtrl.CancelOrder)
	return router
}

func postJSON(router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateOrderComputesTotal(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)
	router := setupOrderRouter(db, customer.ID, models.RoleCustomer)

	payload := map[string]interface{}{
		"restaurant": 1,
		"items": []map[string]interface{}{
			{"menu_item": 1, "qty": 2},
			{"menu_item": 2, "qty": 1},
		},
		"delivery_address": "42 Elm Street",
	}
	w := postJSON(router, "POST", "/orders", payload)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Order created", resp["message"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 250.0, data["total_price"])
	assert.Equal(t, "pending", data["status"])
	items := data["items"].([]interface{})
	assert.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Masala Dosa", first["name"])
	assert.Equal(t, 100.0, first["price"])
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)
	router := setupOrderRouter(db, customer.ID, models.RoleCustomer)

	payload := map[string]interface{}{
		"restaurant":       1,
		"items":            []map[string]interface{}{},
		"delivery_address": "42 Elm Street",
	}
	w := postJSON(router, "POST", "/orders", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderUnknownRestaurant(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)
	router := setupOrderRouter(db, customer.ID, models.RoleCustomer)

	payload := map[string]interface{}{
		"restaurant":       999,
		"items":            []map[string]interface{}{{"menu_item": 1, "qty": 1}},
		"delivery_address": "42 Elm Street",
	}
	w := postJSON(router, "POST", "/orders", payload)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOrderStatusByOwner(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var owner, customer models.User
	db.Where("role = ?", models.RoleRestaurantOwner).First(&owner)
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	order := models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"}
	db.Create(&order)

	router := setupOrderRouter(db, owner.ID, models.RoleRestaurantOwner)

	// hyphenated tokens are accepted and normalized
	w := postJSON(router, "PUT", "/orders/"+strconv.Itoa(int(order.ID))+"/status",
		map[string]interface{}{"status": "out-for-delivery"})

	assert.Equal(t, http.StatusOK, w.Code)
	var updated models.Order
	db.First(&updated, order.ID)
	assert.Equal(t, "out_for_delivery", updated.Status)
}

func TestUpdateOrderStatusRejectsUnknownToken(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var owner, customer models.User
	db.Where("role = ?", models.RoleRestaurantOwner).First(&owner)
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	order := models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"}
	db.Create(&order)

	router := setupOrderRouter(db, owner.ID, models.RoleRestaurantOwner)
	w := postJSON(router, "PUT", "/orders/"+strconv.Itoa(int(order.ID))+"/status",
		map[string]interface{}{"status": "shipped"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var untouched models.Order
	db.First(&untouched, order.ID)
	assert.Equal(t, "pending", untouched.Status)
}

func TestUpdateOrderStatusForbiddenForStranger(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	order := models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"}
	db.Create(&order)

	// the customer is neither the owner nor the assigned partner
	router := setupOrderRouter(db, customer.ID, models.RoleCustomer)
	w := postJSON(router, "PUT", "/orders/"+strconv.Itoa(int(order.ID))+"/status",
		map[string]interface{}{"status": "preparing"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignOrderByOwner(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var owner, customer, partner models.User
	db.Where("role = ?", models.RoleRestaurantOwner).First(&owner)
	db.Where("role = ?", models.RoleCustomer).First(&customer)
	db.Where("role = ?", models.RoleDeliveryPartner).First(&partner)

	order := models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"}
	db.Create(&order)

	router := setupOrderRouter(db, owner.ID, models.RoleRestaurantOwner)
	w := postJSON(router, "PUT", "/orders/"+strconv.Itoa(int(order.ID))+"/assign",
		map[string]interface{}{"assigned_to": partner.ID})

	assert.Equal(t, http.StatusOK, w.Code)
	var updated models.Order
	db.First(&updated, order.ID)
	assert.Equal(t, "assigned", updated.Status)
	if assert.NotNil(t, updated.AssignedToID) {
		assert.Equal(t, partner.ID, *updated.AssignedToID)
	}

	var p models.User
	db.First(&p, partner.ID)
	assert.False(t, p.IsAvailable)
}

func TestAssignOrderRejectsNonPartner(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var owner, customer models.User
	db.Where("role = ?", models.RoleRestaurantOwner).First(&owner)
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	order := models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"}
	db.Create(&order)

	router := setupOrderRouter(db, owner.ID, models.RoleRestaurantOwner)
	w := postJSON(router, "PUT", "/orders/"+strconv.Itoa(int(order.ID))+"/assign",
		map[string]interface{}{"assigned_to": customer.ID})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelPendingOrder(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	order := models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"}
	db.Create(&order)

	router := setupOrderRouter(db, customer.ID, models.RoleCustomer)
	w := postJSON(router, "PUT", "/orders/"+strconv.Itoa(int(order.ID))+"/cancel", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var updated models.Order
	db.First(&updated, order.ID)
	assert.Equal(t, "cancelled", updated.Status)
	assert.Nil(t, updated.AssignedToID)
}

func TestCancelRejectedOncePreparing(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	order := models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "preparing"}
	db.Create(&order)

	router := setupOrderRouter(db, customer.ID, models.RoleCustomer)
	w := postJSON(router, "PUT", "/orders/"+strconv.Itoa(int(order.ID))+"/cancel", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Order cannot be cancelled at this stage", resp["message"])
}

func TestCancelRejectedForOtherCustomer(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer, partner models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)
	db.Where("role = ?", models.RoleDeliveryPartner).First(&partner)

	order := models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"}
	db.Create(&order)

	// a different user must not be able to cancel
	router := setupOrderRouter(db, partner.ID, models.RoleDeliveryPartner)
	w := postJSON(router, "PUT", "/orders/"+strconv.Itoa(int(order.ID))+"/cancel", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// brokenQueue always fails, standing in for an unreachable broker.
type brokenQueue struct{}

func (brokenQueue) Publish(context.Context, queue.Event) error { return errors.New("broker down") }
func (brokenQueue) Close() error                               { return nil }

func TestCreateOrderPublishFailureIsLoggedNotFatal(t *testing.T) {
	utils.InitLogger()
	hook := logrustest.NewLocal(utils.ErrorLogger)

	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db, tracking.NewHub(db), brokenQueue{})
	router.POST("/orders", actAs(customer.ID, models.RoleCustomer), orderCtrl.CreateOrder)

	w := postJSON(router, "POST", "/orders", map[string]interface{}{
		"restaurant":       1,
		"items":            []map[string]interface{}{{"menu_item": 1, "qty": 1}},
		"delivery_address": "42 Elm Street",
	})

	// the broker failure never decides the request
	assert.Equal(t, http.StatusCreated, w.Code)

	// but it must show up in the error log despite the level filter
	logged := false
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.ErrorLevel && strings.Contains(e.Message, "queue publish failed") {
			logged = true
		}
	}
	assert.True(t, logged, "failed publish should be logged at error level")
}

func TestGetRestaurantOrdersAsOwner(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var owner, customer models.User
	db.Where("role = ?", models.RoleRestaurantOwner).First(&owner)
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	db.Create(&models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"})
	db.Create(&models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 200, DeliveryAddress: "y", Status: "preparing"})

	router := setupOrderRouter(db, owner.ID, models.RoleRestaurantOwner)
	w := postJSON(router, "GET", "/orders/restaurant/1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Restaurant orders", resp["message"])
	assert.Len(t, resp["data"].([]interface{}), 2)
}

func TestGetRestaurantOrdersForbiddenForNonOwner(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	db.Create(&models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"})

	router := setupOrderRouter(db, customer.ID, models.RoleCustomer)
	w := postJSON(router, "GET", "/orders/restaurant/1", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Access denied", resp["message"])
}

func TestGetMyOrders(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()

	var customer models.User
	db.Where("role = ?", models.RoleCustomer).First(&customer)

	db.Create(&models.Order{RestaurantID: 1, CustomerID: customer.ID, TotalPrice: 100, DeliveryAddress: "x", Status: "pending"})
	db.Create(&models.Order{RestaurantID: 1, CustomerID: customer.ID + 100, TotalPrice: 50, DeliveryAddress: "y", Status: "pending"})

	router := setupOrderRouter(db, customer.ID, models.RoleCustomer)
	w := postJSON(router, "GET", "/orders/my", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	orders := resp["data"].([]interface{})
	assert.Len(t, orders, 1)
}
