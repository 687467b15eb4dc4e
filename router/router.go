package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/smarteats/backend/cache"
	"github.com/smarteats/backend/controllers"
	"github.com/smarteats/backend/middlewares"
	"github.com/smarteats/backend/queue"
	"github.com/smarteats/backend/tracking"
)

func SetupRouter(db *gorm.DB, hub *tracking.Hub, pub queue.Publisher, ca *cache.Cache) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.MetricsMiddleware())

	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db, ca)
	menuCtrl := controllers.NewMenuController(db, ca, hub)
	orderCtrl := controllers.NewOrderController(db, hub, pub)
	deliveryCtrl := controllers.NewDeliveryController(db, hub, pub)
	paymentCtrl := controllers.NewPaymentController(db)
	searchCtrl := controllers.NewSearchController(db)
	adminCtrl := controllers.NewAdminController(db, ca)
	trackingCtrl := controllers.NewTrackingController(hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Token validation happens inside the handler so unauthenticated
	// clients can still watch public rooms.
	r.GET("/ws", trackingCtrl.TrackingHandler)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		limited := auth.Group("/")
		limited.Use(middlewares.NewStrictRateLimiter())
		{
			limited.POST("/register", userCtrl.Register)
			limited.POST("/register/delivery", userCtrl.RegisterDeliveryPartner)
			limited.POST("/login", userCtrl.Login)
		}
		auth.GET("/profile", middlewares.AuthMiddleware(), userCtrl.GetProfile)
	}

	restaurants := api.Group("/restaurants")
	{
		restaurants.GET("", restaurantCtrl.GetAllRestaurants)
		restaurants.GET("/:id", restaurantCtrl.GetRestaurantByID)
		restaurants.POST("", middlewares.AuthMiddleware(), restaurantCtrl.CreateRestaurant)
		restaurants.GET("/my", middlewares.AuthMiddleware(), restaurantCtrl.GetMyRestaurants)
		restaurants.PUT("/:id", middlewares.AuthMiddleware(), restaurantCtrl.UpdateRestaurant)
		restaurants.DELETE("/:id", middlewares.AuthMiddleware(), restaurantCtrl.DeleteRestaurant)
	}

	menu := api.Group("/menu")
	{
		menu.GET("", menuCtrl.GetAllMenuItems)
		menu.GET("/restaurant/:restaurant_id", menuCtrl.GetMenuByRestaurant)
		menu.GET("/:id", menuCtrl.GetMenuItemByID)
		menu.POST("", middlewares.AuthMiddleware(), menuCtrl.CreateMenuItem)
		menu.PUT("/:id", middlewares.AuthMiddleware(), menuCtrl.UpdateMenuItem)
		menu.DELETE("/:id", middlewares.AuthMiddleware(), menuCtrl.DeleteMenuItem)
	}

	orders := api.Group("/orders")
	orders.Use(middlewares.AuthMiddleware())
	{
		orders.POST("", orderCtrl.CreateOrder)
		orders.GET("/my", orderCtrl.GetMyOrders)
		orders.GET("/restaurant/:restaurant_id", orderCtrl.GetRestaurantOrders)
		orders.PUT("/:order_id/status", orderCtrl.UpdateOrderStatus)
		orders.PUT("/:order_id/assign", orderCtrl.AssignOrder)
		orders.PUT("/:order_id/cancel", orderCtrl.CancelOrder)
	}

	delivery := api.Group("/delivery")
	{
		register := delivery.Group("/")
		register.Use(middlewares.NewStrictRateLimiter())
		{
			register.POST("/register", userCtrl.RegisterDeliveryPartner)
		}

		authed := delivery.Group("/")
		authed.Use(middlewares.AuthMiddleware())
		{
			authed.GET("/available", deliveryCtrl.GetAvailablePartners)
			authed.GET("/partners", deliveryCtrl.GetAvailablePartners)
			authed.POST("/auto-assign/:order_id", deliveryCtrl.AutoAssignOrder)
			authed.PUT("/accept/:order_id", deliveryCtrl.AcceptOrder)
			authed.PUT("/complete/:order_id", deliveryCtrl.CompleteOrder)
			authed.PUT("/location", deliveryCtrl.UpdateLocation)
			authed.GET("/orders", deliveryCtrl.GetMyDeliveries)
			authed.GET("/history", deliveryCtrl.GetDeliveryHistory)
		}
	}

	payments := api.Group("/payments")
	payments.Use(middlewares.AuthMiddleware())
	{
		payments.POST("/create", paymentCtrl.CreatePayment)
		payments.POST("/confirm", paymentCtrl.ConfirmPayment)
	}

	api.GET("/search", searchCtrl.Search)

	admin := api.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	{
		admin.GET("/users", adminCtrl.GetAllUsers)
		admin.GET("/restaurants", adminCtrl.GetAllRestaurants)
		admin.PUT("/restaurants/:id/approve", adminCtrl.ApproveRestaurant)
		admin.POST("/cache/clear", adminCtrl.ClearCache)
		admin.GET("/stats", adminCtrl.GetStats)
	}

	return r
}
