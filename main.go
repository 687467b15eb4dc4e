package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/smarteats/backend/cache"
	"github.com/smarteats/backend/config"
	"github.com/smarteats/backend/middlewares"
	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/queue"
	"github.com/smarteats/backend/router"
	"github.com/smarteats/backend/tracking"
	"github.com/smarteats/backend/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	hub := tracking.NewHub(db)
	defer hub.Shutdown()

	var pub queue.Publisher
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		pub, err = queue.Dial(url)
		if err != nil {
			utils.ErrorLogger.Errorf("RabbitMQ unavailable, order events disabled: %v", err)
			pub = queue.Nop{}
		}
	} else {
		utils.InfoLogger.Println("RABBITMQ_URL not set, order events disabled")
		pub = queue.Nop{}
	}
	defer pub.Close()

	var ca *cache.Cache
	if url := os.Getenv("REDIS_URL"); url != "" {
		ca, err = cache.New(url)
		if err != nil {
			utils.ErrorLogger.Errorf("Redis unavailable, caching disabled: %v", err)
			ca = nil
		} else {
			defer ca.Close()
		}
	} else {
		utils.InfoLogger.Println("REDIS_URL not set, caching disabled")
	}

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db, hub, pub, ca)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
