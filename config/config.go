package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Getenv reads key from the environment with a fallback.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the MySQL connection from DB_DSN, or assembles a DSN from the
// discrete DB_* variables when DB_DSN is not set.
func InitDB() (*gorm.DB, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			Getenv("DB_USER", "root"),
			Getenv("DB_PASSWORD", ""),
			Getenv("DB_HOST", "127.0.0.1"),
			Getenv("DB_PORT", "3306"),
			Getenv("DB_NAME", "smarteats"),
		)
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}
