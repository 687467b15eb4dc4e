package models

import "time"

// Roles known to the platform.
const (
	RoleCustomer        = "customer"
	RoleRestaurantOwner = "restaurant_owner"
	RoleDeliveryPartner = "delivery_partner"
	RoleAdmin           = "admin"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Email       string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	Role        string    `gorm:"type:varchar(32);not null;default:'customer'" json:"role"`
	Vehicle     string    `gorm:"type:varchar(64)" json:"vehicle,omitempty"`
	IsAvailable bool      `gorm:"not null;default:false" json:"is_available"`
	CurrentLat  float64   `gorm:"not null;default:0" json:"current_lat"`
	CurrentLng  float64   `gorm:"not null;default:0" json:"current_lng"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
