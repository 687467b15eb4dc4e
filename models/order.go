package models

import "time"

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	RestaurantID    uint        `gorm:"not null;index" json:"restaurant_id"`
	Restaurant      Restaurant  `gorm:"foreignKey:RestaurantID" json:"restaurant"`
	CustomerID      uint        `gorm:"not null;index" json:"customer_id"`
	Customer        User        `gorm:"foreignKey:CustomerID" json:"customer"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalPrice      float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_price"`
	DeliveryAddress string      `gorm:"type:text" json:"delivery_address"`
	AssignedToID    *uint       `gorm:"index" json:"assigned_to,omitempty"`
	AssignedTo      *User       `gorm:"foreignKey:AssignedToID" json:"assigned_partner,omitempty"`
	Status          string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus   string      `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	CreatedAt       time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`
}

// IsAssignedTo reports whether userID is the partner currently holding the order.
func (o *Order) IsAssignedTo(userID uint) bool {
	return o.AssignedToID != nil && *o.AssignedToID == userID
}
