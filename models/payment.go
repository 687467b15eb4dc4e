package models

import "time"

type Payment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OrderID           uint      `gorm:"not null;index" json:"order_id"`
	Order             Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Amount            float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status            string    `gorm:"type:varchar(20);not null;default:'created'" json:"status"`
	Provider          string    `gorm:"type:varchar(32);not null;default:'mock'" json:"provider"`
	ProviderPaymentID string    `gorm:"type:varchar(64)" json:"provider_payment_id"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}
