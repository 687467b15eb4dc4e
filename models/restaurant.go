package models

import "time"

type Restaurant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Address     string    `gorm:"type:text" json:"address"`
	Description string    `gorm:"type:text" json:"description"`
	Phone       string    `gorm:"type:varchar(32)" json:"phone"`
	ImageUrl    string    `gorm:"type:varchar(255)" json:"image_url"`
	Category    string    `gorm:"type:varchar(64)" json:"category"`
	Timings     string    `gorm:"type:varchar(128)" json:"timings"`
	Approved    bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
