package models

import "time"

// User owns products. Users are provisioned outside this service.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null;default:''"`
	Products  []Product `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) TableName() string {
	return "users"
}
