package model

import (
	"time"
)

type UserRole string // role granted to an account

const (
	RoleUser       UserRole = "USER"        // regular rater
	RoleStoreOwner UserRole = "STORE_OWNER" // owns one or more stores
	RoleAdmin      UserRole = "ADMIN"       // platform administrator
)

// ValidRole reports whether s is one of the known roles
func ValidRole(s string) bool {
	switch UserRole(s) {
	case RoleUser, RoleStoreOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Address      string    `gorm:"type:varchar(400)" json:"address"`
	Role         UserRole  `gorm:"type:varchar(20);default:'USER';index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Stores owned by this user; only meaningful for STORE_OWNER accounts
	Stores []Store `gorm:"foreignKey:OwnerID" json:"stores,omitempty"`
}

func (User) TableName() string {
	return "users"
}
