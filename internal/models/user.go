package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleOwner  UserRole = "owner"
	RoleRenter UserRole = "renter"
)

type User struct {
	gorm.Model
	Email        string   `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `gorm:"not null"`
	Name         string   `gorm:"size:255"`
	Role         UserRole `gorm:"type:varchar(20);not null"`
	Suspended    bool     `gorm:"not null;default:false"`
	Verified     bool     `gorm:"not null;default:false"`
}
