package models

import (
	"time"

	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// VerificationRequest is an identity check a renter submits before their
// first booking. DocumentRef points at the uploaded document in external
// storage; the file itself never passes through this service.
type VerificationRequest struct {
	gorm.Model
	UserID uint `gorm:"index;not null"`
	User   User

	DocumentRef string             `gorm:"size:512;not null"`
	Status      VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ReviewedBy  *uint
	ReviewedAt  *time.Time
	Note        string `gorm:"type:text"`
}
