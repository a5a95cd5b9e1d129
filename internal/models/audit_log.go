package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	ActionUserRegistered        AuditAction = "USER_REGISTERED"
	ActionUserSuspended         AuditAction = "USER_SUSPENDED"
	ActionUserReinstated        AuditAction = "USER_REINSTATED"
	ActionListingCreated        AuditAction = "LISTING_CREATED"
	ActionListingUpdated        AuditAction = "LISTING_UPDATED"
	ActionListingStatusChanged  AuditAction = "LISTING_STATUS_CHANGED"
	ActionBookingCreated        AuditAction = "BOOKING_CREATED"
	ActionBookingStatusChanged  AuditAction = "BOOKING_STATUS_CHANGED"
	ActionReviewCreated         AuditAction = "REVIEW_CREATED"
	ActionVerificationSubmitted AuditAction = "VERIFICATION_SUBMITTED"
	ActionVerificationApproved  AuditAction = "VERIFICATION_APPROVED"
	ActionVerificationRejected  AuditAction = "VERIFICATION_REJECTED"
	ActionPolicyUpdated         AuditAction = "POLICY_UPDATED"
)

type AuditTargetType string

const (
	TargetUser         AuditTargetType = "user"
	TargetListing      AuditTargetType = "listing"
	TargetBooking      AuditTargetType = "booking"
	TargetReview       AuditTargetType = "review"
	TargetVerification AuditTargetType = "verification"
	TargetPolicy       AuditTargetType = "policy"
)

// AuditLog is one immutable record of a state-changing domain event.
// Actor fields are nil/empty for system-triggered events (seeding, jobs).
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	Action      AuditAction `gorm:"type:varchar(50);not null;index"`
	Description string      `gorm:"type:text;not null"`

	ActorID    *uint  `gorm:"index"`
	ActorEmail string `gorm:"size:255"`
	ActorRole  string `gorm:"size:20"`

	TargetType AuditTargetType `gorm:"type:varchar(30);not null;index:idx_audit_target,priority:1"`
	TargetID   string          `gorm:"size:64;not null;index:idx_audit_target,priority:2"`

	TargetUserID *uint
	ListingID    *uint
	BookingID    *uint

	PreviousValue datatypes.JSON `gorm:"type:jsonb"`
	NewValue      datatypes.JSON `gorm:"type:jsonb"`
	Metadata      datatypes.JSON `gorm:"type:jsonb"`

	IPAddress string `gorm:"size:64;not null;default:'unknown'"`
	UserAgent string `gorm:"size:512;not null;default:'unknown'"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
