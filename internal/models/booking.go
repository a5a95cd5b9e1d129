package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRejected  BookingStatus = "rejected"
)

type Booking struct {
	gorm.Model
	ListingID uint `gorm:"index;not null"`
	Listing   Listing
	RenterID  uint `gorm:"index;not null"`
	Renter    User

	StartDate  time.Time     `gorm:"not null"`
	EndDate    time.Time     `gorm:"not null"`
	TotalCents int64         `gorm:"not null"`
	Status     BookingStatus `gorm:"type:varchar(20);not null;default:'pending'"`

	// Stamped once by the policy binder at creation; nil on legacy rows.
	// The <-:create permission means gorm will never include this column
	// in an UPDATE, so republishing a policy cannot touch it.
	PlatformPolicyVersionAccepted *int `gorm:"<-:create"`
}
