package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model
	BookingID uint `gorm:"uniqueIndex;not null"`
	Booking   Booking
	AuthorID  uint `gorm:"index;not null"`
	Author    User

	Rating  int    `gorm:"not null"` // 1..5
	Comment string `gorm:"type:text"`
}
