package models

import "gorm.io/gorm"

type ListingCategory string
type ListingStatus string

const (
	CategoryExcavator ListingCategory = "excavator"
	CategoryTractor   ListingCategory = "tractor"
	CategoryLoader    ListingCategory = "loader"
	CategoryCrane     ListingCategory = "crane"
	CategoryHarvester ListingCategory = "harvester"
	CategoryOther     ListingCategory = "other"

	ListingDraft    ListingStatus = "draft"
	ListingActive   ListingStatus = "active"
	ListingPaused   ListingStatus = "paused"
	ListingArchived ListingStatus = "archived"
)

type Listing struct {
	gorm.Model
	OwnerID uint `gorm:"index;not null"`
	Owner   User

	Title          string          `gorm:"size:255;not null"`
	Category       ListingCategory `gorm:"type:varchar(50);not null"`
	Description    string          `gorm:"type:text"`
	Location       string          `gorm:"size:255"`
	DailyRateCents int64           `gorm:"not null"`
	Status         ListingStatus   `gorm:"type:varchar(20);not null;default:'draft'"`
}
