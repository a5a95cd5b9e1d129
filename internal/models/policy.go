package models

import "time"

// PolicyDocument is one published revision of a platform policy. Rows are
// immutable: publishing adds a new row with version+1, so any historical
// version stays readable with its original content.
type PolicyDocument struct {
	ID      uint   `gorm:"primaryKey"`
	Slug    string `gorm:"size:100;not null;uniqueIndex:idx_policy_slug_version,priority:1"`
	Version int    `gorm:"not null;uniqueIndex:idx_policy_slug_version,priority:2"`
	Title   string `gorm:"size:255;not null"`
	Content string `gorm:"type:text;not null"`

	IsPublished bool `gorm:"not null;default:true"`
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
