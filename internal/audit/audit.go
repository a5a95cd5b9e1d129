// Package audit is the append-only ledger of domain events. Its public
// surface is Record and List only: no update or delete exists, so entries
// are immutable by construction, not by convention.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"lendit/internal/logger"
	"lendit/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actor identifies who triggered an event. Zero value means the system
// itself (seeding, background jobs); actor columns stay null/empty.
type Actor struct {
	ID    *uint
	Email string
	Role  string
}

// RequestMeta carries request provenance. Empty fields are recorded as
// "unknown".
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type Params struct {
	Action      models.AuditAction
	Description string

	Actor Actor
	Meta  RequestMeta

	TargetType models.AuditTargetType
	TargetID   string

	TargetUserID *uint
	ListingID    *uint
	BookingID    *uint

	PreviousValue map[string]interface{}
	NewValue      map[string]interface{}
	Metadata      map[string]interface{}
}

// Record appends one entry. Called after the primary mutation commits.
func Record(db *gorm.DB, p Params) (*models.AuditLog, error) {
	if p.Action == "" || p.TargetType == "" || p.TargetID == "" {
		return nil, fmt.Errorf("audit: action, target type and target id are required")
	}

	entry := models.AuditLog{
		Action:      p.Action,
		Description: p.Description,

		ActorID:    p.Actor.ID,
		ActorEmail: p.Actor.Email,
		ActorRole:  p.Actor.Role,

		TargetType: p.TargetType,
		TargetID:   p.TargetID,

		TargetUserID: p.TargetUserID,
		ListingID:    p.ListingID,
		BookingID:    p.BookingID,

		IPAddress: orUnknown(p.Meta.IPAddress),
		UserAgent: orUnknown(p.Meta.UserAgent),
	}

	var err error
	if entry.PreviousValue, err = toJSON(p.PreviousValue); err != nil {
		return nil, fmt.Errorf("audit: encode previous value: %w", err)
	}
	if entry.NewValue, err = toJSON(p.NewValue); err != nil {
		return nil, fmt.Errorf("audit: encode new value: %w", err)
	}
	if entry.Metadata, err = toJSON(p.Metadata); err != nil {
		return nil, fmt.Errorf("audit: encode metadata: %w", err)
	}

	if err := db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("audit: append entry: %w", err)
	}
	return &entry, nil
}

// RecordBestEffort appends an entry; a failure is reported to the
// operational log and swallowed, never surfaced to the caller.
func RecordBestEffort(db *gorm.DB, p Params) {
	if _, err := Record(db, p); err != nil {
		logger.Log.Errorw("audit write failed",
			"action", p.Action,
			"target_type", p.TargetType,
			"target_id", p.TargetID,
			"error", err,
		)
	}
}

// Filter narrows List. Zero-valued fields are ignored. From/To bound
// CreatedAt inclusively.
type Filter struct {
	TargetType models.AuditTargetType
	TargetID   string
	ActorID    *uint
	Action     models.AuditAction
	From       *time.Time
	To         *time.Time

	Limit  int
	Offset int
}

const defaultListLimit = 50

// List returns entries most recent first (the log is a timeline, no other
// order is supported) plus the total matching count for pagination.
func List(db *gorm.DB, f Filter) ([]models.AuditLog, int64, error) {
	q := db.Model(&models.AuditLog{})

	if f.TargetType != "" {
		q = q.Where("target_type = ?", f.TargetType)
	}
	if f.TargetID != "" {
		q = q.Where("target_id = ?", f.TargetID)
	}
	if f.ActorID != nil {
		q = q.Where("actor_id = ?", *f.ActorID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("audit: count entries: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var entries []models.AuditLog
	err := q.Order("created_at desc").
		Limit(limit).
		Offset(f.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("audit: list entries: %w", err)
	}
	return entries, total, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func toJSON(m map[string]interface{}) (datatypes.JSON, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
