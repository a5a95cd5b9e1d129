package policy

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"lendit/internal/audit"
	"lendit/internal/models"

	"gorm.io/gorm"
)

// ErrVersionConflict means publishRetries consecutive attempts lost the
// race for the next version number. Callers may retry the whole publish.
var ErrVersionConflict = errors.New("policy: concurrent publish conflict")

const publishRetries = 3

// Publish inserts a new row with version = current max + 1 inside one
// transaction. The unique index on (slug, version) fails the losing side
// of a publish race, which then retries with a fresh read, so versions
// stay gapless and a failed publish consumes no number. Existing bookings
// are never touched. One POLICY_UPDATED audit entry is recorded,
// best-effort, after commit.
func Publish(db *gorm.DB, slug, title, content string, actor audit.Actor, meta audit.RequestMeta) (*models.PolicyDocument, error) {
	if slug == "" {
		return nil, fmt.Errorf("policy: slug is required")
	}
	if content == "" {
		return nil, fmt.Errorf("policy: content is required")
	}

	var doc models.PolicyDocument
	var prevVersion int

	var lastErr error
	for attempt := 0; attempt < publishRetries; attempt++ {
		prevVersion = 0
		doc = models.PolicyDocument{}

		err := db.Transaction(func(tx *gorm.DB) error {
			var current models.PolicyDocument
			err := tx.Where("slug = ?", slug).
				Order("version desc").
				First(&current).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// first publish for this slug
			case err != nil:
				return fmt.Errorf("policy: read current version of %q: %w", slug, err)
			default:
				prevVersion = current.Version
				if title == "" {
					title = current.Title
				}
			}

			doc = models.PolicyDocument{
				Slug:        slug,
				Version:     prevVersion + 1,
				Title:       title,
				Content:     content,
				IsPublished: true,
				PublishedAt: time.Now().UTC(),
			}
			return tx.Create(&doc).Error
		})
		if err == nil {
			lastErr = nil
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race, re-read and try the next number
			lastErr = ErrVersionConflict
			continue
		}
		return nil, fmt.Errorf("policy: publish %q: %w", slug, err)
	}
	if lastErr != nil {
		return nil, lastErr
	}

	audit.RecordBestEffort(db, audit.Params{
		Action:      models.ActionPolicyUpdated,
		Description: fmt.Sprintf("Policy %q published as version %d", slug, doc.Version),
		Actor:       actor,
		Meta:        meta,
		TargetType:  models.TargetPolicy,
		TargetID:    slug,
		PreviousValue: map[string]interface{}{
			"version": prevVersion,
		},
		NewValue: map[string]interface{}{
			"version": doc.Version,
		},
		Metadata: map[string]interface{}{
			"document_id": strconv.FormatUint(uint64(doc.ID), 10),
		},
	})

	return &doc, nil
}
