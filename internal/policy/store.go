// Package policy stores versioned platform policy documents and resolves
// which version is live. Publishing is additive: every revision is a new
// immutable row keyed by (slug, version), so old versions stay readable
// exactly as published.
package policy

import (
	"errors"
	"fmt"

	"lendit/internal/models"

	"gorm.io/gorm"
)

// CanonicalSlug is the policy every booking binds to.
const CanonicalSlug = "insurance-and-damage-policy"

// ErrNotFound means no published document exists for the slug. Booking
// creation treats this as a hard precondition failure.
var ErrNotFound = errors.New("policy: no published document for slug")

// Active returns the published document with the highest version number
// for the slug. Version number is the sole source of truth for "current";
// timestamps are never consulted, so even if two rows briefly raced into
// a published state the pick is deterministic.
func Active(db *gorm.DB, slug string) (*models.PolicyDocument, error) {
	var doc models.PolicyDocument
	err := db.Where("slug = ? AND is_published = ?", slug, true).
		Order("version desc").
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("policy: resolve active %q: %w", slug, err)
	}
	return &doc, nil
}

// ActiveVersion resolves just the live version number for slug.
func ActiveVersion(db *gorm.DB, slug string) (int, error) {
	doc, err := Active(db, slug)
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

// Version returns the document exactly as it existed at the given version
// number, regardless of how many later versions exist.
func Version(db *gorm.DB, slug string, version int) (*models.PolicyDocument, error) {
	var doc models.PolicyDocument
	err := db.Where("slug = ? AND version = ? AND is_published = ?", slug, version, true).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("policy: lookup %q v%d: %w", slug, version, err)
	}
	return &doc, nil
}

// Versions lists all published versions of a slug, newest first, for the
// admin history view.
func Versions(db *gorm.DB, slug string) ([]models.PolicyDocument, error) {
	var docs []models.PolicyDocument
	err := db.Where("slug = ? AND is_published = ?", slug, true).
		Order("version desc").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("policy: list versions of %q: %w", slug, err)
	}
	return docs, nil
}
