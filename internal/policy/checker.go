package policy

import (
	"lendit/internal/models"

	"gorm.io/gorm"
)

// IsOutdated reports whether a booking's bound policy version is behind
// the live one. Read-only: no writes, no audit. A nil bound version
// (legacy booking) reports false; a bound version ahead of the live one
// reports not-outdated with anomaly set, and is never auto-corrected.
func IsOutdated(db *gorm.DB, b *models.Booking) (outdated bool, anomaly bool, err error) {
	if b.PlatformPolicyVersionAccepted == nil {
		return false, false, nil
	}

	current, err := ActiveVersion(db, CanonicalSlug)
	if err != nil {
		return false, false, err
	}

	bound := *b.PlatformPolicyVersionAccepted
	switch {
	case bound < current:
		return true, false, nil
	case bound > current:
		return false, true, nil
	default:
		return false, false, nil
	}
}
