// Package booking creates bookings and binds each one to the policy
// version live at the instant of commit.
package booking

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"lendit/internal/audit"
	"lendit/internal/models"
	"lendit/internal/policy"

	"gorm.io/gorm"
)

// ErrNoPolicy means no published platform policy exists, a fatal
// precondition: no booking row is created, no audit entry emitted.
var ErrNoPolicy = errors.New("booking: no published platform policy")

// Draft is a booking that already passed renter/listing/date/price
// validation at the handler boundary.
type Draft struct {
	ListingID  uint
	RenterID   uint
	StartDate  time.Time
	EndDate    time.Time
	TotalCents int64
}

// Create persists the draft with PlatformPolicyVersionAccepted set to the
// version live at submission time. The version read and the booking insert
// share one transaction: a booking committed before a publish gets the
// pre-publish version, one committed after gets the new one. A submission
// racing an in-flight publish may land on either side; that is accepted.
// Only this path sets the field, and the model excludes it from updates.
func Create(db *gorm.DB, draft Draft, actor audit.Actor, meta audit.RequestMeta) (*models.Booking, error) {
	var b models.Booking

	err := db.Transaction(func(tx *gorm.DB) error {
		version, err := policy.ActiveVersion(tx, policy.CanonicalSlug)
		if err != nil {
			if errors.Is(err, policy.ErrNotFound) {
				return ErrNoPolicy
			}
			return err
		}

		b = models.Booking{
			ListingID:                     draft.ListingID,
			RenterID:                      draft.RenterID,
			StartDate:                     draft.StartDate,
			EndDate:                       draft.EndDate,
			TotalCents:                    draft.TotalCents,
			Status:                        models.BookingPending,
			PlatformPolicyVersionAccepted: &version,
		}
		return tx.Create(&b).Error
	})
	if err != nil {
		return nil, err
	}

	audit.RecordBestEffort(db, audit.Params{
		Action:      models.ActionBookingCreated,
		Description: fmt.Sprintf("Booking #%d created for listing #%d", b.ID, b.ListingID),
		Actor:       actor,
		Meta:        meta,
		TargetType:  models.TargetBooking,
		TargetID:    strconv.FormatUint(uint64(b.ID), 10),
		ListingID:   &b.ListingID,
		BookingID:   &b.ID,
		NewValue: map[string]interface{}{
			"status":                  string(b.Status),
			"policy_version_accepted": *b.PlatformPolicyVersionAccepted,
			"total_cents":             b.TotalCents,
		},
	})

	return &b, nil
}
