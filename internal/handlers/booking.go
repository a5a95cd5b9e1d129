package handlers

import (
	"errors"
	"net/http"
	"time"

	"lendit/internal/audit"
	"lendit/internal/booking"
	"lendit/internal/database"
	"lendit/internal/logger"
	"lendit/internal/models"
	"lendit/internal/policy"

	"github.com/gin-gonic/gin"
)

// who may move a booking into which status
var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:   {models.BookingConfirmed, models.BookingRejected, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingActive, models.BookingCancelled},
	models.BookingActive:    {models.BookingCompleted},
	models.BookingCompleted: {},
	models.BookingCancelled: {},
	models.BookingRejected:  {},
}

// transitions only the listing owner may perform
var ownerOnlyTransitions = map[models.BookingStatus]struct{}{
	models.BookingConfirmed: {},
	models.BookingRejected:  {},
	models.BookingActive:    {},
	models.BookingCompleted: {},
}

const dateLayout = "2006-01-02"

type createBookingRequest struct {
	ListingID uint   `json:"listing_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`

	// version of the policy the client displayed; if present and behind
	// the live version the request is rejected so the renter re-accepts
	ExpectedPolicyVersion *int `json:"expected_policy_version"`
}

func CreateBooking(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
		return
	}

	var listing models.Listing
	if err := database.DB.First(&listing, req.ListingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if listing.Status != models.ListingActive {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "listing is not available for booking"})
		return
	}
	if listing.OwnerID == user.ID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot book your own listing"})
		return
	}

	// overlap with existing confirmed/active bookings
	var overlapping int64
	database.DB.Model(&models.Booking{}).
		Where("listing_id = ? AND status IN ? AND start_date < ? AND end_date > ?",
			listing.ID,
			[]models.BookingStatus{models.BookingConfirmed, models.BookingActive},
			end, start).
		Count(&overlapping)
	if overlapping > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "listing is already booked for these dates"})
		return
	}

	// stale-policy gate: reject before binding so the renter re-reads the
	// terms; the binder itself always stamps the live version
	if req.ExpectedPolicyVersion != nil {
		live, err := policy.ActiveVersion(database.DB, policy.CanonicalSlug)
		if err != nil && !errors.Is(err, policy.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve platform policy"})
			return
		}
		if err == nil && *req.ExpectedPolicyVersion != live {
			c.JSON(http.StatusConflict, gin.H{
				"error":           "platform policy has changed, please review and accept the current version",
				"current_version": live,
			})
			return
		}
	}

	days := int64(end.Sub(start).Hours() / 24)
	draft := booking.Draft{
		ListingID:  listing.ID,
		RenterID:   user.ID,
		StartDate:  start,
		EndDate:    end,
		TotalCents: days * listing.DailyRateCents,
	}

	b, err := booking.Create(database.DB, draft, actorFrom(user), metaFrom(c))
	if err != nil {
		if errors.Is(err, booking.ErrNoPolicy) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no platform policy is published, booking cannot proceed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, b)
}

func ListMyBookings(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var bookings []models.Booking
	q := database.DB.Preload("Listing").Order("created_at desc")
	if user.Role == models.RoleOwner {
		q = q.Joins("JOIN listings ON listings.id = bookings.listing_id").
			Where("listings.owner_id = ? OR bookings.renter_id = ?", user.ID, user.ID)
	} else {
		q = q.Where("renter_id = ?", user.ID)
	}
	if err := q.Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type bookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func ChangeBookingStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var b models.Booking
	if err := database.DB.Preload("Listing").First(&b, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	isRenter := b.RenterID == user.ID
	isOwner := b.Listing.OwnerID == user.ID
	if !isRenter && !isOwner && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}

	var req bookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	next := models.BookingStatus(req.Status)
	allowed := false
	for _, s := range bookingTransitions[b.Status] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "cannot change status from " + string(b.Status) + " to " + string(next),
		})
		return
	}
	if _, ownerOnly := ownerOnlyTransitions[next]; ownerOnly && !isOwner && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the listing owner can do that"})
		return
	}

	prevStatus := b.Status
	if err := database.DB.Model(&b).Update("status", next).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change status"})
		return
	}

	audit.RecordBestEffort(database.DB, audit.Params{
		Action:      models.ActionBookingStatusChanged,
		Description: "Booking #" + uintString(b.ID) + ": " + string(prevStatus) + " -> " + string(next),
		Actor:       actorFrom(user),
		Meta:        metaFrom(c),
		TargetType:  models.TargetBooking,
		TargetID:    uintString(b.ID),
		ListingID:   &b.ListingID,
		BookingID:   &b.ID,
		PreviousValue: map[string]interface{}{
			"status": string(prevStatus),
		},
		NewValue: map[string]interface{}{
			"status": string(next),
		},
	})

	c.JSON(http.StatusOK, gin.H{"id": b.ID, "status": next})
}

// BookingPolicyStatus reports whether the policy bound to a booking is
// behind the live one, plus the bound document content for dispute review.
func BookingPolicyStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var b models.Booking
	if err := database.DB.Preload("Listing").First(&b, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if b.RenterID != user.ID && b.Listing.OwnerID != user.ID && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}

	outdated, anomaly, err := policy.IsOutdated(database.DB, &b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check policy status"})
		return
	}
	if anomaly {
		logger.Log.Warnw("booking bound to a policy version newer than the live one",
			"booking_id", b.ID,
			"bound_version", *b.PlatformPolicyVersionAccepted,
		)
	}

	resp := gin.H{
		"booking_id":              b.ID,
		"policy_version_accepted": b.PlatformPolicyVersionAccepted,
		"outdated":                outdated,
	}

	if b.PlatformPolicyVersionAccepted != nil {
		if doc, err := policy.Version(database.DB, policy.CanonicalSlug, *b.PlatformPolicyVersionAccepted); err == nil {
			resp["policy_title"] = doc.Title
			resp["policy_content"] = doc.Content
			resp["policy_published_at"] = doc.PublishedAt
		}
	}

	c.JSON(http.StatusOK, resp)
}
