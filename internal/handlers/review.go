package handlers

import (
	"net/http"
	"strings"

	"lendit/internal/audit"
	"lendit/internal/database"
	"lendit/internal/models"

	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func CreateReview(c *gin.Context) {
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
	if err := database.DB.First(&b, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if b.RenterID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the renter can review a booking"})
		return
	}
	if b.Status != models.BookingCompleted {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "only completed bookings can be reviewed"})
		return
	}

	var existing models.Review
	if err := database.DB.Where("booking_id = ?", b.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "booking already reviewed"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	review := models.Review{
		BookingID: b.ID,
		AuthorID:  user.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := database.DB.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review"})
		return
	}

	audit.RecordBestEffort(database.DB, audit.Params{
		Action:      models.ActionReviewCreated,
		Description: "Review created for booking #" + uintString(b.ID),
		Actor:       actorFrom(user),
		Meta:        metaFrom(c),
		TargetType:  models.TargetReview,
		TargetID:    uintString(review.ID),
		ListingID:   &b.ListingID,
		BookingID:   &b.ID,
		NewValue: map[string]interface{}{
			"rating": review.Rating,
		},
	})

	c.JSON(http.StatusCreated, review)
}
