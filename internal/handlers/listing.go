package handlers

import (
	"net/http"
	"strings"

	"lendit/internal/audit"
	"lendit/internal/database"
	"lendit/internal/models"

	"github.com/gin-gonic/gin"
)

var listingCategories = map[models.ListingCategory]struct{}{
	models.CategoryExcavator: {},
	models.CategoryTractor:   {},
	models.CategoryLoader:    {},
	models.CategoryCrane:     {},
	models.CategoryHarvester: {},
	models.CategoryOther:     {},
}

// allowed listing status transitions
var listingTransitions = map[models.ListingStatus][]models.ListingStatus{
	models.ListingDraft:    {models.ListingActive, models.ListingArchived},
	models.ListingActive:   {models.ListingPaused, models.ListingArchived},
	models.ListingPaused:   {models.ListingActive, models.ListingArchived},
	models.ListingArchived: {},
}

func ListListings(c *gin.Context) {
	q := database.DB.Where("status = ?", models.ListingActive)

	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if loc := c.Query("location"); loc != "" {
		q = q.Where("LOWER(location) LIKE LOWER(?)", "%"+loc+"%")
	}

	var listings []models.Listing
	if err := q.Order("created_at desc").Find(&listings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

func ShowListing(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var listing models.Listing
	if err := database.DB.First(&listing, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

type listingRequest struct {
	Title          string `json:"title" binding:"required"`
	Category       string `json:"category" binding:"required"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	DailyRateCents int64  `json:"daily_rate_cents" binding:"required"`
}

func CreateListing(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if len(req.Title) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must be at least 3 characters"})
		return
	}
	if _, ok := listingCategories[models.ListingCategory(req.Category)]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	if req.DailyRateCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "daily rate must be positive"})
		return
	}

	listing := models.Listing{
		OwnerID:        user.ID,
		Title:          req.Title,
		Category:       models.ListingCategory(req.Category),
		Description:    strings.TrimSpace(req.Description),
		Location:       strings.TrimSpace(req.Location),
		DailyRateCents: req.DailyRateCents,
		Status:         models.ListingDraft,
	}
	if err := database.DB.Create(&listing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create listing"})
		return
	}

	audit.RecordBestEffort(database.DB, audit.Params{
		Action:      models.ActionListingCreated,
		Description: "Created listing: " + listing.Title,
		Actor:       actorFrom(user),
		Meta:        metaFrom(c),
		TargetType:  models.TargetListing,
		TargetID:    uintString(listing.ID),
		ListingID:   &listing.ID,
		NewValue: map[string]interface{}{
			"title":            listing.Title,
			"category":         string(listing.Category),
			"daily_rate_cents": listing.DailyRateCents,
			"status":           string(listing.Status),
		},
	})

	c.JSON(http.StatusCreated, listing)
}

func UpdateListing(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var listing models.Listing
	if err := database.DB.First(&listing, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if listing.OwnerID != user.ID && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}

	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if len(req.Title) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must be at least 3 characters"})
		return
	}
	if _, ok := listingCategories[models.ListingCategory(req.Category)]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	if req.DailyRateCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "daily rate must be positive"})
		return
	}

	prev := map[string]interface{}{
		"title":            listing.Title,
		"category":         string(listing.Category),
		"daily_rate_cents": listing.DailyRateCents,
	}

	listing.Title = req.Title
	listing.Category = models.ListingCategory(req.Category)
	listing.Description = strings.TrimSpace(req.Description)
	listing.Location = strings.TrimSpace(req.Location)
	listing.DailyRateCents = req.DailyRateCents

	if err := database.DB.Save(&listing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update listing"})
		return
	}

	audit.RecordBestEffort(database.DB, audit.Params{
		Action:        models.ActionListingUpdated,
		Description:   "Updated listing: " + listing.Title,
		Actor:         actorFrom(user),
		Meta:          metaFrom(c),
		TargetType:    models.TargetListing,
		TargetID:      uintString(listing.ID),
		ListingID:     &listing.ID,
		PreviousValue: prev,
		NewValue: map[string]interface{}{
			"title":            listing.Title,
			"category":         string(listing.Category),
			"daily_rate_cents": listing.DailyRateCents,
		},
	})

	c.JSON(http.StatusOK, listing)
}

type listingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func ChangeListingStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var listing models.Listing
	if err := database.DB.First(&listing, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if listing.OwnerID != user.ID && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}

	var req listingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	next := models.ListingStatus(req.Status)
	if !transitionAllowed(listingTransitions[listing.Status], next) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "cannot change status from " + string(listing.Status) + " to " + string(next),
		})
		return
	}

	prevStatus := listing.Status
	if err := database.DB.Model(&listing).Update("status", next).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change status"})
		return
	}

	audit.RecordBestEffort(database.DB, audit.Params{
		Action:      models.ActionListingStatusChanged,
		Description: "Listing " + listing.Title + ": " + string(prevStatus) + " -> " + string(next),
		Actor:       actorFrom(user),
		Meta:        metaFrom(c),
		TargetType:  models.TargetListing,
		TargetID:    uintString(listing.ID),
		ListingID:   &listing.ID,
		PreviousValue: map[string]interface{}{
			"status": string(prevStatus),
		},
		NewValue: map[string]interface{}{
			"status": string(next),
		},
	})

	c.JSON(http.StatusOK, gin.H{"id": listing.ID, "status": next})
}

func transitionAllowed(allowed []models.ListingStatus, next models.ListingStatus) bool {
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}
