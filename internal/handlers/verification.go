package handlers

import (
	"net/http"
	"strings"
	"time"

	"lendit/internal/audit"
	"lendit/internal/database"
	"lendit/internal/models"

	"github.com/gin-gonic/gin"
)

type verificationRequest struct {
	DocumentRef string `json:"document_ref" binding:"required"`
}

func SubmitVerification(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if user.Verified {
		c.JSON(http.StatusConflict, gin.H{"error": "account already verified"})
		return
	}

	var pending int64
	database.DB.Model(&models.VerificationRequest{}).
		Where("user_id = ? AND status = ?", user.ID, models.VerificationPending).
		Count(&pending)
	if pending > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "verification already pending"})
		return
	}

	var req verificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	vr := models.VerificationRequest{
		UserID:      user.ID,
		DocumentRef: strings.TrimSpace(req.DocumentRef),
		Status:      models.VerificationPending,
	}
	if err := database.DB.Create(&vr).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit verification"})
		return
	}

	audit.RecordBestEffort(database.DB, audit.Params{
		Action:       models.ActionVerificationSubmitted,
		Description:  "Verification submitted by " + user.Email,
		Actor:        actorFrom(user),
		Meta:         metaFrom(c),
		TargetType:   models.TargetVerification,
		TargetID:     uintString(vr.ID),
		TargetUserID: &user.ID,
	})

	c.JSON(http.StatusCreated, gin.H{"id": vr.ID, "status": vr.Status})
}

type verificationDecisionRequest struct {
	Note string `json:"note"`
}

func ApproveVerification(c *gin.Context) {
	decideVerification(c, true)
}

func RejectVerification(c *gin.Context) {
	decideVerification(c, false)
}

func decideVerification(c *gin.Context, approve bool) {
	admin, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verification id"})
		return
	}

	var vr models.VerificationRequest
	if err := database.DB.First(&vr, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "verification request not found"})
		return
	}
	if vr.Status != models.VerificationPending {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "verification already decided"})
		return
	}

	var req verificationDecisionRequest
	_ = c.ShouldBindJSON(&req)

	next := models.VerificationRejected
	action := models.ActionVerificationRejected
	if approve {
		next = models.VerificationApproved
		action = models.ActionVerificationApproved
	}

	now := time.Now().UTC()
	adminID := admin.ID
	updates := map[string]interface{}{
		"status":      next,
		"reviewed_by": adminID,
		"reviewed_at": now,
		"note":        strings.TrimSpace(req.Note),
	}
	if err := database.DB.Model(&vr).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update verification"})
		return
	}

	if approve {
		if err := database.DB.Model(&models.User{}).
			Where("id = ?", vr.UserID).
			Update("verified", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark user verified"})
			return
		}
	}

	audit.RecordBestEffort(database.DB, audit.Params{
		Action:       action,
		Description:  "Verification #" + uintString(vr.ID) + " " + string(next),
		Actor:        actorFrom(admin),
		Meta:         metaFrom(c),
		TargetType:   models.TargetVerification,
		TargetID:     uintString(vr.ID),
		TargetUserID: &vr.UserID,
		PreviousValue: map[string]interface{}{
			"status": string(models.VerificationPending),
		},
		NewValue: map[string]interface{}{
			"status": string(next),
		},
	})

	c.JSON(http.StatusOK, gin.H{"id": vr.ID, "status": next})
}
