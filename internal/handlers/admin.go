package handlers

import (
	"net/http"

	"lendit/internal/audit"
	"lendit/internal/database"
	"lendit/internal/models"

	"github.com/gin-gonic/gin"
)

func SuspendUser(c *gin.Context) {
	setSuspended(c, true)
}

func ReinstateUser(c *gin.Context) {
	setSuspended(c, false)
}

func setSuspended(c *gin.Context, suspended bool) {
	admin, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if user.Role == models.RoleAdmin {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "admin accounts cannot be suspended"})
		return
	}
	if user.Suspended == suspended {
		c.JSON(http.StatusConflict, gin.H{"error": "user already in that state"})
		return
	}

	if err := database.DB.Model(&user).Update("suspended", suspended).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	action := models.ActionUserReinstated
	desc := "Reinstated user " + user.Email
	if suspended {
		action = models.ActionUserSuspended
		desc = "Suspended user " + user.Email
	}

	audit.RecordBestEffort(database.DB, audit.Params{
		Action:       action,
		Description:  desc,
		Actor:        actorFrom(admin),
		Meta:         metaFrom(c),
		TargetType:   models.TargetUser,
		TargetID:     uintString(user.ID),
		TargetUserID: &user.ID,
		PreviousValue: map[string]interface{}{
			"suspended": !suspended,
		},
		NewValue: map[string]interface{}{
			"suspended": suspended,
		},
	})

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "suspended": suspended})
}
