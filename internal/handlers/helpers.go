package handlers

import (
	"strconv"

	"lendit/internal/audit"
	"lendit/internal/models"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the user placed in context by middleware.InjectUser.
func currentUser(c *gin.Context) (models.User, bool) {
	uVal, ok := c.Get("CurrentUser")
	if !ok {
		return models.User{}, false
	}
	switch u := uVal.(type) {
	case models.User:
		return u, true
	case *models.User:
		return *u, true
	}
	return models.User{}, false
}

func actorFrom(u models.User) audit.Actor {
	id := u.ID
	return audit.Actor{
		ID:    &id,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func metaFrom(c *gin.Context) audit.RequestMeta {
	return audit.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
