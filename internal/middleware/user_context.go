package middleware

import (
	"net/http"

	"lendit/internal/database"
	"lendit/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// InjectUser loads the session user into the gin context. Suspended
// accounts are logged out on the spot.
func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uidRaw := sess.Get("user_id"); uidRaw != nil {
			if uid, ok := uidRaw.(uint); ok && uid > 0 {
				var user models.User
				if err := database.DB.First(&user, uid).Error; err == nil {
					if user.Suspended {
						sess.Clear()
						_ = sess.Save()
						c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account suspended"})
						return
					}
					c.Set("CurrentUser", user)
				}
			}
		}

		c.Next()
	}
}
