package server

import (
	"net/http"

	"lendit/internal/config"
	"lendit/internal/handlers"
	"lendit/internal/middleware"
	"lendit/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	if cfg.AppMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("lendit_session", store))

	r.Use(middleware.InjectUser())

	// AUTH
	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
	r.POST("/logout", handlers.Logout)

	// PUBLIC CATALOG + POLICY
	r.GET("/listings", handlers.ListListings)
	r.GET("/listings/:id", handlers.ShowListing)
	r.GET("/policies/:slug", handlers.ShowActivePolicy)
	r.GET("/policies/:slug/versions/:version", handlers.ShowPolicyVersion)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.GET("/me", handlers.Me)

	// LISTINGS (owners)
	auth.POST("/listings",
		middleware.RequireRole(models.RoleAdmin, models.RoleOwner),
		handlers.CreateListing,
	)
	auth.PUT("/listings/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleOwner),
		handlers.UpdateListing,
	)
	auth.POST("/listings/:id/status",
		middleware.RequireRole(models.RoleAdmin, models.RoleOwner),
		handlers.ChangeListingStatus,
	)

	// BOOKINGS
	auth.POST("/bookings",
		middleware.RequireRole(models.RoleRenter),
		handlers.CreateBooking,
	)
	auth.GET("/bookings", handlers.ListMyBookings)
	auth.POST("/bookings/:id/status", handlers.ChangeBookingStatus)
	auth.GET("/bookings/:id/policy-status", handlers.BookingPolicyStatus)
	auth.POST("/bookings/:id/review",
		middleware.RequireRole(models.RoleRenter),
		handlers.CreateReview,
	)

	// VERIFICATION
	auth.POST("/verification",
		middleware.RequireRole(models.RoleRenter, models.RoleOwner),
		handlers.SubmitVerification,
	)

	// ADMIN
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.POST("/users/:id/suspend", handlers.SuspendUser)
	admin.POST("/users/:id/reinstate", handlers.ReinstateUser)
	admin.POST("/verification/:id/approve", handlers.ApproveVerification)
	admin.POST("/verification/:id/reject", handlers.RejectVerification)
	admin.POST("/policies/:slug/publish", handlers.PublishPolicy)
	admin.GET("/policies/:slug/versions", handlers.ListPolicyVersions)
	admin.GET("/audit", handlers.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
