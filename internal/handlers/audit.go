package handlers

import (
	"net/http"
	"strconv"
	"time"

	"lendit/internal/audit"
	"lendit/internal/database"
	"lendit/internal/models"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs is the compliance view over the audit timeline. Filters:
// target_type, target_id, actor_id, action, from, to (RFC 3339), plus
// limit/offset pagination. Always newest first.
func ListAuditLogs(c *gin.Context) {
	f := audit.Filter{
		TargetType: models.AuditTargetType(c.Query("target_type")),
		TargetID:   c.Query("target_id"),
		Action:     models.AuditAction(c.Query("action")),
	}

	if s := c.Query("actor_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid actor_id"})
			return
		}
		uid := uint(id)
		f.ActorID = &uid
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
			return
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
			return
		}
		f.To = &t
	}
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			f.Limit = n
		}
	}
	if s := c.Query("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	entries, total, err := audit.List(database.DB, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
	})
}
