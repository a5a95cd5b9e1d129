package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"lendit/internal/database"
	"lendit/internal/policy"

	"github.com/gin-gonic/gin"
)

func ShowActivePolicy(c *gin.Context) {
	doc, err := policy.Active(database.DB, c.Param("slug"))
	if err != nil {
		if errors.Is(err, policy.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no published policy for this slug"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load policy"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func ShowPolicyVersion(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version"})
		return
	}

	doc, err := policy.Version(database.DB, c.Param("slug"), version)
	if err != nil {
		if errors.Is(err, policy.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such policy version"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load policy version"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func ListPolicyVersions(c *gin.Context) {
	docs, err := policy.Versions(database.DB, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list policy versions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": docs})
}

type publishPolicyRequest struct {
	Title   string `json:"title"`
	Content string `json:"content" binding:"required"`
}

func PublishPolicy(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req publishPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc, err := policy.Publish(database.DB, c.Param("slug"), req.Title, req.Content,
		actorFrom(admin), metaFrom(c))
	if err != nil {
		if errors.Is(err, policy.ErrVersionConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "concurrent policy publish, please retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish policy"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}
