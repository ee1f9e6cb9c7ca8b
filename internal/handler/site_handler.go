package handler

import (
	"net/http"

	"clintonstack/internal/content"
	"clintonstack/internal/middleware"
	"clintonstack/internal/repository"
	"clintonstack/internal/service"

	"github.com/gin-gonic/gin"
)

type SiteHandler struct {
	siteSvc  *service.SiteService
	userRepo *repository.UserRepository
}

func NewSiteHandler(siteSvc *service.SiteService, userRepo *repository.UserRepository) *SiteHandler {
	return &SiteHandler{siteSvc: siteSvc, userRepo: userRepo}
}

// Get returns the caller's site, draft included, for the editor.
func (h *SiteHandler) Get(c *gin.Context) {
	site, err := h.siteSvc.GetByOwner(middleware.GetUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

// SaveDraft applies an editor save. The body is the raw draft patch,
// shallow-merged into the current draft.
func (h *SiteHandler) SaveDraft(c *gin.Context) {
	patch, err := c.GetRawData()
	if err != nil || len(patch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty patch"})
		return
	}
	site, err := h.siteSvc.SaveDraft(middleware.GetUserID(c), patch)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

// Publish promotes the caller's draft to the live site.
func (h *SiteHandler) Publish(c *gin.Context) {
	userID := middleware.GetUserID(c)
	actor, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}
	site, err := h.siteSvc.GetByOwner(userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	site, err = h.siteSvc.Publish(site.ID, actor)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"slug":         site.Slug,
		"published_at": site.PublishedAt,
	})
}

// UpdateIntegrations replaces the third-party key map (analytics,
// chat, maps). Values are opaque pass-through data.
func (h *SiteHandler) UpdateIntegrations(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.siteSvc.UpdateIntegrations(middleware.GetUserID(c), req); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// UpsertProperty creates or replaces a listing in the draft.
func (h *SiteHandler) UpsertProperty(c *gin.Context) {
	var p content.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if id := c.Param("id"); id != "" {
		p.ID = id
	}
	stored, err := h.siteSvc.UpsertProperty(middleware.GetUserID(c), p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

// DeleteProperty removes a listing from the draft by canonical ID.
func (h *SiteHandler) DeleteProperty(c *gin.Context) {
	if err := h.siteSvc.RemoveProperty(middleware.GetUserID(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
