package handler

import (
	"net/http"

	"clintonstack/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicHandler is the boundary to the public site renderer: it serves
// the published document by slug. Drafts are never visible here.
type PublicHandler struct {
	siteSvc *service.SiteService
}

func NewPublicHandler(siteSvc *service.SiteService) *PublicHandler {
	return &PublicHandler{siteSvc: siteSvc}
}

func (h *PublicHandler) GetSite(c *gin.Context) {
	doc, err := h.siteSvc.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", doc)
}
