package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"clintonstack/config"
	"clintonstack/internal/cache"
	"clintonstack/internal/content"
	"clintonstack/internal/domain"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SiteService owns the site content pipeline: tenant onboarding,
// editor saves into the draft, and the draft -> published promotion.
type SiteService struct {
	cfg       *config.Config
	siteRepo  *repository.SiteRepository
	auditRepo *repository.AuditLogRepository
	cache     *cache.PublishedCache
}

func NewSiteService(
	cfg *config.Config,
	siteRepo *repository.SiteRepository,
	auditRepo *repository.AuditLogRepository,
	published *cache.PublishedCache,
) *SiteService {
	return &SiteService{
		cfg:       cfg,
		siteRepo:  siteRepo,
		auditRepo: auditRepo,
		cache:     published,
	}
}

// CreateForOwner provisions the tenant's site at onboarding with a
// unique slug and a starter draft. One site per tenant.
func (s *SiteService) CreateForOwner(owner *models.User) (*models.Site, error) {
	slug, err := s.uniqueSlug(owner.Name, owner.Email)
	if err != nil {
		return nil, err
	}
	draft, err := content.Normalize(content.Starter(owner.Name))
	if err != nil {
		return nil, err
	}
	site := &models.Site{
		OwnerID:      owner.ID,
		Slug:         slug,
		Draft:        datatypes.JSON(draft),
		Integrations: datatypes.JSONMap{},
	}
	if err := s.siteRepo.Create(site); err != nil {
		return nil, err
	}
	return site, nil
}

func (s *SiteService) GetByOwner(ownerID uint) (*models.Site, error) {
	site, err := s.siteRepo.GetByOwnerID(ownerID)
	if err != nil {
		return nil, asNotFound(err)
	}
	return site, nil
}

// SaveDraft applies an editor save: the patch is shallow-merged into
// the draft, property IDs are canonicalized, and the result validated.
// Published is never touched here.
func (s *SiteService) SaveDraft(ownerID uint, patch []byte) (*models.Site, error) {
	site, err := s.siteRepo.GetByOwnerID(ownerID)
	if err != nil {
		return nil, asNotFound(err)
	}
	merged, err := content.Merge(site.Draft, patch)
	if err != nil {
		return nil, err
	}
	merged, err = content.Normalize(merged)
	if err != nil {
		return nil, err
	}
	if err := content.Validate(merged); err != nil {
		return nil, err
	}
	if err := s.siteRepo.UpdateDraft(site.ID, datatypes.JSON(merged)); err != nil {
		return nil, err
	}
	site.Draft = datatypes.JSON(merged)
	return site, nil
}

// Publish promotes the draft to the live published snapshot: the whole
// document is replaced, never partially merged. Concurrent publishes
// race last-write-wins; later draft edits cannot reach the snapshot.
func (s *SiteService) Publish(siteID uint, actor *models.User) (*models.Site, error) {
	site, err := s.siteRepo.GetByID(siteID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if !s.canPublish(actor, site) {
		return nil, domain.ErrUnauthorized
	}
	now := time.Now()
	published := content.Clone(site.Draft)
	if err := s.siteRepo.UpdatePublished(site.ID, datatypes.JSON(published), now); err != nil {
		return nil, err
	}
	site.Published = datatypes.JSON(published)
	site.PublishedAt = &now
	s.cache.Invalidate(context.Background(), site.Slug)
	if s.auditRepo != nil {
		_ = s.auditRepo.Create(&models.AuditLog{
			UserID:     &actor.ID,
			Action:     "site_published",
			Resource:   "site",
			ResourceID: site.Slug,
		})
	}
	log.Printf("[Publish] site %d (%s) published by user %d", site.ID, site.Slug, actor.ID)
	return site, nil
}

func (s *SiteService) canPublish(actor *models.User, site *models.Site) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if actor.ID != site.OwnerID {
		return false
	}
	if actor.HasPaid {
		return true
	}
	for _, email := range s.cfg.Publish.AllowlistEmails {
		if strings.EqualFold(email, actor.Email) {
			return true
		}
	}
	return false
}

// UpsertProperty adds or replaces a listing in the owner's draft.
func (s *SiteService) UpsertProperty(ownerID uint, p content.Property) (content.Property, error) {
	site, err := s.siteRepo.GetByOwnerID(ownerID)
	if err != nil {
		return content.Property{}, asNotFound(err)
	}
	doc, stored, err := content.UpsertProperty(site.Draft, p)
	if err != nil {
		return content.Property{}, err
	}
	if err := s.siteRepo.UpdateDraft(site.ID, datatypes.JSON(doc)); err != nil {
		return content.Property{}, err
	}
	return stored, nil
}

// RemoveProperty deletes a listing from the owner's draft by ID.
func (s *SiteService) RemoveProperty(ownerID uint, propertyID string) error {
	site, err := s.siteRepo.GetByOwnerID(ownerID)
	if err != nil {
		return asNotFound(err)
	}
	doc, removed, err := content.RemoveProperty(site.Draft, propertyID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound
	}
	return s.siteRepo.UpdateDraft(site.ID, datatypes.JSON(doc))
}

// UpdateIntegrations replaces the opaque third-party key map.
func (s *SiteService) UpdateIntegrations(ownerID uint, integrations map[string]interface{}) error {
	site, err := s.siteRepo.GetByOwnerID(ownerID)
	if err != nil {
		return asNotFound(err)
	}
	return s.siteRepo.UpdateIntegrations(site.ID, datatypes.JSONMap(integrations))
}

// GetPublishedBySlug serves the live document for the public site,
// through the cache when one is configured.
func (s *SiteService) GetPublishedBySlug(ctx context.Context, slug string) ([]byte, error) {
	if doc, ok := s.cache.Get(ctx, slug); ok {
		return doc, nil
	}
	site, err := s.siteRepo.GetBySlug(slug)
	if err != nil {
		return nil, asNotFound(err)
	}
	if len(site.Published) == 0 {
		return nil, domain.ErrNotFound
	}
	doc := []byte(site.Published)
	s.cache.Set(ctx, slug, doc)
	return doc, nil
}

func (s *SiteService) uniqueSlug(name, email string) (string, error) {
	base := slugify(name)
	if base == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			base = slugify(email[:at])
		}
	}
	if base == "" {
		base = "site"
	}
	slug := base
	for i := 2; ; i++ {
		exists, err := s.siteRepo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 48 {
		out = strings.Trim(out[:48], "-")
	}
	return out
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
