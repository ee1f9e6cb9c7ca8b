package service

import (
	"errors"
	"log"

	"clintonstack/config"
	"clintonstack/internal/auth"
	"clintonstack/internal/domain"
	"clintonstack/internal/models"
	"clintonstack/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrInvalidRole  = errors.New("role must be CLIENT or AFFILIATE")
)

type AuthService struct {
	cfg         *config.Config
	userRepo    *repository.UserRepository
	siteSvc     *SiteService
	referralSvc *ReferralService
}

func NewAuthService(
	cfg *config.Config,
	userRepo *repository.UserRepository,
	siteSvc *SiteService,
	referralSvc *ReferralService,
) *AuthService {
	return &AuthService{
		cfg:         cfg,
		userRepo:    userRepo,
		siteSvc:     siteSvc,
		referralSvc: referralSvc,
	}
}

// Register onboards a tenant or an affiliate. Clients get their site
// provisioned immediately; affiliates get a commission account and a
// referral code. A referral code submitted at signup links the new
// tenant to the referring affiliate.
func (s *AuthService) Register(name, email, password, role, referralCode string) (*models.User, string, string, error) {
	if role != domain.RoleClient && role != domain.RoleAffiliate {
		return nil, "", "", ErrInvalidRole
	}
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	switch role {
	case domain.RoleClient:
		if _, err := s.siteSvc.CreateForOwner(u); err != nil {
			return nil, "", "", err
		}
		s.referralSvc.ProcessSignup(referralCode, u)
	case domain.RoleAffiliate:
		if _, err := s.referralSvc.EnsureAffiliate(u.ID); err != nil {
			return nil, "", "", err
		}
		if _, err := s.referralSvc.CodeFor(u.ID); err != nil {
			log.Printf("[Auth] referral code generation failed for user %d: %v", u.ID, err)
		}
	}
	return s.issueTokens(u)
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	return s.issueTokens(u)
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
}

// UpsertGoogleUser signs a Google account in, creating a tenant on
// first sight.
func (s *AuthService) UpsertGoogleUser(googleID, email, name string) (*models.User, string, string, error) {
	if u, err := s.userRepo.GetByGoogleID(googleID); err == nil {
		return s.issueTokens(u)
	}
	if u, err := s.userRepo.GetByEmail(email); err == nil {
		u.GoogleID = &googleID
		if err := s.userRepo.Update(u); err != nil {
			return nil, "", "", err
		}
		return s.issueTokens(u)
	}
	u := &models.User{
		Name:     name,
		Email:    email,
		Role:     domain.RoleClient,
		GoogleID: &googleID,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	if _, err := s.siteSvc.CreateForOwner(u); err != nil {
		return nil, "", "", err
	}
	return s.issueTokens(u)
}

func (s *AuthService) issueTokens(u *models.User) (*models.User, string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, "", "", err
	}
	return u, access, refresh, nil
}
