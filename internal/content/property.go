package content

import (
	"fmt"

	"clintonstack/internal/domain"

	"github.com/google/uuid"
)

// Property listing statuses.
const (
	PropertyForSale = "for-sale"
	PropertyForRent = "for-rent"
	PropertySold    = "sold"
	PropertyRented  = "rented"
)

// Property is a listing carried inside a properties block. ID is the
// one canonical identifier, assigned server-side on first write.
type Property struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Price        int64    `json:"price"`
	Location     string   `json:"location,omitempty"`
	Bedrooms     int      `json:"bedrooms,omitempty"`
	Bathrooms    int      `json:"bathrooms,omitempty"`
	Sqft         int      `json:"sqft,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	Status       string   `json:"status"`
	Images       []string `json:"images,omitempty"`
}

func (p *Property) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: property title is required", domain.ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: property price must not be negative", domain.ErrValidation)
	}
	switch p.Status {
	case "", PropertyForSale, PropertyForRent, PropertySold, PropertyRented:
	default:
		return fmt.Errorf("%w: unknown property status %q", domain.ErrValidation, p.Status)
	}
	return nil
}

// normalize fills defaults and assigns the canonical ID when missing.
func (p *Property) normalize() {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PropertyForSale
	}
}
