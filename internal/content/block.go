package content

import (
	"encoding/json"
	"fmt"

	"clintonstack/internal/domain"
)

// Block type tags as stored in the site document.
const (
	BlockHero         = "hero"
	BlockAbout        = "about"
	BlockServices     = "services"
	BlockTestimonials = "testimonials"
	BlockContact      = "contact"
	BlockProperties   = "properties"
)

// Block is one named section of page content. Data holds the payload
// for the tagged type; Decode returns it as the concrete struct.
type Block struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type HeroBlock struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	CTALabel string `json:"ctaLabel,omitempty"`
	CTALink  string `json:"ctaLink,omitempty"`
}

type AboutBlock struct {
	Heading  string `json:"heading"`
	Body     string `json:"body,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

type ServiceItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
}

type ServicesBlock struct {
	Heading string        `json:"heading,omitempty"`
	Items   []ServiceItem `json:"items"`
}

type Testimonial struct {
	Author   string `json:"author"`
	Quote    string `json:"quote"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

type TestimonialsBlock struct {
	Items []Testimonial `json:"items"`
}

type ContactBlock struct {
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	MapEmbedURL string `json:"mapEmbedUrl,omitempty"`
}

type PropertiesBlock struct {
	Heading    string     `json:"heading,omitempty"`
	Properties []Property `json:"properties"`
}

// Decode returns the typed payload for the block. This is the single
// dispatch point over the type tag; renderers switch on the returned
// concrete type.
func (b Block) Decode() (interface{}, error) {
	data := b.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	switch b.Type {
	case BlockHero:
		var p HeroBlock
		return &p, decodeStrict(data, &p, b.Type)
	case BlockAbout:
		var p AboutBlock
		return &p, decodeStrict(data, &p, b.Type)
	case BlockServices:
		var p ServicesBlock
		return &p, decodeStrict(data, &p, b.Type)
	case BlockTestimonials:
		var p TestimonialsBlock
		return &p, decodeStrict(data, &p, b.Type)
	case BlockContact:
		var p ContactBlock
		return &p, decodeStrict(data, &p, b.Type)
	case BlockProperties:
		var p PropertiesBlock
		if err := decodeStrict(data, &p, b.Type); err != nil {
			return nil, err
		}
		for i := range p.Properties {
			if err := p.Properties[i].Validate(); err != nil {
				return nil, err
			}
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("%w: unknown block type %q", domain.ErrValidation, b.Type)
	}
}

func decodeStrict(data json.RawMessage, dst interface{}, blockType string) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: malformed %s block: %v", domain.ErrValidation, blockType, err)
	}
	return nil
}
