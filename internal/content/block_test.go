package content

import (
	"encoding/json"
	"testing"

	"clintonstack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockDecodeDispatch(t *testing.T) {
	cases := []struct {
		blockType string
		data      string
		want      interface{}
	}{
		{BlockHero, `{"title":"Jane Agent","ctaLabel":"Call me"}`, &HeroBlock{Title: "Jane Agent", CTALabel: "Call me"}},
		{BlockAbout, `{"heading":"About","body":"20 years in Nairobi"}`, &AboutBlock{Heading: "About", Body: "20 years in Nairobi"}},
		{BlockServices, `{"items":[{"name":"Valuation"}]}`, &ServicesBlock{Items: []ServiceItem{{Name: "Valuation"}}}},
		{BlockTestimonials, `{"items":[{"author":"Ali","quote":"Great"}]}`, &TestimonialsBlock{Items: []Testimonial{{Author: "Ali", Quote: "Great"}}}},
		{BlockContact, `{"email":"jane@example.com"}`, &ContactBlock{Email: "jane@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.blockType, func(t *testing.T) {
			b := Block{Type: tc.blockType, Data: json.RawMessage(tc.data)}
			got, err := b.Decode()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBlockDecodeEmptyData(t *testing.T) {
	got, err := Block{Type: BlockContact}.Decode()
	require.NoError(t, err)
	assert.Equal(t, &ContactBlock{}, got)
}

func TestBlockDecodeUnknownType(t *testing.T) {
	_, err := Block{Type: "video", Data: json.RawMessage(`{}`)}.Decode()
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBlockDecodePropertiesValidatesListings(t *testing.T) {
	b := Block{Type: BlockProperties, Data: json.RawMessage(`{"properties":[{"title":"Flat","price":-5}]}`)}
	_, err := b.Decode()
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPropertyValidateStatus(t *testing.T) {
	p := Property{Title: "Flat", Price: 1, Status: "archived"}
	assert.ErrorIs(t, p.Validate(), domain.ErrValidation)
	p.Status = PropertyRented
	assert.NoError(t, p.Validate())
}
