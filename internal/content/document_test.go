package content

import (
	"encoding/json"
	"testing"

	"clintonstack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyDocument(t *testing.T) {
	top, blocks, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, top)
	assert.Nil(t, blocks)
}

func TestParseRejectsNonObject(t *testing.T) {
	_, _, err := Parse([]byte(`[1,2,3]`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseKeepsUnknownTopLevelFields(t *testing.T) {
	doc := []byte(`{"theme":{"primaryColor":"#fff"},"blocks":[{"type":"hero","data":{"title":"Jane"}}]}`)
	top, blocks, err := Parse(doc)
	require.NoError(t, err)
	assert.Contains(t, top, "theme")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockHero, blocks[0].Type)
}

func TestValidateAcceptsStarter(t *testing.T) {
	assert.NoError(t, Validate(Starter("Jane Agent")))
}

func TestValidateRejectsUnknownBlockType(t *testing.T) {
	doc := []byte(`{"blocks":[{"type":"carousel","data":{}}]}`)
	err := Validate(doc)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateRejectsBadProperty(t *testing.T) {
	doc := []byte(`{"blocks":[{"type":"properties","data":{"properties":[{"title":"","price":100}]}}]}`)
	err := Validate(doc)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMergeReplacesOnlyPatchedKeys(t *testing.T) {
	doc := []byte(`{"theme":{"primaryColor":"#111"},"about":{"heading":"Hi"},"blocks":[]}`)
	patch := []byte(`{"about":{"heading":"Hello"}}`)
	out, err := Merge(doc, patch)
	require.NoError(t, err)

	top, _, err := Parse(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"heading":"Hello"}`, string(top["about"]))
	assert.JSONEq(t, `{"primaryColor":"#111"}`, string(top["theme"]))
}

func TestMergeRejectsNonObjectPatch(t *testing.T) {
	_, err := Merge([]byte(`{}`), []byte(`"nope"`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNormalizeAssignsPropertyIDs(t *testing.T) {
	doc := []byte(`{"blocks":[{"type":"properties","data":{"properties":[{"title":"3BR Kilimani","price":12500000}]}}]}`)
	out, err := Normalize(doc)
	require.NoError(t, err)

	_, blocks, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	payload, err := blocks[0].Decode()
	require.NoError(t, err)
	pb := payload.(*PropertiesBlock)
	require.Len(t, pb.Properties, 1)
	assert.NotEmpty(t, pb.Properties[0].ID)
	assert.Equal(t, PropertyForSale, pb.Properties[0].Status)
}

func TestNormalizeKeepsExistingIDs(t *testing.T) {
	doc := []byte(`{"properties":[{"id":"abc-123","title":"Plot","price":1,"status":"for-rent"}]}`)
	out, err := Normalize(doc)
	require.NoError(t, err)

	top, _, err := Parse(out)
	require.NoError(t, err)
	var props []Property
	require.NoError(t, json.Unmarshal(top["properties"], &props))
	require.Len(t, props, 1)
	assert.Equal(t, "abc-123", props[0].ID)
	assert.Equal(t, PropertyForRent, props[0].Status)
}

func TestCloneIsIndependent(t *testing.T) {
	doc := []byte(`{"a":1}`)
	cp := Clone(doc)
	assert.Equal(t, doc, cp)
	doc[1] = 'b'
	assert.NotEqual(t, doc, cp)
}

func TestUpsertPropertyCreatesBlock(t *testing.T) {
	out, stored, err := UpsertProperty([]byte(`{}`), Property{Title: "Bungalow", Price: 5000000})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)

	_, blocks, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockProperties, blocks[0].Type)
}

func TestUpsertPropertyReplacesByID(t *testing.T) {
	doc, first, err := UpsertProperty([]byte(`{}`), Property{Title: "Bungalow", Price: 5000000})
	require.NoError(t, err)

	updated := first
	updated.Status = PropertySold
	doc, _, err = UpsertProperty(doc, updated)
	require.NoError(t, err)

	_, blocks, err := Parse(doc)
	require.NoError(t, err)
	payload, err := blocks[0].Decode()
	require.NoError(t, err)
	pb := payload.(*PropertiesBlock)
	require.Len(t, pb.Properties, 1)
	assert.Equal(t, PropertySold, pb.Properties[0].Status)
}

func TestUpsertPropertyRejectsInvalid(t *testing.T) {
	_, _, err := UpsertProperty([]byte(`{}`), Property{Title: "", Price: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRemoveProperty(t *testing.T) {
	doc, stored, err := UpsertProperty([]byte(`{}`), Property{Title: "Bungalow", Price: 5000000})
	require.NoError(t, err)

	out, removed, err := RemoveProperty(doc, stored.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, blocks, err := Parse(out)
	require.NoError(t, err)
	payload, err := blocks[0].Decode()
	require.NoError(t, err)
	assert.Empty(t, payload.(*PropertiesBlock).Properties)
}

func TestRemovePropertyMissingID(t *testing.T) {
	doc := Starter("Jane")
	out, removed, err := RemoveProperty(doc, "nope")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, doc, out)
}
