package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"clintonstack/internal/domain"
)

// A site document is a JSON object: an ordered "blocks" array plus
// arbitrary flat top-level fields (hero, about, contact, theme, ...).
// Editors only ever see and patch the draft; publish copies the whole
// document into the published column. Flat fields the core does not
// know about pass through untouched, so everything here works on the
// raw object rather than a fixed struct.

// Parse returns the top-level object and its blocks array.
func Parse(doc []byte) (map[string]json.RawMessage, []Block, error) {
	if len(doc) == 0 {
		return map[string]json.RawMessage{}, nil, nil
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		return nil, nil, fmt.Errorf("%w: document is not a JSON object: %v", domain.ErrValidation, err)
	}
	var blocks []Block
	if raw, ok := top["blocks"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &blocks); err != nil {
			return nil, nil, fmt.Errorf("%w: blocks must be an array of {type,data}: %v", domain.ErrValidation, err)
		}
	}
	return top, blocks, nil
}

// Validate checks that every block decodes to a known typed payload
// and that any standalone properties collection is well formed.
func Validate(doc []byte) error {
	top, blocks, err := Parse(doc)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if _, err := b.Decode(); err != nil {
			return err
		}
	}
	if raw, ok := top["properties"]; ok && !isNull(raw) {
		var props []Property
		if err := json.Unmarshal(raw, &props); err != nil {
			return fmt.Errorf("%w: properties must be an array: %v", domain.ErrValidation, err)
		}
		for i := range props {
			if err := props[i].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Merge applies an editor save: a shallow top-level merge of patch
// into doc. Keys present in patch replace the same key in doc; keys
// absent from patch are left alone.
func Merge(doc, patch []byte) ([]byte, error) {
	base, _, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	var delta map[string]json.RawMessage
	if err := json.Unmarshal(patch, &delta); err != nil {
		return nil, fmt.Errorf("%w: patch is not a JSON object: %v", domain.ErrValidation, err)
	}
	for k, v := range delta {
		base[k] = v
	}
	return json.Marshal(base)
}

// Normalize assigns canonical property IDs and defaults everywhere
// properties appear: inside properties blocks and in the standalone
// top-level collection.
func Normalize(doc []byte) ([]byte, error) {
	top, blocks, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	changed := false
	for i, b := range blocks {
		if b.Type != BlockProperties {
			continue
		}
		var pb PropertiesBlock
		if err := decodeStrict(b.Data, &pb, b.Type); err != nil {
			return nil, err
		}
		for j := range pb.Properties {
			pb.Properties[j].normalize()
		}
		data, err := json.Marshal(pb)
		if err != nil {
			return nil, err
		}
		blocks[i].Data = data
		changed = true
	}
	if changed {
		raw, err := json.Marshal(blocks)
		if err != nil {
			return nil, err
		}
		top["blocks"] = raw
	}
	if raw, ok := top["properties"]; ok && !isNull(raw) {
		var props []Property
		if err := json.Unmarshal(raw, &props); err != nil {
			return nil, fmt.Errorf("%w: properties must be an array: %v", domain.ErrValidation, err)
		}
		for i := range props {
			props[i].normalize()
		}
		out, err := json.Marshal(props)
		if err != nil {
			return nil, err
		}
		top["properties"] = out
	}
	return json.Marshal(top)
}

// Clone returns an independent copy of the document. The document is
// an immutable byte snapshot, so copying the bytes is a deep copy.
func Clone(doc []byte) []byte {
	if len(doc) == 0 {
		return nil
	}
	return append([]byte(nil), doc...)
}

// UpsertProperty inserts or replaces a listing in the document's
// properties block, creating the block if the draft has none yet.
// Returns the updated document and the stored property (with its
// canonical ID assigned).
func UpsertProperty(doc []byte, p Property) ([]byte, Property, error) {
	if err := p.Validate(); err != nil {
		return nil, Property{}, err
	}
	p.normalize()
	top, blocks, err := Parse(doc)
	if err != nil {
		return nil, Property{}, err
	}
	idx := -1
	for i, b := range blocks {
		if b.Type == BlockProperties {
			idx = i
			break
		}
	}
	var pb PropertiesBlock
	if idx >= 0 {
		if err := decodeStrict(blocks[idx].Data, &pb, BlockProperties); err != nil {
			return nil, Property{}, err
		}
	}
	replaced := false
	for i := range pb.Properties {
		if pb.Properties[i].ID == p.ID {
			pb.Properties[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		pb.Properties = append(pb.Properties, p)
	}
	data, err := json.Marshal(pb)
	if err != nil {
		return nil, Property{}, err
	}
	if idx >= 0 {
		blocks[idx].Data = data
	} else {
		blocks = append(blocks, Block{Type: BlockProperties, Data: data})
	}
	raw, err := json.Marshal(blocks)
	if err != nil {
		return nil, Property{}, err
	}
	top["blocks"] = raw
	out, err := json.Marshal(top)
	return out, p, err
}

// RemoveProperty deletes a listing by canonical ID from the
// properties block. The second return reports whether it was found.
func RemoveProperty(doc []byte, id string) ([]byte, bool, error) {
	top, blocks, err := Parse(doc)
	if err != nil {
		return nil, false, err
	}
	removed := false
	for i, b := range blocks {
		if b.Type != BlockProperties {
			continue
		}
		var pb PropertiesBlock
		if err := decodeStrict(b.Data, &pb, b.Type); err != nil {
			return nil, false, err
		}
		kept := pb.Properties[:0]
		for _, p := range pb.Properties {
			if p.ID == id {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		if !removed {
			continue
		}
		pb.Properties = kept
		data, err := json.Marshal(pb)
		if err != nil {
			return nil, false, err
		}
		blocks[i].Data = data
		raw, err := json.Marshal(blocks)
		if err != nil {
			return nil, false, err
		}
		top["blocks"] = raw
		break
	}
	if !removed {
		return doc, false, nil
	}
	out, err := json.Marshal(top)
	return out, true, err
}

// Starter returns the onboarding draft for a new tenant site.
func Starter(agentName string) []byte {
	hero, _ := json.Marshal(HeroBlock{
		Title:    agentName,
		Subtitle: "Find your next home with me",
		CTALabel: "Get in touch",
		CTALink:  "#contact",
	})
	doc, _ := json.Marshal(map[string]interface{}{
		"blocks": []Block{
			{Type: BlockHero, Data: hero},
			{Type: BlockContact, Data: json.RawMessage("{}")},
		},
		"theme": map[string]string{"primaryColor": "#1d4ed8"},
	})
	return doc
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
