// Package appledocs fetches Apple Developer documentation from the JSON
// data API and renders it as markdown.
//
// The upstream payload is loosely typed: every content block carries a
// "type" discriminator and a shape that varies by kind. Blocks decode into
// a tagged union of the kinds we render, with an explicit Unknown fallback
// for everything else — unknown blocks are preserved (so statistics can see
// them) but skipped by the renderer.
package appledocs

import "encoding/json"

// Block is one content block of a documentation page. Concrete types:
// Heading, Paragraph, CodeListing, UnorderedList, Aside, Unknown.
type Block interface {
	blockKind() string
}

// Inline is a fragment of inline content (text, code voice, references).
type Inline struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Code string `json:"code,omitempty"`
}

// Heading is a section heading with a nesting level.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inline []Inline `json:"inlineContent"`
}

// CodeListing is a code block with an optional syntax tag.
type CodeListing struct {
	Syntax string   `json:"syntax"`
	Code   []string `json:"code"`
}

// UnorderedList holds list items, each itself a block sequence.
type UnorderedList struct {
	Items []ListItem `json:"items"`
}

// ListItem is one bullet of an unordered list.
type ListItem struct {
	Content []Block `json:"-"`
}

// Aside is a callout (Note, Warning, Important).
type Aside struct {
	Style   string  `json:"style"`
	Content []Block `json:"-"`
}

// Unknown is the fallback variant for block kinds this client does not
// model. The raw payload is retained for diagnostics.
type Unknown struct {
	Kind string
	Raw  json.RawMessage
}

func (Heading) blockKind() string       { return "heading" }
func (Paragraph) blockKind() string     { return "paragraph" }
func (CodeListing) blockKind() string   { return "codeListing" }
func (UnorderedList) blockKind() string { return "unorderedList" }
func (Aside) blockKind() string         { return "aside" }
func (u Unknown) blockKind() string     { return u.Kind }

// Metadata carries the page-level descriptive fields.
type Metadata struct {
	Title       string `json:"title"`
	Role        string `json:"role"`
	RoleHeading string `json:"roleHeading"`
}

// Page is a parsed documentation page.
type Page struct {
	Metadata Metadata
	Abstract []Inline
	Sections []Block
}

// pagePayload mirrors the wire shape before block decoding.
type pagePayload struct {
	Metadata               Metadata          `json:"metadata"`
	Abstract               []Inline          `json:"abstract"`
	PrimaryContentSections []json.RawMessage `json:"primaryContentSections"`
}

// sectionPayload is a primary content section: "content" sections wrap a
// block list, other kinds (declarations, relationships) surface as Unknown.
type sectionPayload struct {
	Kind    string            `json:"kind"`
	Content []json.RawMessage `json:"content"`
}

// blockProbe reads only the discriminator before the kind-specific decode.
type blockProbe struct {
	Type string `json:"type"`
}

// ParsePage decodes a documentation JSON payload into a Page. Unknown
// section and block kinds never fail the parse — they land in the Unknown
// variant.
func ParsePage(data []byte) (*Page, error) {
	var payload pagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	page := &Page{
		Metadata: payload.Metadata,
		Abstract: payload.Abstract,
	}
	for _, rawSection := range payload.PrimaryContentSections {
		var section sectionPayload
		if err := json.Unmarshal(rawSection, &section); err != nil {
			page.Sections = append(page.Sections, Unknown{Kind: "unparseable", Raw: rawSection})
			continue
		}
		if section.Kind != "content" {
			page.Sections = append(page.Sections, Unknown{Kind: section.Kind, Raw: rawSection})
			continue
		}
		page.Sections = append(page.Sections, decodeBlocks(section.Content)...)
	}
	return page, nil
}

// decodeBlocks maps raw block payloads onto the tagged union.
func decodeBlocks(raw []json.RawMessage) []Block {
	blocks := make([]Block, 0, len(raw))
	for _, data := range raw {
		blocks = append(blocks, decodeBlock(data))
	}
	return blocks
}

func decodeBlock(data json.RawMessage) Block {
	var probe blockProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return Unknown{Kind: "unparseable", Raw: data}
	}

	switch probe.Type {
	case "heading":
		var b Heading
		if err := json.Unmarshal(data, &b); err == nil {
			return b
		}
	case "paragraph":
		var b Paragraph
		if err := json.Unmarshal(data, &b); err == nil {
			return b
		}
	case "codeListing":
		var b CodeListing
		if err := json.Unmarshal(data, &b); err == nil {
			return b
		}
	case "unorderedList":
		var wire struct {
			Items []struct {
				Content []json.RawMessage `json:"content"`
			} `json:"items"`
		}
		if err := json.Unmarshal(data, &wire); err == nil {
			list := UnorderedList{}
			for _, item := range wire.Items {
				list.Items = append(list.Items, ListItem{Content: decodeBlocks(item.Content)})
			}
			return list
		}
	case "aside":
		var wire struct {
			Style   string            `json:"style"`
			Content []json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(data, &wire); err == nil {
			return Aside{Style: wire.Style, Content: decodeBlocks(wire.Content)}
		}
	}
	return Unknown{Kind: probe.Type, Raw: data}
}
