package appledocs

import (
	"strings"

	"github.com/adx-tools/appledocs-mcp/internal/docs"
)

// DefaultTitle is the fallback when no title can be extracted.
const DefaultTitle = "Untitled Document"

// RenderMarkdown formats a parsed page as markdown. Unknown blocks are
// skipped; the output always starts with a level-1 title heading.
func RenderMarkdown(page *Page) string {
	var b strings.Builder

	title := page.Metadata.Title
	if title == "" {
		title = DefaultTitle
	}
	b.WriteString("# " + title + "\n")
	if page.Metadata.RoleHeading != "" {
		b.WriteString("\n*" + page.Metadata.RoleHeading + "*\n")
	}
	if abstract := renderInline(page.Abstract); abstract != "" {
		b.WriteString("\n" + abstract + "\n")
	}

	for _, block := range page.Sections {
		renderBlock(&b, block, 0)
	}
	return b.String()
}

func renderBlock(b *strings.Builder, block Block, indent int) {
	prefix := strings.Repeat("  ", indent)

	switch v := block.(type) {
	case Heading:
		level := v.Level
		if level < 1 {
			level = 2
		}
		if level > 6 {
			level = 6
		}
		b.WriteString("\n" + strings.Repeat("#", level) + " " + v.Text + "\n")
	case Paragraph:
		if text := renderInline(v.Inline); text != "" {
			b.WriteString("\n" + prefix + text + "\n")
		}
	case CodeListing:
		b.WriteString("\n```" + v.Syntax + "\n")
		for _, line := range v.Code {
			b.WriteString(line + "\n")
		}
		b.WriteString("```\n")
	case UnorderedList:
		b.WriteString("\n")
		for _, item := range v.Items {
			var itemText strings.Builder
			for _, inner := range item.Content {
				renderBlock(&itemText, inner, 0)
			}
			b.WriteString(prefix + "- " + strings.TrimSpace(itemText.String()) + "\n")
		}
	case Aside:
		style := v.Style
		if style == "" {
			style = "Note"
		}
		b.WriteString("\n" + prefix + "> **" + style + "**:")
		var inner strings.Builder
		for _, content := range v.Content {
			renderBlock(&inner, content, 0)
		}
		b.WriteString(" " + strings.TrimSpace(inner.String()) + "\n")
	case Unknown:
		// Not rendered.
	}
}

func renderInline(inline []Inline) string {
	var b strings.Builder
	for _, frag := range inline {
		switch frag.Type {
		case "codeVoice":
			b.WriteString("`" + frag.Code + "`")
		default:
			b.WriteString(frag.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// ExtractTitle pulls the display title from formatted markdown: the first
// heading line, else the first non-empty line. Total — falls back to
// DefaultTitle.
func ExtractTitle(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		}
		return trimmed
	}
	return DefaultTitle
}

// DetectDocType classifies a document from its URL and content. Total —
// falls back to the generic documentation tag.
func DetectDocType(url, content string) string {
	lowered := strings.ToLower(url)
	switch {
	case strings.Contains(lowered, "/tutorials/"):
		return docs.DocTypeTutorial
	case strings.Contains(lowered, "sample"):
		return docs.DocTypeSample
	case strings.Contains(lowered, "/guide"):
		return docs.DocTypeGuide
	case strings.Contains(lowered, "/documentation/"):
		if strings.Contains(strings.ToLower(content), "sample code") {
			return docs.DocTypeSample
		}
		// Framework landing pages are one path segment below
		// /documentation/; deeper paths are symbol pages.
		rest := lowered[strings.Index(lowered, "/documentation/")+len("/documentation/"):]
		if strings.Contains(strings.Trim(rest, "/"), "/") {
			return docs.DocTypeAPI
		}
		return docs.DocTypeDefault
	default:
		return docs.DocTypeDefault
	}
}
