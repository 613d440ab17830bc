// Package goquery implements visible-text extraction on top of goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seoentity/seoentity"
	"golang.org/x/net/html"
)

// Ensure VisibleExtractor implements seoentity.Extractor at compile time.
var _ seoentity.Extractor = (*VisibleExtractor)(nil)

// nonContentSelector matches elements whose text is never visible content.
const nonContentSelector = "script, style, head, title, meta, noscript"

// chromeSelector matches structural page chrome.
const chromeSelector = "nav, footer, aside"

// BoilerplateTokens are class and id tokens that mark page chrome.
// Matching is exact and case-sensitive.
var BoilerplateTokens = []string{"sidebar", "nav", "footer", "menu", "header"}

// VisibleExtractor reduces HTML to the text of its body, dropping scripts,
// styles, metadata, comments, navigation, footers, asides and elements
// tagged with a boilerplate class or id.
type VisibleExtractor struct {
	boilerplate string
}

// NewVisibleExtractor creates a new VisibleExtractor.
func NewVisibleExtractor() *VisibleExtractor {
	selectors := make([]string, 0, 2*len(BoilerplateTokens))
	for _, tok := range BoilerplateTokens {
		selectors = append(selectors, "[class~="+tok+"]", "[id~="+tok+"]")
	}
	return &VisibleExtractor{boilerplate: strings.Join(selectors, ", ")}
}

// Name returns the extractor's identifier.
func (e *VisibleExtractor) Name() string {
	return "visible"
}

// Extract returns the visible text of rawHTML, with every text node trimmed
// and joined by a single space. It never fails: if the markup cannot be
// parsed the input is returned with whitespace collapsed.
func (e *VisibleExtractor) Extract(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return strings.Join(strings.Fields(rawHTML), " ")
	}

	doc.Find(nonContentSelector).Remove()
	doc.Find(chromeSelector).Remove()
	doc.Find(e.boilerplate).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	for _, n := range root.Nodes {
		parts = appendText(parts, n)
	}
	return strings.Join(parts, " ")
}

// appendText walks n depth-first, collecting trimmed text nodes.
// Comments and other non-element nodes contribute nothing.
func appendText(parts []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			parts = append(parts, s)
		}
		return parts
	case html.ElementNode, html.DocumentNode:
	default:
		return parts
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = appendText(parts, c)
	}
	return parts
}
