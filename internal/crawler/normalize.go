package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Normalized holds the text-level view of a fetched page.
type Normalized struct {
	// Text is the visible text content with all whitespace runs
	// collapsed to single spaces.
	Text string

	// Title is the content of the first <title> element, or empty.
	Title string

	// Links holds the absolute URLs of all anchor hrefs, resolved
	// against the page URL, in document order. Non-navigational
	// schemes (javascript:, mailto:, tel:, data:) and bare fragments
	// are excluded.
	Links []string
}

// Normalize parses raw HTML markup and reduces it to visible text, the
// page title, and resolved outbound links.
//
// Script, style, noscript, iframe, and template subtrees contribute no
// text: their content is code or markup, not prose, and would pollute
// keyword matching with false positives.
func Normalize(rawMarkup, pageURL string) (*Normalized, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL %q: %w", pageURL, err)
	}

	doc, err := html.Parse(strings.NewReader(rawMarkup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	n := &Normalized{}
	var text strings.Builder
	walk(doc, base, n, &text)

	// Collapse all whitespace runs (newlines, tabs, repeated spaces)
	// so keyword offsets are stable regardless of source formatting.
	n.Text = strings.Join(strings.Fields(text.String()), " ")
	return n, nil
}

// walk traverses the parse tree collecting text, title, and links.
func walk(node *html.Node, base *url.URL, n *Normalized, text *strings.Builder) {
	switch node.Type {
	case html.ElementNode:
		switch node.Data {
		case "script", "style", "noscript", "iframe", "template":
			return
		case "title":
			if n.Title == "" {
				n.Title = strings.Join(strings.Fields(nodeText(node)), " ")
			}
			return
		case "a":
			if link, ok := resolveLink(node, base); ok {
				n.Links = append(n.Links, link)
			}
		}
	case html.TextNode:
		text.WriteString(node.Data)
		text.WriteByte(' ')
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child, base, n, text)
	}
}

// nodeText concatenates the text content of a node's subtree.
func nodeText(node *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(node)
	return b.String()
}

// resolveLink extracts and resolves an anchor's href against the page
// URL. It reports false for anchors without a usable navigation target.
func resolveLink(node *html.Node, base *url.URL) (string, bool) {
	var href string
	for _, attr := range node.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}

	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	// Fragments address positions within a page, not pages.
	resolved.Fragment = ""
	return resolved.String(), true
}
