package scraper

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Tags whose subtrees carry navigation chrome, citations, or styling rather
// than prose. Skipped entirely during extraction.
var noiseTags = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"sup":      true,
	"table":    true,
	"header":   true,
	"footer":   true,
	"noscript": true,
}

// Classes stripped even outside noise tags (mediawiki edit links, print
// footers).
var noiseClasses = map[string]bool{
	"mw-editsection": true,
	"printfooter":    true,
}

// ExtractText parses an HTML document and returns its readable prose.
// When containerID is set and an element with that id exists, extraction is
// scoped to that element; otherwise the whole body is used. Block-level
// boundaries become newlines and runs of blank lines collapse to one.
func ExtractText(rawHTML, containerID string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	root := doc
	if containerID != "" {
		if n := findByID(doc, containerID); n != nil {
			root = n
		}
	}

	var sb strings.Builder
	collectText(root, &sb)
	return collapseBlankLines(sb.String()), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func hasNoiseClass(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			if noiseClasses[class] {
				return true
			}
		}
	}
	return false
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote", "section", "article":
		return true
	}
	return false
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		if noiseTags[n.Data] || hasNoiseClass(n) {
			return
		}
		if isBlockTag(n.Data) {
			sb.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if n.Type == html.ElementNode && isBlockTag(n.Data) {
		sb.WriteString("\n")
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
