// Package reference finds and manages inline cross-entry links embedded in
// entry bodies. A link is an <elog-entry-ref id="..."> element inside the
// HTML fragment of the body text.
package reference

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// Tag is the element name carrying an inline entry reference.
	Tag = "elog-entry-ref"
	// IDAttr is the attribute holding the referenced entry id.
	IDAttr = "id"
)

// ExtractIDs parses the body as an HTML fragment and returns the referenced
// entry ids, de-duplicated in first-seen order. Elements without an id, or
// with an empty one, are skipped. Malformed markup yields no references,
// never an error.
func ExtractIDs(body string) []string {
	result := []string{}
	if body == "" {
		return result
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return result
	}

	seen := map[string]bool{}
	doc.Find(Tag).Each(func(_ int, sel *goquery.Selection) {
		id, ok := sel.Attr(IDAttr)
		if !ok || id == "" || seen[id] {
			return
		}
		seen[id] = true
		result = append(result, id)
	})

	return result
}

// ContainsAny reports whether the body holds at least one well-formed
// reference element.
func ContainsAny(body string) bool {
	if body == "" {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return false
	}
	return doc.Find(Tag).Length() > 0
}

// RewriteID replaces oldID with newID on every reference element whose id
// matches oldID case-insensitively, and returns the re-serialized fragment.
// A body with no matching reference is returned unchanged, so untouched
// markup stays byte-identical.
func RewriteID(body, oldID, newID string) string {
	if body == "" || oldID == "" {
		return body
	}

	bodyCtx := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(body), bodyCtx)
	if err != nil {
		return body
	}

	changed := false
	for _, node := range nodes {
		if rewriteNode(node, oldID, newID) {
			changed = true
		}
	}
	if !changed {
		return body
	}

	var buf bytes.Buffer
	for _, node := range nodes {
		if err := html.Render(&buf, node); err != nil {
			return body
		}
	}
	return buf.String()
}

func rewriteNode(node *html.Node, oldID, newID string) bool {
	changed := false
	if node.Type == html.ElementNode && node.Data == Tag {
		for i, attr := range node.Attr {
			if attr.Key == IDAttr && strings.EqualFold(attr.Val, oldID) {
				node.Attr[i].Val = newID
				changed = true
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if rewriteNode(child, oldID, newID) {
			changed = true
		}
	}
	return changed
}
