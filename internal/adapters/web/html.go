package web

import (
	"strings"

	"golang.org/x/net/html"
)

// TextContent returns the concatenated text of every text node under n,
// script and style bodies included. Comments are not text nodes and are left
// out.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return sb.String()
}

// FirstTableHeader returns the text of the first th inside the first table
// of the document, and false if there is none.
func FirstTableHeader(doc *html.Node) (string, bool) {
	table := findElement(doc, "table")
	if table == nil {
		return "", false
	}
	th := findElement(table, "th")
	if th == nil {
		return "", false
	}
	return TextContent(th), true
}

// findElement returns the first element named tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
