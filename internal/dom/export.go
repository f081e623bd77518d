package dom

import "golang.org/x/net/html"

// The functions below re-export internal helpers the facade package needs
// for the readerable probe (spec §4.7), which is deliberately independent
// of the extraction engine's per-attempt state.

func GetNodeName(n *html.Node) string                { return getNodeName(n) }
func GetInnerText(n *html.Node, normalize bool) string { return getInnerText(n, normalize) }
func ClassAndID(n *html.Node) string                  { return classAndID(n) }
func IsNodeVisible(n *html.Node) bool                 { return isNodeVisible(n) }
func TextSimilarity(a, b string) float64              { return textSimilarity(a, b) }
func ForEachNode(n *html.Node, fn func(*html.Node))   { forEachNode(n, fn) }
func HasAncestorTag(n *html.Node, tag string, maxDepth int) bool {
	return hasAncestorTag(n, tag, maxDepth)
}

// FindBody returns the document's <body> element, or nil.
func FindBody(root *html.Node) *html.Node {
	return findNode(root, func(n *html.Node) bool { return getNodeName(n) == "body" })
}
