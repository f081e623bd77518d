package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// getNodeName returns the lowercased tag name, or an empty string for
// non-element nodes.
func getNodeName(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// attr returns an attribute value and whether it was present. Attribute
// name comparisons are ASCII case-insensitive per spec §9.
func attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func attrVal(n *html.Node, name string) string {
	v, _ := attr(n, name)
	return v
}

func hasAttr(n *html.Node, name string) bool {
	_, ok := attr(n, name)
	return ok
}

// setAttr creates or overwrites an attribute and bumps the node's
// mutation token so dependent caches invalidate (spec §9).
func setAttr(st *attemptState, n *html.Node, name, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = val
			if st != nil {
				st.bump(n)
			}
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
	if st != nil {
		st.bump(n)
	}
}

func removeAttr(st *attemptState, n *html.Node, name string) {
	out := n.Attr[:0]
	changed := false
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			changed = true
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
	if changed && st != nil {
		st.bump(n)
	}
}

func classAndID(n *html.Node) string {
	return attrVal(n, "class") + " " + attrVal(n, "id")
}

// setTagName renames an element in place, preserving attributes and
// children (teacher's setNodeTag, generalized).
func setTagName(st *attemptState, n *html.Node, name string) {
	n.Data = name
	n.DataAtom = atom.Lookup([]byte(name))
	if st != nil {
		st.bump(n)
	}
}

// forEachNode walks n and its descendants in document order (root first).
func forEachNode(n *html.Node, fn func(*html.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		forEachNode(c, fn)
		c = next
	}
}

// collectElements returns every element node in document order.
func collectElements(n *html.Node) []*html.Node {
	var out []*html.Node
	forEachNode(n, func(c *html.Node) {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	})
	return out
}

// findNode returns the first descendant (including n) for which fn is true.
func findNode(n *html.Node, fn func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if fn(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, fn); found != nil {
			return found
		}
	}
	return nil
}

func someNode(n *html.Node, fn func(*html.Node) bool) bool {
	return findNode(n, fn) != nil
}

func everyNode(n *html.Node, fn func(*html.Node) bool) bool {
	return !someNode(n, func(c *html.Node) bool { return !fn(c) })
}

// hasAncestorTag reports whether any ancestor (up to maxDepth, 0 = no
// limit) has the given tag name.
func hasAncestorTag(n *html.Node, tag string, maxDepth int) bool {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		if maxDepth > 0 && depth >= maxDepth {
			return false
		}
		if getNodeName(p) == tag {
			return true
		}
		depth++
	}
	return false
}

func getNodeAncestors(n *html.Node, maxDepth int) []*html.Node {
	var out []*html.Node
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		if maxDepth > 0 && depth >= maxDepth {
			break
		}
		out = append(out, p)
		depth++
	}
	return out
}

// getNextNode returns the next node in document order, optionally
// skipping the subtree rooted at n (used when n has just been removed or
// should not be descended into).
func getNextNode(n *html.Node, ignoreSelfAndKids bool) *html.Node {
	if !ignoreSelfAndKids && n.FirstChild != nil {
		return n.FirstChild
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.NextSibling != nil {
			return cur.NextSibling
		}
	}
	return nil
}

// removeAndGetNext detaches n from its parent and returns the node that
// document-order traversal should resume at.
func removeAndGetNext(n *html.Node) *html.Node {
	next := getNextNode(n, true)
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return next
}

func removeNode(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// replaceNode substitutes old with replacement at the same position. A
// replacement that is still attached (for example a child of old) is
// detached first.
func replaceNode(old, replacement *html.Node) {
	if old.Parent == nil {
		return
	}
	if replacement.Parent != nil {
		replacement.Parent.RemoveChild(replacement)
	}
	old.Parent.InsertBefore(replacement, old)
	old.Parent.RemoveChild(old)
}

func isElement(n *html.Node) bool { return n != nil && n.Type == html.ElementNode }
func isText(n *html.Node) bool    { return n != nil && n.Type == html.TextNode }

func isWhitespaceText(n *html.Node) bool {
	return isText(n) && RegexpWhitespace.MatchString(n.Data)
}

// isElementWithoutContent reports an element with no text and no
// meaningful children (spec §4.3.1 "Empty wrappers").
func isElementWithoutContent(n *html.Node) bool {
	if !isElement(n) {
		return false
	}
	if strings.TrimSpace(getInnerText(n, false)) != "" {
		return false
	}
	childCount := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			name := getNodeName(c)
			if name != "br" && name != "hr" {
				childCount++
			}
		}
	}
	return childCount == 0
}

// isPhrasingContent reports whether n is inline/phrasing content per the
// fixed whitelist in spec §4.2; a, del, and ins are phrasing iff every
// child is phrasing.
func isPhrasingContent(st *attemptState, n *html.Node) bool {
	if n.Type == html.TextNode {
		return true
	}
	name := getNodeName(n)
	if name == "" {
		return false
	}
	if st != nil {
		if cached, ok := st.phrasing[n]; ok && cached.token == st.token(n) {
			return cached.value
		}
	}
	var result bool
	if PhrasingElems[name] {
		result = true
	} else if name == "a" || name == "del" || name == "ins" {
		result = true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !isPhrasingContent(st, c) {
				result = false
				break
			}
		}
	}
	if st != nil {
		st.phrasing[n] = boolCacheEntry{token: st.token(n), value: result}
	}
	return result
}

func hasChildBlockElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isElement(c) {
			continue
		}
		name := getNodeName(c)
		for _, b := range DivToPElems {
			if name == b {
				return true
			}
		}
		if hasChildBlockElement(c) {
			return true
		}
	}
	return false
}

func hasSingleTagInsideElement(n *html.Node, tag string) bool {
	var only *html.Node
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			count++
			only = c
		} else if isText(c) && strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return count == 1 && getNodeName(only) == tag
}

func isSingleImage(n *html.Node) bool {
	if getNodeName(n) == "img" {
		return true
	}
	count := 0
	var only *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			count++
			only = c
		} else if isText(c) && strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	if count == 1 {
		return isSingleImage(only)
	}
	return false
}

func nodeDepth(n *html.Node) int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}
