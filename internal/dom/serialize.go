package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// voidElements never carry a closing tag or children in HTML.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// SerializeHTML renders n using golang.org/x/net/html's native writer,
// after promoting explicit-boolean attributes back to name="name" form.
func SerializeHTML(n *html.Node, explicit ExplicitBooleans) (string, error) {
	promoteBooleans(n, explicit)
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SerializeXML renders n with self-closing void elements and explicit
// attr="attr" boolean spellings, since x/net/html's renderer is
// HTML-only (spec §4.5).
func SerializeXML(n *html.Node, explicit ExplicitBooleans) (string, error) {
	promoteBooleans(n, explicit)
	var b strings.Builder
	writeXML(&b, n)
	return b.String(), nil
}

func writeXML(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
	case html.CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->")
	case html.ElementNode:
		name := getNodeName(n)
		b.WriteString("<")
		b.WriteString(name)
		for _, a := range n.Attr {
			b.WriteString(" ")
			b.WriteString(a.Key)
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.Val))
			b.WriteString(`"`)
		}
		if voidElements[name] && n.FirstChild == nil {
			b.WriteString("/>")
			return
		}
		b.WriteString(">")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeXML(b, c)
		}
		b.WriteString(fmt.Sprintf("</%s>", name))
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeXML(b, c)
		}
	}
}

// promoteBooleans restores name="name" spelling for boolean attributes
// that were written that way in the source, per spec §4.5. The promotion
// only fires on elements the spec identifies as plausible carriers of an
// explicit boolean: those with an id, itemid, src, one of the
// data-media-* attributes, or an (itemtype,itemprop) pair.
func promoteBooleans(n *html.Node, explicit ExplicitBooleans) {
	if explicit == nil {
		return
	}
	forEachNode(n, func(el *html.Node) {
		if !isElement(el) {
			return
		}
		names, ok := explicit[el]
		if !ok || len(names) == 0 {
			return
		}
		if !isPlausibleBooleanCarrier(el) {
			return
		}
		for i, a := range el.Attr {
			key := strings.ToLower(a.Key)
			if names[key] && BooleanAttributes[key] {
				el.Attr[i].Val = key
			}
		}
	})
}

func isPlausibleBooleanCarrier(n *html.Node) bool {
	if hasAttr(n, "id") || hasAttr(n, "itemid") || hasAttr(n, "src") {
		return true
	}
	for _, name := range []string{"data-media-id", "data-media-uuid", "data-media-type", "data-media-aop"} {
		if hasAttr(n, name) {
			return true
		}
	}
	if hasAttr(n, "itemtype") && hasAttr(n, "itemprop") {
		return true
	}
	return false
}
