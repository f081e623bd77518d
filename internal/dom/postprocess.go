package dom

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/rs/zerolog"
)

// PostProcess implements spec §4.4: resolve relative URIs, simplify
// nested wrappers, and strip classes. URI resolution failures are logged
// at debug level and the original attribute value is kept (spec §7).
func PostProcess(st *attemptState, article *html.Node, doc *html.Node, documentURI string, classesToPreserve []string, keepClasses bool, logger *zerolog.Logger) {
	base := effectiveBaseURI(doc, documentURI)
	resolveURIs(st, article, documentURI, base, logger)
	simplifyNestedWrappers(st, article)
	if !keepClasses {
		stripClasses(st, article, classesToPreserve)
	}
}

func effectiveBaseURI(doc *html.Node, documentURI string) string {
	baseHref := ""
	forEachNode(doc, func(n *html.Node) {
		if baseHref != "" {
			return
		}
		if getNodeName(n) == "base" {
			baseHref = attrVal(n, "href")
		}
	})
	if baseHref == "" {
		return documentURI
	}
	docURL, err := url.Parse(documentURI)
	if err != nil {
		return documentURI
	}
	baseURL, err := url.Parse(baseHref)
	if err != nil {
		return documentURI
	}
	return docURL.ResolveReference(baseURL).String()
}

func resolveURIs(st *attemptState, article *html.Node, documentURI, base string, logger *zerolog.Logger) {
	baseURL, baseErr := url.Parse(base)
	if baseErr != nil && logger != nil {
		logger.Debug().Err(baseErr).Str("base", base).Msg("could not parse base URI, leaving hrefs/srcs unresolved")
	}

	resolve := func(raw string) string {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return raw
		}
		if strings.HasPrefix(raw, "data:") {
			return raw
		}
		if strings.HasPrefix(raw, "#") && base == documentURI {
			return raw
		}
		if baseErr != nil {
			return raw
		}
		ref, err := url.Parse(percentEncode(raw))
		if err != nil {
			if logger != nil {
				logger.Debug().Err(err).Str("uri", raw).Msg("could not parse URI, leaving it unresolved")
			}
			return raw
		}
		resolved := baseURL.ResolveReference(ref)
		out := resolved.String()
		out = normalizeFileURI(out)
		return out
	}

	forEachNode(article, func(n *html.Node) {
		if !isElement(n) {
			return
		}
		switch getNodeName(n) {
		case "a":
			href := attrVal(n, "href")
			if href == "" {
				return
			}
			if strings.HasPrefix(href, "javascript:") {
				unwrapJavascriptLink(st, n)
				return
			}
			setAttr(st, n, "href", resolve(href))
		case "img", "picture", "figure", "video", "audio", "source":
			if src, ok := attr(n, "src"); ok {
				setAttr(st, n, "src", resolve(src))
			}
			if poster, ok := attr(n, "poster"); ok {
				setAttr(st, n, "poster", resolve(poster))
			}
			if srcset, ok := attr(n, "srcset"); ok {
				setAttr(st, n, "srcset", resolveSrcset(srcset, resolve))
			}
		}
	})
}

var srcsetSplit = RegexpSrcsetUrl

func resolveSrcset(srcset string, resolve func(string) string) string {
	matches := srcsetSplit.FindAllStringSubmatch(srcset, -1)
	var parts []string
	for _, m := range matches {
		rawURL := strings.TrimSpace(m[1])
		if rawURL == "" {
			continue
		}
		descriptor := strings.TrimSpace(m[2])
		entry := resolve(rawURL)
		if descriptor != "" {
			entry += " " + descriptor
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, ", ")
}

// unwrapJavascriptLink implements the javascript: link rewrite: a single
// text child becomes plain text; otherwise children move into a <span>.
func unwrapJavascriptLink(st *attemptState, a *html.Node) {
	if a.FirstChild != nil && a.FirstChild == a.LastChild && a.FirstChild.Type == html.TextNode {
		text := &html.Node{Type: html.TextNode, Data: a.FirstChild.Data}
		replaceNode(a, text)
		return
	}
	span := &html.Node{Type: html.ElementNode}
	setTagName(st, span, "span")
	for c := a.FirstChild; c != nil; {
		next := c.NextSibling
		a.RemoveChild(c)
		span.AppendChild(c)
		c = next
	}
	replaceNode(a, span)
}

// percentEncode escapes non-ASCII bytes and spaces so
// net/url.Parse can resolve an IRI-ish href the way browsers do. There is
// no dedicated IRI library in the corpus for this narrow need, so this
// stays on net/url (documented in DESIGN.md).
func percentEncode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < 0x80 && r != ' ' {
			b.WriteRune(r)
			continue
		}
		if r == ' ' {
			b.WriteString("%20")
			continue
		}
		for _, bb := range []byte(string(r)) {
			b.WriteString("%")
			b.WriteString(strings.ToUpper(hexByte(bb)))
		}
	}
	return b.String()
}

func hexByte(b byte) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[b>>4], hex[b&0xf]})
}

// normalizeFileURI rewrites file:///X|/ to file:///X:/ (a historical
// Windows-drive-letter encoding some older authoring tools produced).
func normalizeFileURI(s string) string {
	if !strings.HasPrefix(s, "file:///") {
		return s
	}
	rest := s[len("file:///"):]
	if len(rest) >= 2 && unicode.IsLetter(rune(rest[0])) && rest[1] == '|' {
		return "file:///" + rest[:1] + ":" + rest[2:]
	}
	return s
}

// simplifyNestedWrappers implements spec §4.4's nested-wrapper
// simplification over <div>/<section> elements.
func simplifyNestedWrappers(st *attemptState, article *html.Node) {
	changed := true
	for changed {
		changed = false
		var targets []*html.Node
		forEachNode(article, func(n *html.Node) {
			name := getNodeName(n)
			if name != "div" && name != "section" {
				return
			}
			if strings.HasPrefix(attrVal(n, "id"), "readability") {
				return
			}
			targets = append(targets, n)
		})
		for _, n := range targets {
			if n.Parent == nil {
				continue
			}
			if isEmptyWrapper(n) {
				removeNode(n)
				changed = true
				continue
			}
			if only := singleElementChildNoText(n); only != nil {
				name := getNodeName(only)
				if name == "div" || name == "section" {
					for _, a := range n.Attr {
						setAttr(st, only, a.Key, a.Val)
					}
					replaceNode(n, only)
					changed = true
				}
			}
		}
	}
}

func isEmptyWrapper(n *html.Node) bool {
	if strings.TrimSpace(getInnerText(n, false)) != "" {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			name := getNodeName(c)
			if name != "br" && name != "hr" {
				return false
			}
		}
	}
	return true
}

func singleElementChildNoText(n *html.Node) *html.Node {
	var only *html.Node
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			count++
			only = c
		} else if isText(c) && strings.TrimSpace(c.Data) != "" {
			return nil
		}
	}
	if count == 1 {
		return only
	}
	return nil
}

// stripClasses removes class attributes recursively, preserving names in
// classesToPreserve ∪ {"page"}.
func stripClasses(st *attemptState, root *html.Node, classesToPreserve []string) {
	preserve := make(map[string]bool, len(classesToPreserve)+1)
	for _, c := range classesToPreserve {
		preserve[c] = true
	}
	preserve["page"] = true

	forEachNode(root, func(n *html.Node) {
		class, ok := attr(n, "class")
		if !ok {
			return
		}
		var kept []string
		for _, c := range strings.Fields(class) {
			if preserve[c] {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			removeAttr(st, n, "class")
		} else {
			setAttr(st, n, "class", strings.Join(kept, " "))
		}
	})
}
