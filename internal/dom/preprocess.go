package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/rs/zerolog"
)

// Preprocess runs the spec §4.2 preprocessing pass over root: strips
// scripts/styles/comments, unwraps noscript-hidden images, collapses
// <br> runs into paragraphs, and renames <font> to <span>. Per-element
// heuristic misses (e.g. an unmatched noscript image swap) are logged
// at debug level and otherwise ignored (spec §7).
func Preprocess(st *attemptState, root *html.Node, logger *zerolog.Logger) {
	unwrapNoscriptImages(st, root, logger)
	removeScriptsStylesComments(root)
	collapseBrRuns(st, root)
	renameFontToSpan(st, root)
}

// removeScriptsStylesComments implements spec §4.2's first bullet: strip
// every <script>, <noscript>, <style>, and comment node. <noscript> is
// removed here rather than by unwrapNoscriptImages, which only needs to
// read a noscript's contents before this pass discards them.
func removeScriptsStylesComments(root *html.Node) {
	for n := root; n != nil; {
		next := getNextNode(n, false)
		name := getNodeName(n)
		if n.Type == html.CommentNode || name == "script" || name == "style" || name == "noscript" {
			next = removeAndGetNext(n)
		}
		n = next
	}
}

// unwrapNoscriptImages implements spec §4.2's two-phase noscript image
// swap: first drop placeholder <img>s that carry no real image
// attribute, then promote a <noscript>'s single image over its previous
// sibling when that sibling is also a single image. It must run before
// removeScriptsStylesComments discards the <noscript> wrappers it reads.
func unwrapNoscriptImages(st *attemptState, root *html.Node, logger *zerolog.Logger) {
	var imgs []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) == "img" {
			imgs = append(imgs, n)
		}
	})
	for _, img := range imgs {
		if hasAnyImageAttr(img) {
			continue
		}
		removeNode(img)
	}

	var noscripts []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) == "noscript" {
			noscripts = append(noscripts, n)
		}
	})
	for _, ns := range noscripts {
		// The parser keeps a <noscript>'s markup as a single raw text node;
		// parse it so the image inside can be inspected.
		if t := ns.FirstChild; t != nil && t == ns.LastChild && isText(t) {
			ctx := &html.Node{Type: html.ElementNode}
			setTagName(nil, ctx, "div")
			if frag, err := html.ParseFragment(strings.NewReader(t.Data), ctx); err == nil {
				ns.RemoveChild(t)
				for _, c := range frag {
					ns.AppendChild(c)
				}
			}
		}
		if !hasSingleImageContent(ns) {
			continue
		}
		prevImg := previousElementSibling(ns)
		if prevImg == nil || !isSingleImage(prevImg) {
			continue
		}
		newImg := findNode(ns, func(n *html.Node) bool { return getNodeName(n) == "img" })
		oldImg := prevImg
		if getNodeName(oldImg) != "img" {
			oldImg = findNode(oldImg, func(n *html.Node) bool { return getNodeName(n) == "img" })
		}
		if newImg == nil || oldImg == nil {
			if logger != nil {
				logger.Debug().Msg("noscript image swap matched but no <img> element could be located")
			}
			continue
		}
		mergeImageAttrs(st, oldImg, newImg)
		if newImg.Parent != nil {
			newImg.Parent.RemoveChild(newImg)
		}
		replaceNode(prevImg, newImg)
	}
}

func hasAnyImageAttr(img *html.Node) bool {
	for _, name := range []string{"src", "srcset", "data-src", "data-srcset"} {
		if v, ok := attr(img, name); ok && v != "" {
			return true
		}
	}
	for _, a := range img.Attr {
		if RegexpImageExtension.MatchString(a.Val) {
			return true
		}
	}
	return false
}

func hasSingleImageContent(n *html.Node) bool {
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
	if count != 1 {
		return false
	}
	return isSingleImage(only)
}

func previousElementSibling(n *html.Node) *html.Node {
	for p := n.PrevSibling; p != nil; p = p.PrevSibling {
		if isElement(p) {
			return p
		}
	}
	return nil
}

// mergeImageAttrs copies non-empty src/srcset-like attributes from old
// onto newImg, preserving conflicts as data-old-*: where newImg already has
// a different value it keeps it, and old's value goes to data-old-<name>.
func mergeImageAttrs(st *attemptState, old, newImg *html.Node) {
	for _, a := range old.Attr {
		lname := strings.ToLower(a.Key)
		if lname != "src" && lname != "srcset" && !strings.HasPrefix(lname, "data-src") && !strings.HasPrefix(lname, "data-srcset") {
			continue
		}
		if a.Val == "" {
			continue
		}
		key := a.Key
		if existing, ok := attr(newImg, a.Key); ok && existing != "" {
			if existing == a.Val {
				continue
			}
			key = "data-old-" + a.Key
		}
		setAttr(st, newImg, key, a.Val)
	}
}

// collapseBrRuns implements spec §4.2's <br> collapse algorithm.
func collapseBrRuns(st *attemptState, root *html.Node) {
	var brs []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) == "br" {
			brs = append(brs, n)
		}
	})

	for _, br := range brs {
		if br.Parent == nil {
			continue // already consumed by an earlier <br>'s run
		}
		consumed := 0
		cur := br.NextSibling
		var toRemove []*html.Node
		for cur != nil {
			if isWhitespaceText(cur) {
				cur = cur.NextSibling
				continue
			}
			if getNodeName(cur) == "br" {
				toRemove = append(toRemove, cur)
				consumed++
				cur = cur.NextSibling
				continue
			}
			break
		}
		if consumed == 0 {
			continue
		}
		for _, r := range toRemove {
			removeNode(r)
		}

		p := &html.Node{Type: html.ElementNode}
		setTagName(st, p, "p")
		replaceNode(br, p)

		cur = p.NextSibling
		for cur != nil {
			name := getNodeName(cur)
			if name == "br" {
				if nextIsBr(cur) {
					break
				}
			}
			if !isPhrasingContent(st, cur) {
				break
			}
			next := cur.NextSibling
			cur.Parent.RemoveChild(cur)
			p.AppendChild(cur)
			cur = next
		}
		for p.LastChild != nil && isWhitespaceText(p.LastChild) {
			p.RemoveChild(p.LastChild)
		}
		if getNodeName(p.Parent) == "p" {
			setTagName(st, p.Parent, "div")
		}
	}
}

func nextIsBr(br *html.Node) bool {
	for s := br.NextSibling; s != nil; s = s.NextSibling {
		if isWhitespaceText(s) {
			continue
		}
		return getNodeName(s) == "br"
	}
	return false
}

func renameFontToSpan(st *attemptState, root *html.Node) {
	var fonts []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) == "font" {
			fonts = append(fonts, n)
		}
	})
	for _, f := range fonts {
		setTagName(st, f, "span")
	}
}
