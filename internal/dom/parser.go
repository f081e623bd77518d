package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ExplicitBooleans maps a *html.Node to the set of attribute names that
// appeared as name="name" in the original source bytes (spec §4.5, §9
// Open Question, resolved via option (a)). It is populated by Parse and
// consulted by SerializeHTML and SerializeXML when promoting booleans.
type ExplicitBooleans map[*html.Node]map[string]bool

// Parse parses raw HTML into a goquery document, enforcing the element
// cap and recording explicit-boolean attribute spellings.
//
// The element cap is checked before any further work (spec §2 "Parse &
// gate"): ErrTooManyElements-shaped via TooManyElementsError.
func Parse(rawHTML string, maxElems int) (*goquery.Document, ExplicitBooleans, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, nil, err
	}

	if maxElems > 0 {
		count := 0
		forEachNode(doc.Get(0), func(n *html.Node) {
			if n.Type == html.ElementNode {
				count++
			}
		})
		if count > maxElems {
			return nil, nil, TooManyElementsError(count)
		}
	}

	explicit := scanExplicitBooleans(rawHTML, doc.Get(0))
	return doc, explicit, nil
}

// scanExplicitBooleans re-tokenizes the raw byte stream with
// html.Tokenizer to record, per start-tag occurrence, which attributes
// were spelled name="name" in the source. It then walks the parsed tree
// in the same document order produced by html.Parse to associate each
// occurrence with its *html.Node, since goquery/x/net's parser does not
// retain source attribute text once the tree is built.
func scanExplicitBooleans(rawHTML string, root *html.Node) ExplicitBooleans {
	result := make(ExplicitBooleans)

	type tagAttrs struct {
		tag   string
		names map[string]bool
	}
	var occurrences []tagAttrs

	z := html.NewTokenizer(strings.NewReader(rawHTML))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tagBytes, hasAttrs := z.TagName()
		tag := string(tagBytes)
		names := map[string]bool{}
		for hasAttrs {
			keyB, valB, more := z.TagAttr()
			key := string(keyB)
			val := string(valB)
			if BooleanAttributes[strings.ToLower(key)] && strings.EqualFold(val, key) {
				names[strings.ToLower(key)] = true
			}
			hasAttrs = more
		}
		occurrences = append(occurrences, tagAttrs{tag: tag, names: names})
	}

	idx := 0
	forEachNode(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if idx >= len(occurrences) {
			return
		}
		occ := occurrences[idx]
		idx++
		if occ.tag != strings.ToLower(n.Data) || len(occ.names) == 0 {
			return
		}
		result[n] = occ.names
	})

	return result
}
