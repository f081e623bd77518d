package readability

import (
	"math"
	"strings"

	"github.com/inkwell-go/readability/internal/dom"
	"golang.org/x/net/html"
)

// ReaderableOptions configures the independent readerable probe (spec
// §4.7).
type ReaderableOptions struct {
	MinContentLength int
	MinScore         float64
	IsVisible        func(*html.Node) bool
}

// DefaultReaderableOptions returns the spec's defaults: minContentLength
// 140, minScore 20, and the same visibility predicate the grabber uses.
func DefaultReaderableOptions() ReaderableOptions {
	return ReaderableOptions{
		MinContentLength: 140,
		MinScore:         20,
		IsVisible:        dom.IsNodeVisible,
	}
}

// IsProbablyReaderable scores candidates drawn from (p, pre, article)
// plus parents-of(div > br), returning true as soon as the running score
// exceeds MinScore (spec §4.7).
func IsProbablyReaderable(root *html.Node, opts ReaderableOptions) bool {
	if opts.IsVisible == nil {
		opts.IsVisible = dom.IsNodeVisible
	}

	var score float64
	found := false

	dom.ForEachNode(root, func(n *html.Node) {
		if found {
			return
		}
		if !isReaderableCandidate(n) {
			return
		}
		if !opts.IsVisible(n) {
			return
		}

		matchString := dom.ClassAndID(n)
		if dom.RegexpUnlikelyCandidates.MatchString(matchString) && !dom.RegexpMaybeCandidate.MatchString(matchString) {
			return
		}
		if dom.GetNodeName(n) == "p" && dom.HasAncestorTag(n, "li", 0) {
			return
		}

		text := strings.TrimSpace(dom.GetInnerText(n, true))
		length := len([]rune(text))
		if length < opts.MinContentLength {
			return
		}

		score += math.Sqrt(float64(length - opts.MinContentLength))
		if score > opts.MinScore {
			found = true
		}
	})

	return found
}

func isReaderableCandidate(n *html.Node) bool {
	switch dom.GetNodeName(n) {
	case "p", "pre", "article":
		return true
	case "div":
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.GetNodeName(c) == "br" {
				return true
			}
		}
	}
	return false
}
