package dom

import (
	"math"
	"strings"

	"golang.org/x/net/html"
)

// ancestorBaseScore returns the base score contributed by tag when an
// element is first initialized as an ancestor during scoring (spec
// §4.3.2).
func ancestorBaseScore(tag string) float64 {
	switch tag {
	case "div":
		return 5
	case "pre", "td", "blockquote":
		return 3
	case "address", "ol", "ul", "dl", "dd", "dt", "li", "form":
		return -3
	case "h1", "h2", "h3", "h4", "h5", "h6", "th":
		return -5
	}
	return 0
}

// getClassWeight returns ±25 per positive/negative regex match against
// class and id (spec Glossary "Class-weight"), gated by weightClasses.
func getClassWeight(n *html.Node, weightClasses bool) float64 {
	if !weightClasses {
		return 0
	}
	weight := 0.0
	if class, ok := attr(n, "class"); ok && class != "" {
		if RegexpPositive.MatchString(class) {
			weight += 25
		}
		if RegexpNegative.MatchString(class) {
			weight -= 25
		}
	}
	if id, ok := attr(n, "id"); ok && id != "" {
		if RegexpPositive.MatchString(id) {
			weight += 25
		}
		if RegexpNegative.MatchString(id) {
			weight -= 25
		}
	}
	return weight
}

// initializeNode lazily creates and seeds an element's score the first
// time it is encountered, either as a queued candidate or as an ancestor.
func initializeNode(st *attemptState, n *html.Node, weightClasses bool) *nodeScore {
	if s, ok := st.scores[n]; ok {
		return s
	}
	s := &nodeScore{contentScore: ancestorBaseScore(getNodeName(n)) + getClassWeight(n, weightClasses)}
	st.scores[n] = s
	return s
}

// contentScoreFor computes the base content score for a scored element
// (spec §4.3.2): 1 + (commaCount+1) + min(floor(textLen/100), 3).
func contentScoreFor(st *attemptState, n *html.Node) float64 {
	text := getInnerText(n, true)
	commaCount := len(RegexpUnicodeComma.FindAllString(text, -1))
	score := 1.0 + float64(commaCount+1)
	score += math.Min(math.Floor(float64(len([]rune(text)))/100), 3)
	return score
}

// ScoreNodes runs spec §4.3.2 over the queued candidates: for each, it
// walks up to 5 ancestors, lazily initializing each with its base score,
// and adds contentScore/divider to every ancestor on the chain.
func ScoreNodes(st *attemptState, candidates []*html.Node, weightClasses bool) {
	for _, n := range candidates {
		if n.Parent == nil {
			continue
		}
		text := getInnerText(n, true)
		if len([]rune(text)) < 25 {
			continue
		}

		ancestors := ancestorsUpTo(n, 5)
		if len(ancestors) == 0 {
			continue
		}

		contentScore := contentScoreFor(st, n)

		for level, ancestor := range ancestors {
			s := initializeNode(st, ancestor, weightClasses)
			var divider float64
			switch level {
			case 0:
				divider = 1
			case 1:
				divider = 2
			default:
				divider = 3 * float64(level)
			}
			s.contentScore += contentScore / divider
		}
	}
}

func ancestorsUpTo(n *html.Node, max int) []*html.Node {
	var out []*html.Node
	depth := 0
	for p := n.Parent; p != nil && depth < max; p = p.Parent {
		if p.Type != html.ElementNode {
			break
		}
		out = append(out, p)
		depth++
	}
	return out
}

// getLinkDensity computes Σ(linkTextLen*coef)/elementTextLen (spec
// §4.3.3), cached per element and invalidated on mutation-token change.
func getLinkDensity(st *attemptState, n *html.Node) float64 {
	tok := st.token(n)
	if e, ok := st.linkDensity[n]; ok && e.token == tok {
		return e.value
	}

	totalLen := float64(len([]rune(getInnerText(n, true))))
	if totalLen == 0 {
		st.linkDensity[n] = cacheEntry{token: tok, value: 0}
		return 0
	}

	var linkLen float64
	forEachNode(n, func(c *html.Node) {
		if getNodeName(c) != "a" {
			return
		}
		href := attrVal(c, "href")
		coef := 1.0
		if RegexpHashUrl.MatchString(href) {
			coef = 0.3
		}
		linkLen += float64(len([]rune(getInnerText(c, true)))) * coef
	})

	density := linkLen / totalLen
	st.linkDensity[n] = cacheEntry{token: tok, value: density}
	return density
}

// prepareNodes runs the spec §4.3.1 "Prepare nodes" pass over the body in
// document order, dropping invisible/unlikely/empty nodes and queuing
// default-score tags for scoring. It returns the queue plus the detected
// byline (byline detection only fires once, and only when none is already
// known).
type prepareResult struct {
	candidates   []*html.Node
	byline       string
	titleHeader  bool
}

func prepareNodes(st *attemptState, body *html.Node, flags int, knownByline, knownTitle string) prepareResult {
	res := prepareResult{}
	stripUnlikelys := flags&FlagStripUnlikelys != 0

	titleChecked := false

	n := body.FirstChild
	for n != nil {
		next := getNextNode(n, false)
		if n.Type != html.ElementNode {
			n = next
			continue
		}

		if !isNodeVisible(n) {
			n = removeAndGetNext(n)
			continue
		}
		if attrVal(n, "aria-modal") == "true" && attrVal(n, "role") == "dialog" {
			n = removeAndGetNext(n)
			continue
		}

		name := getNodeName(n)

		if res.byline == "" && knownByline == "" {
			if isByline(n) {
				text := getInnerText(n, true)
				if isValidByline(text) {
					res.byline = text
					n = removeAndGetNext(n)
					continue
				}
			}
		}

		if !titleChecked && (name == "h1" || name == "h2") && knownTitle != "" {
			if textSimilarity(knownTitle, getInnerText(n, true)) > 0.75 {
				titleChecked = true
				n = removeAndGetNext(n)
				continue
			}
		}

		if stripUnlikelys {
			matchString := classAndID(n)
			if RegexpUnlikelyCandidates.MatchString(matchString) && !RegexpMaybeCandidate.MatchString(matchString) &&
				name != "body" && name != "a" && !hasAncestorTag(n, "table", 0) && !hasAncestorTag(n, "code", 0) {
				n = removeAndGetNext(n)
				continue
			}
			if UnlikelyRoles[attrVal(n, "role")] {
				n = removeAndGetNext(n)
				continue
			}
		}

		switch name {
		case "div", "section", "header", "h1", "h2", "h3", "h4", "h5", "h6":
			if isElementWithoutContent(n) {
				n = removeAndGetNext(n)
				continue
			}
		}

		if name == "div" {
			n = prepareDiv(st, n)
			if n == nil {
				n = next
				continue
			}
			name = getNodeName(n)
			next = getNextNode(n, false)
		}

		if DefaultTagsToScore[name] {
			res.candidates = append(res.candidates, n)
		}

		n = next
	}

	return res
}

func isByline(n *html.Node) bool {
	if attrVal(n, "rel") == "author" {
		return true
	}
	if strings.Contains(attrVal(n, "itemprop"), "author") {
		return true
	}
	return RegexpByline.MatchString(classAndID(n))
}

// isNodeVisible implements spec §4.3.1 visibility: hidden unless class
// contains fallback-image.
func isNodeVisible(n *html.Node) bool {
	style := attrVal(n, "style")
	if strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none") ||
		strings.Contains(strings.ReplaceAll(style, " ", ""), "visibility:hidden") {
		return strings.Contains(attrVal(n, "class"), "fallback-image")
	}
	if hasAttr(n, "hidden") {
		return strings.Contains(attrVal(n, "class"), "fallback-image")
	}
	if attrVal(n, "aria-hidden") == "true" {
		return strings.Contains(attrVal(n, "class"), "fallback-image")
	}
	return true
}

// prepareDiv implements spec §4.3.1's <div> handling: group phrasing runs
// into <p> wrappers, then collapse single-<p> or block-free divs.
// Returns the node that should continue traversal from (may be a
// replacement <p>), or nil if the original div is gone and traversal
// should resume at the precomputed next node.
func prepareDiv(st *attemptState, div *html.Node) *html.Node {
	groupPhrasingRuns(st, div)

	var onlyP *html.Node
	pCount, sigTextSibling := 0, false
	for c := div.FirstChild; c != nil; c = c.NextSibling {
		if getNodeName(c) == "p" {
			pCount++
			onlyP = c
		} else if isText(c) && strings.TrimSpace(c.Data) != "" {
			sigTextSibling = true
		}
	}

	if pCount == 1 && !sigTextSibling && childCount(div) == 1 {
		if getLinkDensity(st, div) < 0.25 {
			replaceNode(div, onlyP)
			return onlyP
		}
	}

	if !hasChildBlockElement(div) {
		setTagName(st, div, "p")
		return div
	}

	return div
}

// groupPhrasingRuns wraps contiguous runs of phrasing-content children in
// new <p> elements, trimming leading/trailing whitespace and <br>.
func groupPhrasingRuns(st *attemptState, div *html.Node) {
	isSpaceOrBr := func(n *html.Node) bool { return isWhitespaceText(n) || getNodeName(n) == "br" }
	c := div.FirstChild
	for c != nil {
		if !isPhrasingContent(st, c) {
			c = c.NextSibling
			continue
		}
		if isSpaceOrBr(c) {
			c = c.NextSibling
			continue
		}
		runStart := c
		runEnd := c
		for runEnd.NextSibling != nil && isPhrasingContent(st, runEnd.NextSibling) {
			runEnd = runEnd.NextSibling
		}
		for runStart != runEnd.NextSibling && isSpaceOrBr(runEnd) {
			runEnd = runEnd.PrevSibling
		}

		p := &html.Node{Type: html.ElementNode}
		setTagName(st, p, "p")
		div.InsertBefore(p, runStart)
		cur := runStart
		for cur != nil {
			stop := cur == runEnd
			next := cur.NextSibling
			div.RemoveChild(cur)
			p.AppendChild(cur)
			if stop {
				break
			}
			cur = next
		}
		c = p.NextSibling
	}
}
