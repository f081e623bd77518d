package dom

import (
	"sort"

	"golang.org/x/net/html"
)

type scoredCandidate struct {
	node  *html.Node
	score float64
}

// SelectTopCandidate implements spec §4.3.3: compute final scores, keep
// the top-N list, promote a shared ancestor if ≥3 others agree, then walk
// and promote up the ancestor chain.
func SelectTopCandidate(st *attemptState, body *html.Node, nTopCandidates int) *html.Node {
	var scored []scoredCandidate
	for n, s := range st.scores {
		if n.Type != html.ElementNode {
			continue
		}
		final := s.contentScore * (1 - getLinkDensity(st, n))
		scored = append(scored, scoredCandidate{node: n, score: final})
	}

	if len(scored) == 0 {
		wrapper := &html.Node{Type: html.ElementNode}
		setTagName(st, wrapper, "div")
		for c := body.FirstChild; c != nil; {
			next := c.NextSibling
			body.RemoveChild(c)
			wrapper.AppendChild(c)
			c = next
		}
		body.AppendChild(wrapper)
		initializeNode(st, wrapper, true)
		return wrapper
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > nTopCandidates {
		scored = scored[:nTopCandidates]
	}

	top := scored[0]
	topCandidate := top.node

	agreeing := 0
	var sharedAncestor *html.Node
	for _, other := range scored[1:] {
		if other.score < top.score*0.75 {
			continue
		}
		anc := commonAncestor(topCandidate, other.node)
		if anc == nil {
			continue
		}
		agreeing++
		sharedAncestor = anc
	}
	if agreeing >= 3 && sharedAncestor != nil {
		topCandidate = sharedAncestor
		initializeNode(st, topCandidate, true)
	}

	lastScore := candidateScore(st, topCandidate)
	parent := topCandidate.Parent
	for parent != nil && parent.Type == html.ElementNode && getNodeName(parent) != "body" {
		parentScore := candidateScore(st, parent)
		if parentScore < lastScore/3 {
			break
		}
		if parentScore > lastScore {
			topCandidate = parent
			break
		}
		lastScore = parentScore
		parent = parent.Parent
	}

	for topCandidate.Parent != nil && getNodeName(topCandidate.Parent) != "body" && singleElementChild(topCandidate.Parent) {
		topCandidate = topCandidate.Parent
	}

	return topCandidate
}

func candidateScore(st *attemptState, n *html.Node) float64 {
	if s, ok := st.scores[n]; ok {
		return s.contentScore
	}
	return 0
}

func singleElementChild(n *html.Node) bool {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			count++
		}
	}
	return count == 1
}

// commonAncestor returns the nearest ancestor shared by a and b
// (inclusive of a or b themselves), or nil if none within the document.
func commonAncestor(a, b *html.Node) *html.Node {
	ancestorsA := map[*html.Node]bool{a: true}
	for p := a.Parent; p != nil; p = p.Parent {
		ancestorsA[p] = true
	}
	if ancestorsA[b] {
		return b
	}
	for p := b.Parent; p != nil; p = p.Parent {
		if ancestorsA[p] {
			return p
		}
	}
	return nil
}

// AssembleArticle implements spec §4.3.4: create a new article <div> and
// walk the top candidate's siblings, including ones with a high enough
// score or matching class, or short/long paragraphs per the rules.
func AssembleArticle(st *attemptState, topCandidate *html.Node, synthesized bool) *html.Node {
	article := &html.Node{Type: html.ElementNode}
	setTagName(st, article, "div")

	topScore := candidateScore(st, topCandidate)
	siblingScoreThreshold := maxFloat(10, topScore*0.2)
	topClass := attrVal(topCandidate, "class")

	parent := topCandidate.Parent
	if parent == nil {
		setAttr(st, topCandidate, "id", "readability-page-1")
		setAttr(st, topCandidate, "class", "page")
		return topCandidate
	}

	var siblings []*html.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			siblings = append(siblings, c)
		}
	}

	for _, sib := range siblings {
		keep := false
		if sib == topCandidate {
			keep = true
		} else {
			bonus := 0.0
			if topClass != "" && attrVal(sib, "class") == topClass {
				bonus = topScore * 0.2
			}
			score := candidateScore(st, sib) + bonus
			if score >= siblingScoreThreshold {
				keep = true
			} else if getNodeName(sib) == "p" {
				text := getInnerText(sib, true)
				length := len([]rune(text))
				density := getLinkDensity(st, sib)
				if length > 80 && density < 0.25 {
					keep = true
				} else if length > 0 && length < 80 && density == 0 && RegexpSentenceEnd.MatchString(text) {
					keep = true
				}
			}
		}
		if !keep {
			continue
		}
		clone := sib
		switch getNodeName(clone) {
		case "div", "article", "section", "p", "ol", "ul":
		default:
			setTagName(st, clone, "div")
		}
		parent.RemoveChild(clone)
		article.AppendChild(clone)
	}

	if synthesized {
		setAttr(st, article, "id", "readability-page-1")
		setAttr(st, article, "class", "page")
	} else {
		wrapper := &html.Node{Type: html.ElementNode}
		setTagName(st, wrapper, "div")
		setAttr(st, wrapper, "id", "readability-page-1")
		setAttr(st, wrapper, "class", "page")
		wrapper.AppendChild(article)
		return wrapper
	}

	return article
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

