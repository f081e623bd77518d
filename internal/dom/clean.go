package dom

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// PrepArticle runs the spec §4.3.5 cleaning pipeline over the assembled
// article, in the fixed order the spec enumerates. allowedVideoRegex
// overrides the default embed-allowlist used by cleanConditionally's
// video detection, and linkDensityModifier shifts its link-density
// thresholds (spec §6, caller-supplied tuning knobs).
func PrepArticle(st *attemptState, article *html.Node, flags int, allowedVideoRegex *regexp.Regexp, linkDensityModifier float64) {
	stripPresentationalAttributes(st, article)
	markDataTables(st, article)
	fixLazyImages(st, article)

	cleanConditionally(st, article, "form", flags, allowedVideoRegex, linkDensityModifier)
	cleanConditionally(st, article, "fieldset", flags, allowedVideoRegex, linkDensityModifier)
	removeAllTags(st, article, "object", "embed", "footer", "link", "aside")

	removeShareWidgets(st, article)
	removeAllTags(st, article, "iframe", "input", "textarea", "select", "button")
	removeHeadersWithNegativeWeight(st, article)

	cleanConditionally(st, article, "table", flags, allowedVideoRegex, linkDensityModifier)
	cleanConditionally(st, article, "ul", flags, allowedVideoRegex, linkDensityModifier)
	cleanConditionally(st, article, "div", flags, allowedVideoRegex, linkDensityModifier)

	renameAllTags(st, article, "h1", "h2")
	removeEmptyParagraphs(st, article)
	removeBrBeforeParagraphs(st, article)
	collapseSingleCellTables(st, article)
}

// stripPresentationalAttributes removes the fixed attribute list
// recursively, skipping <svg> subtrees (spec §4.3.5 step 1).
func stripPresentationalAttributes(st *attemptState, root *html.Node) {
	forEachNode(root, func(n *html.Node) {
		if !isElement(n) {
			return
		}
		if getNodeName(n) == "svg" {
			return
		}
		if hasAncestorTagInclusive(n, "svg") {
			return
		}
		for _, a := range PresentationalAttributes {
			removeAttr(st, n, a)
		}
		if DeprecatedSizeAttributeElems[getNodeName(n)] {
			removeAttr(st, n, "width")
			removeAttr(st, n, "height")
		}
	})
}

func hasAncestorTagInclusive(n *html.Node, tag string) bool {
	if getNodeName(n) == tag {
		return true
	}
	return hasAncestorTag(n, tag, 0)
}

// markDataTables computes the data-table flag for every <table> (spec
// §4.3.5 step 2) and caches it on attemptState.
func markDataTables(st *attemptState, root *html.Node) {
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) != "table" {
			return
		}
		st.dataTable[n] = isDataTable(n)
	})
}

func isDataTable(table *html.Node) bool {
	if attrVal(table, "role") == "presentation" {
		return false
	}
	if attrVal(table, "datatable") == "0" {
		return false
	}
	if strings.TrimSpace(attrVal(table, "summary")) != "" {
		return true
	}
	if caption := findNode(table, func(n *html.Node) bool { return getNodeName(n) == "caption" }); caption != nil && caption.FirstChild != nil {
		return true
	}
	for _, tag := range []string{"col", "colgroup", "tfoot", "thead", "th"} {
		if someNode(table, func(n *html.Node) bool { return getNodeName(n) == tag }) {
			return true
		}
	}
	if someNode(table, func(n *html.Node) bool { return n != table && getNodeName(n) == "table" }) {
		return false
	}

	rows, maxCols := 0, 0
	forEachNode(table, func(tr *html.Node) {
		if getNodeName(tr) != "tr" {
			return
		}
		rowSpan := 1
		if v, ok := attr(tr, "rowspan"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				rowSpan = n
			}
		}
		rows += rowSpan
		cols := 0
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			name := getNodeName(c)
			if name != "td" && name != "th" {
				continue
			}
			span := 1
			if v, ok := attr(c, "colspan"); ok {
				if n, err := strconv.Atoi(v); err == nil {
					span = n
				}
			}
			cols += span
		}
		if cols > maxCols {
			maxCols = cols
		}
	})

	if (rows == 1 && maxCols >= 1) || (maxCols == 1 && rows >= 1) {
		return false
	}
	if rows >= 10 || maxCols > 4 {
		return true
	}
	return rows*maxCols > 10
}

// fixLazyImages implements spec §4.3.5 step 3.
func fixLazyImages(st *attemptState, root *html.Node) {
	var targets []*html.Node
	forEachNode(root, func(n *html.Node) {
		name := getNodeName(n)
		if name == "img" || name == "picture" || name == "figure" {
			targets = append(targets, n)
		}
	})
	for _, n := range targets {
		fixLazyImage(st, n)
	}
}

func fixLazyImage(st *attemptState, n *html.Node) {
	if src, ok := attr(n, "src"); ok {
		if m := RegexpB64DataUrl.FindStringSubmatch(src); m != nil && !strings.EqualFold(m[1], "image/svg+xml") {
			base64Part := src[strings.Index(src, ",")+1:]
			if len(base64Part) < 133 {
				hasOtherImageURL := false
				for _, a := range n.Attr {
					if a.Key == "src" {
						continue
					}
					if RegexpImageExtension.MatchString(a.Val) {
						hasOtherImageURL = true
						break
					}
				}
				if hasOtherImageURL {
					removeAttr(st, n, "src")
				}
			}
		}
	}

	hasUsableSrc := hasAnyImageAttr(n) && getNodeName(n) == "img"
	isLazy := strings.Contains(attrVal(n, "class"), "lazy")
	if hasUsableSrc && !isLazy {
		return
	}

	for _, a := range n.Attr {
		name := strings.ToLower(a.Key)
		if name == "src" || name == "srcset" || name == "alt" {
			continue
		}
		if RegexpImageExtensionDim.MatchString(a.Val) {
			setAttr(st, n, "srcset", a.Val)
		} else if RegexpImageURLOnly.MatchString(a.Val) {
			setAttr(st, n, "src", a.Val)
		}
	}

	if getNodeName(n) == "figure" && !someNode(n, func(c *html.Node) bool {
		name := getNodeName(c)
		return name == "img" || name == "picture"
	}) {
		for _, a := range n.Attr {
			if RegexpImageExtensionDim.MatchString(a.Val) || RegexpImageURLOnly.MatchString(a.Val) {
				img := &html.Node{Type: html.ElementNode}
				setTagName(st, img, "img")
				setAttr(st, img, "src", a.Val)
				n.AppendChild(img)
				break
			}
		}
	}
}

func removeAllTags(st *attemptState, root *html.Node, tags ...string) {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	n := root.FirstChild
	for n != nil {
		next := getNextNode(n, false)
		if isElement(n) && set[getNodeName(n)] {
			next = removeAndGetNext(n)
		}
		n = next
	}
}

func renameAllTags(st *attemptState, root *html.Node, from, to string) {
	var targets []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) == from {
			targets = append(targets, n)
		}
	})
	for _, n := range targets {
		setTagName(st, n, to)
	}
}

// removeShareWidgets implements spec §4.3.5 step 5.
func removeShareWidgets(st *attemptState, article *html.Node) {
	for top := article.FirstChild; top != nil; {
		next := top.NextSibling
		if isElement(top) {
			var toRemove []*html.Node
			forEachNode(top, func(n *html.Node) {
				if !isElement(n) {
					return
				}
				if RegexpShareElements.MatchString(classAndID(n)) && textLength(st, n) < DefaultCharThreshold {
					toRemove = append(toRemove, n)
				}
			})
			for _, n := range toRemove {
				removeNode(n)
			}
		}
		top = next
	}
}

func removeHeadersWithNegativeWeight(st *attemptState, root *html.Node) {
	var targets []*html.Node
	forEachNode(root, func(n *html.Node) {
		name := getNodeName(n)
		if (name == "h1" || name == "h2") && getClassWeight(n, true) < 0 {
			targets = append(targets, n)
		}
	})
	for _, n := range targets {
		removeNode(n)
	}
}

func removeEmptyParagraphs(st *attemptState, root *html.Node) {
	var targets []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) != "p" {
			return
		}
		hasContent := someNode(n, func(c *html.Node) bool {
			name := getNodeName(c)
			return name == "img" || name == "embed" || name == "object" || name == "iframe"
		})
		if hasContent {
			return
		}
		if strings.TrimSpace(getInnerText(n, false)) != "" {
			return
		}
		targets = append(targets, n)
	})
	for _, n := range targets {
		removeNode(n)
	}
}

func removeBrBeforeParagraphs(st *attemptState, root *html.Node) {
	var targets []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) != "br" {
			return
		}
		for s := n.NextSibling; s != nil; s = s.NextSibling {
			if isWhitespaceText(s) {
				continue
			}
			if getNodeName(s) == "p" {
				targets = append(targets, n)
			}
			break
		}
	})
	for _, n := range targets {
		removeNode(n)
	}
}

// collapseSingleCellTables implements spec §4.3.5 step 12.
func collapseSingleCellTables(st *attemptState, root *html.Node) {
	var tables []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) == "table" {
			tables = append(tables, n)
		}
	})
	for _, table := range tables {
		tbody := soleElementChild(table)
		if tbody == nil || getNodeName(tbody) != "tbody" {
			tbody = table
		}
		tr := soleElementChild(tbody)
		if tr == nil || getNodeName(tr) != "tr" {
			continue
		}
		td := soleElementChild(tr)
		if td == nil || (getNodeName(td) != "td" && getNodeName(td) != "th") {
			continue
		}
		allPhrasing := true
		for c := td.FirstChild; c != nil; c = c.NextSibling {
			if !isPhrasingContent(st, c) {
				allPhrasing = false
				break
			}
		}
		if allPhrasing {
			setTagName(st, td, "p")
		} else {
			setTagName(st, td, "div")
		}
		replaceNode(table, td)
	}
}

func soleElementChild(n *html.Node) *html.Node {
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

// cleanConditionally implements spec §4.3.5's cleanConditionally(tag),
// gated by the cleanConditionally flag.
func cleanConditionally(st *attemptState, root *html.Node, tag string, flags int, allowedVideoRegex *regexp.Regexp, linkDensityModifier float64) {
	if flags&FlagCleanConditionally == 0 {
		return
	}
	var targets []*html.Node
	forEachNode(root, func(n *html.Node) {
		if getNodeName(n) == tag {
			targets = append(targets, n)
		}
	})
	for _, n := range targets {
		if n.Parent == nil {
			continue // already removed as a descendant of an earlier match
		}
		if shouldRemoveConditionally(st, n, flags, allowedVideoRegex, linkDensityModifier) {
			removeNode(n)
		}
	}
}

func shouldRemoveConditionally(st *attemptState, n *html.Node, flags int, allowedVideoRegex *regexp.Regexp, linkDensityModifier float64) bool {
	name := getNodeName(n)
	isList := name == "ul" || name == "ol"

	if hasAncestorTagInclusive(n, "code") {
		return false
	}
	if st.dataTable[n] {
		return false
	}
	if hasDataTableAncestor(st, n) {
		return false
	}
	if someNode(n, func(c *html.Node) bool { return getNodeName(c) == "table" && st.dataTable[c] }) {
		return false
	}

	text := getInnerText(n, true)
	if RegexpAdWords.MatchString(strings.TrimSpace(text)) || RegexpLoadingWords.MatchString(text) {
		return true
	}

	weight := getClassWeight(n, flags&FlagWeightClasses != 0)
	if weight < 0 {
		return true
	}

	if getCharCount(st, n) >= 10 {
		return false
	}

	pCount := countDescendants(n, "p")
	imgCount := countDescendants(n, "img")
	liCount := countDescendants(n, "li") - 100
	inputCount := countDescendants(n, "input")

	headingLen, totalLen := 0, len([]rune(text))
	forEachNode(n, func(c *html.Node) {
		switch getNodeName(c) {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			headingLen += len([]rune(getInnerText(c, true)))
		}
	})
	headingDensity := 0.0
	if totalLen > 0 {
		headingDensity = float64(headingLen) / float64(totalLen)
	}

	textDensityTags := map[string]bool{"span": true, "li": true, "td": true}
	for _, t := range DivToPElems {
		textDensityTags[t] = true
	}
	densityLen := 0
	forEachNode(n, func(c *html.Node) {
		if c == n || !textDensityTags[getNodeName(c)] {
			return
		}
		densityLen += len([]rune(getInnerText(c, true)))
	})

	videoPattern := allowedVideoRegex
	if videoPattern == nil {
		videoPattern = RegexpVideos
	}
	embedCount := 0
	forEachNode(n, func(c *html.Node) {
		name := getNodeName(c)
		if name != "object" && name != "embed" && name != "iframe" {
			return
		}
		for _, a := range c.Attr {
			if videoPattern.MatchString(a.Val) {
				return
			}
		}
		if videoPattern.MatchString(getInnerText(c, false)) {
			return
		}
		embedCount++
	})

	linkDensity := getLinkDensity(st, n)
	contentLen := totalLen

	if isList {
		var onlyChild *html.Node
		multiChild := false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !isElement(c) {
				continue
			}
			if childCount(c) > 1 {
				multiChild = true
			}
			onlyChild = c
		}
		_ = onlyChild
		if !multiChild {
			liTags := countDescendants(n, "li")
			if imgCount == liTags {
				return false
			}
		}
	}

	if !hasAncestorTag(n, "figure", 0) && getNodeName(n) != "figure" {
		if imgCount > 1 && float64(pCount)/float64(imgCount) < 0.5 {
			return true
		}
	}
	if !isList && liCount > pCount {
		return true
	}
	if inputCount > pCount/3 {
		return true
	}
	if !isList && getNodeName(n) != "figure" && headingDensity < 0.9 && contentLen < 25 && (imgCount == 0 || imgCount > 2) && linkDensity > 0 {
		return true
	}
	if !isList && weight < 25 && linkDensity > 0.2+linkDensityModifier {
		return true
	}
	if weight >= 25 && linkDensity > 0.5+linkDensityModifier {
		return true
	}
	if (embedCount == 1 && contentLen < 75) || embedCount > 1 {
		return true
	}
	textDensity := 0.0
	if totalLen > 0 {
		textDensity = float64(densityLen) / float64(totalLen)
	}
	if imgCount == 0 && textDensity == 0 {
		return true
	}

	return false
}

func hasDataTableAncestor(st *attemptState, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if getNodeName(p) == "table" && st.dataTable[p] {
			return true
		}
	}
	return false
}

func countDescendants(n *html.Node, tag string) int {
	count := 0
	forEachNode(n, func(c *html.Node) {
		if c != n && getNodeName(c) == tag {
			count++
		}
	})
	return count
}

func childCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			count++
		}
	}
	return count
}
