package dom

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// ExtractMetadata harvests the metadata record from the document (spec
// §4.1). The raw <title> text is read from doc itself. JSON-LD parse
// failures are logged at debug level and swallowed (spec §7).
func ExtractMetadata(doc *goquery.Document, disableJSONLD bool, logger *zerolog.Logger) Metadata {
	values := extractMetaTags(doc)

	var jsonLD Metadata
	if !disableJSONLD {
		jsonLD = extractJSONLD(doc, getRawTitle(doc), logger)
	}

	md := Metadata{}
	md.Title = firstNonEmpty(jsonLD.Title, pick(values, TitleFieldPriority))
	if md.Title == "" {
		md.Title = getArticleTitle(doc)
	}
	md.Byline = firstNonEmpty(jsonLD.Byline, pick(values, BylineFieldPriority))
	md.Excerpt = firstNonEmpty(jsonLD.Excerpt, pick(values, ExcerptFieldPriority))
	md.SiteName = firstNonEmpty(jsonLD.SiteName, pick(values, SiteNameFieldPriority))
	md.PublishedTime = firstNonEmpty(jsonLD.PublishedTime, pick(values, PublishedTimeFieldPriority))

	md.Title = normalizeUnicode(strings.TrimSpace(unescapeHTMLEntities(md.Title)))
	md.Byline = normalizeUnicode(strings.TrimSpace(unescapeHTMLEntities(md.Byline)))
	md.Excerpt = normalizeUnicode(strings.TrimSpace(unescapeHTMLEntities(md.Excerpt)))
	md.SiteName = normalizeUnicode(strings.TrimSpace(unescapeHTMLEntities(md.SiteName)))
	md.PublishedTime = normalizeUnicode(strings.TrimSpace(unescapeHTMLEntities(md.PublishedTime)))
	return md
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func pick(values map[string]string, priority []string) string {
	for _, key := range priority {
		if v, ok := values[key]; ok && v != "" {
			return v
		}
	}
	return ""
}

// extractMetaTags implements spec §4.1's meta-tag path: property wins
// over name on the same element; keys are normalized (lowercase,
// whitespace stripped, '.' -> ':').
func extractMetaTags(doc *goquery.Document) map[string]string {
	values := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		if property, ok := s.Attr("property"); ok {
			if m := RegexpMetaPropertyKey.FindStringSubmatch(property); m != nil {
				key := normalizeMetaKey(m[1] + ":" + m[2])
				values[key] = content
				return
			}
		}
		if name, ok := s.Attr("name"); ok {
			if m := RegexpMetaNameKey.FindStringSubmatch(name); m != nil {
				key := normalizeMetaKey(name)
				values[key] = content
			}
		}
	})
	return values
}

func normalizeMetaKey(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	return strings.ReplaceAll(s, ".", ":")
}

func getRawTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// jsonLDNode is a loosely-typed view over a JSON-LD object, tolerant of
// @graph nesting and array-of-author forms.
type jsonLDNode map[string]any

func extractJSONLD(doc *goquery.Document, rawTitle string, logger *zerolog.Logger) Metadata {
	var md Metadata
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := s.Text()
		content = stripCDATA(content)

		var root any
		if err := json.Unmarshal([]byte(content), &root); err != nil {
			if logger != nil {
				logger.Debug().Err(err).Msg("malformed JSON-LD script, skipping")
			}
			return true // malformed JSON-LD: skip this script, keep scanning
		}

		node := selectArticleNode(root)
		if node == nil {
			return true
		}

		md = metadataFromJSONLD(node, rawTitle)
		return false
	})
	return md
}

func stripCDATA(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<![CDATA[")
	s = strings.TrimSuffix(s, "]]>")
	return strings.TrimSpace(s)
}

// selectArticleNode finds the first object (possibly via a top-level
// array or a @graph array) whose @context is schema.org and whose @type
// matches the Article-type regex.
func selectArticleNode(root any) jsonLDNode {
	switch v := root.(type) {
	case map[string]any:
		node := jsonLDNode(v)
		if isSchemaOrgContext(node) {
			if matchesArticleType(node) {
				return node
			}
			if graph, ok := node["@graph"].([]any); ok {
				for _, g := range graph {
					if gm, ok := g.(map[string]any); ok {
						gn := jsonLDNode(gm)
						if matchesArticleType(gn) {
							return gn
						}
					}
				}
			}
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				node := jsonLDNode(m)
				if isSchemaOrgContext(node) && matchesArticleType(node) {
					return node
				}
			}
		}
	}
	return nil
}

func isSchemaOrgContext(node jsonLDNode) bool {
	ctx, _ := node["@context"].(string)
	if ctx != "" {
		return RegexpSchemaOrg.MatchString(ctx)
	}
	if vocab, ok := node["@vocab"].(string); ok {
		return RegexpSchemaOrg.MatchString(vocab)
	}
	return false
}

func matchesArticleType(node jsonLDNode) bool {
	switch t := node["@type"].(type) {
	case string:
		return RegexpJsonLdArticleTypes.MatchString(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && RegexpJsonLdArticleTypes.MatchString(s) {
				return true
			}
		}
	}
	return false
}

func metadataFromJSONLD(node jsonLDNode, rawTitle string) Metadata {
	var md Metadata

	name, _ := node["name"].(string)
	headline, _ := node["headline"].(string)
	switch {
	case name != "" && headline != "" && name != headline:
		if textSimilarity(rawTitle, headline) > 0.75 && textSimilarity(rawTitle, name) <= 0.75 {
			md.Title = headline
		} else {
			md.Title = name
		}
	case headline != "":
		md.Title = headline
	default:
		md.Title = name
	}

	if author, ok := node["author"].(map[string]any); ok {
		if n, ok := author["name"].(string); ok {
			md.Byline = n
		}
	} else if authors, ok := node["author"].([]any); ok {
		var names []string
		for _, a := range authors {
			if am, ok := a.(map[string]any); ok {
				if n, ok := am["name"].(string); ok && n != "" {
					names = append(names, n)
				}
			}
		}
		md.Byline = strings.Join(names, ", ")
	} else if author, ok := node["author"].(string); ok {
		md.Byline = author
	}

	if desc, ok := node["description"].(string); ok {
		md.Excerpt = desc
	}
	if pub, ok := node["publisher"].(map[string]any); ok {
		if n, ok := pub["name"].(string); ok {
			md.SiteName = n
		}
	}
	if dp, ok := node["datePublished"].(string); ok {
		md.PublishedTime = dp
	}

	md.Title = strings.TrimSpace(md.Title)
	md.Byline = strings.TrimSpace(md.Byline)
	md.Excerpt = strings.TrimSpace(md.Excerpt)
	md.SiteName = strings.TrimSpace(md.SiteName)
	md.PublishedTime = strings.TrimSpace(md.PublishedTime)
	return md
}

// getArticleTitle implements the title-refinement algorithm (spec §4.1
// "Title refinement"). Branch ordering mirrors the prose: hierarchical
// separators checked first, then ": ", then length-based <h1> fallback.
func getArticleTitle(doc *goquery.Document) string {
	origTitle := getRawTitle(doc)
	docTitle := origTitle

	hadHierarchicalSeparators := false

	if RegexpHierarchicalSep.MatchString(docTitle) {
		hadHierarchicalSeparators = RegexpHierarchicalSepNarrow.MatchString(docTitle)
		docTitle = keepPrefixBeforeLastSeparator(docTitle)
		if wordCount(docTitle) < 3 {
			docTitle = keepSuffixAfterFirstSeparator(origTitle)
		}
	} else if strings.Contains(docTitle, ": ") {
		matchFound := false
		doc.Find("h1, h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.TrimSpace(s.Text()) == docTitle {
				matchFound = true
				return false
			}
			return true
		})
		if !matchFound {
			colonIdx := strings.LastIndex(origTitle, ":")
			if colonIdx != -1 {
				docTitle = strings.TrimSpace(origTitle[colonIdx+1:])
				if wordCount(docTitle) < 3 {
					firstColon := strings.Index(origTitle, ":")
					docTitle = strings.TrimSpace(origTitle[:firstColon])
					if wordCount(docTitle) > 5 {
						docTitle = origTitle
					}
				}
			}
		}
	} else if docTitle == "" || len(docTitle) >= 151 || len(docTitle) < 15 {
		h1s := doc.Find("h1")
		if h1s.Length() == 1 {
			docTitle = strings.TrimSpace(h1s.Text())
		}
	}

	docTitle = normalizeWhitespace(docTitle)

	if wordCount(docTitle) <= 4 {
		stripped := RegexpHierarchicalSep.ReplaceAllString(origTitle, "")
		delta := wordCount(origTitle) - wordCount(stripped)
		if !hadHierarchicalSeparators || delta != 1 {
			docTitle = origTitle
		}
	}

	return docTitle
}

func keepPrefixBeforeLastSeparator(s string) string {
	idx := lastSeparatorIndex(s)
	if idx < 0 {
		return s
	}
	return strings.TrimSpace(s[:idx])
}

func keepSuffixAfterFirstSeparator(s string) string {
	idx := firstSeparatorIndex(s)
	if idx < 0 {
		return s
	}
	return strings.TrimSpace(s[idx:])
}

var separators = []string{"|", "-", "–", "—", "\\", "/", ">", "»"}

func firstSeparatorIndex(s string) int {
	best := -1
	for i := 0; i+2 <= len(s); i++ {
		if s[i] != ' ' {
			continue
		}
		for _, sep := range separators {
			if strings.HasPrefix(s[i+1:], sep) && strings.HasPrefix(s[i+1+len(sep):], " ") {
				if best == -1 || i < best {
					best = i + 1 + len(sep) + 1
				}
			}
		}
		if best != -1 {
			return best
		}
	}
	return -1
}

func lastSeparatorIndex(s string) int {
	best := -1
	for i := 0; i+2 <= len(s); i++ {
		if s[i] != ' ' {
			continue
		}
		for _, sep := range separators {
			if strings.HasPrefix(s[i+1:], sep) && strings.HasPrefix(s[i+1+len(sep):], " ") {
				best = i
			}
		}
	}
	return best
}
