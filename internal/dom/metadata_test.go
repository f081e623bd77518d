package dom

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, htmlStr string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	require.NoError(t, err)
	return doc
}

func TestExtractMetadataOGTitleOnly(t *testing.T) {
	doc := parseDoc(t, `<html><head>
		<meta property="og:title" content="The OG Title">
	</head><body></body></html>`)

	md := ExtractMetadata(doc, false, nil)
	require.Equal(t, "The OG Title", md.Title)
}

func TestExtractMetadataJSONLDWinsOverMeta(t *testing.T) {
	doc := parseDoc(t, `<html><head>
		<meta property="og:title" content="Meta Title">
		<script type="application/ld+json">
		{"@context":"https://schema.org","@type":"NewsArticle","headline":"JSON-LD Title"}
		</script>
	</head><body></body></html>`)

	md := ExtractMetadata(doc, false, nil)
	require.Equal(t, "JSON-LD Title", md.Title)
}

func TestExtractMetadataDisabledJSONLDFallsBackToMeta(t *testing.T) {
	doc := parseDoc(t, `<html><head>
		<meta property="og:title" content="Meta Title">
		<script type="application/ld+json">
		{"@context":"https://schema.org","@type":"NewsArticle","headline":"JSON-LD Title"}
		</script>
	</head><body></body></html>`)

	md := ExtractMetadata(doc, true, nil)
	require.Equal(t, "Meta Title", md.Title)
}

func TestGetArticleTitleHierarchicalSeparator(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Big News Outlet Daily Edition | Article Headline Here</title></head><body></body></html>`)
	title := getArticleTitle(doc)
	require.Equal(t, "Big News Outlet Daily Edition", title)
}

func TestGetArticleTitleShortPrefixReverts(t *testing.T) {
	// A pipe separator does not count as "hierarchical" for the final
	// revert check (only narrower separators do, mirroring the reference
	// fixtures per spec.md's Open Question on title-refinement), so a
	// short prefix falls all the way back to the original title.
	doc := parseDoc(t, `<html><head><title>Site | Headline</title></head><body></body></html>`)
	title := getArticleTitle(doc)
	require.Equal(t, "Site | Headline", title)
}

func TestGetArticleTitleColonHandling(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Breaking: Something Happened Today</title></head><body></body></html>`)
	title := getArticleTitle(doc)
	require.Contains(t, title, "Something Happened Today")
}
