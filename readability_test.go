package readability

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArticleHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<title>Example Site | A Long Enough Headline About Something</title>
	<meta property="og:site_name" content="Example Site">
	<meta name="author" content="Jane Doe">
</head>
<body>
	<nav class="navigation"><a href="/">Home</a></nav>
	<article>
		<h1>A Long Enough Headline About Something</h1>
		<p>This is the first paragraph of a fairly long article that talks about
		something interesting, with enough words to score well above the
		default character threshold used by the extraction pipeline, so that
		the grabber does not need to retry with relaxed flags before settling
		on this content as the winning candidate subtree.</p>
		<p>This is a second paragraph continuing the discussion with more
		detail, more sentences, and more filler text so that the total content
		length comfortably clears five hundred characters across the whole
		article body once both paragraphs are combined together end to end.</p>
	</article>
	<footer>Copyright notice here</footer>
</body>
</html>`

func TestParseExtractsArticle(t *testing.T) {
	article, err := Parse(context.Background(), sampleArticleHTML, "https://example.com/article")
	require.NoError(t, err)
	require.NotNil(t, article)

	assert.Equal(t, "en", article.Lang)
	assert.Equal(t, "Jane Doe", article.Byline)
	assert.Equal(t, "Example Site", article.SiteName)
	assert.Greater(t, article.Length, 0)
	assert.True(t, strings.Contains(article.Content, "first paragraph"))
	assert.NotContains(t, article.Content, "Copyright notice")
}

func TestParseRespectsMaxElemsToParse(t *testing.T) {
	_, err := Parse(context.Background(), sampleArticleHTML, "https://example.com/article", WithMaxElemsToParse(1))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Aborting parsing document; "))
}

func TestParseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, sampleArticleHTML, "https://example.com/article")
	require.Error(t, err)
}

func TestParseEmptyDocumentReturnsNil(t *testing.T) {
	article, err := Parse(context.Background(), `<html><head><title>Empty</title></head><body></body></html>`, "https://example.com/")
	require.NoError(t, err)
	assert.Nil(t, article)
}

func TestParseRespectsTimeout(t *testing.T) {
	_, err := Parse(context.Background(), sampleArticleHTML, "https://example.com/article", WithTimeout(1))
	require.Error(t, err)
}
