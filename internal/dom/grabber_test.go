package dom

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const grabberFixtureHTML = `<html><body>
<div class="byline">By Jane Doe</div>
<article>
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
</body></html>`

func TestGrabArticleDiscoversByline(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(grabberFixtureHTML))
	require.NoError(t, err)
	body := doc.Find("body").Get(0)

	st := newAttemptState()
	Preprocess(st, body, nil)

	result := GrabArticle(body, "", "", DefaultNTopCandidates, DefaultCharThreshold, nil, 0, nil)
	require.NotNil(t, result)
	assert.Equal(t, "By Jane Doe", result.Byline)
	assert.Contains(t, getInnerText(result.Article, true), "first paragraph")
}
