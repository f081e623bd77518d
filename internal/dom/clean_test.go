package dom

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstTable(t *testing.T, htmlStr string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	require.NoError(t, err)
	return doc.Find("table").First()
}

func TestIsDataTableRolePresentation(t *testing.T) {
	sel := firstTable(t, `<table role="presentation"><tr><td>a</td></tr></table>`)
	assert.False(t, isDataTable(sel.Get(0)))
}

func TestIsDataTableWithCaption(t *testing.T) {
	sel := firstTable(t, `<table><caption>Figures</caption><tr><td>a</td></tr></table>`)
	assert.True(t, isDataTable(sel.Get(0)))
}

func TestIsDataTableSingleRowIsLayout(t *testing.T) {
	sel := firstTable(t, `<table><tr><td>a</td><td>b</td><td>c</td></tr></table>`)
	assert.False(t, isDataTable(sel.Get(0)))
}

func TestIsDataTableManyRowsIsData(t *testing.T) {
	var b strings.Builder
	b.WriteString("<table>")
	for i := 0; i < 12; i++ {
		b.WriteString("<tr><td>x</td><td>y</td></tr>")
	}
	b.WriteString("</table>")
	sel := firstTable(t, b.String())
	assert.True(t, isDataTable(sel.Get(0)))
}

func TestGetClassWeight(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="article-content"></div>`))
	require.NoError(t, err)
	n := doc.Find("div").Get(0)
	assert.Equal(t, 25.0, getClassWeight(n, true))
	assert.Equal(t, 0.0, getClassWeight(n, false))
}

func TestGetClassWeightNegative(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="sidebar-widget"></div>`))
	require.NoError(t, err)
	n := doc.Find("div").Get(0)
	assert.Equal(t, -25.0, getClassWeight(n, true))
}
