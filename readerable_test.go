package readability

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func readerableDoc(t *testing.T, repeat int) *goquery.Document {
	t.Helper()
	text := strings.Repeat("hello there ", repeat)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><p>` + text + `</p></body></html>`))
	require.NoError(t, err)
	return doc
}

func TestReaderableThresholds(t *testing.T) {
	// "hello there " is 12 bytes; repeat*12-1 (trailing space trimmed) is
	// the resulting paragraph's text length under the default
	// minContentLength=140/minScore=20.
	cases := []struct {
		repeat int
		want   bool
	}{
		{12, false}, // length 143, sqrt(143-140)=1.7 < 20
		{50, true},  // length 599, sqrt(599-140)=21.4 > 20
	}
	for _, c := range cases {
		doc := readerableDoc(t, c.repeat)
		got := IsProbablyReaderable(doc.Get(0), DefaultReaderableOptions())
		require.Equalf(t, c.want, got, "repeat=%d", c.repeat)
	}
}

func TestReaderableCustomMinContentLength(t *testing.T) {
	// length 407 clears the default threshold only once minContentLength
	// is lowered enough for sqrt(length-minContentLength) to exceed the
	// default minScore of 20.
	doc := readerableDoc(t, 34)
	require.False(t, IsProbablyReaderable(doc.Get(0), DefaultReaderableOptions()))

	opts := DefaultReaderableOptions()
	opts.MinContentLength = 0
	require.True(t, IsProbablyReaderable(doc.Get(0), opts))
}

func TestReaderableCustomMinScore(t *testing.T) {
	doc := readerableDoc(t, 12)
	require.False(t, IsProbablyReaderable(doc.Get(0), DefaultReaderableOptions()))

	opts := DefaultReaderableOptions()
	opts.MinScore = 1.5
	require.True(t, IsProbablyReaderable(doc.Get(0), opts))
}
