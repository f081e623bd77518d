package dom_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	readability "github.com/inkwell-go/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureExpectation is the testdata/<site>/expected-metadata.json schema:
// metadata fields to match exactly, plus substrings the serialized
// article content must and must not contain.
type fixtureExpectation struct {
	Title         string   `json:"title"`
	Byline        string   `json:"byline"`
	Dir           string   `json:"dir"`
	Lang          string   `json:"lang"`
	PublishedTime string   `json:"publishedTime"`
	ContainsText  []string `json:"containsText"`
	Contains      []string `json:"contains"`
	NotContains   []string `json:"notContains"`
}

// TestFixtures walks testdata/*/ running the full Parse pipeline against
// each source.html and checking the result against expected-metadata.json.
// These fixtures exercise the end-to-end extraction pipeline rather than
// any single stage, the way the fixture cases a reader would otherwise
// only find by hand would have caught the noscript-removal, dir-resolution,
// and text-density regressions.
func TestFixtures(t *testing.T) {
	sites, err := os.ReadDir("testdata")
	require.NoError(t, err)

	for _, site := range sites {
		if !site.IsDir() {
			continue
		}
		dir := site.Name()
		t.Run(dir, func(t *testing.T) {
			sourcePath := filepath.Join("testdata", dir, "source.html")
			source, err := os.ReadFile(sourcePath)
			require.NoError(t, err)

			expectedPath := filepath.Join("testdata", dir, "expected-metadata.json")
			raw, err := os.ReadFile(expectedPath)
			require.NoError(t, err)
			var want fixtureExpectation
			require.NoError(t, json.Unmarshal(raw, &want))

			article, err := readability.Parse(context.Background(), string(source), "https://example.com/article/")
			require.NoError(t, err)
			require.NotNil(t, article)

			assert.Equal(t, want.Title, article.Title)
			assert.Equal(t, want.Byline, article.Byline)
			assert.Equal(t, want.Dir, article.Dir)
			assert.Equal(t, want.Lang, article.Lang)
			if want.PublishedTime != "" {
				assert.Equal(t, want.PublishedTime, article.PublishedTime)
			}

			for _, s := range want.ContainsText {
				assert.Contains(t, article.TextContent, s)
			}
			for _, s := range want.Contains {
				assert.Contains(t, article.Content, s)
			}
			for _, s := range want.NotContains {
				assert.NotContains(t, article.Content, s)
			}
		})
	}
}
