package dom

import (
	"golang.org/x/net/html"
)

// Metadata is the nullable-field record harvested by the metadata extractor
// (spec §3, §4.1). Empty string means "not found."
type Metadata struct {
	Title         string
	Byline        string
	Excerpt       string
	SiteName      string
	PublishedTime string
}

// nodeScore is the per-element scoring annotation (spec §3, "Readability
// annotation"). Created lazily during scoring, discarded at the end of
// each grabber attempt.
type nodeScore struct {
	contentScore float64
}

// cacheEntry pairs a cached value with the mutation token it was computed
// under (spec §3 "Caches", §9 "Mutation-aware caches").
type cacheEntry struct {
	token int
	value float64
}

type boolCacheEntry struct {
	token int
	value bool
}

// attemptState holds every per-attempt annotation and cache. It is
// discarded wholesale (never field-reset) between grabber attempts, per
// spec §5's "cleared when the DOM is restored for retry."
type attemptState struct {
	scores        map[*html.Node]*nodeScore
	textLenCache  map[*html.Node]cacheEntry
	linkDensity   map[*html.Node]cacheEntry
	phrasing      map[*html.Node]boolCacheEntry
	dataTable     map[*html.Node]bool
	mutationToken map[*html.Node]int
	nextToken     int
}

// NewAttemptState constructs a fresh per-attempt cache/annotation set for
// callers outside this package (the facade's preprocess/post-process
// stages, which run once per document rather than once per grabber
// attempt, but share the same mutation-token bookkeeping).
func NewAttemptState() *attemptState {
	return newAttemptState()
}

func newAttemptState() *attemptState {
	return &attemptState{
		scores:        make(map[*html.Node]*nodeScore),
		textLenCache:  make(map[*html.Node]cacheEntry),
		linkDensity:   make(map[*html.Node]cacheEntry),
		phrasing:      make(map[*html.Node]boolCacheEntry),
		dataTable:     make(map[*html.Node]bool),
		mutationToken: make(map[*html.Node]int),
	}
}

// bump increments the mutation token for n, invalidating any cache entry
// recorded under its previous value. Called by every DOM-mutating helper
// (attribute writes, child insertion/removal, tag renames).
func (a *attemptState) bump(n *html.Node) {
	a.nextToken++
	a.mutationToken[n] = a.nextToken
}

func (a *attemptState) token(n *html.Node) int {
	return a.mutationToken[n]
}

func (a *attemptState) score(n *html.Node) *nodeScore {
	return a.scores[n]
}

func (a *attemptState) ensureScore(n *html.Node) *nodeScore {
	if s, ok := a.scores[n]; ok {
		return s
	}
	s := &nodeScore{}
	a.scores[n] = s
	return s
}
