package dom

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// getInnerText returns the concatenated text of n and its descendants,
// optionally normalizing runs of whitespace to single spaces.
func getInnerText(n *html.Node, normalizeSpaces bool) string {
	var b strings.Builder
	forEachNode(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	text := strings.TrimSpace(b.String())
	if normalizeSpaces {
		text = RegexpNormalize.ReplaceAllString(text, " ")
	}
	return text
}

// getCharCount counts occurrences of the Unicode comma class in n's text
// (spec §4.3.2 content-score formula).
func getCharCount(st *attemptState, n *html.Node) int {
	return len(RegexpUnicodeComma.FindAllString(getInnerText(n, false), -1))
}

// textLength returns the cached normalized text length of n, recomputing
// when the mutation token has advanced (spec §3 "Caches").
func textLength(st *attemptState, n *html.Node) int {
	if st == nil {
		return utf8.RuneCountInString(getInnerText(n, true))
	}
	tok := st.token(n)
	if e, ok := st.textLenCache[n]; ok && e.token == tok {
		return int(e.value)
	}
	l := utf8.RuneCountInString(getInnerText(n, true))
	st.textLenCache[n] = cacheEntry{token: tok, value: float64(l)}
	return l
}

// wordCount returns the number of whitespace-delimited tokens.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

// tokenize splits s on non-alphanumeric/underscore runs, lowercasing each
// token, per the Glossary's token-similarity definition.
func tokenize(s string) []string {
	s = strings.ToLower(s)
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// textSimilarity implements the Glossary's "Token similarity":
// 1 − |tokens(B) − tokens(A)| / |tokens(B)|, measured over
// whitespace-joined token-string lengths.
func textSimilarity(textA, textB string) float64 {
	tokensA := tokenize(textA)
	tokensB := tokenize(textB)
	if len(tokensB) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		setA[t] = true
	}
	var uniqueToB []string
	for _, t := range tokensB {
		if !setA[t] {
			uniqueToB = append(uniqueToB, t)
		}
	}
	lenB := len(strings.Join(tokensB, " "))
	if lenB == 0 {
		return 0
	}
	lenDiff := len(strings.Join(uniqueToB, " "))
	return 1 - float64(lenDiff)/float64(lenB)
}

// isValidByline reports whether text is a plausible byline: non-empty
// and under 100 characters (spec §4.3.1).
func isValidByline(text string) bool {
	text = strings.TrimSpace(text)
	return len(text) > 0 && utf8.RuneCountInString(text) < 100
}

// unescapeHTMLEntities decodes the named entities quot/amp/apos/lt/gt and
// decimal/hex numeric character references. Invalid code points (0,
// beyond U+10FFFF, or surrogates) become U+FFFD (spec §4.1 "Combining").
func unescapeHTMLEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 || semi > 12 {
			b.WriteByte(s[i])
			i++
			continue
		}
		entity := s[i+1 : i+semi]
		if repl, ok := HTMLEscapeMap[entity]; ok {
			b.WriteString(repl)
			i += semi + 1
			continue
		}
		if len(entity) > 1 && entity[0] == '#' {
			var cp int64
			var err error
			if len(entity) > 2 && (entity[1] == 'x' || entity[1] == 'X') {
				cp, err = strconv.ParseInt(entity[2:], 16, 64)
			} else {
				cp, err = strconv.ParseInt(entity[1:], 10, 64)
			}
			if err == nil {
				b.WriteRune(safeRune(cp))
				i += semi + 1
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func safeRune(cp int64) rune {
	if cp <= 0 || cp > 0x10FFFF || (cp >= 0xD800 && cp <= 0xDFFF) {
		return utf8.RuneError
	}
	return rune(cp)
}

// normalizeUnicode applies NFKC normalization, grounded on the teacher's
// internal/simplifiers text helpers which use the same x/text package for
// compatibility-form normalization of extracted text. Applied to metadata
// fields after entity unescaping so compatibility variants (fullwidth
// punctuation, ligatures) pulled from meta tags or JSON-LD compare and
// display consistently with the rest of the extracted article.
func normalizeUnicode(s string) string {
	return norm.NFKC.String(s)
}

// normalizeWhitespace collapses runs of whitespace to single spaces and
// trims the result.
func normalizeWhitespace(s string) string {
	return strings.TrimSpace(RegexpNormalize.ReplaceAllString(s, " "))
}
