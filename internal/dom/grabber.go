package dom

import (
	"regexp"

	"golang.org/x/net/html"

	"github.com/rs/zerolog"
)

// GrabResult is a single attempt's outcome, kept so the caller can fall
// back to the longest non-empty attempt if every retry undershoots the
// char threshold (spec §4.3, final paragraph).
type GrabResult struct {
	Article *html.Node
	TextLen int
	Byline  string
	Dir     string
}

// GrabArticle runs up to four attempts, relaxing one flag per retry, and
// returns the first attempt whose text reaches charThreshold, or else the
// attempt with the longest text (spec §4.3). allowedVideoRegex and
// linkDensityModifier are caller-supplied tuning knobs (spec §6) forwarded
// to the conditional-cleaning stage of each attempt. Each undershooting
// attempt is logged at debug level before the next flag is relaxed (spec
// §7).
func GrabArticle(body *html.Node, metaTitle, metaByline string, nTopCandidates, charThreshold int, allowedVideoRegex *regexp.Regexp, linkDensityModifier float64, logger *zerolog.Logger) *GrabResult {
	flags := FlagStripUnlikelys | FlagWeightClasses | FlagCleanConditionally
	var best *GrabResult

	for attempt := 0; attempt < 4; attempt++ {
		snapshot := cloneNode(body)

		st := newAttemptState()
		res := prepareNodes(st, body, flags, metaByline, metaTitle)

		ScoreNodes(st, res.candidates, flags&FlagWeightClasses != 0)

		synthesized := len(st.scores) == 0
		topCandidate := SelectTopCandidate(st, body, nTopCandidates)
		dir := findDirAttr(topCandidate)
		article := AssembleArticle(st, topCandidate, synthesized)

		PrepArticle(st, article, flags, allowedVideoRegex, linkDensityModifier)

		textLen := len([]rune(getInnerText(article, true)))
		candidate := &GrabResult{Article: article, TextLen: textLen, Byline: res.byline, Dir: dir}

		if best == nil || textLen > best.TextLen {
			best = candidate
		}

		if textLen >= charThreshold {
			return candidate
		}

		if logger != nil {
			logger.Debug().Int("attempt", attempt).Int("textLen", textLen).Int("charThreshold", charThreshold).
				Msg("grabber attempt undershot char threshold, relaxing flags")
		}

		// Restore the snapshot and relax the next flag for the next
		// attempt; per-element annotations are discarded by constructing
		// a fresh attemptState above.
		replaceChildren(body, snapshot)
		if flags&FlagStripUnlikelys != 0 {
			flags &^= FlagStripUnlikelys
			continue
		}
		if flags&FlagWeightClasses != 0 {
			flags &^= FlagWeightClasses
			continue
		}
		if flags&FlagCleanConditionally != 0 {
			flags &^= FlagCleanConditionally
			continue
		}
		break
	}

	if logger != nil && best != nil && best.TextLen < charThreshold {
		logger.Debug().Int("textLen", best.TextLen).Msg("all grabber attempts undershot char threshold, using longest")
	}

	return best
}

// findDirAttr walks from n up through its ancestors for the first
// non-empty dir attribute (spec §4.6). Must be called before
// AssembleArticle detaches the candidate from its ancestor chain.
func findDirAttr(n *html.Node) string {
	for cur := n; cur != nil; cur = cur.Parent {
		if v, ok := attr(cur, "dir"); ok && v != "" {
			return v
		}
	}
	return ""
}

// cloneNode deep-copies n's subtree (used to snapshot the body before a
// destructive attempt, per spec §4.3 "each attempt snapshots the body").
func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

// replaceChildren discards body's current children and replaces them
// with snapshot's, restoring the pre-attempt DOM for retry.
func replaceChildren(body, snapshot *html.Node) {
	for body.FirstChild != nil {
		body.RemoveChild(body.FirstChild)
	}
	for c := snapshot.FirstChild; c != nil; {
		next := c.NextSibling
		snapshot.RemoveChild(c)
		body.AppendChild(c)
		c = next
	}
}

