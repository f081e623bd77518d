// Package dom implements the content-extraction engine: metadata harvesting,
// DOM preprocessing, candidate scoring and selection, sibling merging,
// conditional cleaning, post-processing, and serialization. It operates on
// goquery-wrapped golang.org/x/net/html trees handed to it by the facade in
// the parent package.
package dom

import "regexp"

// Flags select which heuristics the article grabber applies in the current
// attempt. All three start set; GrabArticle clears them one at a time, in
// this order, on retry.
const (
	FlagStripUnlikelys = 1 << iota
	FlagWeightClasses
	FlagCleanConditionally
)

// Defaults mirrored from spec.md §6.
const (
	DefaultMaxElemsToParse = 0
	DefaultNTopCandidates  = 5
	DefaultCharThreshold   = 500
)

// DefaultTagsToScore are the element tags queued for scoring during node
// preparation.
var DefaultTagsToScore = map[string]bool{
	"section": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "p": true, "td": true, "pre": true,
}

// UnlikelyRoles are ARIA roles that mark a node as unlikely to be content.
var UnlikelyRoles = map[string]bool{
	"menu": true, "menubar": true, "complementary": true, "navigation": true,
	"alert": true, "alertdialog": true, "dialog": true,
}

// DivToPElems are the block-level tags that, if present as a descendant,
// keep a <div> from being collapsed into a <p>.
var DivToPElems = []string{"blockquote", "dl", "div", "img", "ol", "p", "pre", "table", "ul"}

// PresentationalAttributes are stripped recursively from the chosen article,
// except inside <svg> subtrees.
var PresentationalAttributes = []string{
	"align", "background", "bgcolor", "border", "cellpadding", "cellspacing",
	"frame", "hspace", "rules", "style", "valign", "vspace",
}

// DeprecatedSizeAttributeElems additionally lose width/height.
var DeprecatedSizeAttributeElems = map[string]bool{
	"table": true, "th": true, "td": true, "hr": true, "pre": true,
}

// PhrasingElems is the fixed whitelist from spec.md §4.2. a, del, and ins
// are handled specially (phrasing iff every child is phrasing).
var PhrasingElems = map[string]bool{
	"abbr": true, "audio": true, "b": true, "bdo": true, "br": true,
	"button": true, "cite": true, "code": true, "data": true,
	"datalist": true, "dfn": true, "em": true, "embed": true, "i": true,
	"img": true, "input": true, "kbd": true, "label": true, "mark": true,
	"math": true, "meter": true, "noscript": true, "object": true,
	"output": true, "progress": true, "q": true, "ruby": true, "samp": true,
	"script": true, "select": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "textarea": true, "time": true,
	"var": true, "wbr": true,
}

// BooleanAttributes is the fixed whitelist of attribute names whose explicit
// name="name" spelling XML serialization must reproduce (spec.md §4.5, §9).
var BooleanAttributes = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "controls": true, "default": true, "defer": true,
	"disabled": true, "formnovalidate": true, "hidden": true, "ismap": true,
	"itemscope": true, "loop": true, "multiple": true, "muted": true,
	"novalidate": true, "open": true, "playsinline": true, "readonly": true,
	"required": true, "reversed": true, "selected": true, "typemustmatch": true,
}

// HTMLEscapeMap holds the named entities unescapeHTMLEntities understands.
var HTMLEscapeMap = map[string]string{
	"lt": "<", "gt": ">", "amp": "&", "quot": "\"", "apos": "'",
}

// Regular expressions used across the pipeline. Compiled once at init and
// never mutated; safe to share across concurrent extractions (spec.md §5).
var (
	RegexpUnlikelyCandidates    = regexp.MustCompile(`(?i)-ad-|ai2html|banner|breadcrumbs|combx|comment|community|cover-wrap|disqus|extra|footer|gdpr|header|legends|menu|related|remark|replies|rss|shoutbox|sidebar|skyscraper|social|sponsor|supplemental|ad-break|agegate|pagination|pager|popup|yom-remote`)
	RegexpMaybeCandidate        = regexp.MustCompile(`(?i)and|article|body|column|content|main|shadow`)
	RegexpPositive              = regexp.MustCompile(`(?i)article|body|content|entry|hentry|h-entry|main|page|pagination|post|text|blog|story`)
	RegexpNegative              = regexp.MustCompile(`(?i)-ad-|hidden|^hid$| hid$| hid |^hid |banner|combx|comment|com-|contact|foot|footer|footnote|gdpr|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget`)
	RegexpByline                = regexp.MustCompile(`(?i)byline|author|dateline|writtenby|p-author`)
	RegexpNormalize             = regexp.MustCompile(`\s{2,}`)
	RegexpVideos                = regexp.MustCompile(`(?i)//(www\.)?((dailymotion|youtube|youtube-nocookie|player\.vimeo|v\.qq)\.com|(archive|upload\.wikimedia)\.org|player\.twitch\.tv)`)
	RegexpShareElements         = regexp.MustCompile(`(?i)(\b|_)(share|sharedaddy)(\b|_)`)
	RegexpWhitespace            = regexp.MustCompile(`^\s*$`)
	RegexpHashUrl               = regexp.MustCompile(`^#.+`)
	RegexpSrcsetUrl             = regexp.MustCompile(`(\S+)(\s+[\d.]+[xw])?(\s*(?:,|$))`)
	RegexpB64DataUrl            = regexp.MustCompile(`(?i)^data:\s*([^\s;,]+)\s*;\s*base64\s*,`)
	RegexpImageExtension        = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)`)
	RegexpImageExtensionDim     = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)\s+\d`)
	RegexpImageURLOnly          = regexp.MustCompile(`(?i)^\s*\S+\.(jpg|jpeg|png|webp)\S*\s*$`)
	RegexpJsonLdArticleTypes    = regexp.MustCompile(`^Article|AdvertiserContentArticle|NewsArticle|AnalysisNewsArticle|AskPublicNewsArticle|BackgroundNewsArticle|OpinionNewsArticle|ReportageNewsArticle|ReviewNewsArticle|Report|SatiricalArticle|ScholarlyArticle|MedicalScholarlyArticle|SocialMediaPosting|BlogPosting|LiveBlogPosting|DiscussionForumPosting|TechArticle|APIReference$`)
	RegexpSchemaOrg             = regexp.MustCompile(`(?i)^https?://schema\.org/?$`)
	RegexpHierarchicalSep       = regexp.MustCompile(` [\|\-–—\\/>»] `)
	RegexpHierarchicalSepNarrow = regexp.MustCompile(` [\\/>»] `)
	RegexpMetaPropertyKey       = regexp.MustCompile(`(?i)^\s*(article|dc|dcterm|og|twitter)\s*:\s*(author|creator|description|published_time|title|site_name)\s*$`)
	RegexpMetaNameKey           = regexp.MustCompile(`(?i)^\s*(?:(dc|dcterm|og|twitter|parsely|weibo:(?:article|webpage))[-.:]?)?(author|creator|pub-date|description|title|site_name)\s*$`)
	RegexpAdWords               = regexp.MustCompile(`(?i)^(ad(vertising|vertisement)?)$|广告|Реклама|publicité|werbung|Anuncio`)
	RegexpLoadingWords          = regexp.MustCompile(`(?i)^\s*(loading|正在加载|Загрузка|Cargando)\s*\.*\s*$`)
	RegexpSentenceEnd           = regexp.MustCompile(`\.( |$)`)
	RegexpUnicodeComma          = regexp.MustCompile(`[,\x{060C}\x{FE10}\x{FE50}\x{FE51}\x{2E41}\x{2E32}\x{2E34}\x{FF0C}]`)
)

// TitleFieldPriority is the fixed fallback order used when combining
// meta-tag values for the title field (spec.md §4.1, Combining).
var TitleFieldPriority = []string{
	"dc:title", "dcterm:title", "og:title", "weibo:article:title",
	"weibo:webpage:title", "title", "twitter:title", "parsely-title",
}

// BylineFieldPriority, ExcerptFieldPriority, SiteNameFieldPriority, and
// PublishedTimeFieldPriority round out the per-field fallback lists.
var (
	BylineFieldPriority        = []string{"dc:creator", "dcterm:creator", "author", "article:author", "og:author", "twitter:creator", "parsely-author"}
	ExcerptFieldPriority       = []string{"dc:description", "dcterm:description", "og:description", "weibo:article:description", "weibo:webpage:description", "description", "twitter:description"}
	SiteNameFieldPriority      = []string{"og:site_name"}
	PublishedTimeFieldPriority = []string{"article:published_time", "og:published_time", "og:article:published_time", "parsely-pub-date"}
)
