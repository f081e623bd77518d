package readability

import (
	"context"
	"strings"

	"github.com/inkwell-go/readability/internal/dom"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Article is the extraction result (spec §4.6).
type Article struct {
	Title         string
	Byline        string
	Dir           string
	Lang          string
	Excerpt       string
	SiteName      string
	PublishedTime string
	Content       string
	TextContent   string
	Length        int
	Readerable    bool
}

// Parse extracts the primary article from rawHTML, resolving relative
// URIs against documentURI. It returns (nil, nil) when every grabber
// attempt fails to produce usable content (spec §7, "Empty article").
func Parse(ctx context.Context, rawHTML, documentURI string, opts ...Option) (*Article, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.Debug && o.Logger != nil {
		l := o.Logger.Level(zerolog.DebugLevel)
		o.Logger = &l
	}

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, explicit, err := dom.Parse(rawHTML, o.MaxElemsToParse)
	if err != nil {
		return nil, err
	}
	root := doc.Get(0)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	readerable := IsProbablyReaderable(root, DefaultReaderableOptions())

	metadata := dom.ExtractMetadata(doc, o.DisableJSONLD, o.Logger)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body := dom.FindBody(root)
	if body == nil {
		o.Logger.Debug().Msg("document has no body element")
		return nil, nil
	}

	preState := dom.NewAttemptState()
	dom.Preprocess(preState, body, o.Logger)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := dom.GrabArticle(body, metadata.Title, metadata.Byline, o.NbTopCandidates, o.CharThreshold, o.AllowedVideoRegex, o.LinkDensityModifier, o.Logger)
	if result == nil || result.Article == nil || strings.TrimSpace(dom.GetInnerText(result.Article, true)) == "" {
		return nil, nil
	}

	byline := metadata.Byline
	if byline == "" {
		byline = result.Byline
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	postState := dom.NewAttemptState()
	dom.PostProcess(postState, result.Article, root, documentURI, o.ClassesToPreserve, o.KeepClasses, o.Logger)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	excerpt := metadata.Excerpt
	if excerpt == "" {
		excerpt = firstParagraphText(result.Article)
	}

	content, err := serialize(result.Article, explicit, o.UseXMLSerializer)
	if err != nil {
		return nil, err
	}

	textContent := dom.GetInnerText(result.Article, true)

	article := &Article{
		Title:         metadata.Title,
		Byline:        byline,
		Dir:           result.Dir,
		Lang:          findLang(root),
		Excerpt:       excerpt,
		SiteName:      metadata.SiteName,
		PublishedTime: metadata.PublishedTime,
		Content:       content,
		TextContent:   textContent,
		Length:        len([]rune(textContent)),
		Readerable:    readerable,
	}

	if o.Serializer != nil {
		if _, err := o.Serializer(article); err != nil {
			return nil, err
		}
	}

	return article, nil
}

func serialize(n *html.Node, explicit dom.ExplicitBooleans, useXML bool) (string, error) {
	if useXML {
		return dom.SerializeXML(n, explicit)
	}
	return dom.SerializeHTML(n, explicit)
}

func findLang(root *html.Node) string {
	var lang string
	dom.ForEachNode(root, func(n *html.Node) {
		if lang != "" {
			return
		}
		if dom.GetNodeName(n) == "html" {
			for _, a := range n.Attr {
				if strings.EqualFold(a.Key, "lang") {
					lang = a.Val
				}
			}
		}
	})
	return lang
}

func firstParagraphText(article *html.Node) string {
	var text string
	dom.ForEachNode(article, func(n *html.Node) {
		if text != "" {
			return
		}
		if dom.GetNodeName(n) == "p" {
			text = strings.TrimSpace(dom.GetInnerText(n, true))
		}
	})
	return text
}

