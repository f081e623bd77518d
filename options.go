package readability

import (
	"regexp"
	"time"

	"github.com/inkwell-go/readability/internal/dom"
	"github.com/rs/zerolog"
)

// Options configures a Parse call (spec §6).
type Options struct {
	Debug               bool
	MaxElemsToParse     int
	NbTopCandidates     int
	CharThreshold       int
	ClassesToPreserve   []string
	KeepClasses         bool
	UseXMLSerializer    bool
	DisableJSONLD       bool
	AllowedVideoRegex   *regexp.Regexp
	LinkDensityModifier float64
	Timeout             time.Duration
	Logger              *zerolog.Logger
	Serializer          func(article any) (any, error)
}

// Option mutates an Options value, following the functional-options
// pattern already used throughout the corpus.
type Option func(*Options)

func defaultOptions() Options {
	disabled := zerolog.Nop()
	return Options{
		MaxElemsToParse:     dom.DefaultMaxElemsToParse,
		NbTopCandidates:     dom.DefaultNTopCandidates,
		CharThreshold:       dom.DefaultCharThreshold,
		AllowedVideoRegex:   dom.RegexpVideos,
		LinkDensityModifier: 0,
		Logger:              &disabled,
	}
}

// WithDebug raises Logger's level to debug, surfacing the per-element
// heuristic-miss and swallowed-error logging that runs at debug level
// throughout the grabber and metadata stages (spec §7).
func WithDebug(v bool) Option { return func(o *Options) { o.Debug = v } }

func WithMaxElemsToParse(n int) Option { return func(o *Options) { o.MaxElemsToParse = n } }

func WithNbTopCandidates(n int) Option { return func(o *Options) { o.NbTopCandidates = n } }

func WithCharThreshold(n int) Option { return func(o *Options) { o.CharThreshold = n } }

func WithClassesToPreserve(classes ...string) Option {
	return func(o *Options) { o.ClassesToPreserve = classes }
}

func WithKeepClasses(v bool) Option { return func(o *Options) { o.KeepClasses = v } }

func WithXMLSerializer(v bool) Option { return func(o *Options) { o.UseXMLSerializer = v } }

func WithDisableJSONLD(v bool) Option { return func(o *Options) { o.DisableJSONLD = v } }

func WithAllowedVideoRegex(re *regexp.Regexp) Option {
	return func(o *Options) { o.AllowedVideoRegex = re }
}

func WithLinkDensityModifier(v float64) Option {
	return func(o *Options) { o.LinkDensityModifier = v }
}

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

func WithLogger(l *zerolog.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithSerializer installs a custom serializer. Its error propagates to
// the caller unwrapped (spec §7, "Custom serializer exception").
func WithSerializer(fn func(article any) (any, error)) Option {
	return func(o *Options) { o.Serializer = fn }
}
