// Package style defines the declarative visual configuration of a schedule
// sheet: row geometry, canvas size and the per-element geometry of the time
// badge, time label, titles and speaker list.
//
// Configs are plain data. Optional fields are pointers, and each one has its
// own resolution method ([Badge.Visible], [Text.Offset], [Text.Anchor],
// [SpeakerText.NameLocale]) rather than a shared defaults object. Numeric
// fields that must be present are considered absent when zero. [Config.Validate]
// reports every absent or invalid field at once.
//
// Files are JSON, TOML or YAML, selected by extension ([Load], [Save]).
// Keys are camelCase in all three formats.
package style

import (
	"regexp"
	"strconv"
	"strings"
)

// BaselineRatio approximates the distance from the vertical center of a line
// of text to its baseline as a fraction of the font size.
const BaselineRatio = 0.35

// Locales accepted by SpeakerText.Locale.
const (
	LocaleZh = "zh"
	LocaleEn = "en"
)

// Config is the full style of one sheet.
type Config struct {
	RowHeight           float64 `json:"rowHeight" toml:"rowHeight" yaml:"rowHeight"`
	Width               float64 `json:"width" toml:"width" yaml:"width"`
	PreserveAspectRatio string  `json:"preserveAspectRatio" toml:"preserveAspectRatio" yaml:"preserveAspectRatio"`
	CSS                 string  `json:"css" toml:"css" yaml:"css"`

	Background Box         `json:"background" toml:"background" yaml:"background"`
	TimeBadge  Badge       `json:"timeBadge" toml:"timeBadge" yaml:"timeBadge"`
	TimeText   Text        `json:"timeText" toml:"timeText" yaml:"timeText"`
	TitleZh    Text        `json:"titleZh" toml:"titleZh" yaml:"titleZh"`
	TitleEn    Text        `json:"titleEn" toml:"titleEn" yaml:"titleEn"`
	Speaker    SpeakerText `json:"speaker" toml:"speaker" yaml:"speaker"`
}

// Box is the full-row background rectangle.
type Box struct {
	Stroke string `json:"stroke,omitempty" toml:"stroke,omitempty" yaml:"stroke,omitempty"`
	Fill   string `json:"fill,omitempty" toml:"fill,omitempty" yaml:"fill,omitempty"`
}

// Badge is the rounded rectangle behind the time label.
type Badge struct {
	Show   *bool   `json:"show,omitempty" toml:"show,omitempty" yaml:"show,omitempty"`
	X      float64 `json:"x" toml:"x" yaml:"x"`
	Width  float64 `json:"width" toml:"width" yaml:"width"`
	Height float64 `json:"height" toml:"height" yaml:"height"`
	RX     float64 `json:"rx,omitempty" toml:"rx,omitempty" yaml:"rx,omitempty"`
	RY     float64 `json:"ry,omitempty" toml:"ry,omitempty" yaml:"ry,omitempty"`
	Fill   string  `json:"fill,omitempty" toml:"fill,omitempty" yaml:"fill,omitempty"`
}

// Visible reports whether the badge is drawn. Unset means visible.
func (b Badge) Visible() bool { return b.Show == nil || *b.Show }

// Text positions one text element. For the time label Y is unused: the label
// is centered on the badge or the row.
type Text struct {
	X          float64  `json:"x" toml:"x" yaml:"x"`
	Y          float64  `json:"y" toml:"y" yaml:"y"`
	Class      string   `json:"class,omitempty" toml:"class,omitempty" yaml:"class,omitempty"`
	Style      string   `json:"style,omitempty" toml:"style,omitempty" yaml:"style,omitempty"`
	FontSize   float64  `json:"fontSize,omitempty" toml:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	OffsetY    *float64 `json:"offsetY,omitempty" toml:"offsetY,omitempty" yaml:"offsetY,omitempty"`
	TextAnchor *string  `json:"anchor,omitempty" toml:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// Offset returns the extra vertical offset, zero when unset.
func (t Text) Offset() float64 {
	if t.OffsetY == nil {
		return 0
	}
	return *t.OffsetY
}

// Anchor returns the text-anchor value, empty when unset.
func (t Text) Anchor() string {
	if t.TextAnchor == nil {
		return ""
	}
	return *t.TextAnchor
}

var fontSizeDecl = regexp.MustCompile(`(?i)font-size\s*:\s*([0-9]*\.?[0-9]+)\s*(px)?\s*(;|$)`)

// DeclaredFontSize returns FontSize when set, otherwise the font-size
// declared in Style (px or unitless). ok is false when neither is present.
func (t Text) DeclaredFontSize() (size float64, ok bool) {
	if t.FontSize > 0 {
		return t.FontSize, true
	}
	m := fontSizeDecl.FindStringSubmatch(t.Style)
	if m == nil {
		return 0, false
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil || size <= 0 {
		return 0, false
	}
	return size, true
}

// SpeakerText is the stacked list of speaker names.
type SpeakerText struct {
	X           float64 `json:"x" toml:"x" yaml:"x"`
	Class       string  `json:"class,omitempty" toml:"class,omitempty" yaml:"class,omitempty"`
	Style       string  `json:"style,omitempty" toml:"style,omitempty" yaml:"style,omitempty"`
	LineHeight  float64 `json:"lineHeight" toml:"lineHeight" yaml:"lineHeight"`
	TopPadding  float64 `json:"topPadding" toml:"topPadding" yaml:"topPadding"`
	LineSpacing float64 `json:"lineSpacing" toml:"lineSpacing" yaml:"lineSpacing"`
	Locale      *string `json:"locale,omitempty" toml:"locale,omitempty" yaml:"locale,omitempty"`
	Fallback    *bool   `json:"fallback,omitempty" toml:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// NameFallback reports whether an empty name in the chosen locale is replaced
// by the other locale's name. Off unless Fallback is set.
func (s SpeakerText) NameFallback() bool {
	return s.Fallback != nil && *s.Fallback
}

// NameLocale returns the locale used for speaker names, zh when unset.
func (s SpeakerText) NameLocale() string {
	if s.Locale == nil || strings.TrimSpace(*s.Locale) == "" {
		return LocaleZh
	}
	return *s.Locale
}

// Example returns a complete starter configuration for a 1080px-wide sheet.
// It is what `style init` writes; nothing applies it implicitly.
func Example() *Config {
	show := true
	middle := "middle"
	return &Config{
		RowHeight:           124,
		Width:               1080,
		PreserveAspectRatio: "xMidYMid meet",
		CSS: strings.Join([]string{
			"text { font-family: Arial, sans-serif; }",
			".time { fill: #ffffff; }",
			".title { fill: #000000; }",
			".speaker { fill: #000000; }",
		}, "\n"),
		Background: Box{Stroke: "black", Fill: "#ffffff"},
		TimeBadge: Badge{
			Show: &show, X: 45.1, Width: 101.3, Height: 36.8,
			RX: 10, RY: 10, Fill: "#8DA4BE",
		},
		TimeText: Text{
			X: 95.75, Class: "time", TextAnchor: &middle,
			Style:    "font-family:'Onest-Regular_SemiBold', 'Onest';font-size:24.1px",
			FontSize: 24.1,
		},
		TitleZh: Text{
			X: 342.1, Y: 62, Class: "title",
			Style: "font-family:'NotoSansTC-Regular', 'Noto Sans TC', sans-serif;font-size:17.8px",
		},
		TitleEn: Text{
			X: 342.1, Y: 80, Class: "title",
			Style: "font-family:'Onest-Regular_Regular', 'Onest';font-size:13.3px",
		},
		Speaker: SpeakerText{
			X: 863.8, Class: "speaker",
			LineHeight: 28, TopPadding: 2, LineSpacing: 24,
		},
	}
}
