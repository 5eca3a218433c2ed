package render

import (
	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/style"
	"github.com/matzehuels/schedsvg/pkg/timefmt"
)

// SVGNamespace is the xmlns of every sheet.
const SVGNamespace = "http://www.w3.org/2000/svg"

type Option func(*Composer)

// WithMissingSpeaker registers fn to be called for each speaker id of a
// session that is absent from the roster.
func WithMissingSpeaker(fn func(sessionID, speakerID string)) Option {
	return func(c *Composer) { c.onMissing = fn }
}

// Composer lays out rows and sheets for one style and zone.
type Composer struct {
	cfg       *style.Config
	fmt       *timefmt.Formatter
	fontSize  float64
	onMissing func(sessionID, speakerID string)
}

// NewComposer validates cfg and returns a Composer. Configuration problems
// are reported here, before any row is laid out.
func NewComposer(cfg *style.Config, f *timefmt.Formatter, opts ...Option) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New(errors.ErrCodeInvalidZone, "formatter is nil")
	}
	size, _ := cfg.TimeText.DeclaredFontSize()
	c := &Composer{cfg: cfg, fmt: f, fontSize: size}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the style the composer was built with.
func (c *Composer) Config() *style.Config { return c.cfg }

// Formatter returns the composer's time formatter.
func (c *Composer) Formatter() *timefmt.Formatter { return c.fmt }
