package style

import (
	stderrors "errors"
	"strings"

	"github.com/matzehuels/schedsvg/pkg/errors"
)

// Validate checks that every field the layout needs is present. Sub-configs
// of hidden elements are not checked. All problems are reported together,
// joined, each with ErrCodeInvalidStyle and the field path.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidStyle, "style config is nil")
	}
	var errs []error
	missing := func(path string) {
		errs = append(errs, errors.New(errors.ErrCodeInvalidStyle, "%s is required", path))
	}
	positive := func(path string, v float64) {
		if v < 0 {
			errs = append(errs, errors.New(errors.ErrCodeInvalidStyle, "%s must be positive, got %g", path, v))
		} else if v == 0 {
			missing(path)
		}
	}

	positive("rowHeight", c.RowHeight)
	positive("width", c.Width)
	if strings.TrimSpace(c.PreserveAspectRatio) == "" {
		missing("preserveAspectRatio")
	}
	if strings.TrimSpace(c.CSS) == "" {
		missing("css")
	}

	if c.TimeBadge.Visible() {
		positive("timeBadge.width", c.TimeBadge.Width)
		positive("timeBadge.height", c.TimeBadge.Height)
		if c.TimeBadge.RX < 0 || c.TimeBadge.RY < 0 {
			errs = append(errs, errors.New(errors.ErrCodeInvalidStyle, "timeBadge corner radius must not be negative"))
		}
	}
	if _, ok := c.TimeText.DeclaredFontSize(); !ok {
		errs = append(errs, errors.New(errors.ErrCodeInvalidStyle,
			"timeText.fontSize is required (set it or declare font-size in timeText.style)"))
	}

	positive("speaker.lineHeight", c.Speaker.LineHeight)
	positive("speaker.lineSpacing", c.Speaker.LineSpacing)
	if c.Speaker.TopPadding < 0 {
		errs = append(errs, errors.New(errors.ErrCodeInvalidStyle, "speaker.topPadding must not be negative"))
	}
	if loc := c.Speaker.NameLocale(); loc != LocaleZh && loc != LocaleEn {
		errs = append(errs, errors.New(errors.ErrCodeInvalidStyle, "speaker.locale must be %q or %q, got %q", LocaleZh, LocaleEn, loc))
	}

	return stderrors.Join(errs...)
}
