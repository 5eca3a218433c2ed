package render

import (
	"github.com/matzehuels/schedsvg/pkg/markup"
	"github.com/matzehuels/schedsvg/pkg/schedule"
	"github.com/matzehuels/schedsvg/pkg/style"
)

// Row lays out session at row index i. The only failure is an unparsable
// start timestamp.
func (c *Composer) Row(i int, session schedule.Session, roster schedule.Roster) (*markup.Node, error) {
	start, err := c.fmt.Parse(session.Start)
	if err != nil {
		return nil, err
	}

	speakers, missing := roster.Resolve(session.Speakers)
	if c.onMissing != nil {
		for _, id := range missing {
			c.onMissing(session.ID, id)
		}
	}

	cfg := c.cfg
	rowY := float64(i) * cfg.RowHeight

	g := markup.Element("g", markup.A("id", "session-"+session.ID), markup.A("class", "row"))
	g.Append(c.background(rowY))
	if cfg.TimeBadge.Visible() {
		g.Append(c.badge(rowY))
	}
	g.Append(
		c.timeLabel(rowY, c.fmt.Time(start)),
		title(cfg.TitleZh, rowY, session.Zh.Title),
		title(cfg.TitleEn, rowY, session.En.Title),
		c.speakerBlock(rowY, speakers),
	)
	return g, nil
}

func (c *Composer) background(rowY float64) *markup.Node {
	bg := c.cfg.Background
	attrs := []markup.Attr{
		markup.A("x", 0.0),
		markup.A("y", rowY),
		markup.A("width", c.cfg.Width),
		markup.A("height", c.cfg.RowHeight),
	}
	attrs = appendIf(attrs, "stroke", bg.Stroke)
	attrs = appendIf(attrs, "fill", bg.Fill)
	return markup.Element("rect", attrs...)
}

func (c *Composer) badge(rowY float64) *markup.Node {
	b := c.cfg.TimeBadge
	attrs := []markup.Attr{
		markup.A("x", b.X),
		markup.A("y", rowY+(c.cfg.RowHeight-b.Height)/2),
		markup.A("width", b.Width),
		markup.A("height", b.Height),
		markup.A("rx", b.RX),
		markup.A("ry", b.RY),
	}
	attrs = appendIf(attrs, "fill", b.Fill)
	return markup.Element("rect", attrs...)
}

// timeLabel centers the label on the badge when it is shown and on the row
// otherwise. The baseline sits BaselineRatio font sizes below the center.
func (c *Composer) timeLabel(rowY float64, label string) *markup.Node {
	b, t := c.cfg.TimeBadge, c.cfg.TimeText
	baseline := c.fontSize*style.BaselineRatio + t.Offset()

	var x, y float64
	var anchor string
	if b.Visible() {
		x = b.X + b.Width/2
		y = rowY + (c.cfg.RowHeight-b.Height)/2 + b.Height/2 + baseline
		anchor = "middle"
	} else {
		x = t.X
		y = rowY + c.cfg.RowHeight/2 + baseline
		anchor = t.Anchor()
	}

	attrs := []markup.Attr{markup.A("x", x), markup.A("y", y)}
	attrs = appendIf(attrs, "class", t.Class)
	attrs = appendIf(attrs, "text-anchor", anchor)
	attrs = appendIf(attrs, "style", t.Style)
	return markup.Element("text", attrs...).Append(markup.Text(label))
}

func title(t style.Text, rowY float64, text string) *markup.Node {
	attrs := []markup.Attr{
		markup.A("x", t.X),
		markup.A("y", t.Y+rowY+t.Offset()),
	}
	attrs = appendIf(attrs, "class", t.Class)
	attrs = appendIf(attrs, "text-anchor", t.Anchor())
	attrs = appendIf(attrs, "style", t.Style)
	return markup.Element("text", attrs...).Append(markup.Text(text))
}

// speakerBlock stacks one tspan per speaker. The block is centered on the
// row for its line count but never starts above TopPadding.
func (c *Composer) speakerBlock(rowY float64, speakers []schedule.Speaker) *markup.Node {
	s := c.cfg.Speaker
	n := float64(len(speakers))
	y := max(s.TopPadding, rowY+(c.cfg.RowHeight-n*s.LineHeight)/2)

	attrs := []markup.Attr{markup.A("x", s.X), markup.A("y", y)}
	attrs = appendIf(attrs, "class", s.Class)
	attrs = appendIf(attrs, "style", s.Style)
	block := markup.Element("text", attrs...)

	locale := s.NameLocale()
	name := schedule.Speaker.Name
	if s.NameFallback() {
		name = schedule.Speaker.DisplayName
	}
	for _, sp := range speakers {
		block.Append(markup.Element("tspan",
			markup.A("x", s.X),
			markup.A("dy", s.LineSpacing),
		).Append(markup.Text(name(sp, locale))))
	}
	return block
}

// appendIf adds a string attribute when v is non-empty.
func appendIf(attrs []markup.Attr, name, v string) []markup.Attr {
	if v == "" {
		return attrs
	}
	return append(attrs, markup.A(name, v))
}
