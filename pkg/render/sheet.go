package render

import (
	"fmt"

	"github.com/matzehuels/schedsvg/pkg/markup"
	"github.com/matzehuels/schedsvg/pkg/schedule"
)

// Sheet composes the sessions of one group, already in display order, into
// an svg tree. The canvas is RowHeight tall per session; an empty group
// yields a zero-height canvas.
func (c *Composer) Sheet(roster schedule.Roster, sessions []schedule.Session) (*markup.Node, error) {
	cfg := c.cfg
	width := cfg.Width
	height := cfg.RowHeight * float64(len(sessions))

	root := markup.Element("svg",
		markup.A("xmlns", SVGNamespace),
		markup.A("width", width),
		markup.A("height", height),
		markup.A("viewBox", fmt.Sprintf("0 0 %s %s", markup.FormatValue(width), markup.FormatValue(height))),
		markup.A("preserveAspectRatio", cfg.PreserveAspectRatio),
	)
	root.Append(markup.Element("style").Append(markup.Text(cfg.CSS)))

	for i, s := range sessions {
		row, err := c.Row(i, s, roster)
		if err != nil {
			return nil, fmt.Errorf("row %d (session %s): %w", i, s.ID, err)
		}
		root.Append(row)
	}
	return root, nil
}
