// Package render lays out schedule rows and composes them into sheets.
//
// A [Composer] binds a validated [style.Config] and a [timefmt.Formatter].
// [Composer.Row] builds the element tree of one session at a given row
// index; [Composer.Sheet] stacks the rows of a group under an svg root:
//
//	c, err := render.NewComposer(cfg, f)
//	tree, err := c.Sheet(roster, sessions)
//	svg := markup.Marshal(tree)
//
// Rows are pure functions of their inputs. The paint order inside a row is
// fixed: background, time badge (when shown), time label, zh title, en title,
// speaker block.
//
// Speaker ids that do not resolve against the roster are dropped from the
// speaker block. [WithMissingSpeaker] observes the drops without changing the
// output.
//
// [style.Config]: github.com/matzehuels/schedsvg/pkg/style.Config
// [timefmt.Formatter]: github.com/matzehuels/schedsvg/pkg/timefmt.Formatter
package render
