package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/markup"
	"github.com/matzehuels/schedsvg/pkg/style"
)

const defaultStyleFile = "style.json"

// styleCommand creates the style command.
func (c *CLI) styleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Create or check a style file",
	}

	cmd.AddCommand(c.styleInitCommand())
	cmd.AddCommand(c.styleCheckCommand())

	return cmd
}

// styleInitCommand creates the "style init" subcommand.
func (c *CLI) styleInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter style file (.json, .toml or .yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultStyleFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := initStyle(path, force); err != nil {
				return err
			}
			printSuccess("Wrote starter style")
			printFile(path)
			printNewline()
			printNextStep("Build", appName+" build --style "+path+" --schedule <schedule.json>")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func initStyle(path string, force bool) error {
	if _, err := style.FormatFor(path); err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
		}
	}
	return style.Save(path, style.Example())
}

// styleCheckCommand creates the "style check" subcommand.
func (c *CLI) styleCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a style file and print its resolved values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := style.Load(args[0])
			if err != nil {
				return err
			}
			printSuccess("%s is valid", args[0])
			printStyleSummary(cfg)
			return nil
		},
	}
}

// printStyleSummary prints the values the optional fields resolve to.
func printStyleSummary(cfg *style.Config) {
	printKeyValue("Row height", formatNumber(cfg.RowHeight))
	printKeyValue("Width", formatNumber(cfg.Width))
	printKeyValue("Badge", fmt.Sprintf("%t", cfg.TimeBadge.Visible()))

	anchor := cfg.TimeText.Anchor()
	if anchor == "" {
		anchor = "-"
	}
	printKeyValue("Time anchor", anchor)

	size, ok := cfg.TimeText.DeclaredFontSize()
	if ok {
		printKeyValue("Time font", formatNumber(size)+"px")
	} else {
		printKeyValue("Time font", "-")
	}
	printKeyValue("Name locale", cfg.Speaker.NameLocale())
	printKeyValue("Name fallback", fmt.Sprintf("%t", cfg.Speaker.NameFallback()))
}

func formatNumber(v float64) string {
	return markup.FormatValue(v)
}
