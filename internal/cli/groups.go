package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/pipeline"
	"github.com/matzehuels/schedsvg/pkg/schedule"
	"github.com/matzehuels/schedsvg/pkg/timefmt"
)

// groupsOpts holds the flags for the groups command.
type groupsOpts struct {
	schedule string
	zone     string
	asJSON   bool
	refresh  bool
	cache    cacheFlags
}

// groupsReport is the --json output of the groups command.
type groupsReport struct {
	Zone   string        `json:"zone"`
	Dates  []string      `json:"dates"`
	Rooms  []string      `json:"rooms"`
	Groups []groupReport `json:"groups"`
}

type groupReport struct {
	Name     string   `json:"name"`
	Sessions []string `json:"sessions"`
}

// groupsCommand creates the groups command.
func (c *CLI) groupsCommand() *cobra.Command {
	opts := groupsOpts{zone: pipeline.DefaultZone}

	cmd := &cobra.Command{
		Use:   "groups [schedule]",
		Short: "List dates, rooms and (date, room) groups without rendering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.schedule = args[0]
			}
			return c.runGroups(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.schedule, "schedule", "s", "", "schedule file or URL (env "+envSchedule+")")
	cmd.Flags().StringVar(&opts.zone, "zone", opts.zone, "time zone for dates and times")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the grouping as JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass a cached schedule")
	opts.cache.register(cmd)

	return cmd
}

func (c *CLI) runGroups(ctx context.Context, opts groupsOpts) error {
	ref := envOr(opts.schedule, envSchedule)
	if ref == "" {
		return errors.New(errors.ErrCodeMalformedInput, "no schedule given (use an argument, --schedule or %s)", envSchedule)
	}
	f, err := timefmt.New(opts.zone)
	if err != nil {
		return err
	}

	store, err := newCache(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	loaded, err := loadSchedule(ctx, ref, store, newKeyer(opts.cache), opts.refresh)
	if err != nil {
		return err
	}

	report, rows, err := summarize(loaded.Document.Sessions, f)
	if err != nil {
		return err
	}

	if opts.asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode groups: %w", err)
		}
		fmt.Fprintln(uiOut, string(data))
		return nil
	}

	printKeyValue("Zone", report.Zone)
	printList("Dates", report.Dates)
	printList("Rooms", report.Rooms)
	printNewline()
	printGroupTable(rows, false)
	return nil
}

// summarize groups sessions and builds both output shapes.
func summarize(sessions []schedule.Session, f *timefmt.Formatter) (groupsReport, []groupRow, error) {
	groups, err := schedule.GroupSessions(sessions, f)
	if err != nil {
		return groupsReport{}, nil, err
	}
	dates, err := schedule.CollectDates(sessions, f)
	if err != nil {
		return groupsReport{}, nil, err
	}

	report := groupsReport{
		Zone:   f.Zone(),
		Dates:  nonEmpty(dates),
		Rooms:  nonEmpty(schedule.CollectRooms(sessions)),
		Groups: []groupReport{},
	}
	var rows []groupRow
	for _, name := range schedule.GroupNames(groups) {
		members := groups[name]
		ids := make([]string, len(members))
		for i, s := range members {
			ids[i] = s.ID
		}
		report.Groups = append(report.Groups, groupReport{Name: name, Sessions: ids})

		// Starts already parsed during grouping.
		first, _ := f.TimeOf(members[0].Start)
		last, _ := f.TimeOf(members[len(members)-1].Start)
		rows = append(rows, groupRow{Name: name, Sessions: len(members), First: first, Last: last})
	}
	return report, rows, nil
}

func nonEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
