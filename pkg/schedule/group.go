package schedule

import (
	"cmp"
	"slices"
	"time"

	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/timefmt"
)

// KeySeparator joins the formatted date and the room name in a group key.
const KeySeparator = "-"

// GroupKey returns the group name for a session starting at start in room.
func GroupKey(f *timefmt.Formatter, start time.Time, room string) string {
	return f.Date(start) + KeySeparator + room
}

type timed struct {
	Session
	at time.Time
}

// GroupSessions partitions sessions by formatted start date and room.
// Every session lands in exactly one group, sorted ascending by start with
// ties kept in input order. An unparsable start aborts with
// ErrCodeInvalidTimestamp.
func GroupSessions(sessions []Session, f *timefmt.Formatter) (map[string][]Session, error) {
	buckets := make(map[string][]timed)
	for _, s := range sessions {
		at, err := parseStart(f, s)
		if err != nil {
			return nil, err
		}
		key := GroupKey(f, at, s.Room)
		buckets[key] = append(buckets[key], timed{Session: s, at: at})
	}

	groups := make(map[string][]Session, len(buckets))
	for key, items := range buckets {
		slices.SortStableFunc(items, func(a, b timed) int {
			return a.at.Compare(b.at)
		})
		out := make([]Session, len(items))
		for i, it := range items {
			out[i] = it.Session
		}
		groups[key] = out
	}
	return groups, nil
}

// GroupNames returns the keys of groups in ascending order.
func GroupNames(groups map[string][]Session) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CollectDates returns the distinct formatted start dates, ascending.
func CollectDates(sessions []Session, f *timefmt.Formatter) ([]string, error) {
	seen := make(map[string]bool)
	var dates []string
	for _, s := range sessions {
		at, err := parseStart(f, s)
		if err != nil {
			return nil, err
		}
		d := f.Date(at)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	slices.SortFunc(dates, cmp.Compare[string])
	return dates, nil
}

// CollectRooms returns the distinct room names in first-seen order.
func CollectRooms(sessions []Session) []string {
	seen := make(map[string]bool)
	var rooms []string
	for _, s := range sessions {
		if !seen[s.Room] {
			seen[s.Room] = true
			rooms = append(rooms, s.Room)
		}
	}
	return rooms
}

func parseStart(f *timefmt.Formatter, s Session) (time.Time, error) {
	at, err := f.Parse(s.Start)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeInvalidTimestamp, err, "session %s start", s.ID)
	}
	return at, nil
}
