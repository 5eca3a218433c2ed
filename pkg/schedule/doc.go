// Package schedule holds the normalized conference schedule and partitions it
// into the (date, room) groups that become one rendered sheet each.
//
// # Document
//
// A [Document] is what the schedule provider produces: sessions in provider
// order plus the speaker roster. It is read once per run with [Read] and never
// modified afterwards.
//
// # Grouping
//
// [GroupSessions] assigns every session to exactly one group keyed by
// "<date>-<room>", where the date is formatted in a fixed zone by a
// [timefmt.Formatter]. Inside a group sessions are ordered by start instant;
// sessions starting at the same instant keep their input order.
//
//	f := timefmt.MustNew("Asia/Taipei")
//	groups, err := schedule.GroupSessions(doc.Sessions, f)
//	for _, name := range schedule.GroupNames(groups) {
//	    rows := groups[name]
//	    ...
//	}
//
// A session whose start cannot be parsed fails the whole call: both the group
// key and the row order depend on it.
//
// [timefmt.Formatter]: github.com/matzehuels/schedsvg/pkg/timefmt
package schedule
