// Package timefmt formats schedule instants in a fixed, named time zone.
//
// Grouping keys and on-card time labels must not depend on the zone of the
// machine running the pipeline, so every [Formatter] is bound to an IANA zone
// loaded from the tz database embedded into the binary (time/tzdata). The
// host's TZ setting and zoneinfo files are never consulted.
//
//	f, err := timefmt.New("Asia/Taipei")
//	day, _ := f.DateOf("2025-08-01T09:00+08:00") // "2025-08-01"
//	at, _ := f.TimeOf("2025-08-01T01:00:00Z")    // "09:00"
package timefmt

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/matzehuels/schedsvg/pkg/errors"
)

// DefaultZone is the zone of the reference deployment.
const DefaultZone = "Asia/Taipei"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// zonedLayouts carry their own offset; the instant is absolute.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// localLayouts carry no offset and are read in the formatter's zone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Formatter renders instants as display strings in one zone.
// A Formatter is immutable and safe for concurrent use.
type Formatter struct {
	loc *time.Location
}

// New returns a Formatter for the named IANA zone.
// An empty name selects [DefaultZone]. "Local" is rejected because it would
// make output depend on the host.
func New(zone string) (*Formatter, error) {
	if zone == "" {
		zone = DefaultZone
	}
	if zone == "Local" {
		return nil, errors.New(errors.ErrCodeInvalidZone, "zone %q depends on the host; use an IANA name", zone)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidZone, err, "load zone %q", zone)
	}
	return &Formatter{loc: loc}, nil
}

// MustNew is like New but panics on error. Intended for tests and package-level vars.
func MustNew(zone string) *Formatter {
	f, err := New(zone)
	if err != nil {
		panic(err)
	}
	return f
}

// Zone returns the zone name the formatter is bound to.
func (f *Formatter) Zone() string { return f.loc.String() }

// Location returns the bound location.
func (f *Formatter) Location() *time.Location { return f.loc }

// Date formats t as YYYY-MM-DD.
func (f *Formatter) Date(t time.Time) string { return t.In(f.loc).Format(dateLayout) }

// Time formats t as 24-hour HH:MM.
func (f *Formatter) Time(t time.Time) string { return t.In(f.loc).Format(timeLayout) }

// DateOf parses s and formats it with Date.
func (f *Formatter) DateOf(s string) (string, error) {
	t, err := f.Parse(s)
	if err != nil {
		return "", err
	}
	return f.Date(t), nil
}

// TimeOf parses s and formats it with Time.
func (f *Formatter) TimeOf(s string) (string, error) {
	t, err := f.Parse(s)
	if err != nil {
		return "", err
	}
	return f.Time(t), nil
}

// Parse reads a timestamp string. RFC 3339 values (seconds optional) keep
// their offset; values without an offset are read in the formatter's zone.
func (f *Formatter) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New(errors.ErrCodeInvalidTimestamp, "empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, f.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidTimestamp, "unrecognized timestamp %q", s)
}
