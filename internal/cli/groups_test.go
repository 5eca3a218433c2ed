package cli

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/schedule"
	"github.com/matzehuels/schedsvg/pkg/timefmt"
)

func TestSummarize(t *testing.T) {
	sessions := []schedule.Session{
		{ID: "s2", Room: "R1", Start: "2025-08-01T10:00+08:00"},
		{ID: "s3", Room: "R2", Start: "2025-08-01T09:00+08:00"},
		{ID: "s1", Room: "R1", Start: "2025-08-01T09:00+08:00"},
		{ID: "s4", Room: "R1", Start: "2025-08-02T11:15+08:00"},
	}

	report, rows, err := summarize(sessions, timefmt.MustNew("Asia/Taipei"))
	if err != nil {
		t.Fatalf("summarize() error: %v", err)
	}

	want := groupsReport{
		Zone:  "Asia/Taipei",
		Dates: []string{"2025-08-01", "2025-08-02"},
		Rooms: []string{"R1", "R2"},
		Groups: []groupReport{
			{Name: "2025-08-01-R1", Sessions: []string{"s1", "s2"}},
			{Name: "2025-08-01-R2", Sessions: []string{"s3"}},
			{Name: "2025-08-02-R1", Sessions: []string{"s4"}},
		},
	}
	if !reflect.DeepEqual(report, want) {
		t.Errorf("report = %+v, want %+v", report, want)
	}

	wantRows := []groupRow{
		{Name: "2025-08-01-R1", Sessions: 2, First: "09:00", Last: "10:00"},
		{Name: "2025-08-01-R2", Sessions: 1, First: "09:00", Last: "09:00"},
		{Name: "2025-08-02-R1", Sessions: 1, First: "11:15", Last: "11:15"},
	}
	if !reflect.DeepEqual(rows, wantRows) {
		t.Errorf("rows = %+v, want %+v", rows, wantRows)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	report, rows, err := summarize(nil, timefmt.MustNew(""))
	if err != nil {
		t.Fatalf("summarize() error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"zone":"Asia/Taipei","dates":[],"rooms":[],"groups":[]}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestSummarizeBadStart(t *testing.T) {
	sessions := []schedule.Session{{ID: "x", Room: "R1", Start: "soon"}}
	_, _, err := summarize(sessions, timefmt.MustNew(""))
	if !errors.IsMalformed(err) {
		t.Errorf("summarize() error = %v, want malformed input", err)
	}
}

func TestRunGroupsJSON(t *testing.T) {
	buf := captureUI(t)
	schedulePath, _ := testInputs(t)

	c := New(io.Discard, LogInfo)
	opts := groupsOpts{schedule: schedulePath, asJSON: true, cache: cacheFlags{noCache: true}}
	if err := c.runGroups(testContext(), opts); err != nil {
		t.Fatalf("runGroups() error: %v", err)
	}

	var report groupsReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(report.Groups) != 2 || report.Groups[0].Name != "2025-08-01-R1" {
		t.Errorf("groups = %+v", report.Groups)
	}
	if !reflect.DeepEqual(report.Groups[0].Sessions, []string{"a1", "a2"}) {
		t.Errorf("sessions = %v, want start order [a1 a2]", report.Groups[0].Sessions)
	}
}

func TestRunGroupsTable(t *testing.T) {
	buf := captureUI(t)
	schedulePath, _ := testInputs(t)

	c := New(io.Discard, LogInfo)
	opts := groupsOpts{schedule: schedulePath, cache: cacheFlags{noCache: true}}
	if err := c.runGroups(testContext(), opts); err != nil {
		t.Fatalf("runGroups() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"2025-08-01, 2025-08-02", "R1, R2", "2025-08-01-R1", "2025-08-02-R2", "13:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunGroupsNoSchedule(t *testing.T) {
	t.Setenv(envSchedule, "")
	c := New(io.Discard, LogInfo)
	err := c.runGroups(testContext(), groupsOpts{cache: cacheFlags{noCache: true}})
	if !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("runGroups() error = %v, want MALFORMED_INPUT", err)
	}
}
