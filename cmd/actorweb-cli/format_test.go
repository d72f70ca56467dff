package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/persistorai/actorweb/client"
)

// captureStdout replaces os.Stdout with a pipe, calls f, then returns the
// captured output and restores os.Stdout. It is NOT safe for parallel use
// because os.Stdout is a package-level variable.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		io.Copy(&buf, r)
		close(done)
	}()

	f()

	w.Close()
	<-done
	os.Stdout = orig
	r.Close()
	return buf.String()
}

func lines(out string) []string {
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

func TestFormatTable(t *testing.T) {
	got := captureStdout(t, func() {
		formatTable([]string{"ID", "TITLE", "YEAR"}, [][]string{
			{"1396", "Breaking Bad", "2008"},
			{"60059", "Better Call Saul", "2015"},
		})
	})

	want := []string{
		"ID     TITLE             YEAR",
		"-----  ----------------  ----",
		"1396   Breaking Bad      2008",
		"60059  Better Call Saul  2015",
	}
	if diff := cmp.Diff(want, lines(got)); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	got := lines(captureStdout(t, func() { formatTable([]string{"ID", "KEY"}, nil) }))
	if len(got) != 2 {
		t.Fatalf("expected header and separator only, got %d lines: %q", len(got), got)
	}
}

func TestOutputFormats(t *testing.T) {
	orig := flagFmt
	t.Cleanup(func() { flagFmt = orig })

	v := client.SessionSummary{ID: "s-1", Key: "breaking bad", Nodes: 7}

	for _, f := range []string{"json", "table"} {
		flagFmt = f
		var out client.SessionSummary
		got := captureStdout(t, func() { output(v, v.ID) })
		if err := json.Unmarshal([]byte(got), &out); err != nil {
			t.Fatalf("%s: expected JSON: %v\n%s", f, err, got)
		}
		if out.ID != "s-1" || out.Nodes != 7 {
			t.Errorf("%s: got %+v", f, out)
		}
		if !strings.Contains(got, "\n  ") {
			t.Errorf("%s: expected indented JSON: %s", f, got)
		}
	}

	flagFmt = "quiet"
	if got := strings.TrimSpace(captureStdout(t, func() { output(v, v.ID) })); got != "s-1" {
		t.Errorf("quiet: got %q", got)
	}
}

func TestVersionString(t *testing.T) {
	origCommit, origDate := commit, buildDate
	t.Cleanup(func() { commit, buildDate = origCommit, origDate })

	commit, buildDate = "", ""
	if s := versionString(); !strings.HasSuffix(s, "-dev") || !strings.Contains(s, version) {
		t.Errorf("dev build: got %q", s)
	}

	commit, buildDate = "abc1234", "2026-01-01"
	s := versionString()
	if !strings.Contains(s, "abc1234") || !strings.Contains(s, "2026-01-01") || strings.HasSuffix(s, "-dev") {
		t.Errorf("release build: got %q", s)
	}
}

func TestPrintTitleTable(t *testing.T) {
	got := lines(captureStdout(t, func() {
		printTitleTable([]client.TitleSummary{
			{ID: "1396", Title: "Breaking Bad", Year: 2008, Type: "tv"},
			{ID: "x", Title: "Undated"},
		})
	}))
	if len(got) != 4 {
		t.Fatalf("expected 4 lines, got %q", got)
	}
	if !strings.Contains(got[2], "2008") || !strings.Contains(got[2], "tv") {
		t.Errorf("row 0: %s", got[2])
	}
	if f := strings.Fields(got[3]); len(f) < 3 || f[2] != "-" {
		t.Errorf("missing year should print '-': %s", got[3])
	}
}

func TestPrintSessionTable(t *testing.T) {
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got := lines(captureStdout(t, func() {
		printSessionTable([]client.SessionSummary{{ID: "s-1", Key: "heat", Nodes: 3, AtRest: true, CreatedAt: created}})
	}))
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %q", got)
	}
	for _, want := range []string{"s-1", "heat", "true", "2026-03-04 05:06:07"} {
		if !strings.Contains(got[2], want) {
			t.Errorf("row missing %q: %s", want, got[2])
		}
	}
}

func TestPrintNodeStateTable(t *testing.T) {
	got := lines(captureStdout(t, func() {
		printNodeStateTable([]client.NodeState{{ID: "n1", Position: client.Vec{X: 12.345, Y: -3}, Radius: 20, Pinned: true}})
	}))
	if f := strings.Fields(got[2]); len(f) != 5 || f[1] != "12.3" || f[2] != "-3.0" || f[3] != "20" || f[4] != "true" {
		t.Errorf("row: %q", got[2])
	}
}

// TestPrintGraphTable verifies each connected title is listed once with the
// other endpoint, whichever side the center is on.
func TestPrintGraphTable(t *testing.T) {
	g := &client.Graph{
		CenterID: "c",
		Nodes: []client.Node{
			{ID: "c", Title: "Center", IsCenter: true},
			{ID: "a", Title: "Alpha"},
			{ID: "b", Title: "Beta"},
		},
		Edges: []client.Edge{
			{Source: "c", Target: "a", Weight: 2, SharedActors: []client.SharedActor{{ActorName: "X"}, {ActorName: "Y"}}},
			{Source: "b", Target: "c", Weight: 1, SharedActors: []client.SharedActor{{ActorName: "Z"}}},
		},
	}

	rows := lines(captureStdout(t, func() { printGraphTable(g) }))
	if len(rows) != 4 {
		t.Fatalf("expected 4 lines, got %q", rows)
	}
	if !strings.Contains(rows[2], "Alpha") || !strings.Contains(rows[2], "X, Y") {
		t.Errorf("row 0: %s", rows[2])
	}
	if !strings.Contains(rows[3], "Beta") || strings.Contains(rows[3], "Center") {
		t.Errorf("row 1: %s", rows[3])
	}
}

func TestSuggestionList(t *testing.T) {
	got := suggestionList([]client.TitleSummary{{Title: "Breaking Bad"}, {Title: "Dunkirk"}})
	if want := `"Breaking Bad", "Dunkirk"`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestYearString(t *testing.T) {
	if got := yearString(0); got != "-" {
		t.Errorf("yearString(0) = %q", got)
	}
	if got := yearString(2008); got != "2008" {
		t.Errorf("yearString(2008) = %q", got)
	}
}
