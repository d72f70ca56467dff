package main

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeArgs runs the given root command with args and returns any error.
// It suppresses cobra's usage/error output so test output stays clean.
func executeArgs(t *testing.T, root *cobra.Command, args ...string) error {
	t.Helper()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

// newTestRoot builds the real command tree with PersistentPreRun stubbed
// out so the API client is never initialised.
func newTestRoot() *cobra.Command {
	root := newRootCmd()
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {}
	return root
}

func TestArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"search without query", []string{"search"}},
		{"search with two queries", []string{"search", "foo", "bar"}},
		{"title without key", []string{"title"}},
		{"suggest with args", []string{"suggest", "extra"}},
		{"connections without key", []string{"connections"}},
		{"layout without key", []string{"layout"}},
		{"session create without key", []string{"session", "create"}},
		{"session get with two ids", []string{"session", "get", "a", "b"}},
		{"session delete without id", []string{"session", "delete"}},
		{"session event without type", []string{"session", "event", "s1"}},
		{"session export without id", []string{"session", "export"}},
		{"session list with args", []string{"session", "list", "extra"}},
		{"db seed with two files", []string{"db", "seed", "a.json", "b.json"}},
		{"db status with args", []string{"db", "status", "extra"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := newTestRoot()
			if err := executeArgs(t, root, tc.args...); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestSessionEventArgCount(t *testing.T) {
	argsValidator := cobra.ExactArgs(2)

	cases := []struct {
		args    []string
		wantErr bool
	}{
		{[]string{"s1", "hover"}, false},
		{[]string{"s1"}, true},
		{[]string{"s1", "hover", "extra"}, true},
	}
	for _, tc := range cases {
		err := argsValidator(nil, tc.args)
		if tc.wantErr && err == nil {
			t.Errorf("args %v: expected error", tc.args)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("args %v: unexpected error: %v", tc.args, err)
		}
	}
}

func TestFlagDefaults(t *testing.T) {
	cases := []struct {
		cmd  *cobra.Command
		flag string
		want string
	}{
		{newSearchCmd(), "limit", "0"},
		{newSuggestCmd(), "count", "3"},
		{sessionCreateCmd(), "width", "800"},
		{sessionCreateCmd(), "height", "600"},
		{sessionCreateCmd(), "replaces", ""},
		{sessionEventCmd(), "node", ""},
		{newLayoutCmd(), "max-ticks", "2000"},
		{newLayoutCmd(), "catalog", ""},
		{dbSeedCmd(), "overwrite", "false"},
		{dbSeedCmd(), "no-migrate", "false"},
	}
	for _, tc := range cases {
		f := tc.cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Errorf("%s: --%s flag not found", tc.cmd.Name(), tc.flag)
			continue
		}
		if f.DefValue != tc.want {
			t.Errorf("%s --%s default: got %q, want %q", tc.cmd.Name(), tc.flag, f.DefValue, tc.want)
		}
	}
}

func TestFormatFlagDefault(t *testing.T) {
	root := newTestRoot()
	f := root.PersistentFlags().Lookup("format")
	if f == nil {
		t.Fatal("--format flag not found")
	}
	if f.DefValue != "json" {
		t.Errorf("default format: got %q, want %q", f.DefValue, "json")
	}
}

// TestFormatFlagValues verifies output() handles every accepted format.
func TestFormatFlagValues(t *testing.T) {
	for _, f := range []string{"json", "table", "quiet"} {
		flagFmt = f
		captureStdout(t, func() { output(map[string]string{"k": "v"}, "id") })
	}
	flagFmt = "json"
}

func TestDatabaseURL(t *testing.T) {
	orig := flagDatabaseURL
	t.Cleanup(func() { flagDatabaseURL = orig })

	flagDatabaseURL = ""
	unsetEnv(t, "DATABASE_URL")
	if _, err := databaseURL(); err == nil {
		t.Error("expected error without flag or env")
	}

	setEnv(t, "DATABASE_URL", "postgres://env/db")
	if got, _ := databaseURL(); got != "postgres://env/db" {
		t.Errorf("env url: got %q", got)
	}

	flagDatabaseURL = "postgres://flag/db"
	if got, _ := databaseURL(); got != "postgres://flag/db" {
		t.Errorf("flag should win: got %q", got)
	}
}

func TestRunLayout_Demo(t *testing.T) {
	res, err := runLayout(context.Background(), "breaking bad", layoutOptions{width: 800, height: 600, maxTicks: 2000})
	if err != nil {
		t.Fatalf("runLayout: %v", err)
	}
	if res.Center != "81189" {
		t.Errorf("center: got %q", res.Center)
	}
	if !res.AtRest {
		t.Errorf("expected rest within budget, alpha %.4f after %d ticks", res.Alpha, res.Ticks)
	}
	if len(res.Nodes) != len(res.Edges)+1 {
		t.Errorf("nodes %d, edges %d", len(res.Nodes), len(res.Edges))
	}
}

func TestRunLayout_UnknownTitle(t *testing.T) {
	if _, err := runLayout(context.Background(), "nope", layoutOptions{width: 800, height: 600, maxTicks: 10}); err == nil {
		t.Error("expected error for unknown title")
	}
}
