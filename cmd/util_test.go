package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// captureStdout redirects os.Stdout around fn and returns what it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

// useTempRegistry points the registry at a file under a temp dir.
func useTempRegistry(t *testing.T) {
	t.Helper()
	t.Setenv("MCPKEEP_REGISTRY", filepath.Join(t.TempDir(), ".mcpkeep.json"))
}

// ---- parseEnvPairs ----

func TestParseEnvPairs(t *testing.T) {
	got, err := parseEnvPairs([]string{"API_KEY=abc", "EMPTY=", "URL=http://x?a=b"})
	if err != nil {
		t.Fatal(err)
	}
	if got["API_KEY"] != "abc" {
		t.Errorf("API_KEY = %q", got["API_KEY"])
	}
	if v, ok := got["EMPTY"]; !ok || v != "" {
		t.Errorf("EMPTY = %q, %v", v, ok)
	}
	// Only the first "=" splits
	if got["URL"] != "http://x?a=b" {
		t.Errorf("URL = %q", got["URL"])
	}
}

func TestParseEnvPairs_Invalid(t *testing.T) {
	if _, err := parseEnvPairs([]string{"NOEQUALS"}); err == nil {
		t.Error("expected error for pair without =")
	}
	if _, err := parseEnvPairs([]string{"=value"}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestParseEnvPairs_Empty(t *testing.T) {
	got, err := parseEnvPairs(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

// ---- indentJSON ----

func TestIndentJSON(t *testing.T) {
	out, err := indentJSON(json.RawMessage(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "{\n  \"a\": 1\n}" {
		t.Errorf("got %q", out)
	}
}

// ---- formatUptimeAt ----

func TestFormatUptimeAt_ZeroTime(t *testing.T) {
	if got := formatUptimeAt(time.Time{}, time.Now()); got != "—" {
		t.Errorf("expected '—' for zero time, got %q", got)
	}
}

func TestFormatUptimeAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{7 * time.Minute, "7m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}
	for _, tc := range cases {
		if got := formatUptimeAt(now.Add(-tc.ago), now); got != tc.want {
			t.Errorf("formatUptimeAt(-%v) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}
