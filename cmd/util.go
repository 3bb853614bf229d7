package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// parseEnvPairs parses repeated KEY=VALUE strings into a map. Empty values
// are allowed; missing "=" is an error.
func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected KEY=VALUE, got %q", pair)
		}
		out[key] = value
	}
	return out, nil
}

// indentJSON re-indents a JSON document for display.
func indentJSON(raw json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatUptime returns a human-friendly duration since t (e.g. "5m", "2h").
// Returns "—" if t is the zero time.
func formatUptime(t time.Time) string {
	return formatUptimeAt(t, time.Now())
}

func formatUptimeAt(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
