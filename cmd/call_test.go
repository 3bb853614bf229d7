package cmd

import (
	"encoding/json"
	"testing"
)

func TestCallCmdRegisteredOnRoot(t *testing.T) {
	found := false
	for _, sub := range rootCmd.Commands() {
		if sub.Name() == "call" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected 'call' subcommand to be registered on rootCmd")
	}
}

func TestResolveCallArguments_PositionalPassedVerbatim(t *testing.T) {
	raw := `{"z":1,"a":{"nested":[9007199254740993]},"query":"x"}`

	got, err := resolveCallArguments([]string{raw}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Byte-for-byte: key order and big integers survive
	if string(got) != raw {
		t.Errorf("arguments re-encoded:\n sent %s\n got  %s", raw, got)
	}
}

func TestResolveCallArguments_InvalidJSON(t *testing.T) {
	if _, err := resolveCallArguments([]string{"{not json"}, nil); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestResolveCallArguments_BothFormsRejected(t *testing.T) {
	if _, err := resolveCallArguments([]string{"{}"}, []string{"a=1"}); err == nil {
		t.Error("expected error when both JSON and --arg are given")
	}
}

func TestResolveCallArguments_Flags(t *testing.T) {
	got, err := resolveCallArguments(nil, []string{"query=retries", "limit=5", "deep=true", "note=not json: {"})
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed["query"] != "retries" {
		t.Errorf("query = %v", parsed["query"])
	}
	// Values that parse as JSON are passed typed
	if parsed["limit"] != float64(5) {
		t.Errorf("limit = %v (%T)", parsed["limit"], parsed["limit"])
	}
	if parsed["deep"] != true {
		t.Errorf("deep = %v", parsed["deep"])
	}
	// Everything else stays a string
	if parsed["note"] != "not json: {" {
		t.Errorf("note = %v", parsed["note"])
	}
}

func TestResolveCallArguments_NoArguments(t *testing.T) {
	got, err := resolveCallArguments(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %s, want nil", got)
	}
}
