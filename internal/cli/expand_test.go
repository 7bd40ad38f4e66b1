package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func runCommand(t *testing.T, args ...string) *bytes.Buffer {
	t.Helper()
	out := &bytes.Buffer{}
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExpandCommand_WritesMessages(t *testing.T) {
	t.Setenv("WEFT_HOME", t.TempDir())
	dir := t.TempDir()
	payloadPath := writeFile(t, dir, "payload.json", `[
		{"role":"user","content":"hello"},
		{"role":"assistant","content":[
			{"type":"text","text":"calling","tool_call_ids":["c1"]},
			{"type":"tool_call","tool_call":{"id":"c1","name":"run","args":"{}","output":"ok"}}
		]}
	]`)

	out := runCommand(t, "expand", payloadPath)

	var result expandResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(result.Messages) != 3 {
		t.Fatalf("expected human, assistant, tool; got %d messages", len(result.Messages))
	}
	if result.TokenCounts != nil {
		t.Fatalf("expected no token map without --tokens, got %v", result.TokenCounts)
	}
}

func TestExpandCommand_TokensFlag(t *testing.T) {
	t.Setenv("WEFT_HOME", t.TempDir())
	dir := t.TempDir()
	payloadPath := writeFile(t, dir, "payload.json", `[{"role":"user","content":"hello"}]`)
	tokensPath := writeFile(t, dir, "tokens.json", `{"0": 12}`)

	out := runCommand(t, "expand", payloadPath, "--tokens", tokensPath)

	var result expandResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if result.TokenCounts[0] != 12 {
		t.Fatalf("expected full count on the single message, got %v", result.TokenCounts)
	}
}

func TestExpandCommand_AllowFlagRestricts(t *testing.T) {
	t.Setenv("WEFT_HOME", t.TempDir())
	dir := t.TempDir()
	payloadPath := writeFile(t, dir, "payload.json", `[
		{"role":"assistant","content":[
			{"type":"text","text":"calling","tool_call_ids":["c1"]},
			{"type":"tool_call","tool_call":{"id":"c1","name":"forbidden","args":"{}","output":"x"}}
		]}
	]`)

	out := runCommand(t, "expand", payloadPath, "--allow", "calculator")

	var result expandResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected the rejected call inlined into one message, got %d", len(result.Messages))
	}
	if len(result.Messages[0].ToolCalls) != 0 {
		t.Fatalf("expected no tool calls, got %+v", result.Messages[0].ToolCalls)
	}
}

func TestVersionCommand(t *testing.T) {
	out := runCommand(t, "version")
	if out.Len() == 0 {
		t.Fatalf("expected version output")
	}
}
