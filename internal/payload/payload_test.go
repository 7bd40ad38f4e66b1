package payload

import (
	"encoding/json"
	"testing"
)

func TestEntry_UnmarshalBareStringContent(t *testing.T) {
	var entry Entry
	if err := json.Unmarshal([]byte(`{"role":"user","content":"hello"}`), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Role != RoleUser {
		t.Fatalf("expected user role, got %q", entry.Role)
	}
	if len(entry.Parts) != 1 || entry.Parts[0].Kind != PartText || entry.Parts[0].Text != "hello" {
		t.Fatalf("expected single text part, got %+v", entry.Parts)
	}
}

func TestEntry_UnmarshalPartList(t *testing.T) {
	body := `{"role":"assistant","content":[
		{"type":"text","text":"a","tool_call_ids":["c1"]},
		{"type":"think","think":"hmm"},
		{"type":"error","error":"boom"},
		{"type":"tool_call","tool_call":{"id":"c1","name":"run","args":"{}","output":"ok"}},
		null,
		{"type":"agent_update","status":"working"},
		{"type":"mystery","data":1}
	]}`
	var entry Entry
	if err := json.Unmarshal([]byte(body), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entry.Parts) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(entry.Parts))
	}
	if entry.Parts[0].Kind != PartText || entry.Parts[0].ToolCallIDs[0] != "c1" {
		t.Fatalf("unexpected text part %+v", entry.Parts[0])
	}
	if entry.Parts[1].Kind != PartThink || entry.Parts[1].Think != "hmm" {
		t.Fatalf("unexpected think part %+v", entry.Parts[1])
	}
	if entry.Parts[2].Kind != PartError || entry.Parts[2].Error != "boom" {
		t.Fatalf("unexpected error part %+v", entry.Parts[2])
	}
	call := entry.Parts[3].ToolCall
	if entry.Parts[3].Kind != PartToolCall || call == nil || call.Name != "run" || call.OutputText() != "ok" {
		t.Fatalf("unexpected tool_call part %+v", entry.Parts[3])
	}
	if entry.Parts[4] != nil {
		t.Fatalf("expected nil slot preserved, got %+v", entry.Parts[4])
	}
	if entry.Parts[5].Kind != PartAgentUpdate {
		t.Fatalf("unexpected agent_update part %+v", entry.Parts[5])
	}
	if entry.Parts[6].Kind != PartUnknown {
		t.Fatalf("expected unknown kind for mystery type, got %+v", entry.Parts[6])
	}
}

func TestEntry_UnmarshalMalformedPartBecomesUnknown(t *testing.T) {
	var entry Entry
	if err := json.Unmarshal([]byte(`{"role":"user","content":[42,{"type":"text","text":"ok"}]}`), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Parts[0].Kind != PartUnknown {
		t.Fatalf("expected unknown part for numeric slot, got %+v", entry.Parts[0])
	}
	if entry.Parts[1].Text != "ok" {
		t.Fatalf("expected valid sibling decoded, got %+v", entry.Parts[1])
	}
}

func TestEntry_UnmarshalMissingContent(t *testing.T) {
	var entry Entry
	if err := json.Unmarshal([]byte(`{"role":"assistant"}`), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Parts != nil {
		t.Fatalf("expected no parts, got %+v", entry.Parts)
	}
}

func TestRawToolCall_NullOutput(t *testing.T) {
	var call RawToolCall
	if err := json.Unmarshal([]byte(`{"id":"c1","name":"","args":"","output":null}`), &call); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if call.HasOutput() {
		t.Fatalf("null output must not count as output")
	}
	if call.OutputText() != "" {
		t.Fatalf("expected empty output text, got %q", call.OutputText())
	}
}

func TestPart_MarshalRoundTrip(t *testing.T) {
	in := TextOwning("go", "c1")
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Part
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Kind != PartText || out.Text != "go" || len(out.ToolCallIDs) != 1 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
