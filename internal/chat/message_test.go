package chat

import (
	"encoding/json"
	"testing"

	"github.com/weft-ai/weft/internal/payload"
)

func TestContent_MarshalStringForm(t *testing.T) {
	data, err := json.Marshal(Str("hello"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"hello"` {
		t.Fatalf("expected JSON string, got %s", data)
	}
}

func TestContent_MarshalPartsForm(t *testing.T) {
	data, err := json.Marshal(Parts([]*payload.Part{payload.Text("a"), payload.Text("b")}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("expected JSON array, got %s: %v", data, err)
	}
	if len(decoded) != 2 || decoded[0]["text"] != "a" {
		t.Fatalf("unexpected array %s", data)
	}
}

func TestContent_UnmarshalBothForms(t *testing.T) {
	var c Content
	if err := json.Unmarshal([]byte(`"plain"`), &c); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if c.IsParts() || c.Text != "plain" {
		t.Fatalf("unexpected content %+v", c)
	}
	if err := json.Unmarshal([]byte(`[{"type":"text","text":"a"}]`), &c); err != nil {
		t.Fatalf("unmarshal parts: %v", err)
	}
	if !c.IsParts() || len(c.Parts) != 1 || c.Parts[0].Text != "a" {
		t.Fatalf("unexpected content %+v", c)
	}
}

func TestMessage_MarshalToolFields(t *testing.T) {
	msg := Tool("c1", "run", "ok")
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["role"] != "tool" || decoded["tool_call_id"] != "c1" || decoded["tool_name"] != "run" {
		t.Fatalf("unexpected tool message %s", data)
	}
	if decoded["content"] != "ok" {
		t.Fatalf("expected string content, got %s", data)
	}
}

func TestMessage_MarshalOmitsEmptyToolFields(t *testing.T) {
	data, err := json.Marshal(Human(Str("hi")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["tool_calls"]; ok {
		t.Fatalf("expected tool_calls omitted: %s", data)
	}
	if _, ok := decoded["tool_call_id"]; ok {
		t.Fatalf("expected tool_call_id omitted: %s", data)
	}
}
