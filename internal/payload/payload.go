// Package payload defines the provider-agnostic conversation payload consumed
// by the expansion engine: role-tagged entries whose content is either a bare
// string or an ordered list of typed parts. Decoding is deliberately
// forgiving; malformed shapes become unknown parts rather than errors.
package payload

import "encoding/json"

// Role is the author role of a payload entry.
type Role string

const (
	// RoleUser is a user-authored entry.
	RoleUser Role = "user"
	// RoleAssistant is an assistant-authored entry.
	RoleAssistant Role = "assistant"
	// RoleSystem is a system instruction entry.
	RoleSystem Role = "system"
	// RoleTool is a tool-output entry.
	RoleTool Role = "tool"
)

// PartKind discriminates the content part union.
type PartKind string

const (
	// PartText is narrative text, optionally owning tool invocations.
	PartText PartKind = "text"
	// PartThink is a reasoning trace. Never surfaces in output.
	PartThink PartKind = "think"
	// PartError is an error trace. Never surfaces in output.
	PartError PartKind = "error"
	// PartToolCall wraps a raw tool invocation.
	PartToolCall PartKind = "tool_call"
	// PartAgentUpdate is an agent status update. Never surfaces in output.
	PartAgentUpdate PartKind = "agent_update"
	// PartUnknown is any unrecognized or malformed part shape.
	PartUnknown PartKind = ""
)

// RawToolCall is a tool invocation as it appears on the wire. Args is a raw
// string that may or may not be valid JSON. Output is nil when the call has
// not produced a result.
type RawToolCall struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Args   string  `json:"args"`
	Output *string `json:"output,omitempty"`
}

// HasOutput reports whether the call carries non-empty output.
func (c RawToolCall) HasOutput() bool {
	return c.Output != nil && *c.Output != ""
}

// OutputText returns the call output, or "" when absent.
func (c RawToolCall) OutputText() string {
	if c.Output == nil {
		return ""
	}
	return *c.Output
}

// Part is one typed unit of entry content. Only the fields matching Kind are
// meaningful.
type Part struct {
	Kind        PartKind
	Text        string
	ToolCallIDs []string
	Think       string
	Error       string
	ToolCall    *RawToolCall
}

// partWire mirrors the wire shape of every part variant at once.
type partWire struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	ToolCallIDs []string     `json:"tool_call_ids"`
	Think       string       `json:"think"`
	Error       string       `json:"error"`
	ToolCall    *RawToolCall `json:"tool_call"`
}

// UnmarshalJSON decodes a content part, mapping unrecognized or malformed
// shapes to PartUnknown instead of failing.
func (p *Part) UnmarshalJSON(data []byte) error {
	var w partWire
	if err := json.Unmarshal(data, &w); err != nil {
		*p = Part{Kind: PartUnknown}
		return nil
	}
	switch PartKind(w.Type) {
	case PartText:
		*p = Part{Kind: PartText, Text: w.Text, ToolCallIDs: w.ToolCallIDs}
	case PartThink:
		*p = Part{Kind: PartThink, Think: w.Think}
	case PartError:
		*p = Part{Kind: PartError, Error: w.Error}
	case PartToolCall:
		*p = Part{Kind: PartToolCall, ToolCall: w.ToolCall}
	case PartAgentUpdate:
		*p = Part{Kind: PartAgentUpdate}
	default:
		*p = Part{Kind: PartUnknown}
	}
	return nil
}

// MarshalJSON encodes the part in its wire shape.
func (p Part) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PartText:
		return json.Marshal(struct {
			Type        string   `json:"type"`
			Text        string   `json:"text"`
			ToolCallIDs []string `json:"tool_call_ids,omitempty"`
		}{string(PartText), p.Text, p.ToolCallIDs})
	case PartThink:
		return json.Marshal(struct {
			Type  string `json:"type"`
			Think string `json:"think"`
		}{string(PartThink), p.Think})
	case PartError:
		return json.Marshal(struct {
			Type  string `json:"type"`
			Error string `json:"error"`
		}{string(PartError), p.Error})
	case PartToolCall:
		return json.Marshal(struct {
			Type     string       `json:"type"`
			ToolCall *RawToolCall `json:"tool_call,omitempty"`
		}{string(PartToolCall), p.ToolCall})
	case PartAgentUpdate:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{string(PartAgentUpdate)})
	default:
		return []byte("{}"), nil
	}
}

// Entry is one role-tagged item of the input payload. Content is normalized
// at decode time: a bare string becomes a single text part. Nil slots in a
// part list are preserved and skipped by consumers.
type Entry struct {
	Role  Role
	Parts []*Part
}

// UnmarshalJSON decodes an entry, accepting both the bare-string and the
// part-list content forms. An unrecognized content shape yields no parts.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var w struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.Role = w.Role
	e.Parts = nil
	if len(w.Content) == 0 || string(w.Content) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(w.Content, &text); err == nil {
		e.Parts = []*Part{{Kind: PartText, Text: text}}
		return nil
	}
	var parts []*Part
	if err := json.Unmarshal(w.Content, &parts); err != nil {
		return nil
	}
	e.Parts = parts
	return nil
}

// MarshalJSON encodes the entry with its part-list content form.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Role    Role    `json:"role"`
		Content []*Part `json:"content"`
	}{e.Role, e.Parts})
}

// Text builds a narrative text part.
func Text(text string) *Part {
	return &Part{Kind: PartText, Text: text}
}

// TextOwning builds a text part that owns the named tool invocations.
func TextOwning(text string, toolCallIDs ...string) *Part {
	return &Part{Kind: PartText, Text: text, ToolCallIDs: toolCallIDs}
}

// Think builds a reasoning-trace part.
func Think(think string) *Part {
	return &Part{Kind: PartThink, Think: think}
}

// Error builds an error-trace part.
func Error(err string) *Part {
	return &Part{Kind: PartError, Error: err}
}

// ToolCallPart wraps a raw tool invocation in a content part.
func ToolCallPart(call *RawToolCall) *Part {
	return &Part{Kind: PartToolCall, ToolCall: call}
}

// StringOutput returns a pointer to s for RawToolCall.Output literals.
func StringOutput(s string) *string {
	return &s
}
