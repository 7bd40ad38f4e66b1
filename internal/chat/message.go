// Package chat defines the normalized message sequence produced by the
// expansion engine. Position in the sequence is the only message identity.
package chat

import (
	"encoding/json"

	"github.com/weft-ai/weft/internal/payload"
)

// Role is the author role for a normalized chat message.
type Role string

const (
	// RoleSystem is a system instruction message.
	RoleSystem Role = "system"
	// RoleHuman is a user-authored message.
	RoleHuman Role = "human"
	// RoleAI is an assistant message, optionally carrying tool calls.
	RoleAI Role = "ai"
	// RoleTool is a tool-result message addressed back to the model.
	RoleTool Role = "tool"
)

// ToolCall is a validated tool invocation attached to an AI message. Args is
// always a parsed object; unparsable raw arguments are wrapped upstream.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Content is either a plain string or the literal list of surviving content
// parts. A nil Parts slice means the string form.
type Content struct {
	Text  string
	Parts []*payload.Part
}

// Str builds string-form content.
func Str(text string) Content {
	return Content{Text: text}
}

// Parts builds part-list content.
func Parts(parts []*payload.Part) Content {
	if parts == nil {
		parts = []*payload.Part{}
	}
	return Content{Parts: parts}
}

// IsParts reports whether the content is in part-list form.
func (c Content) IsParts() bool {
	return c.Parts != nil
}

// MarshalJSON encodes string content as a JSON string and part-list content
// as a JSON array.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsParts() {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON accepts both content forms.
func (c *Content) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = Content{Text: text}
		return nil
	}
	var parts []*payload.Part
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	*c = Content{Parts: parts}
	return nil
}

// Message is one normalized chat message. ToolCalls is set only on AI
// messages; ToolCallID and ToolName only on tool messages.
type Message struct {
	Role       Role       `json:"role"`
	Content    Content    `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// System builds a system message.
func System(content Content) Message {
	return Message{Role: RoleSystem, Content: content}
}

// Human builds a human message.
func Human(content Content) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AI builds an assistant message.
func AI(content Content, toolCalls ...ToolCall) Message {
	return Message{Role: RoleAI, Content: content, ToolCalls: toolCalls}
}

// Tool builds a tool-result message bound to the call that produced it.
func Tool(toolCallID, toolName, content string) Message {
	return Message{Role: RoleTool, Content: Str(content), ToolCallID: toolCallID, ToolName: toolName}
}
