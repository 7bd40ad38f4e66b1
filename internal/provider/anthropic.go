// Package provider renders normalized chat messages into provider SDK
// payload shapes. Rendering is pure conversion; nothing here opens a
// connection or sends a request.
package provider

import (
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/weft-ai/weft/internal/chat"
)

// ToAnthropicMessages renders a chat message sequence into Anthropic message
// params plus the combined system prompt text. Consecutive tool results are
// collected into a single user message, as the API requires all results from
// one assistant turn together.
func ToAnthropicMessages(messages []chat.Message) ([]anthropic.MessageParam, string, error) {
	out := make([]anthropic.MessageParam, 0, len(messages))
	var system []string

	for i := 0; i < len(messages); {
		msg := messages[i]
		switch msg.Role {
		case chat.RoleSystem:
			system = append(system, contentText(msg.Content))
			i++
		case chat.RoleHuman:
			out = append(out, anthropic.NewUserMessage(narrativeBlocks(msg.Content)...))
			i++
		case chat.RoleAI:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content.IsParts() || msg.Content.Text != "" {
				blocks = narrativeBlocks(msg.Content)
			}
			for _, call := range msg.ToolCalls {
				args := call.Args
				if args == nil {
					args = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, args, call.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
			i++
		case chat.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for i < len(messages) && messages[i].Role == chat.RoleTool {
				if messages[i].ToolCallID == "" {
					return nil, "", fmt.Errorf("tool message requires tool_call_id")
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(messages[i].ToolCallID, contentText(messages[i].Content), false))
				i++
			}
			out = append(out, anthropic.NewUserMessage(blocks...))
		default:
			return nil, "", fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return out, strings.Join(system, "\n"), nil
}

// narrativeBlocks renders string content as one text block and part-list
// content as one block per text part.
func narrativeBlocks(content chat.Content) []anthropic.ContentBlockParamUnion {
	if !content.IsParts() {
		return []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(content.Text)}
	}
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(content.Parts))
	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		blocks = append(blocks, anthropic.NewTextBlock(part.Text))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, anthropic.NewTextBlock(""))
	}
	return blocks
}

// contentText flattens content to plain text for blocks that only take a
// string.
func contentText(content chat.Content) string {
	if !content.IsParts() {
		return content.Text
	}
	texts := make([]string, 0, len(content.Parts))
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}
