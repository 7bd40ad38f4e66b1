// Package roundtrip converts a normalized chat message sequence back into the
// flat content-part form used by the payload pipeline, re-linking tool
// results to the invocations that produced them.
package roundtrip

import (
	"encoding/json"

	"github.com/weft-ai/weft/internal/chat"
	"github.com/weft-ai/weft/internal/payload"
)

// Flatten converts messages into a flat part list. An AI message becomes its
// narrative parts followed by one tool_call part per call; a tool message is
// folded into the matching tool_call part as its output. A tool result whose
// call is not in the sequence degrades to plain text.
func Flatten(messages []chat.Message) []*payload.Part {
	parts := make([]*payload.Part, 0, len(messages))
	callParts := make(map[string]*payload.Part)

	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleTool:
			if part, ok := callParts[msg.ToolCallID]; ok && part.ToolCall != nil {
				part.ToolCall.Output = payload.StringOutput(msg.Content.Text)
				continue
			}
			parts = append(parts, payload.Text(msg.Content.Text))
		case chat.RoleAI:
			parts = appendNarrative(parts, msg)
			for _, call := range msg.ToolCalls {
				part := payload.ToolCallPart(&payload.RawToolCall{
					ID:   call.ID,
					Name: call.Name,
					Args: marshalArgs(call.Args),
				})
				callParts[call.ID] = part
				parts = append(parts, part)
			}
		default:
			parts = appendNarrative(parts, msg)
		}
	}
	return parts
}

// AttachArtifacts appends out-of-band artifact content, keyed by tool call
// id, onto the matching tool-result messages in place.
func AttachArtifacts(messages []chat.Message, artifacts map[string]string) {
	if len(artifacts) == 0 {
		return
	}
	for i := range messages {
		if messages[i].Role != chat.RoleTool {
			continue
		}
		artifact, ok := artifacts[messages[i].ToolCallID]
		if !ok || artifact == "" {
			continue
		}
		content := messages[i].Content.Text
		if content != "" {
			content += "\n"
		}
		messages[i].Content = chat.Str(content + artifact)
	}
}

func appendNarrative(parts []*payload.Part, msg chat.Message) []*payload.Part {
	if msg.Content.IsParts() {
		return append(parts, msg.Content.Parts...)
	}
	if msg.Content.Text == "" {
		return parts
	}
	part := payload.Text(msg.Content.Text)
	for _, call := range msg.ToolCalls {
		part.ToolCallIDs = append(part.ToolCallIDs, call.ID)
	}
	return append(parts, part)
}

func marshalArgs(args map[string]any) string {
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}
