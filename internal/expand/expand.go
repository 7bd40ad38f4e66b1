// Package expand converts a flat, provider-agnostic conversation payload into
// a normalized chat message sequence, healing structurally invalid tool
// invocations and redistributing per-entry token counts across the messages
// each entry produced. The transformation is pure and never fails: malformed
// input is healed or dropped, never surfaced as an error.
package expand

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/weft-ai/weft/internal/chat"
	"github.com/weft-ai/weft/internal/payload"
	"github.com/weft-ai/weft/internal/tokens"
)

// DefaultSearchTool is the sentinel call name whose output can extend the
// tool allow-list mid-run.
const DefaultSearchTool = "tool_search"

// Engine expands conversation payloads. The zero value is ready to use. One
// Expand call is fully independent of any other; distinct calls may run
// concurrently.
type Engine struct {
	// SearchTool overrides the discovery sentinel name. Empty means
	// DefaultSearchTool.
	SearchTool string
}

// Expand converts entries into normalized chat messages using the default
// discovery sentinel. See Engine.Expand.
func Expand(entries []payload.Entry, tokenCounts map[int]int, allowedTools []string) ([]chat.Message, map[int]int) {
	return Engine{}.Expand(entries, tokenCounts, allowedTools)
}

// Expand converts entries into an ordered chat message sequence. One entry
// may expand into several messages or none at all.
//
// tokenCounts maps entry index to that entry's token count. When non-nil, the
// second result maps final output message index to its redistributed share;
// an entry absent from the input map writes nothing to the output map. When
// tokenCounts is nil the second result is nil.
//
// allowedTools seeds the tool allow-list; nil means every tool call is
// accepted. The list grows when an accepted discovery call's output names
// further tools, and that growth persists across the remaining entries.
func (e Engine) Expand(entries []payload.Entry, tokenCounts map[int]int, allowedTools []string) ([]chat.Message, map[int]int) {
	searchTool := e.SearchTool
	if searchTool == "" {
		searchTool = DefaultSearchTool
	}
	run := &expansion{
		searchTool: searchTool,
		tools:      newToolSet(allowedTools),
	}

	var outCounts map[int]int
	if tokenCounts != nil {
		outCounts = make(map[int]int, len(tokenCounts))
	}

	for i := range entries {
		start := len(run.messages)
		run.expandEntry(entries[i])
		produced := run.messages[start:]
		if outCounts == nil || len(produced) == 0 {
			continue
		}
		count, ok := tokenCounts[i]
		if !ok {
			continue
		}
		weights := make([]int, len(produced))
		for j := range produced {
			weights[j] = messageWeight(produced[j])
		}
		for j, share := range tokens.Split(count, weights) {
			outCounts[start+j] = share
		}
	}
	if run.messages == nil {
		run.messages = []chat.Message{}
	}
	return run.messages, outCounts
}

// expansion is the mutable state of one Expand call. The tool set is the only
// state that threads across entries.
type expansion struct {
	searchTool string
	tools      *toolSet
	messages   []chat.Message
}

// toolSegment accumulates one assistant message and its companion tool
// results while the owning content is still being scanned.
type toolSegment struct {
	text     string
	declared []string
	calls    map[string]chat.ToolCall
	results  map[string]chat.Message
	inline   []string
}

func newToolSegment(text string, declared []string) *toolSegment {
	return &toolSegment{
		text:     text,
		declared: declared,
		calls:    make(map[string]chat.ToolCall),
		results:  make(map[string]chat.Message),
	}
}

func (s *toolSegment) owns(id string) bool {
	if id == "" {
		return false
	}
	for _, declared := range s.declared {
		if declared == id {
			return true
		}
	}
	return false
}

// expandEntry scans one entry's parts in order, emitting narrative runs and
// tool segments as their triggering content closes. Reasoning, error, and
// agent-update parts never reach the output; reasoning presence does switch
// narrative segments from part-list to joined-string form for the whole
// entry.
func (x *expansion) expandEntry(entry payload.Entry) {
	role := narrativeRole(entry.Role)
	collapse := false
	for _, part := range entry.Parts {
		if part != nil && part.Kind == payload.PartThink {
			collapse = true
			break
		}
	}

	var run []*payload.Part
	var seg *toolSegment

	flushRun := func() {
		if len(run) > 0 {
			x.emitNarrative(role, run, collapse)
			run = nil
		}
	}
	flushSeg := func() {
		if seg != nil {
			x.emitSegment(seg)
			seg = nil
		}
	}

	for _, part := range entry.Parts {
		if part == nil {
			continue
		}
		switch part.Kind {
		case payload.PartText:
			if len(part.ToolCallIDs) > 0 {
				// A tagged text always opens a fresh assistant message.
				flushRun()
				flushSeg()
				seg = newToolSegment(part.Text, part.ToolCallIDs)
				continue
			}
			flushSeg()
			run = append(run, part)
		case payload.PartToolCall:
			raw := part.ToolCall
			if raw == nil {
				continue
			}
			if raw.Name == "" && !raw.HasOutput() {
				// Degenerate: nothing worth keeping, nothing worth healing.
				continue
			}
			if seg != nil && seg.owns(raw.ID) {
				x.resolveCall(seg, raw.ID, *raw)
				continue
			}
			// Orphaned invocation: synthesize an owner and emit it with its
			// result before scanning further.
			flushRun()
			flushSeg()
			id := raw.ID
			if id == "" {
				id = uuid.NewString()
			}
			healed := newToolSegment("", []string{id})
			x.resolveCall(healed, id, *raw)
			x.emitSegment(healed)
		default:
			// think, error, agent_update, unknown: dropped.
		}
	}
	flushRun()
	flushSeg()
}

// resolveCall validates one kept tool invocation against the allow-list.
// Accepted calls become a parsed tool call plus a companion result message;
// rejected calls are serialized onto the owning assistant message as inline
// text. Accepted discovery calls extend the allow-list immediately.
func (x *expansion) resolveCall(seg *toolSegment, id string, raw payload.RawToolCall) {
	if !x.tools.allows(raw.Name) {
		seg.inline = append(seg.inline, serializeRejected(raw))
		return
	}
	seg.calls[id] = chat.ToolCall{ID: id, Name: raw.Name, Args: parseArgs(raw.Args)}
	seg.results[id] = chat.Tool(id, raw.Name, raw.OutputText())
	if raw.Name == x.searchTool {
		x.tools.discover(raw.OutputText())
	}
}

// emitSegment appends the segment's assistant message followed by its
// accepted tool results in the order their ids were declared.
func (x *expansion) emitSegment(seg *toolSegment) {
	content := seg.text
	if len(seg.inline) > 0 {
		joined := strings.Join(seg.inline, "\n")
		if content == "" {
			content = joined
		} else {
			content += "\n" + joined
		}
	}

	msg := chat.Message{Role: chat.RoleAI, Content: chat.Str(content)}
	var results []chat.Message
	seen := make(map[string]struct{}, len(seg.declared))
	for _, id := range seg.declared {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		call, ok := seg.calls[id]
		if !ok {
			continue
		}
		msg.ToolCalls = append(msg.ToolCalls, call)
		results = append(results, seg.results[id])
	}

	x.messages = append(x.messages, msg)
	x.messages = append(x.messages, results...)
}

// emitNarrative appends one narrative-only message. With collapse set the
// surviving texts are joined into a plain string; otherwise the literal part
// list is kept.
func (x *expansion) emitNarrative(role chat.Role, parts []*payload.Part, collapse bool) {
	if !collapse {
		kept := make([]*payload.Part, len(parts))
		copy(kept, parts)
		x.messages = append(x.messages, chat.Message{Role: role, Content: chat.Parts(kept)})
		return
	}
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	x.messages = append(x.messages, chat.Message{Role: role, Content: chat.Str(strings.Join(texts, "\n"))})
}

func narrativeRole(role payload.Role) chat.Role {
	switch role {
	case payload.RoleAssistant:
		return chat.RoleAI
	case payload.RoleSystem:
		return chat.RoleSystem
	default:
		return chat.RoleHuman
	}
}

// parseArgs parses raw tool-call arguments as a JSON object. Anything that is
// not one, including an empty string, is wrapped instead of rejected.
func parseArgs(raw string) map[string]any {
	args := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"input": raw}
	}
	return args
}

// serializeRejected renders a disallowed tool invocation as inline text so
// the information survives without violating the allow-list.
func serializeRejected(raw payload.RawToolCall) string {
	data, err := json.Marshal(struct {
		Name   string `json:"name"`
		Output string `json:"output"`
	}{raw.Name, raw.OutputText()})
	if err != nil {
		return raw.Name
	}
	return string(data)
}

// messageWeight is the proportional-split basis for one message: serialized
// content length plus serialized tool-call argument length plus tool-result
// content length.
func messageWeight(msg chat.Message) int {
	weight := contentWeight(msg.Content)
	for _, call := range msg.ToolCalls {
		if data, err := json.Marshal(call.Args); err == nil {
			weight += len(data)
		}
	}
	return weight
}

func contentWeight(content chat.Content) int {
	if content.IsParts() {
		data, err := json.Marshal(content.Parts)
		if err != nil {
			return 0
		}
		return len(data)
	}
	return len(content.Text)
}
