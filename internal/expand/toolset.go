package expand

import "github.com/tidwall/gjson"

// toolSet is the allow-list of callable tool names for one engine run. It is
// seeded from the caller's list and only ever grows, via discovery from
// tool-search output. A nil caller list means no restriction at all.
type toolSet struct {
	unrestricted bool
	names        map[string]struct{}
}

func newToolSet(allowed []string) *toolSet {
	if allowed == nil {
		return &toolSet{unrestricted: true}
	}
	s := &toolSet{names: make(map[string]struct{}, len(allowed))}
	for _, name := range allowed {
		if name != "" {
			s.names[name] = struct{}{}
		}
	}
	return s
}

func (s *toolSet) allows(name string) bool {
	if s.unrestricted {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// discover extends the set from a tool-search output payload. The output must
// be valid JSON holding a tools array of objects with a name string; anything
// else leaves the set unchanged.
func (s *toolSet) discover(output string) {
	if s.unrestricted || !gjson.Valid(output) {
		return
	}
	tools := gjson.Get(output, "tools")
	if !tools.IsArray() {
		return
	}
	tools.ForEach(func(_, tool gjson.Result) bool {
		name := tool.Get("name")
		if name.Type == gjson.String && name.Str != "" {
			s.names[name.Str] = struct{}{}
		}
		return true
	})
}
