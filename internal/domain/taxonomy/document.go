package taxonomy

import "strings"

const (
	rootKey       = "freelancerSignUp"
	industriesKey = "industries"
	workTypesKey  = "workTypes"
)

// Document is one decoded locale file. Keys outside the catalogue subtree
// are carried along untouched.
type Document map[string]any

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	return Document(cloneMap(d))
}

// Lookup walks a dotted path and returns the node found there.
func (d Document) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// stringsAt returns the string leaves of the object found at path.
func (d Document) stringsAt(path ...string) map[string]string {
	var cur any = map[string]any(d)
	for _, part := range path {
		m, ok := asMap(cur)
		if !ok {
			return map[string]string{}
		}
		cur = m[part]
	}
	m, ok := asMap(cur)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// ensure returns the object at path, creating missing or non-object nodes.
func (d Document) ensure(path ...string) map[string]any {
	cur := map[string]any(d)
	for _, part := range path {
		next, ok := asMap(cur[part])
		if !ok {
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	return cur
}

// existing returns the object at path without creating anything.
func (d Document) existing(path ...string) (map[string]any, bool) {
	cur := map[string]any(d)
	for _, part := range path {
		next, ok := asMap(cur[part])
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Document:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
