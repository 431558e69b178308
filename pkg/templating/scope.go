package templating

import "maps"

// Scope holds the named values available to expressions during a render.
//
// Branches that must not observe each other's writes (repeat iterations,
// includes) get their own scope through Derive. Siblings rendered under the
// same scope share it, so a data-fly-test.name flag written by one element
// is visible to the elements that follow it.
//
// A Scope is not safe for concurrent mutation. Concurrent reads are fine.
type Scope struct {
	vars map[string]any
}

// NewScope creates a scope holding a shallow copy of vars.
func NewScope(vars map[string]any) *Scope {
	s := &Scope{vars: make(map[string]any, len(vars))}
	maps.Copy(s.vars, vars)
	return s
}

// Get returns the value stored under key.
func (s *Scope) Get(key string) (any, bool) {
	v, ok := s.vars[key]
	return v, ok
}

// Set stores value under key.
func (s *Scope) Set(key string, value any) {
	s.vars[key] = value
}

// Snapshot returns a shallow copy of all values.
func (s *Scope) Snapshot() map[string]any {
	return maps.Clone(s.vars)
}

// Derive returns a new scope with the same values plus overrides. Writes to
// the derived scope are invisible to s.
func (s *Scope) Derive(overrides map[string]any) *Scope {
	d := &Scope{vars: make(map[string]any, len(s.vars)+len(overrides))}
	maps.Copy(d.vars, s.vars)
	maps.Copy(d.vars, overrides)
	return d
}

// TemplateRef returns the template the scope is currently rendering, read
// from the "template" key. Missing fields are empty.
func (s *Scope) TemplateRef() TemplateRef {
	switch t := s.vars[KeyTemplate].(type) {
	case TemplateRef:
		return t
	case *TemplateRef:
		if t != nil {
			return *t
		}
	case map[string]any:
		return TemplateRef{Path: Stringify(t["path"]), Name: Stringify(t["name"])}
	case *OrderedMap:
		path, _ := t.Get("path")
		name, _ := t.Get("name")
		return TemplateRef{Path: Stringify(path), Name: Stringify(name)}
	}
	return TemplateRef{}
}

func (s *Scope) stringValue(key string) string {
	v, ok := s.vars[key]
	if !ok {
		return ""
	}
	return Stringify(v)
}
