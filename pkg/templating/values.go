package templating

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// OrderedMap is a string-keyed map that remembers insertion order. Repeat
// and attributes directives iterate it in that order.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set stores value under key. Overwriting keeps the key's original position.
func (m *OrderedMap) Set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *OrderedMap) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Map returns the entries as a plain map.
func (m *OrderedMap) Map() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.values[k]
	}
	return out
}

// entry is one key/value pair of an enumerable value.
type entry struct {
	key   string
	value any
}

// Truthy reports whether v counts as true for test, not and unwrap.
//
// nil, false, "", numeric zero, NaN and nil pointers, maps, slices, funcs
// and channels are false. Everything else is true, including empty but
// non-nil slices and maps.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// Stringify converts a resolved value to text. nil and typed nils become the
// empty string and nodes contribute their text content.
func Stringify(v any) string {
	if isNilValue(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case *html.Node:
		return textContent(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// lookup returns the member named segment of current. Maps are indexed by
// key, structs by exported field name (case-insensitive) and sequences by
// decimal index or "length". Strings index and count runes. When no member
// matches, an exported method taking no arguments is bound and returned as
// a callable.
func lookup(current any, segment string) any {
	switch c := current.(type) {
	case *Scope:
		v, _ := c.Get(segment)
		return v
	case map[string]any:
		return c[segment]
	case *OrderedMap:
		v, _ := c.Get(segment)
		return v
	case *html.Node:
		return nodeMember(c, segment)
	}

	if v, ok := member(current, segment); ok {
		return v
	}
	if m, ok := boundMethod(current, segment); ok {
		return m
	}
	return nil
}

func member(current any, segment string) (any, bool) {
	rv := indirect(reflect.ValueOf(current))
	if !rv.IsValid() {
		return nil, false
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true

	case reflect.Struct:
		fv := rv.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, segment)
		})
		if !fv.IsValid() {
			return nil, false
		}
		if !fv.CanInterface() {
			return nil, true
		}
		return fv.Interface(), true

	case reflect.String:
		runes := []rune(rv.String())
		if segment == "length" {
			return len(runes), true
		}
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, false
		}
		if idx < 0 || idx >= len(runes) {
			return nil, true
		}
		return string(runes[idx]), true

	case reflect.Slice, reflect.Array:
		if segment == "length" {
			return rv.Len(), true
		}
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, false
		}
		if idx < 0 || idx >= rv.Len() {
			return nil, true
		}
		return rv.Index(idx).Interface(), true
	}

	return nil, false
}

var errorType = reflect.TypeFor[error]()

// boundMethod finds an exported method of current named segment (exact
// match first, then case-insensitive) that takes no arguments and returns
// a value, optionally followed by an error.
func boundMethod(current any, segment string) (func() (any, error), bool) {
	rv := reflect.ValueOf(current)
	if !rv.IsValid() || isNilValue(current) {
		return nil, false
	}

	m := rv.MethodByName(segment)
	if !m.IsValid() {
		t := rv.Type()
		for i := range t.NumMethod() {
			if strings.EqualFold(t.Method(i).Name, segment) {
				m = rv.Method(i)
				break
			}
		}
	}
	if !m.IsValid() {
		return nil, false
	}

	mt := m.Type()
	if mt.NumIn() != 0 {
		return nil, false
	}
	switch {
	case mt.NumOut() == 1:
		return func() (any, error) {
			return m.Call(nil)[0].Interface(), nil
		}, true
	case mt.NumOut() == 2 && mt.Out(1) == errorType:
		return func() (any, error) {
			out := m.Call(nil)
			if err, _ := out[1].Interface().(error); err != nil {
				return nil, err
			}
			return out[0].Interface(), nil
		}, true
	}
	return nil, false
}

// nodeMember exposes a few node properties to expressions.
func nodeMember(n *html.Node, segment string) any {
	if n == nil {
		return nil
	}
	switch segment {
	case "textContent":
		return textContent(n)
	case "tagName":
		if n.Type == html.ElementNode {
			return strings.ToUpper(n.Data)
		}
		return nil
	}
	if v, ok := getAttr(n, segment); ok {
		return v
	}
	return nil
}

// isCallable reports whether v is one of the function shapes expressions
// invoke.
func isCallable(v any) bool {
	switch v.(type) {
	case Func,
		func(context.Context, Call) (any, error),
		func() any,
		func() (any, error),
		func(map[string]any) any,
		func(map[string]any) (any, error):
		return true
	}
	return false
}

// invoke calls a callable scope value.
func invoke(ctx context.Context, fn any, call Call) (any, error) {
	switch f := fn.(type) {
	case Func:
		return f(ctx, call)
	case func(context.Context, Call) (any, error):
		return f(ctx, call)
	case func() any:
		return f(), nil
	case func() (any, error):
		return f()
	case func(map[string]any) any:
		return f(call.Scope), nil
	case func(map[string]any) (any, error):
		return f(call.Scope)
	}
	return nil, fmt.Errorf("value of type %T is not callable", fn)
}

// entries enumerates a sequence or mapping. Sequences are keyed by decimal
// index. Go maps are visited in sorted key order, OrderedMaps in insertion
// order and structs in field order. Anything else has no entries.
func entries(v any) []entry {
	switch c := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]entry, len(c))
		for i, item := range c {
			out[i] = entry{key: strconv.Itoa(i), value: item}
		}
		return out
	case []*html.Node:
		out := make([]entry, len(c))
		for i, item := range c {
			out[i] = entry{key: strconv.Itoa(i), value: item}
		}
		return out
	case string, []byte:
		return nil
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]entry, rv.Len())
		for i := range rv.Len() {
			out[i] = entry{key: strconv.Itoa(i), value: rv.Index(i).Interface()}
		}
		return out
	}
	return mappingEntries(v)
}

// mappingEntries enumerates a mapping value; sequences and scalars yield
// nothing.
func mappingEntries(v any) []entry {
	switch c := v.(type) {
	case nil:
		return nil
	case *OrderedMap:
		if c == nil {
			return nil
		}
		out := make([]entry, 0, c.Len())
		for _, k := range c.keys {
			out = append(out, entry{key: k, value: c.values[k]})
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]entry, len(keys))
		for i, k := range keys {
			out[i] = entry{key: k, value: c[k]}
		}
		return out
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := make([]entry, len(keys))
		for i, k := range keys {
			out[i] = entry{key: k.String(), value: rv.MapIndex(k).Interface()}
		}
		return out

	case reflect.Struct:
		t := rv.Type()
		out := make([]entry, 0, t.NumField())
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			out = append(out, entry{key: field.Name, value: rv.Field(i).Interface()})
		}
		return out
	}

	return nil
}

// isSequence reports whether v is a slice or array. Strings and byte
// slices are scalars.
func isSequence(v any) bool {
	switch v.(type) {
	case nil, string, []byte:
		return false
	}
	rv := indirect(reflect.ValueOf(v))
	return rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array)
}

// isNilValue reports whether v is nil or a nil pointer, map, slice, func,
// chan or interface.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
