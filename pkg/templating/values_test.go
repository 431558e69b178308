package templating

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func TestTruthy(t *testing.T) {
	var nilPointer *testUser
	var nilMap map[string]any
	var nilSlice []any

	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"empty string", "", false},
		{"string", "0", true},
		{"zero int", 0, false},
		{"int", -1, true},
		{"zero uint", uint8(0), false},
		{"zero float", 0.0, false},
		{"NaN", math.NaN(), false},
		{"float", 0.5, true},
		{"nil pointer", nilPointer, false},
		{"pointer", &testUser{}, true},
		{"nil map", nilMap, false},
		{"empty map", map[string]any{}, true},
		{"nil slice", nilSlice, false},
		{"empty slice", []any{}, true},
		{"struct", testUser{}, true},
		{"ordered map", NewOrderedMap(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truthy(tt.value))
		})
	}
}

type stringerValue struct{}

func (stringerValue) String() string { return "stringer" }

func TestStringify(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"bool", true, "true"},
		{"float", 2.50, "2.5"},
		{"float32", float32(0.25), "0.25"},
		{"whole float", 3.0, "3"},
		{"stringer", stringerValue{}, "stringer"},
		{"node", newText("text"), "text"},
		{"nil stringer pointer", (*url.URL)(nil), ""},
		{"nil node", (*html.Node)(nil), ""},
		{"nil slice", []any(nil), ""},
		{"nil map", map[string]any(nil), ""},
		{"bytes", []byte("hi"), "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stringify(tt.value))
		})
	}
}

func entryKeys(es []entry) []string {
	keys := make([]string, len(es))
	for i, e := range es {
		keys[i] = e.key
	}
	return keys
}

func TestEntries(t *testing.T) {
	ordered := NewOrderedMap()
	ordered.Set("z", 1)
	ordered.Set("a", 2)
	ordered.Set("z", 3)

	assert.Equal(t, []string{"0", "1"}, entryKeys(entries([]any{"a", "b"})))
	assert.Equal(t, []string{"0"}, entryKeys(entries([1]int{7})))
	assert.Equal(t, []string{"a", "b", "c"}, entryKeys(entries(map[string]any{"c": 1, "a": 2, "b": 3})))
	assert.Equal(t, []string{"a", "b"}, entryKeys(entries(map[string]int{"b": 1, "a": 2})))
	assert.Equal(t, []string{"z", "a"}, entryKeys(entries(ordered)))
	assert.Equal(t, []string{"Name", "Address"}, entryKeys(entries(testUser{})))
	assert.Empty(t, entries("abc"))
	assert.Empty(t, entries(42))
	assert.Empty(t, entries(nil))
	assert.Empty(t, entries(map[int]string{1: "x"}))
	assert.Empty(t, entries([]byte("hi")))
	assert.False(t, isSequence([]byte("hi")))
	assert.True(t, isSequence([]string{"hi"}))

	value, _ := ordered.Get("z")
	assert.Equal(t, 3, value)
	assert.Equal(t, 2, ordered.Len())
	assert.Equal(t, map[string]any{"z": 3, "a": 2}, ordered.Map())
}

func TestMappingEntries_IgnoresSequences(t *testing.T) {
	assert.Empty(t, mappingEntries([]any{"a"}))
	assert.Empty(t, mappingEntries((*OrderedMap)(nil)))
}
