package style

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Value is a single style value as it appears on the wire.
//
// Values are untyped strings at the codec boundary. A bare token without '='
// (for example "ellipse" or "html") decodes to a flag whose Raw is empty.
type Value struct {
	Raw  string
	Flag bool
}

// Flag returns the truthy sentinel used for bare tokens.
func Flag() Value { return Value{Flag: true} }

// String wraps a raw string value.
func String(s string) Value { return Value{Raw: s} }

// Bool encodes b the way drawio does ("1" or "0").
func Bool(b bool) Value {
	if b {
		return Value{Raw: "1"}
	}
	return Value{Raw: "0"}
}

// Number encodes f with the shortest representation that round-trips.
func Number(f float64) Value {
	return Value{Raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// String returns the raw value, or "" for a flag.
func (v Value) String() string { return v.Raw }

type entry struct {
	key string
	val Value
}

// Style is an ordered mapping from style keys to values.
//
// Keys keep the position of their first occurrence, which lets [Encode]
// reproduce the decoded string when nothing was added or removed. The zero
// value is an empty style ready to use. Style is not safe for concurrent
// mutation.
type Style struct {
	entries []entry
	index   map[string]int

	leading  bool // source began with ';'
	trailing bool // source ended with ';'
}

// New returns an empty style. Styles built this way are terminated with ';'
// on encode, matching what drawio itself writes.
func New() *Style {
	return &Style{trailing: true}
}

// Len returns the number of distinct keys.
func (s *Style) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Keys returns the keys in encode order.
func (s *Style) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}

// All iterates over key/value pairs in encode order.
func (s *Style) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if s == nil {
			return
		}
		for _, e := range s.entries {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// Get returns the value stored under key.
func (s *Style) Get(key string) (Value, bool) {
	if s == nil || s.index == nil {
		return Value{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Value{}, false
	}
	return s.entries[i].val, true
}

// Has reports whether key is present, as a flag or with a value.
func (s *Style) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Value returns the raw string stored under key, or "" when absent.
func (s *Style) Value(key string) string {
	v, _ := s.Get(key)
	return v.Raw
}

// Set stores raw under key. An existing key keeps its position.
func (s *Style) Set(key, raw string) {
	s.put(key, Value{Raw: raw})
}

// SetValue stores v under key. An existing key keeps its position.
func (s *Style) SetValue(key string, v Value) {
	s.put(key, v)
}

// SetFlag stores key as a bare token.
func (s *Style) SetFlag(key string) {
	s.put(key, Flag())
}

// SetBool stores b as "1" or "0".
func (s *Style) SetBool(key string, b bool) {
	s.put(key, Bool(b))
}

// SetNumber stores f in its shortest decimal form.
func (s *Style) SetNumber(key string, f float64) {
	s.put(key, Number(f))
}

func (s *Style) put(key string, v Value) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[key]; ok {
		s.entries[i].val = v
		return
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, entry{key: key, val: v})
}

// Delete removes key. It reports whether the key was present.
func (s *Style) Delete(key string) bool {
	if s == nil || s.index == nil {
		return false
	}
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	delete(s.index, key)
	for j := i; j < len(s.entries); j++ {
		s.index[s.entries[j].key] = j
	}
	return true
}

// Bool interprets key as a boolean. Flags, "1" and "true" are true;
// "0" and "false" are false. ok is false when the key is absent or the
// value is not a recognized boolean.
func (s *Style) Bool(key string) (value bool, ok bool) {
	v, found := s.Get(key)
	if !found {
		return false, false
	}
	if v.Flag {
		return true, true
	}
	switch strings.ToLower(v.Raw) {
	case "1", "true":
		return true, true
	case "0", "false":
		return false, true
	}
	return false, false
}

// Float interprets key as a number. ok is false when the key is absent
// or not numeric.
func (s *Style) Float(key string) (float64, bool) {
	v, found := s.Get(key)
	if !found || v.Flag {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int interprets key as an integer. ok is false when the key is absent
// or not an integer.
func (s *Style) Int(key string) (int, bool) {
	v, found := s.Get(key)
	if !found || v.Flag {
		return 0, false
	}
	n, err := strconv.Atoi(v.Raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// BaseName returns the leading bare token (for example "ellipse" or "text"),
// which drawio treats as a named base style.
func (s *Style) BaseName() string {
	if s.Len() == 0 || !s.entries[0].val.Flag {
		return ""
	}
	return s.entries[0].key
}

// Clone returns a deep copy of s.
func (s *Style) Clone() *Style {
	if s == nil {
		return nil
	}
	c := &Style{
		entries:  slices.Clone(s.entries),
		leading:  s.leading,
		trailing: s.trailing,
	}
	if s.index != nil {
		c.index = make(map[string]int, len(s.index))
		for k, v := range s.index {
			c.index[k] = v
		}
	}
	return c
}

// Equal reports whether a and b hold the same keys with the same values
// in the same order. Delimiter placement is ignored.
func Equal(a, b *Style) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.entries[i] != b.entries[i] {
			return false
		}
	}
	return true
}

// Map returns the style as a plain map. Flags map to the empty string.
func (s *Style) Map() map[string]string {
	if s.Len() == 0 {
		return nil
	}
	m := make(map[string]string, len(s.entries))
	for _, e := range s.entries {
		m[e.key] = e.val.Raw
	}
	return m
}

// Merge returns a new style holding base's keys overridden by over's.
// Keys only in over are appended after base's keys. It is used to apply
// shape-library presets underneath cell-specific settings.
func Merge(base, over *Style) *Style {
	out := base.Clone()
	if out == nil {
		out = New()
	}
	for k, v := range over.All() {
		out.put(k, v)
	}
	return out
}

// String returns the encoded style, ignoring values that cannot be encoded.
// Use [Encode] when errors matter.
func (s *Style) String() string {
	out, err := Encode(s)
	if err != nil {
		return ""
	}
	return out
}
