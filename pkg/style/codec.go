package style

import (
	"strings"

	"github.com/matzehuels/drawkit/pkg/errors"
)

// Decode parses a drawio style string.
//
// Tokens are separated by ';'. A token is either a bare flag ("rounded") or
// "key=value", split at the first '='. Empty tokens are ignored, as are
// tokens with an empty key. When a key repeats, the last value wins but the
// key keeps the position of its first occurrence.
//
// Decode never fails: values are opaque strings and unknown keys pass
// through untouched.
func Decode(s string) *Style {
	out := &Style{
		leading:  strings.HasPrefix(s, ";"),
		trailing: strings.HasSuffix(s, ";"),
	}
	for tok := range strings.SplitSeq(s, ";") {
		if tok == "" {
			continue
		}
		key, raw, hasValue := strings.Cut(tok, "=")
		if key == "" {
			continue
		}
		if hasValue {
			out.put(key, Value{Raw: raw})
		} else {
			out.put(key, Flag())
		}
	}
	return out
}

// Encode renders s as a drawio style string.
//
// Keys and values are written in the order captured by [Decode] (or insertion
// order for new keys), and a leading or trailing ';' seen at decode time is
// reproduced, so an unmodified style encodes to its original text. Encode
// fails with INVALID_STYLE_VALUE when a key is empty or contains ';' or '=',
// or when a value contains ';', since the grammar has no escape mechanism.
func Encode(s *Style) (string, error) {
	if s.Len() == 0 {
		return "", nil
	}

	var b strings.Builder
	if s.leading {
		b.WriteByte(';')
	}
	for i, e := range s.entries {
		if err := errors.ValidateStyleKey(e.key); err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(e.key)
		if e.val.Flag {
			continue
		}
		if err := errors.ValidateStyleValue(e.key, e.val.Raw); err != nil {
			return "", err
		}
		b.WriteByte('=')
		b.WriteString(e.val.Raw)
	}
	if s.trailing {
		b.WriteByte(';')
	}
	return b.String(), nil
}
