// Package formvalue decodes the loosely typed JSON produced by web forms:
// numbers that arrive as strings and lists that arrive as comma-separated text.
package formvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Split turns "a, b,,c " into ["a" "b" "c"]. Empty input yields an empty,
// non-nil slice. Split(strings.Join(Split(s), ",")) == Split(s).
func Split(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// List accepts either a JSON array of strings or a comma-separated string.
type List []string

func (l *List) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = List{}
		return nil
	case len(b) > 0 && b[0] == '[':
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return fmt.Errorf("list: %w", err)
		}
		*l = Split(strings.Join(items, ","))
		return nil
	default:
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("list: expected string or array")
		}
		*l = Split(s)
		return nil
	}
}

// Strings returns the list as a non-nil slice.
func (l List) Strings() []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// Text accepts a JSON string, number or boolean and keeps its textual form.
// Null and absent both decode to "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return fmt.Errorf("text: expected string or number")
	}
	*t = Text(b)
	return nil
}

func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Flag accepts a JSON boolean or a checkbox-style string: "true", "on",
// "1", "yes" are true; "", "false", "off", "0", "no" and null are false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("flag: expected boolean")
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "1", "yes":
		*f = true
	case "", "false", "off", "0", "no":
		*f = false
	default:
		return fmt.Errorf("flag: unrecognised value %q", s)
	}
	return nil
}

// MaxLeadingInt is the saturation bound of LeadingInt.
const MaxLeadingInt = math.MaxInt32

// LeadingInt parses the integer prefix of s the way a lenient form parser
// does: optional sign, then digits, ignoring whatever follows ("45min" is 45,
// "12.9" is 12). ok is false when no digits lead the string. Magnitudes
// beyond MaxLeadingInt saturate to it, so huge values stay out of range
// instead of looking absent.
func LeadingInt(s string) (n int, ok bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if next := int64(n)*10 + int64(s[i]-'0'); next < MaxLeadingInt {
			n = int(next)
		} else {
			n = MaxLeadingInt
		}
		i++
	}
	if i == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// Optional returns nil for blank input and the trimmed string otherwise.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
