package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is an optional whole number. Unset numbers travel as an empty string
// in form submissions and as null in JSON. Decoding tolerates numeric strings
// and empty strings, which is how the intake API echoes form values back.
type Number struct {
	value int
	set   bool
}

// NumberOf returns a set Number.
func NumberOf(v int) Number { return Number{value: v, set: true} }

// IsSet reports whether a value was entered.
func (n Number) IsSet() bool { return n.set }

// Int returns the value and whether it is set.
func (n Number) Int() (int, bool) { return n.value, n.set }

// Or returns the value, or def when unset.
func (n Number) Or(def int) int {
	if !n.set {
		return def
	}
	return n.value
}

func (n Number) String() string {
	if !n.set {
		return ""
	}
	return strconv.Itoa(n.value)
}

func (n Number) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.value)), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseNumber(s)
		if err != nil {
			return err
		}
		*n = parsed
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	parsed, err := NumberFromFloat(f)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// NumberFromFloat truncates f toward zero. NaN, infinities and values outside
// the int range are rejected.
func NumberFromFloat(f float64) (Number, error) {
	if math.IsNaN(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return Number{}, fmt.Errorf("number out of range: %v", f)
	}
	return NumberOf(int(f)), nil
}

// ParseNumber parses user input. Blank input yields an unset Number.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return NumberOf(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("not a number: %q", s)
	}
	return NumberFromFloat(f)
}

// Clamp bounds a set Number to [lo, hi]. Unset numbers stay unset.
func (n Number) Clamp(lo, hi int) Number {
	if !n.set {
		return n
	}
	return NumberOf(max(lo, min(hi, n.value)))
}

// AtLeast bounds a set Number from below.
func (n Number) AtLeast(lo int) Number {
	if !n.set {
		return n
	}
	return NumberOf(max(lo, n.value))
}

// Languages is the list of spoken languages. The API sometimes stores it as
// the JSON text it was submitted as, so decoding accepts either form.
type Languages []string

func (l *Languages) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		*l = list
		return nil
	}
	*l = ParseLanguages(text)
	return nil
}

// ParseLanguages splits comma separated text, trimming entries and dropping blanks.
func ParseLanguages(text string) Languages {
	out := Languages{}
	for part := range strings.SplitSeq(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
