package wizard

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses one field of a record: a top-level key, a key of a nested
// object ("socialMedia.linkedin") or a field of an array item
// ("workExperience[1].designation").
type Path struct {
	Key   string
	Index int
	Sub   string
}

const noIndex = -1

// ParsePath parses the textual path form.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, fmt.Errorf("empty field path")
	}

	head, sub, nested := strings.Cut(s, ".")
	if nested && (sub == "" || strings.ContainsAny(sub, ".[]")) {
		return Path{}, fmt.Errorf("invalid field path %q", s)
	}

	p := Path{Key: head, Index: noIndex, Sub: sub}
	if open := strings.IndexByte(head, '['); open >= 0 {
		if !strings.HasSuffix(head, "]") || !nested {
			return Path{}, fmt.Errorf("invalid field path %q", s)
		}
		index, err := strconv.Atoi(head[open+1 : len(head)-1])
		if err != nil || index < 0 {
			return Path{}, fmt.Errorf("invalid index in field path %q", s)
		}
		p.Key = head[:open]
		p.Index = index
	}
	if p.Key == "" || strings.ContainsAny(p.Key, "[]") {
		return Path{}, fmt.Errorf("invalid field path %q", s)
	}
	return p, nil
}

// Nested reports whether the path points below a top-level field.
func (p Path) Nested() bool { return p.Sub != "" }

// Indexed reports whether the path points into an array item.
func (p Path) Indexed() bool { return p.Index != noIndex }

func (p Path) String() string {
	switch {
	case p.Indexed():
		return fmt.Sprintf("%s[%d].%s", p.Key, p.Index, p.Sub)
	case p.Nested():
		return p.Key + "." + p.Sub
	default:
		return p.Key
	}
}
