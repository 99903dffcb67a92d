// Package fullpath implements the structural key that addresses a position
// in a parse tree relative to an analysis root.
//
// A Path is an ordered list of tag segments. A segment carries an ordinal
// only when two or more siblings at that position share its tag; the
// ordinal is assigned by the indexer, never by the source tree.
//
// The string form ("module.class_definition[1].block") exists for
// diagnostics and map keys. Traversal code works on the segments directly.
package fullpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMismatch is returned by Relativefy when the prefix does not address an
// ancestor of the path.
var ErrMismatch = errors.New("path prefix mismatch")

const (
	delimiter    = "."
	ordinalOpen  = "["
	ordinalClose = "]"
)

// Segment is one tag of a Path with its optional ordinal.
type Segment struct {
	Tag        string
	Ordinal    int
	HasOrdinal bool
}

// String renders the segment as "tag" or "tag[n]".
func (s Segment) String() string {
	if !s.HasOrdinal {
		return s.Tag
	}
	return s.Tag + ordinalOpen + strconv.Itoa(s.Ordinal) + ordinalClose
}

// Path is an immutable structural key. The zero value is the empty path.
type Path struct {
	segs []Segment
	key  string
}

func newPath(segs []Segment) Path {
	if len(segs) == 0 {
		return Path{}
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return Path{segs: segs, key: strings.Join(parts, delimiter)}
}

// Root returns a single-segment path without ordinal.
func Root(tag string) Path {
	return newPath([]Segment{{Tag: tag}})
}

// Of builds a path from explicit segments.
func Of(segs ...Segment) Path {
	cp := make([]Segment, len(segs))
	copy(cp, segs)
	return newPath(cp)
}

// Parse converts the string form back into a Path.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	raw := strings.Split(s, delimiter)
	segs := make([]Segment, 0, len(raw))
	for _, r := range raw {
		seg, err := parseSegment(r)
		if err != nil {
			return Path{}, fmt.Errorf("fullpath: parse %q: %w", s, err)
		}
		segs = append(segs, seg)
	}
	return newPath(segs), nil
}

// MustParse is Parse for literals known to be well formed.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseSegment(s string) (Segment, error) {
	if s == "" {
		return Segment{}, errors.New("empty segment")
	}
	open := strings.Index(s, ordinalOpen)
	if open < 0 {
		return Segment{Tag: s}, nil
	}
	if !strings.HasSuffix(s, ordinalClose) || open == 0 {
		return Segment{}, fmt.Errorf("malformed segment %q", s)
	}
	n, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil || n < 0 {
		return Segment{}, fmt.Errorf("malformed ordinal in %q", s)
	}
	return Segment{Tag: s[:open], Ordinal: n, HasOrdinal: true}, nil
}

// Join concatenates path strings or tags into one path. Parts that fail to
// parse are treated as plain tags.
func Join(parts ...string) Path {
	var segs []Segment
	for _, part := range parts {
		if part == "" {
			continue
		}
		p, err := Parse(part)
		if err != nil {
			segs = append(segs, Segment{Tag: part})
			continue
		}
		segs = append(segs, p.segs...)
	}
	return newPath(segs)
}

// Identify returns origin extended by tag carrying the given ordinal.
func Identify(origin Path, tag string, index int) Path {
	return origin.with(Segment{Tag: tag, Ordinal: index, HasOrdinal: true})
}

// Append returns p extended by an ordinal-free tag.
func (p Path) Append(tag string) Path {
	return p.with(Segment{Tag: tag})
}

func (p Path) with(seg Segment) Path {
	segs := make([]Segment, len(p.segs), len(p.segs)+1)
	copy(segs, p.segs)
	return newPath(append(segs, seg))
}

// Shift drops segments: a negative n drops |n| trailing segments, a positive
// n drops n leading segments.
func (p Path) Shift(n int) Path {
	switch {
	case n == 0:
		return p
	case n < 0:
		end := len(p.segs) + n
		if end <= 0 {
			return Path{}
		}
		return newPath(p.segs[:end:end])
	default:
		if n >= len(p.segs) {
			return Path{}
		}
		return newPath(p.segs[n:])
	}
}

// Parent is Shift(-1).
func (p Path) Parent() Path {
	return p.Shift(-1)
}

// DeIdentify strips every ordinal.
func (p Path) DeIdentify() Path {
	segs := make([]Segment, len(p.segs))
	for i, s := range p.segs {
		segs[i] = Segment{Tag: s.Tag}
	}
	return newPath(segs)
}

// Relativefy rebases p onto prefix, returning the remaining segments.
func (p Path) Relativefy(prefix Path) (Path, error) {
	if !p.HasPrefix(prefix) {
		return Path{}, fmt.Errorf("fullpath: relativefy %q by %q: %w", p.key, prefix.key, ErrMismatch)
	}
	return p.Shift(len(prefix.segs)), nil
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segs) > len(p.segs) {
		return false
	}
	for i, s := range prefix.segs {
		if p.segs[i] != s {
			return false
		}
	}
	return true
}

// Contains reports whether the de-identified tags of pattern occur as a
// contiguous run inside the de-identified tags of p.
func (p Path) Contains(pattern Path) bool {
	n := len(pattern.segs)
	if n == 0 {
		return true
	}
	for i := 0; i+n <= len(p.segs); i++ {
		match := true
		for j := 0; j < n; j++ {
			if p.segs[i+j].Tag != pattern.segs[j].Tag {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// First returns the leading segment.
func (p Path) First() (string, int, bool) {
	if len(p.segs) == 0 {
		return "", 0, false
	}
	s := p.segs[0]
	return s.Tag, s.Ordinal, s.HasOrdinal
}

// Last returns the trailing segment.
func (p Path) Last() (string, int, bool) {
	if len(p.segs) == 0 {
		return "", 0, false
	}
	s := p.segs[len(p.segs)-1]
	return s.Tag, s.Ordinal, s.HasOrdinal
}

// Tag is the tag of the trailing segment.
func (p Path) Tag() string {
	tag, _, _ := p.Last()
	return tag
}

// Segment returns the i-th segment; negative indexes count from the end.
func (p Path) Segment(i int) (Segment, bool) {
	if i < 0 {
		i += len(p.segs)
	}
	if i < 0 || i >= len(p.segs) {
		return Segment{}, false
	}
	return p.segs[i], true
}

// Segments returns a copy of the segments.
func (p Path) Segments() []Segment {
	cp := make([]Segment, len(p.segs))
	copy(cp, p.segs)
	return cp
}

// Len is the number of segments.
func (p Path) Len() int { return len(p.segs) }

// IsEmpty reports whether p has no segments.
func (p Path) IsEmpty() bool { return len(p.segs) == 0 }

// Key is the canonical string key, identical to String.
func (p Path) Key() string { return p.key }

func (p Path) String() string { return p.key }

// Equal reports structural equality.
func (p Path) Equal(other Path) bool { return p.key == other.key }
