package features

import (
	"sort"
	"strings"
)

// LR is one word of a sentence split into a leading unit and a trailing unit.
// R is empty when the word has no trailing element. Morph and Tag carry the
// analysis of the leading unit when the corpus provides one.
type LR struct {
	L     string
	R     string
	Morph string
	Tag   string
}

// Tag marks which side of an LR split a unit came from.
type Tag byte

const (
	TagL Tag = 'L'
	TagR Tag = 'R'
)

func (t Tag) String() string {
	return string(t)
}

// Unit is a tagged subword unit.
type Unit struct {
	Text string
	Tag  Tag
}

// String renders the unit as "text/L" or "text/R".
func (u Unit) String() string {
	return u.Text + "/" + u.Tag.String()
}

// ParseUnit inverts Unit.String.
func ParseUnit(s string) (Unit, bool) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 || i != len(s)-2 {
		return Unit{}, false
	}
	tag := Tag(s[i+1])
	if tag != TagL && tag != TagR {
		return Unit{}, false
	}
	return Unit{Text: s[:i], Tag: tag}, true
}

// Sign values of a Context.
const (
	Left  int8 = -1 // evidence from the left neighbourhood
	Right int8 = +1 // evidence from the right neighbourhood
)

// Context is a signed contextual feature.
type Context struct {
	Text string
	Sign int8
}

// String renders the context as "+text" or "-text".
func (c Context) String() string {
	if c.Sign < 0 {
		return "-" + c.Text
	}
	return "+" + c.Text
}

// ParseContext inverts Context.String.
func ParseContext(s string) (Context, bool) {
	if s == "" {
		return Context{}, false
	}
	switch s[0] {
	case '-':
		return Context{Text: s[1:], Sign: Left}, true
	case '+':
		return Context{Text: s[1:], Sign: Right}, true
	}
	return Context{}, false
}

// Set is a deduplicated set of contexts.
type Set map[Context]struct{}

// Add inserts a context; empty text is ignored.
func (s Set) Add(text string, sign int8) {
	if text == "" {
		return
	}
	s[Context{Text: text, Sign: sign}] = struct{}{}
}

// Has reports whether the context is in the set.
func (s Set) Has(text string, sign int8) bool {
	_, ok := s[Context{Text: text, Sign: sign}]
	return ok
}

// Sorted returns the contexts ordered by text, then sign.
func (s Set) Sorted() []Context {
	out := make([]Context, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Text != out[j].Text {
			return out[i].Text < out[j].Text
		}
		return out[i].Sign < out[j].Sign
	})
	return out
}

// Occurrence is one unit occurrence with its contextual features.
type Occurrence struct {
	Unit     Unit
	Features Set
}

// Lookup is a membership test over known strings.
type Lookup interface {
	Contains(s string) bool
}

// Union is a Lookup that matches when any member matches.
type Union []Lookup

// Contains implements Lookup.
func (u Union) Contains(s string) bool {
	for _, l := range u {
		if l != nil && l.Contains(s) {
			return true
		}
	}
	return false
}

// Known holds the left and right unit vocabularies used to blank out
// unknown neighbours.
type Known struct {
	L Lookup
	R Lookup
}

func (k *Known) left(s string) string {
	if k == nil || s == "" || k.L == nil || k.L.Contains(s) {
		return s
	}
	return ""
}

func (k *Known) right(s string) string {
	if k == nil || s == "" || k.R == nil || k.R.Contains(s) {
		return s
	}
	return ""
}

// Has reports whether u is in the vocabulary matching its tag. A nil
// receiver or vocabulary accepts every unit.
func (k *Known) Has(u Unit) bool {
	if u.Text == "" {
		return false
	}
	if k == nil {
		return true
	}
	var l Lookup
	if u.Tag == TagL {
		l = k.L
	} else {
		l = k.R
	}
	return l == nil || l.Contains(u.Text)
}
