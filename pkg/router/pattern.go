package router

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Pattern matches path strings. Matching is a search: the expression may
// occur anywhere in the path unless it anchors itself with ^.
type Pattern struct {
	re *regexp.Regexp
}

// Compile parses expr into a Pattern.
func Compile(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
	}

	return &Pattern{re: re}, nil
}

// MustCompile is like Compile but panics on a malformed expression.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}

	return p
}

// Match reports the character offset of the leftmost match in path and the
// number of characters it spans. ok is false when the pattern does not occur.
func (p *Pattern) Match(path string) (index, length int, ok bool) {
	loc := p.re.FindStringIndex(path)
	if loc == nil {
		return 0, 0, false
	}

	index = utf8.RuneCountInString(path[:loc[0]])
	length = utf8.RuneCountInString(path[loc[0]:loc[1]])

	return index, length, true
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.re.String()
}

// trimChars drops the first n characters of s.
func trimChars(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}

	return ""
}
