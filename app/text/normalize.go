// Package text implements the light Amharic-aware cleanup applied to message
// text before it is written to the preprocessed dataset.
//
// Pipeline order:
//  1. runs of CR/LF become a single space
//  2. drop everything except word runes, whitespace and Ethiopic punctuation
//  3. collapse whitespace runs into one ASCII space
//  4. trim
package text

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// Punctuation kept verbatim: the Ethiopic marks plus U+0589, a lookalike of
// the Ethiopic full stop that shows up in channel posts.
var keptPunctuation = map[rune]bool{
	'\u0589': true, // ։
	'\u1360': true, // ፠
	'\u1361': true, // ፡ word space
	'\u1362': true, // ። full stop
	'\u1363': true, // ፣ comma
	'\u1364': true, // ፤ semicolon
	'\u1365': true, // ፥ colon
	'\u1366': true, // ፦ preface colon
	'\u1367': true, // ፧ question mark
}

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(runes.Remove(runes.Predicate(dropped)))
	},
}

// Normalize returns the cleaned form of s. It never fails; input made only of
// removed characters yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = lineBreaks.ReplaceAllString(s, " ")

	tr := chainPool.Get().(transform.Transformer)
	cleaned, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return collapseSpaces(cleaned)
}

// NormalizeOptional treats a nil pointer as an absent value.
func NormalizeOptional(s *string) string {
	if s == nil {
		return ""
	}
	return Normalize(*s)
}

func dropped(r rune) bool {
	return !isWord(r) && !isSpace(r) && !keptPunctuation[r]
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// isSpace also accepts the ASCII information separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// collapseSpaces turns every whitespace run into a single ASCII space and
// trims both ends.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if isSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
