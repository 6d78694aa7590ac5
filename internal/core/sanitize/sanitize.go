// Package sanitize strips markup from user supplied free text before it is stored
// Pass order
// 1 drop invalid UTF-8, NUL, ASCII and C1 controls except \n \r \t
// 2 Unicode NFC so lookalike sequences compare equal
// 3 remove <script> blocks with their body
// 4 remove remaining tags
// 5 remove javascript: scheme prefixes
// 6 remove inline event handler assignments such as onclick=
// Passes repeat until the text stops changing, so Clean(Clean(s)) == Clean(s)
package sanitize

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	anyTag      = regexp.MustCompile(`<[^>]*>`)
	jsScheme    = regexp.MustCompile(`(?i)javascript:`)
	eventAttr   = regexp.MustCompile(`(?i)on\w+\s*=`)
)

var chainPool = sync.Pool{
	New: func() any { return transform.Chain(norm.NFC) },
}

// Clean returns s with markup, scripts and control characters removed
func Clean(s string) string {
	if s == "" {
		return s
	}
	// a changing pass either removes text or only recomposes it, so this ends
	for {
		next := pass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func pass(s string) string {
	s = stripControls(s)

	tr := chainPool.Get().(transform.Transformer)
	if ns, _, err := transform.String(tr, s); err == nil {
		s = ns
	}
	tr.Reset()
	chainPool.Put(tr)

	s = scriptBlock.ReplaceAllLiteralString(s, "")
	s = anyTag.ReplaceAllLiteralString(s, "")
	s = jsScheme.ReplaceAllLiteralString(s, "")
	return eventAttr.ReplaceAllLiteralString(s, "")
}

// stripControls returns s unchanged when it is already clean
func stripControls(s string) string {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if dropRune(r, size) {
			break
		}
		i += size
	}
	if i == len(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:i])
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !dropRune(r, size) {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func dropRune(r rune, size int) bool {
	switch {
	case r == utf8.RuneError && size == 1:
		return true
	case r == '\n' || r == '\r' || r == '\t':
		return false
	case r < 0x20 || r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	}
	return false
}
