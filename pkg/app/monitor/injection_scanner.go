package monitor

import (
	"regexp"
	"strings"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
)

const (
	PatternScriptTag        = "script_tag"
	PatternJavascriptScheme = "javascript_scheme"
	PatternEventHandler     = "event_handler"
	PatternDataHTML         = "data_html"
)

type injectionPattern struct {
	name string
	re   *regexp.Regexp
}

var injectionPatterns = []injectionPattern{
	{PatternScriptTag, regexp.MustCompile(`(?i)<script`)},
	{PatternJavascriptScheme, regexp.MustCompile(`(?i)javascript:`)},
	{PatternEventHandler, regexp.MustCompile(`(?i)(?:^|[^a-z0-9])on\w+\s*=`)},
	{PatternDataHTML, regexp.MustCompile(`(?i)data:text/html`)},
}

type injectionScanner struct {
	patterns []injectionPattern
}

func newInjectionScanner() *injectionScanner {
	return &injectionScanner{patterns: injectionPatterns}
}

// scan checks the raw URL and its percent-decoded form. The first pattern
// that matches either form wins.
func (s *injectionScanner) scan(target string) (security.InjectionAttemptDetails, bool) {
	if target == "" {
		return security.InjectionAttemptDetails{}, false
	}
	candidates := []string{target}
	if decoded := lenientUnescape(target); decoded != target {
		candidates = append(candidates, decoded)
	}

	for _, p := range s.patterns {
		for _, candidate := range candidates {
			if p.re.MatchString(candidate) {
				return security.InjectionAttemptDetails{
					Pattern:    p.name,
					Expression: p.re.String(),
					URL:        target,
				}, true
			}
		}
	}
	return security.InjectionAttemptDetails{}, false
}

// lenientUnescape decodes every valid %XX escape and '+' and keeps malformed
// escapes verbatim, so one bad sequence cannot hide the rest of the URL.
func lenientUnescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		case c == '+':
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
