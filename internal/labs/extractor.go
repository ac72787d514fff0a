package labs

import (
	"regexp"

	"labrag/internal/domain"
)

// space matches optional Unicode whitespace. RE2's \s is ASCII only, and
// report text often carries no-break spaces between a label and its value.
const space = `[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]*`

type pattern struct {
	test string
	re   *regexp.Regexp
}

// Extractor finds the first numeric value following each known test name.
type Extractor struct {
	patterns []pattern
}

// NewExtractor compiles one case-insensitive pattern per test name: the name,
// an optional ':' or '-' separator with surrounding whitespace, then a number.
func NewExtractor(tests []string) *Extractor {
	patterns := make([]pattern, len(tests))
	for i, t := range tests {
		patterns[i] = pattern{
			test: t,
			re:   regexp.MustCompile(`(?i)` + regexp.QuoteMeta(t) + space + `[:\-]?` + space + `(\d+\.?\d*)`),
		}
	}
	return &Extractor{patterns: patterns}
}

// Extract returns the first match per test, in test list order. Tests with no
// match are left out.
func (e *Extractor) Extract(text string) domain.LabValues {
	var out domain.LabValues
	for _, p := range e.patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		out = append(out, domain.LabValue{Test: p.test, Value: m[1]})
	}
	return out
}

// Tests returns the recognized test names.
func (e *Extractor) Tests() []string {
	names := make([]string, len(e.patterns))
	for i, p := range e.patterns {
		names[i] = p.test
	}
	return names
}
