package pdftext

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

const (
	// wordGapEm is the horizontal gap, in font sizes, that separates words
	// when glyph widths are known.
	wordGapEm = 0.2
	// fallbackAdvanceEm is the advance assumed for glyphs whose font has no
	// width table. Such glyphs also need a full advance of gap to split words.
	fallbackAdvanceEm = 0.5
	// lineShiftEm is the baseline change, in font sizes, that starts a new line.
	lineShiftEm = 0.5
)

// pageContent lays out the positioned glyphs of p as text. Content streams
// the parser cannot interpret are reported as errors.
func pageContent(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("content stream: %v", r)
		}
	}()
	return layoutText(p.Content().Text), nil
}

// layoutText joins glyphs in drawing order. A baseline change emits a
// newline, a horizontal jump wider than a word gap emits a space, and
// whitespace glyphs collapse into a single space. Table cells placed with
// Td therefore stay apart.
func layoutText(glyphs []pdf.Text) string {
	var (
		b       strings.Builder
		prev    pdf.Text
		end     float64
		started bool
		pending bool
	)
	for _, g := range glyphs {
		if isBlank(g.S) {
			pending = started
			continue
		}
		size := math.Abs(g.FontSize)
		if size == 0 {
			size = 1
		}
		x, adv := g.X, g.W
		measured := adv > 0
		if !measured {
			adv = fallbackAdvanceEm * size
			// Without widths the parser leaves every glyph of a run at the
			// run's origin.
			if started && g.X == prev.X && g.Y == prev.Y {
				x = end
			}
		}

		if started {
			gap := x - end
			threshold := wordGapEm * size
			if !measured || prev.W == 0 {
				threshold = fallbackAdvanceEm * size
			}
			switch {
			case math.Abs(g.Y-prev.Y) > lineShiftEm*size:
				b.WriteByte('\n')
			case pending, gap > threshold, gap < -size:
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)

		prev, end = g, x+adv
		started, pending = true, false
	}
	return b.String()
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r == unicode.ReplacementChar
	}) == ""
}
