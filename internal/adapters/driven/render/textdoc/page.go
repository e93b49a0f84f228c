package textdoc

import (
	"context"
	"iter"
	"math"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// MinWidth is the narrowest page layout, in columns.
const MinWidth = 20

const tabWidth = 4

// Ensure Page implements the page interfaces.
var (
	_ driven.Page          = (*Page)(nil)
	_ driven.TextExtractor = (*Page)(nil)
)

// Page is one page of a text document.
type Page struct {
	index int
	lines []string
}

func newPage(index int, lines []string) *Page {
	expanded := make([]string, len(lines))
	for i, l := range lines {
		expanded[i] = strings.ReplaceAll(strings.TrimRightFunc(l, unicode.IsSpace), "\t", strings.Repeat(" ", tabWidth))
	}
	return &Page{index: index, lines: expanded}
}

// Index returns the zero-based page index.
func (p *Page) Index() int {
	return p.index
}

// IntrinsicWidth returns the width of the longest line.
func (p *Page) IntrinsicWidth() int {
	longest := 0
	for _, l := range p.lines {
		longest = max(longest, runewidth.StringWidth(l))
	}
	return longest
}

// Layout scales the intrinsic width. The height is the number of lines
// once wrapped to that width.
func (p *Page) Layout(scale float64) domain.Geometry {
	if scale <= 0 {
		scale = domain.DefaultScale
	}
	width := max(MinWidth, int(math.Round(float64(p.IntrinsicWidth())*scale)))
	return domain.Geometry{
		Width:  width,
		Height: len(p.wrapped(width)),
		Scale:  scale,
	}
}

// Paint writes the wrapped lines onto canvas.
func (p *Page) Paint(ctx context.Context, canvas *domain.Canvas) error {
	for i, line := range p.wrapped(canvas.Width()) {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if !canvas.SetLine(i, line) {
			break
		}
	}
	return nil
}

// ExtractText yields one fragment per non-blank source line.
func (p *Page) ExtractText(ctx context.Context) iter.Seq2[domain.TextFragment, error] {
	return func(yield func(domain.TextFragment, error) bool) {
		for i, line := range p.lines {
			if err := ctx.Err(); err != nil {
				yield(domain.TextFragment{}, err)
				return
			}
			trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
			if trimmed == "" {
				continue
			}
			frag := domain.TextFragment{
				Text:   trimmed,
				Line:   i,
				Column: runewidth.StringWidth(line[:len(line)-len(trimmed)]),
			}
			if !yield(frag, nil) {
				return
			}
		}
	}
}

// wrapped soft-wraps on word boundaries, then hard-wraps words that are
// still too long.
func (p *Page) wrapped(width int) []string {
	if width <= 0 {
		return append([]string(nil), p.lines...)
	}
	out := make([]string, 0, len(p.lines))
	for _, line := range p.lines {
		if runewidth.StringWidth(line) <= width {
			out = append(out, line)
			continue
		}
		w := wrap.String(wordwrap.String(line, width), width)
		out = append(out, strings.Split(w, "\n")...)
	}
	return out
}
