package domain

import "strings"

// DefaultScale is the fixed factor applied to a page's intrinsic size.
const DefaultScale = 1.0

// Geometry is the target size of one rendered page, in terminal cells.
type Geometry struct {
	// Width is the number of columns after scaling.
	Width int

	// Height is the number of lines after scaling.
	Height int

	// Scale is the factor that produced Width and Height.
	Scale float64
}

// Canvas is the paint surface allocated for a single page.
// Painting writes whole lines; writes outside the geometry are dropped.
type Canvas struct {
	width int
	lines []string
}

// NewCanvas allocates a blank canvas sized to g.
func NewCanvas(g Geometry) *Canvas {
	height := g.Height
	if height < 0 {
		height = 0
	}
	return &Canvas{
		width: g.Width,
		lines: make([]string, height),
	}
}

// Width returns the canvas width in columns.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas height in lines.
func (c *Canvas) Height() int {
	return len(c.lines)
}

// SetLine writes s at line i. It reports false when i is out of range.
func (c *Canvas) SetLine(i int, s string) bool {
	if i < 0 || i >= len(c.lines) {
		return false
	}
	c.lines[i] = s
	return true
}

// Lines returns a copy of the painted lines.
func (c *Canvas) Lines() []string {
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// TextFragment is one piece of selectable text on a page.
type TextFragment struct {
	// Text is the fragment content.
	Text string

	// Line is the zero-based line on the page.
	Line int

	// Column is the zero-based column of the first rune.
	Column int
}

// RenderedPage is the committed representation of one page.
type RenderedPage struct {
	// Index is the zero-based page index.
	Index int

	// Geometry is the size the page was painted at.
	Geometry Geometry

	// Lines holds the painted content.
	Lines []string

	// Text holds the text layer; nil when text extraction is disabled.
	Text []TextFragment
}

// Content returns the painted lines joined with newlines.
func (p RenderedPage) Content() string {
	return strings.Join(p.Lines, "\n")
}

// RenderOptions configures the render pipeline.
type RenderOptions struct {
	// Scale is applied to each page's intrinsic size.
	Scale float64

	// ExtractText attaches a text layer to every page.
	ExtractText bool

	// Workers bounds concurrent page paints. Zero means one per CPU.
	Workers int
}

// DefaultRenderOptions returns the options used when nothing is configured.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Scale: DefaultScale,
	}
}
