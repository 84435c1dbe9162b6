package asciipng

import (
	"fmt"
	"html"
	"strings"

	"github.com/wbrown/asciipng/imageutil"
)

const (
	ESC = "\u001b"

	ansiReset = ESC + "[0m"
)

// Format selects how RenderedArt is serialised.
type Format string

const (
	FormatHTML    Format = "html"
	FormatANSI    Format = "ansi"
	FormatANSI256 Format = "ansi256"
	FormatText    Format = "text"
)

// Formats lists the text formats accepted by RenderedArt.Format.
var Formats = []Format{FormatHTML, FormatANSI, FormatANSI256, FormatText}

// Format serialises the art in the requested text format.
func (art RenderedArt) Format(f Format) (string, error) {
	switch f {
	case FormatHTML:
		return art.HTML(), nil
	case FormatANSI:
		return art.ANSI(), nil
	case FormatANSI256:
		return art.ANSI256(), nil
	case FormatText:
		return art.String(), nil
	}
	return "", fmt.Errorf("unknown output format %q", f)
}

// HTML renders the art as a <pre> block in which every glyph is wrapped in
// a span colored rgb(r,g,b). Blank cells are bare spaces and each row ends
// with a newline.
func (art RenderedArt) HTML() string {
	var sb strings.Builder
	sb.Grow(len(art.Cells)*48 + art.Height + 11)

	sb.WriteString("<pre>")
	for y := 0; y < art.Height; y++ {
		for _, cell := range art.Row(y) {
			if cell.Blank {
				sb.WriteByte(' ')
				continue
			}
			fmt.Fprintf(&sb, `<span style="color: %s;">%s</span>`,
				cssColor(cell.Color), html.EscapeString(string(cell.Glyph)))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("</pre>")
	return sb.String()
}

// cssColor formats the literal color annotation of a cell.
func cssColor(p imageutil.Pixel) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", p.R, p.G, p.B)
}

// ANSI renders the art for 24-bit color terminals. Adjacent cells with the
// same color share one escape sequence, and every row ends with a reset so
// colors never bleed into the next line.
func (art RenderedArt) ANSI() string {
	var sb strings.Builder

	for y := 0; y < art.Height; y++ {
		var run strings.Builder
		var current imageutil.Pixel
		inRun, blankRun := false, false

		flush := func() {
			if run.Len() == 0 {
				return
			}
			if blankRun {
				sb.WriteString(ansiReset)
			} else {
				sb.WriteString(formatANSICode(current))
			}
			sb.WriteString(run.String())
			run.Reset()
		}

		for _, cell := range art.Row(y) {
			if !inRun || cell.Blank != blankRun || (!cell.Blank && cell.Color != current) {
				flush()
				current, blankRun, inRun = cell.Color, cell.Blank, true
			}
			run.WriteRune(cell.Glyph)
		}
		flush()
		sb.WriteString(ansiReset)
		sb.WriteByte('\n')
	}

	return sb.String()
}

// formatANSICode returns the SGR sequence selecting p as the 24-bit
// foreground color.
func formatANSICode(p imageutil.Pixel) string {
	return fmt.Sprintf("%s[38;2;%d;%d;%dm", ESC, p.R, p.G, p.B)
}

// String renders the glyphs only, one line per row.
func (art RenderedArt) String() string {
	var sb strings.Builder
	sb.Grow(len(art.Cells) + art.Height)
	for y := 0; y < art.Height; y++ {
		for _, cell := range art.Row(y) {
			sb.WriteRune(cell.Glyph)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
