package asciipng

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wbrown/asciipng/imageutil"
)

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

func rgbFromPixel(p imageutil.Pixel) RGB {
	return RGB{R: p.R, G: p.G, B: p.B}
}

// rgbFromUint32 converts a 0xRRGGBB value to an RGB color.
func rgbFromUint32(color uint32) RGB {
	return RGB{
		R: uint8(color >> 16),
		G: uint8(color >> 8),
		B: uint8(color),
	}
}

// distanceSq is the squared Euclidean distance in RGB space.
func (r RGB) distanceSq(other RGB) int {
	dr := int(r.R) - int(other.R)
	dg := int(r.G) - int(other.G)
	db := int(r.B) - int(other.B)
	return dr*dr + dg*dg + db*db
}

func (r RGB) component(axis int) uint8 {
	switch axis {
	case 0:
		return r.R
	case 1:
		return r.G
	default:
		return r.B
	}
}

// paletteEntry is a palette color and its terminal color number.
type paletteEntry struct {
	Color RGB
	Index int
}

// ColorNode is a KD-tree node over palette entries. Each node splits its
// subtree on the channel with the largest variance.
type ColorNode struct {
	Entry       paletteEntry
	Left, Right *ColorNode
	SplitAxis   int
}

// buildKDTree sorts entries in place while building the tree.
func buildKDTree(entries []paletteEntry) *ColorNode {
	if len(entries) == 0 {
		return nil
	}

	axis := chooseSplitAxis(entries)
	sort.Slice(entries, func(i, j int) bool {
		ci, cj := entries[i].Color.component(axis), entries[j].Color.component(axis)
		if ci != cj {
			return ci < cj
		}
		return entries[i].Index < entries[j].Index
	})

	median := len(entries) / 2
	return &ColorNode{
		Entry:     entries[median],
		Left:      buildKDTree(entries[:median]),
		Right:     buildKDTree(entries[median+1:]),
		SplitAxis: axis,
	}
}

// chooseSplitAxis returns the channel (0 = R, 1 = G, 2 = B) with the
// largest variance.
func chooseSplitAxis(entries []paletteEntry) int {
	var mean, variance [3]float64
	for _, e := range entries {
		for axis := range mean {
			mean[axis] += float64(e.Color.component(axis))
		}
	}
	for axis := range mean {
		mean[axis] /= float64(len(entries))
	}
	for _, e := range entries {
		for axis := range variance {
			d := float64(e.Color.component(axis)) - mean[axis]
			variance[axis] += d * d
		}
	}

	if variance[0] > variance[1] && variance[0] > variance[2] {
		return 0
	} else if variance[1] > variance[2] {
		return 1
	}
	return 2
}

// nearestNeighbor descends toward target first and only visits the far
// side of a split when the splitting plane is closer than the best match.
// Equal distances keep the lower color number.
func (node *ColorNode) nearestNeighbor(target RGB, best paletteEntry, bestDist int) (paletteEntry, int) {
	if node == nil {
		return best, bestDist
	}

	dist := node.Entry.Color.distanceSq(target)
	if dist < bestDist || (dist == bestDist && node.Entry.Index < best.Index) {
		best, bestDist = node.Entry, dist
	}

	axisDist := int(target.component(node.SplitAxis)) - int(node.Entry.Color.component(node.SplitAxis))
	next, other := node.Right, node.Left
	if axisDist < 0 {
		next, other = node.Left, node.Right
	}

	best, bestDist = next.nearestNeighbor(target, best, bestDist)
	if axisDist*axisDist <= bestDist {
		best, bestDist = other.nearestNeighbor(target, best, bestDist)
	}
	return best, bestDist
}

// Palette maps arbitrary colors to the closest entry of a fixed terminal
// palette. It is read-only after construction.
type Palette struct {
	colors []RGB
	tree   *ColorNode
}

// NewPalette indexes colors; color i is terminal color number i.
func NewPalette(colors []RGB) *Palette {
	entries := make([]paletteEntry, len(colors))
	for i, c := range colors {
		entries[i] = paletteEntry{Color: c, Index: i}
	}
	return &Palette{
		colors: append([]RGB(nil), colors...),
		tree:   buildKDTree(entries),
	}
}

func (p *Palette) Len() int {
	return len(p.colors)
}

// Color returns palette color i.
func (p *Palette) Color(i int) RGB {
	return p.colors[i]
}

// Nearest returns the color number closest to c.
func (p *Palette) Nearest(c RGB) int {
	best, _ := p.tree.nearestNeighbor(c, paletteEntry{Index: -1}, int(^uint(0)>>1))
	return best.Index
}

// xterm256Colors lists the xterm 256-color palette: 16 system colors, a
// 6x6x6 color cube and a 24-step gray ramp.
func xterm256Colors() []RGB {
	system := []uint32{
		0x000000, 0x800000, 0x008000, 0x808000, 0x000080, 0x800080, 0x008080, 0xc0c0c0,
		0x808080, 0xff0000, 0x00ff00, 0xffff00, 0x0000ff, 0xff00ff, 0x00ffff, 0xffffff,
	}
	colors := make([]RGB, 0, 256)
	for _, c := range system {
		colors = append(colors, rgbFromUint32(c))
	}

	levels := []uint8{0, 95, 135, 175, 215, 255}
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				colors = append(colors, RGB{R: r, G: g, B: b})
			}
		}
	}

	for i := 0; i < 24; i++ {
		v := uint8(8 + 10*i)
		colors = append(colors, RGB{R: v, G: v, B: v})
	}
	return colors
}

// XTerm256 is the standard xterm 256-color palette.
var XTerm256 = NewPalette(xterm256Colors())

// ANSI256 renders the art for terminals limited to the 256-color palette,
// mapping every cell to its nearest XTerm256 color. Runs that map to the
// same color share one escape sequence.
func (art RenderedArt) ANSI256() string {
	var sb strings.Builder

	for y := 0; y < art.Height; y++ {
		current := -1
		for _, cell := range art.Row(y) {
			code := -1
			if !cell.Blank {
				code = XTerm256.Nearest(rgbFromPixel(cell.Color))
			}
			if code != current {
				if code < 0 {
					sb.WriteString(ansiReset)
				} else {
					fmt.Fprintf(&sb, "%s[38;5;%dm", ESC, code)
				}
				current = code
			}
			sb.WriteRune(cell.Glyph)
		}
		sb.WriteString(ansiReset)
		sb.WriteByte('\n')
	}

	return sb.String()
}
