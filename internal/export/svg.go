package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/diagnose"
	"github.com/san-kum/knotsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// Style sets the colors of a chain drawing.
type Style struct {
	Fill      string
	Stroke    string
	Highlight string
}

var DefaultStyle = Style{Fill: "#e0c080", Stroke: "#8a6a30", Highlight: "#ff4444"}

// CanvasToSVG converts a Braille canvas to SVG, one dot per lit sub-pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.Pixels()
	width := int(math.Round(float64(pw) * scale))
	height := int(math.Round(float64(ph) * scale))

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// FindingElements returns the sorted element indices named by findings.
func FindingElements(findings []diagnose.Finding, n int) []int {
	seen := make(map[int]bool)
	for _, f := range findings {
		seen[f.I] = true
		seen[f.J] = true
		if f.Kind == diagnose.SelfIntersection {
			seen[f.Other.A] = true
			seen[f.Other.B] = true
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// ChainToSVG renders a chain through cam as vector shapes: filled circles in
// sphere mode, round-capped strokes of the stick radius in stick mode.
// Elements listed in highlight use the highlight color.
func ChainToSVG(p chain.Positions, params chain.Params, cam *viz.Camera, width, height int, style Style, highlight []int) string {
	if len(p) == 0 || cam == nil {
		return ""
	}
	marked := make(map[int]bool, len(highlight))
	for _, i := range highlight {
		marked[i] = true
	}

	edges, rings := viz.ProjectWireframe(viz.ChainWireframe(p, params), cam, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)

	switch m := params.Mode.(type) {
	case chain.Sticks:
		scale := cam.Project(cam.Target, width, height).Scale
		strokeWidth := math.Max(1, 2*m.Radius*scale)
		fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"%.2f\" stroke-linecap=\"round\">\n", style.Fill, strokeWidth)
		for _, e := range edges {
			fmt.Fprintf(&sb, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"/>\n", e.X1, e.Y1, e.X2, e.Y2)
		}
		sb.WriteString("</g>\n")
		for i, v := range p {
			if !marked[i] {
				continue
			}
			c := cam.Project(v, width, height)
			fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\"/>\n", c.X, c.Y, strokeWidth, style.Highlight)
		}
	default:
		fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"1\">\n", style.Stroke)
		for _, r := range rings {
			fill := style.Fill
			if marked[r.Index] {
				fill = style.Highlight
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\"/>\n", r.X, r.Y, r.Radius, fill)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws a per-frame series such as the violation history as a
// single path.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	rangeX := float64(len(values) - 1)
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}
