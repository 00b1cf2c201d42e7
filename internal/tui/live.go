package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/sim"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Watcher is a sim.Observer that redraws a top-down sketch of the chain and
// a status line while a run is in progress.
type Watcher struct {
	out       io.Writer
	frameRate int
	total     int
	lastFrame time.Time
	canvas    [][]rune
	// Clear redraws in place; without it frames are appended.
	Clear bool
}

// NewWatcher draws at most frameRate frames per second; frameRate <= 0
// draws every frame. total is the expected frame count, 0 if unknown.
func NewWatcher(out io.Writer, frameRate, total int) *Watcher {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &Watcher{
		out:       out,
		frameRate: frameRate,
		total:     total,
		canvas:    canvas,
		Clear:     true,
	}
}

func (w *Watcher) OnFrame(f sim.Frame) {
	last := w.total > 0 && f.Index >= w.total
	if w.frameRate > 0 && !last {
		if time.Since(w.lastFrame) < time.Second/time.Duration(w.frameRate) {
			return
		}
	}
	w.lastFrame = time.Now()

	w.clear()
	w.drawChain(f)
	w.render(f)
}

func (w *Watcher) clear() {
	for y := range w.canvas {
		for x := range w.canvas[y] {
			w.canvas[y][x] = ' '
		}
	}
}

func (w *Watcher) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		w.canvas[y][x] = c
	}
}

func (w *Watcher) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		w.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawChain projects onto the XY plane, fitted to the canvas. Cells are
// about twice as tall as wide, so x is stretched by two.
func (w *Watcher) drawChain(f sim.Frame) {
	p := f.Positions
	if len(p) == 0 {
		return
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range p {
		minX, maxX = math.Min(minX, v.X()), math.Max(maxX, v.X())
		minY, maxY = math.Min(minY, v.Y()), math.Max(maxY, v.Y())
	}
	span := math.Max(math.Max(maxX-minX, maxY-minY), chain.Diameter)
	scale := math.Min(float64(width-2)/(2*span), float64(height-2)/span)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	pt := func(i int) (int, int) {
		x := int(math.Round((p[i].X()-cx)*2*scale)) + width/2
		y := height/2 - int(math.Round((p[i].Y()-cy)*scale))
		return x, y
	}

	for _, s := range chain.Segments(len(p), f.Params.Closed) {
		x1, y1 := pt(s.A)
		x2, y2 := pt(s.B)
		w.line(x1, y1, x2, y2, '.')
	}

	mark := 'o'
	if _, ok := f.Params.Mode.(chain.Sticks); ok {
		mark = '+'
	}
	bad := make(map[int]bool)
	for _, fd := range f.Findings {
		bad[fd.I], bad[fd.J] = true, true
	}
	for i := range p {
		x, y := pt(i)
		if bad[i] {
			w.set(x, y, 'X')
		} else {
			w.set(x, y, mark)
		}
	}
}

func (w *Watcher) progress(f sim.Frame) string {
	if w.total > 0 {
		return fmt.Sprintf("frame %d/%d", f.Index, w.total)
	}
	return fmt.Sprintf("frame %d", f.Index)
}

func (w *Watcher) render(f sim.Frame) {
	var b strings.Builder
	if w.Clear {
		b.WriteString(clearScreen)
	}
	b.WriteString(fmt.Sprintf("  %s  %s  iters=%d\n", f.Params.Mode.Name(), w.progress(f), f.Iterations))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range w.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  violation=%.3e  findings=%d\n", f.Violation, len(f.Findings)))

	fmt.Fprint(w.out, b.String())
}

func (w *Watcher) Start() { fmt.Fprint(w.out, hideCursor) }
func (w *Watcher) Stop()  { fmt.Fprint(w.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
