// Package viz draws knot chains in the terminal.
//
// A [Camera] projects chain positions onto a braille [Canvas]; spheres are
// drawn as rings and sticks as line segments. [Model] is a Bubble Tea
// viewer that advances a [sim.Session] once per tick and shows the current
// parameters, the constraint findings, and a violation history.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reload the current preset
//	P     - Next preset
//	C M F - Toggle closed, mode, fixed lengths
//	+/-   - Element count
//	[ ]   - Ratio (spheres) or stick radius (sticks)
//	D     - Drag a random element and let it settle
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// Recordings are saved to the current directory as knotsim_<unix>.gif.
package viz
