package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/geom"
)

// Camera orbits a target point and projects world coordinates onto a
// screen with a mild perspective.
type Camera struct {
	Target           geom.Vec3
	Distance, Near   float64
	RotX, RotY, RotZ float64
	Zoom             float64
	// Extent is the world radius that fills half the shorter screen side
	// at zoom 1.
	Extent float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 80, Near: 0.1, Zoom: 1.0, Extent: 12}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centers the camera on p and sizes Extent to its bounding sphere
// plus one element radius.
func (c *Camera) Fit(p chain.Positions) {
	if len(p) == 0 {
		return
	}
	c.Target = p.Centroid()
	r := 0.0
	for _, v := range p {
		r = math.Max(r, geom.Dist(v, c.Target))
	}
	c.Extent = math.Max(r+chain.Radius, 2)
}

// Rotation returns the view rotation, applied X first, then Y, then Z.
func (c *Camera) Rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
}

// RotatePoint moves p into view space relative to the target.
func (c *Camera) RotatePoint(p geom.Vec3) geom.Vec3 {
	return c.Rotation().Mul3x1(p.Sub(c.Target))
}

// Projected is a point on screen. Scale is pixels per world unit at that
// depth.
type Projected struct {
	X, Y    float64
	Depth   float64
	Scale   float64
	Visible bool
}

// Project converts world coordinates to screen coordinates for an sw x sh
// pixel screen. Points behind the near plane are not visible.
func (c *Camera) Project(p geom.Vec3, sw, sh int) Projected {
	rot := c.RotatePoint(p)
	if rot.Z() >= c.Distance-c.Near {
		return Projected{}
	}
	persp := c.Distance / (c.Distance - rot.Z())
	minDim := math.Min(float64(sw), float64(sh))
	scale := minDim / 2 / c.Extent * c.Zoom * persp
	x := rot.X()*scale + float64(sw)/2
	y := -rot.Y()*scale + float64(sh)/2
	return Projected{
		X:       x,
		Y:       y,
		Depth:   rot.Z(),
		Scale:   scale,
		Visible: x >= 0 && x < float64(sw) && y >= 0 && y < float64(sh),
	}
}

type Edge struct {
	Start, End geom.Vec3
}

// Ring is a sphere outline centered on an element.
type Ring struct {
	Index  int
	Center geom.Vec3
	Radius float64
}

type Wireframe struct {
	Edges []Edge
	Rings []Ring
}

func NewWireframe() *Wireframe { return &Wireframe{} }

func (w *Wireframe) AddEdge(s, e geom.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddRing(i int, c geom.Vec3, r float64) {
	w.Rings = append(w.Rings, Ring{Index: i, Center: c, Radius: r})
}

// ChainWireframe builds the drawable shape of a chain: one edge per
// segment, including the closing one, and in sphere mode one ring per
// element.
func ChainWireframe(p chain.Positions, params chain.Params) *Wireframe {
	w := NewWireframe()
	for _, s := range chain.Segments(len(p), params.Closed) {
		w.AddEdge(p[s.A], p[s.B])
	}
	if _, ok := params.Mode.(chain.Spheres); ok {
		for i, v := range p {
			w.AddRing(i, v, params.Diameter/2)
		}
	}
	return w
}

type ProjectedEdge struct {
	X1, Y1, X2, Y2 float64
	Depth          float64
}

type ProjectedRing struct {
	Index  int
	X, Y   float64
	Radius float64
	Depth  float64
}

// ProjectWireframe projects w for an sw x sh screen and orders both lists
// from far to near. Edges with neither end on screen are dropped.
func ProjectWireframe(w *Wireframe, cam *Camera, sw, sh int) ([]ProjectedEdge, []ProjectedRing) {
	edges := make([]ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		a := cam.Project(e.Start, sw, sh)
		b := cam.Project(e.End, sw, sh)
		if a.Scale == 0 || b.Scale == 0 || !(a.Visible || b.Visible) {
			continue
		}
		edges = append(edges, ProjectedEdge{a.X, a.Y, b.X, b.Y, (a.Depth + b.Depth) / 2})
	}
	rings := make([]ProjectedRing, 0, len(w.Rings))
	for _, r := range w.Rings {
		c := cam.Project(r.Center, sw, sh)
		if c.Scale == 0 {
			continue
		}
		rings = append(rings, ProjectedRing{Index: r.Index, X: c.X, Y: c.Y, Radius: r.Radius * c.Scale, Depth: c.Depth})
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Depth < edges[j].Depth })
	sort.SliceStable(rings, func(i, j int) bool { return rings[i].Depth < rings[j].Depth })
	return edges, rings
}

// Render3D draws the wireframe to the canvas.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Pixels()
	edges, rings := ProjectWireframe(w, cam, sw, sh)
	for _, e := range edges {
		c.DrawLine(round(e.X1), round(e.Y1), round(e.X2), round(e.Y2))
	}
	for _, r := range rings {
		c.DrawCircle(round(r.X), round(r.Y), round(r.Radius))
	}
}

// DrawChain renders a chain onto the canvas with the camera.
func DrawChain(c *Canvas, cam *Camera, p chain.Positions, params chain.Params) {
	Render3D(c, ChainWireframe(p, params), cam)
}

func round(v float64) int { return int(math.Round(v)) }
