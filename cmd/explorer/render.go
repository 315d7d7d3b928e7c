package main

import (
	"image/color"
	"math"
	"sort"

	"github.com/gpjt/explorer"
	"github.com/gpjt/explorer/telemetry"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	minCameraDistance = 0.01 // km
	maxCameraDistance = 1e10 // km
	minBodyPixels     = 1.5
)

// Camera orbits the tracked body. Its yaw and pitch are relative to the attitude of the craft.
type Camera struct {
	Yaw, Pitch float64 // degrees
	Distance   float64 // km behind the tracked body
	FOV        float64 // vertical, degrees
}

// Orbit turns the camera around the tracked body.
func (c *Camera) Orbit(yaw, pitch float64) {
	c.Yaw = math.Mod(c.Yaw-yaw, 360)
	c.Pitch = math.Max(-89, math.Min(89, c.Pitch+pitch))
}

// Zoom moves the camera closer for positive steps.
func (c *Camera) Zoom(steps float64) {
	c.Distance = math.Max(minCameraDistance, math.Min(maxCameraDistance, c.Distance*math.Pow(0.9, steps)))
}

// basis returns the right, up and forward unit vectors of the camera in the world frame.
// R2 and R1 are frame rotations, hence the opposite signs: this is a yaw about up then a
// pitch about right, both in the frame of the craft.
func (c *Camera) basis(attitude explorer.Attitude) (right, up, forward r3.Vec) {
	var yawed, dcm mat.Dense
	yawed.Mul(attitude.DCM(), explorer.R2(-explorer.Deg2rad(c.Yaw)))
	dcm.Mul(&yawed, explorer.R1(explorer.Deg2rad(c.Pitch)))
	return explorer.MxV33(&dcm, explorer.LocalRight), explorer.MxV33(&dcm, explorer.LocalUp), explorer.MxV33(&dcm, explorer.LocalForward)
}

// projected is a body on screen.
type projected struct {
	view    explorer.View
	x, y, r float32
	depth   float64
}

// Renderer draws the universe from the point of view of the camera. It never writes to the universe.
type Renderer struct {
	width, height int
	colors        map[string]color.Color
}

// NewRenderer returns a renderer for the provided screen size.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height, colors: make(map[string]color.Color)}
}

func (r *Renderer) color(hex string) color.Color {
	if c, ok := r.colors[hex]; ok {
		return c
	}
	var c color.Color = color.White
	if parsed, err := colorful.Hex(hex); err == nil {
		c = parsed
	}
	r.colors[hex] = c
	return c
}

// project converts the view locations (relative to the tracked body) to screen coordinates,
// furthest first. Bodies behind the camera are dropped.
func (r *Renderer) project(views []explorer.View, attitude explorer.Attitude, cam *Camera) []projected {
	right, up, forward := cam.basis(attitude)
	eye := r3.Scale(-cam.Distance, forward)
	focal := float64(r.height) / 2 / math.Tan(explorer.Deg2rad(cam.FOV)/2)
	var out []projected
	for _, v := range views {
		d := r3.Sub(v.Location, eye)
		z := r3.Dot(d, forward)
		if z <= minCameraDistance/10 {
			continue
		}
		px := float64(r.width)/2 + focal*r3.Dot(d, right)/z
		py := float64(r.height)/2 - focal*r3.Dot(d, up)/z
		radius := math.Max(minBodyPixels, focal*v.Radius/z)
		if math.IsInf(px, 0) || math.IsInf(py, 0) || math.Abs(px) > 1e6 || math.Abs(py) > 1e6 {
			continue
		}
		out = append(out, projected{v, float32(px), float32(py), float32(math.Min(radius, 1e5)), z})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].depth > out[j].depth })
	return out
}

// Draw renders the bodies, their labels and spin markers.
func (r *Renderer) Draw(screen *ebiten.Image, views []explorer.View, attitude explorer.Attitude, cam *Camera) {
	for _, p := range r.project(views, attitude, cam) {
		clr := r.color(p.view.Color)
		vector.DrawFilledCircle(screen, p.x, p.y, p.r, clr, true)
		if p.r > 4 && p.view.Spin != 0 {
			s, c := math.Sincos(explorer.Deg2rad(p.view.Spin))
			vector.StrokeLine(screen, p.x, p.y, p.x+p.r*float32(c), p.y-p.r*float32(s), 1, color.Black, true)
		}
		if !p.view.Tracked {
			text.Draw(screen, p.view.Name, basicfont.Face7x13, int(p.x+p.r)+4, int(p.y)+4, color.RGBA{200, 200, 200, 200})
		}
	}
}

// DrawDashboard renders the dashboard rows in the top left corner.
func (r *Renderer) DrawDashboard(screen *ebiten.Image, d telemetry.Dashboard) {
	y := 20
	for _, row := range d.Rows() {
		text.Draw(screen, row.Label+":", basicfont.Face7x13, 12, y, color.RGBA{150, 150, 160, 255})
		text.Draw(screen, row.Value, basicfont.Face7x13, 110, y, color.RGBA{230, 230, 230, 255})
		y += 16
	}
}
