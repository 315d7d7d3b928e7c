package main

import (
	"github.com/gpjt/explorer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a pilot command.
type Action uint8

const (
	YawLeft Action = iota + 1
	YawRight
	PitchUp
	PitchDown
	RollLeft
	RollRight
	ThrustUp
	ThrustDown
	ThrustCut
	Jump
	CycleReference
	WarpDown
	WarpUp
	Quit
)

type binding struct {
	key    ebiten.Key
	action Action
}

// Held keys repeat every frame, the others only act when pressed. Rotations do not commute,
// so held keys are always applied in this order.
var (
	heldKeys = []binding{
		{ebiten.KeyArrowLeft, YawLeft},
		{ebiten.KeyArrowRight, YawRight},
		{ebiten.KeyArrowDown, PitchUp},
		{ebiten.KeyArrowUp, PitchDown},
		{ebiten.KeyQ, RollLeft},
		{ebiten.KeyE, RollRight},
	}
	pressedKeys = []binding{
		{ebiten.KeyW, ThrustUp},
		{ebiten.KeyS, ThrustDown},
		{ebiten.KeyX, ThrustCut},
		{ebiten.KeyJ, Jump},
		{ebiten.KeyR, CycleReference},
		{ebiten.KeyBracketLeft, WarpDown},
		{ebiten.KeyBracketRight, WarpUp},
		{ebiten.KeyEscape, Quit},
	}
)

const (
	minWarp = 1. / 16
	maxWarp = 1 << 16
)

// InputController turns the keyboard and mouse into pilot actions and camera moves.
type InputController struct {
	rotationStep float64 // degrees per frame
	warp         float64
	dragging     bool
	lastX, lastY int
}

// NewInputController returns a controller turning by rotationStep degrees per frame.
func NewInputController(rotationStep, warp float64) *InputController {
	if warp <= 0 {
		warp = 1
	}
	return &InputController{rotationStep: rotationStep, warp: warp}
}

// Warp returns the current time warp.
func (c *InputController) Warp() float64 {
	return c.warp
}

// Poll returns the actions of this frame.
func (c *InputController) Poll() []Action {
	return keyActions(ebiten.IsKeyPressed, inpututil.IsKeyJustPressed)
}

// keyActions returns the actions of the held and just pressed keys, in binding order.
func keyActions(held, pressed func(ebiten.Key) bool) []Action {
	var out []Action
	for _, b := range heldKeys {
		if held(b.key) {
			out = append(out, b.action)
		}
	}
	for _, b := range pressedKeys {
		if pressed(b.key) {
			out = append(out, b.action)
		}
	}
	return out
}

// PollCamera moves the camera around the tracked body from mouse drags and the wheel.
func (c *InputController) PollCamera(cam *Camera) {
	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		c.dragging = true
	} else if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		c.dragging = false
	}
	if c.dragging {
		cam.Orbit(float64(x-c.lastX)*0.3, float64(y-c.lastY)*0.3)
	}
	c.lastX, c.lastY = x, y
	if _, dy := ebiten.Wheel(); dy != 0 {
		cam.Zoom(dy)
	}
}

// Apply executes the actions on the universe. It returns whether the pilot asked to jump,
// and whether to quit.
func (c *InputController) Apply(actions []Action, u *explorer.Universe) (jumped, quit bool, err error) {
	craft := u.Craft()
	for _, a := range actions {
		switch a {
		case CycleReference:
			u.CycleReference()
		case WarpDown:
			c.warp = max(c.warp/2, minWarp)
		case WarpUp:
			c.warp = min(c.warp*2, maxWarp)
		case Quit:
			quit = true
		case Jump:
			if err = u.Jump(); err != nil {
				return
			}
			jumped = true
		default:
			if craft == nil {
				continue
			}
			if err = c.pilot(craft.Orientation(), a); err != nil {
				return
			}
		}
	}
	return
}

func (c *InputController) pilot(o *explorer.Orientation, a Action) error {
	switch a {
	case YawLeft:
		return o.Yaw(c.rotationStep)
	case YawRight:
		return o.Yaw(-c.rotationStep)
	case PitchUp:
		return o.Pitch(c.rotationStep)
	case PitchDown:
		return o.Pitch(-c.rotationStep)
	case RollLeft:
		return o.Roll(-c.rotationStep)
	case RollRight:
		return o.Roll(c.rotationStep)
	case ThrustUp:
		o.IncreaseThrust()
	case ThrustDown:
		o.DecreaseThrust()
	case ThrustCut:
		o.ResetThrust()
	}
	return nil
}
