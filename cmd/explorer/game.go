package main

import (
	"fmt"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gpjt/explorer"
	"github.com/gpjt/explorer/telemetry"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	screenWidth  = 1280
	screenHeight = 800
	// maxStep is the largest physics step in simulated seconds, whatever the time warp.
	maxStep = 10.
	// maxStepsPerFrame bounds the physics work of a frame.
	maxStepsPerFrame = 1000
)

// Game is the control loop: Update polls the input then advances the physics, Draw renders
// the latest state. Both are called from the same goroutine.
type Game struct {
	universe  *explorer.Universe
	input     *InputController
	renderer  *Renderer
	camera    *Camera
	metrics   *telemetry.Metrics // optional
	timeScale float64
	logger    kitlog.Logger
}

// NewGame returns a game running the universe at timeScale simulated seconds per second.
func NewGame(u *explorer.Universe, timeScale, warp float64, metrics *telemetry.Metrics, logger kitlog.Logger) *Game {
	if timeScale <= 0 {
		timeScale = 1
	}
	return &Game{
		universe:  u,
		input:     NewInputController(u.Controls.RotationStep, warp),
		renderer:  NewRenderer(screenWidth, screenHeight),
		camera:    &Camera{Distance: 0.2, FOV: 60},
		metrics:   metrics,
		timeScale: timeScale,
		logger:    logger,
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	jumped, quit, err := g.input.Apply(g.input.Poll(), g.universe)
	if err != nil {
		g.logger.Log("level", "warning", "subsys", "input", "err", err)
	}
	if quit {
		return ebiten.Termination
	}
	if jumped && g.metrics != nil {
		g.metrics.RecordJump()
	}
	g.input.PollCamera(g.camera)
	return g.advance(g.timeScale * g.input.Warp() / float64(ebiten.TPS()))
}

// advance steps the physics by dt simulated seconds, in steps no larger than maxStep.
func (g *Game) advance(dt float64) error {
	steps := int(dt/maxStep) + 1
	if steps > maxStepsPerFrame {
		steps = maxStepsPerFrame
	}
	step := dt / float64(steps)
	for i := 0; i < steps; i++ {
		start := time.Now()
		err := g.universe.Step(step)
		if g.metrics != nil {
			g.metrics.ObserveStep(g.universe, time.Since(start), err)
		}
		if err != nil {
			return fmt.Errorf("physics stopped at %s: %w", g.universe.Epoch(), err)
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	attitude := explorer.IdentityAttitude()
	if craft := g.universe.Craft(); craft != nil {
		attitude = craft.Orientation().Attitude()
	}
	g.renderer.Draw(screen, g.universe.ViewState(), attitude, g.camera)
	g.renderer.DrawDashboard(screen, telemetry.FromUniverse(g.universe, g.input.Warp()))
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS %.0f  FPS %.0f", ebiten.ActualTPS(), ebiten.ActualFPS()), 12, screenHeight-20)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}
