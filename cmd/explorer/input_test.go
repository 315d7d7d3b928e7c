package main

import (
	"slices"
	"testing"

	"github.com/gpjt/explorer"
	"github.com/hajimehoshi/ebiten/v2"
)

func keys(pressed ...ebiten.Key) func(ebiten.Key) bool {
	return func(k ebiten.Key) bool {
		return slices.Contains(pressed, k)
	}
}

func TestKeyActionsOrder(t *testing.T) {
	all := func(ebiten.Key) bool { return true }
	exp := []Action{YawLeft, YawRight, PitchUp, PitchDown, RollLeft, RollRight}
	for i := 0; i < 100; i++ {
		if got := keyActions(all, keys()); !slices.Equal(got, exp) {
			t.Fatalf("held keys gave %v, expected %v", got, exp)
		}
	}
	got := keyActions(keys(ebiten.KeyE, ebiten.KeyArrowLeft), keys(ebiten.KeyJ, ebiten.KeyW))
	if exp := []Action{YawLeft, RollRight, ThrustUp, Jump}; !slices.Equal(got, exp) {
		t.Fatalf("got %v, expected %v", got, exp)
	}
}

func TestHeldRotationsOrder(t *testing.T) {
	u, err := explorer.NewUniverse(explorer.DefaultScenario(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := explorer.NewUniverse(explorer.DefaultScenario(), nil)
	if err != nil {
		t.Fatal(err)
	}
	c := NewInputController(5, 1)
	held := keys(ebiten.KeyE, ebiten.KeyArrowDown, ebiten.KeyArrowLeft)
	o := ref.Craft().Orientation()
	for i := 0; i < 30; i++ {
		if _, _, err := c.Apply(keyActions(held, keys()), u); err != nil {
			t.Fatal(err)
		}
		o.Yaw(5)
		o.Pitch(5)
		o.Roll(5)
	}
	got := u.Craft().Orientation()
	if got.Forward() != o.Forward() || got.Up() != o.Up() {
		t.Fatalf("held rotations applied out of order: forward %+v up %+v, expected %+v %+v", got.Forward(), got.Up(), o.Forward(), o.Up())
	}
}

func TestWarpLimits(t *testing.T) {
	c := NewInputController(1, 1)
	u, err := explorer.NewUniverse(explorer.DefaultScenario(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 40; i++ {
		c.Apply([]Action{WarpUp}, u)
	}
	if c.Warp() != maxWarp {
		t.Fatalf("warp %f above the limit", c.Warp())
	}
	for i := 0; i < 80; i++ {
		c.Apply([]Action{WarpDown}, u)
	}
	if c.Warp() != minWarp {
		t.Fatalf("warp %f below the limit", c.Warp())
	}
}
