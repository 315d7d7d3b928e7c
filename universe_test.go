package explorer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func sunEarthScenario() Scenario {
	s := DefaultScenario()
	s.Craft, s.Track, s.Reference = "", "", ""
	s.Bodies = []BodyConfig{
		{Name: "The Sun", Mass: SunMass, Radius: SunRadius},
		{Name: "Earth", Mass: EarthMass, Radius: EarthRadius, Location: []float64{149600000, 0, 0}},
	}
	return s
}

func mustUniverse(t *testing.T, s Scenario) *Universe {
	u, err := NewUniverse(s, nil)
	if err != nil {
		t.Fatalf("could not build %s: %s", s.Name, err)
	}
	return u
}

func TestDefaultUniverse(t *testing.T) {
	u := mustUniverse(t, DefaultScenario())
	if len(u.Bodies()) != 3 {
		t.Fatalf("expected three bodies, got %d", len(u.Bodies()))
	}
	craft, earth := u.Craft(), u.Reference()
	if craft == nil || craft.Name() != "Spaceship" || !craft.Piloted() {
		t.Fatalf("unexpected craft %v", craft)
	}
	if u.Tracked() != craft {
		t.Fatalf("the craft should be tracked, not %s", u.Tracked().Name())
	}
	if earth.Name() != "Earth" {
		t.Fatalf("unexpected reference %s", earth.Name())
	}
	if !scalar.EqualWithinAbs(craft.DistanceTo(earth), EarthRadius+340, 1e-6) {
		t.Fatalf("craft altitude %f", craft.DistanceTo(earth)-EarthRadius)
	}
	if !scalar.EqualWithinAbs(craft.SpeedRelativeTo(earth), 7.73, 1e-9) {
		t.Fatalf("craft relative speed %f", craft.SpeedRelativeTo(earth))
	}
	if f := craft.Orientation().Forward(); !vectorsEqual(f, r3.Vec{Z: -1}, 1e-12) {
		t.Fatalf("craft heading %+v", f)
	}
}

func TestZeroEpoch(t *testing.T) {
	s := DefaultScenario()
	s.Epoch = time.Time{}
	first := mustUniverse(t, s)
	if !first.Epoch().Equal(DefaultScenario().Epoch) {
		t.Fatalf("zero epoch started at %s", first.Epoch())
	}
	if err := first.Step(60); err != nil {
		t.Fatal(err)
	}
	second := mustUniverse(t, s)
	if err := second.Step(60); err != nil {
		t.Fatal(err)
	}
	if !first.Epoch().Equal(second.Epoch()) || !first.Snapshot().DT.Equal(second.Snapshot().DT) {
		t.Fatalf("runs differ: %s != %s", first.Epoch(), second.Epoch())
	}
}

func TestSunEarthStep(t *testing.T) {
	u := mustUniverse(t, sunEarthScenario())
	if u.Tracked().Name() != "The Sun" || u.Reference().Name() != "Earth" {
		t.Fatalf("tracked %s, reference %s", u.Tracked().Name(), u.Reference().Name())
	}
	if err := u.Step(1); err != nil {
		t.Fatal(err)
	}
	sun, _ := u.Body("The Sun")
	earth, _ := u.Body("Earth")
	d2 := 149600000. * 1000 * 149600000. * 1000
	// From rest, the velocity after one second is the acceleration.
	if v := earth.Velocity(); v.X >= 0 || !scalar.EqualWithinRel(-v.X*1000, G*SunMass/d2, 1e-9) || v.Y != 0 || v.Z != 0 {
		t.Fatalf("Earth velocity %+v", v)
	}
	if v := sun.Velocity(); v.X <= 0 || !scalar.EqualWithinRel(v.X*1000, G*EarthMass/d2, 1e-9) {
		t.Fatalf("Sun velocity %+v", v)
	}
	if u.Tick() != 1 || !u.Epoch().Equal(DefaultScenario().Epoch.Add(time.Second)) {
		t.Fatalf("tick %d at %s", u.Tick(), u.Epoch())
	}
}

func TestFloatingOrigin(t *testing.T) {
	u := mustUniverse(t, DefaultScenario())
	earth, _ := u.Body("Earth")
	for i := 0; i < 100; i++ {
		if err := u.Step(10); err != nil {
			t.Fatal(err)
		}
		if v := u.ViewLocation(u.Tracked()); v != (r3.Vec{}) {
			t.Fatalf("tracked body is not at the origin: %+v", v)
		}
	}
	exp := r3.Sub(earth.Location(), u.Craft().Location())
	before := earth.Location()
	for i := 0; i < 1000; i++ {
		if v := u.ViewLocation(earth); v != exp {
			t.Fatalf("view location drifted after %d reads: %+v != %+v", i, v, exp)
		}
	}
	if earth.Location() != before {
		t.Fatal("reading the view changed the absolute location")
	}
	if err := u.Track("Earth"); err != nil {
		t.Fatal(err)
	}
	for _, v := range u.ViewState() {
		b, _ := u.Body(v.Name)
		if v.Location != r3.Sub(b.Location(), earth.Location()) {
			t.Fatalf("%s: view %+v", v.Name, v.Location)
		}
		if v.Tracked != (b == earth) || v.Craft != b.Piloted() {
			t.Fatalf("%s: unexpected flags %+v", v.Name, v)
		}
	}
	if err := u.Track("Pluto"); !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("expected ErrUnknownBody, got %v", err)
	}
}

func TestStepOrderIndependence(t *testing.T) {
	forward := sunEarthScenario()
	forward.Bodies = append(forward.Bodies, BodyConfig{Name: "Moon", Mass: 7.342e22, Radius: 1737, Location: []float64{149600000, 384400, 0}, Velocity: []float64{1.022, 0, 0}})
	forward.Bodies[1].Velocity = []float64{0, 29.78, 0}
	backward := forward
	backward.Bodies = []BodyConfig{forward.Bodies[2], forward.Bodies[1], forward.Bodies[0]}
	u1, u2 := mustUniverse(t, forward), mustUniverse(t, backward)
	for i := 0; i < 100; i++ {
		u1.Step(60)
		u2.Step(60)
	}
	for _, b1 := range u1.Bodies() {
		b2, _ := u2.Body(b1.Name())
		l1, l2 := b1.Location(), b2.Location()
		if !scalar.EqualWithinRel(l1.X, l2.X, 1e-12) || !scalar.EqualWithinAbs(l1.Y, l2.Y, 1e-6) || !scalar.EqualWithinAbs(l1.Z, l2.Z, 1e-6) {
			t.Fatalf("%s depends on the order of the bodies: %+v != %+v", b1.Name(), l1, l2)
		}
	}
}

func TestStepAbortsOnCoincidentBodies(t *testing.T) {
	s := DefaultScenario()
	// Jumping straight down lands the craft exactly on the center of the Earth.
	s.Controls.JumpDistance = EarthRadius + 340
	u := mustUniverse(t, s)
	craft := u.Craft()
	earth, _ := u.Body("Earth")
	vel := craft.Velocity()
	if err := u.Jump(); err != nil {
		t.Fatal(err)
	}
	if craft.Location() != earth.Location() {
		t.Fatalf("craft at %+v, Earth at %+v", craft.Location(), earth.Location())
	}
	if craft.Velocity() != vel {
		t.Fatal("jumping changed the velocity")
	}
	before := u.Snapshot()
	if err := u.Step(1); !errors.Is(err, ErrCoincidentBodies) {
		t.Fatalf("expected ErrCoincidentBodies, got %v", err)
	}
	after := u.Snapshot()
	if after.Tick != before.Tick || !after.DT.Equal(before.DT) {
		t.Fatal("the failed step advanced time")
	}
	for i := range before.Bodies {
		if before.Bodies[i] != after.Bodies[i] {
			t.Fatalf("the failed step moved %s", before.Bodies[i].Name)
		}
	}
}

func TestJump(t *testing.T) {
	u := mustUniverse(t, DefaultScenario())
	craft := u.Craft()
	craft.Orientation().Yaw(90)
	loc, vel := craft.Location(), craft.Velocity()
	if err := u.Jump(); err != nil {
		t.Fatal(err)
	}
	moved := r3.Sub(craft.Location(), loc)
	if !scalar.EqualWithinRel(norm(moved), DefaultControls().JumpDistance, 1e-9) {
		t.Fatalf("jumped %f km", norm(moved))
	}
	if !vectorsEqual(unit(moved), craft.Orientation().Forward(), 1e-6) {
		t.Fatalf("jumped along %+v instead of %+v", unit(moved), craft.Orientation().Forward())
	}
	if craft.Velocity() != vel {
		t.Fatal("jumping changed the velocity")
	}
	earth, _ := u.Body("Earth")
	if err := earth.Jump(10); !errors.Is(err, ErrNotPiloted) {
		t.Fatalf("expected ErrNotPiloted, got %v", err)
	}
	if err := mustUniverse(t, sunEarthScenario()).Jump(); !errors.Is(err, ErrNotPiloted) {
		t.Fatalf("expected ErrNotPiloted without a craft, got %v", err)
	}
}

func TestThrustOnlyMovesTheCraft(t *testing.T) {
	coasting := mustUniverse(t, DefaultScenario())
	thrusting := mustUniverse(t, DefaultScenario())
	o := thrusting.Craft().Orientation()
	o.Pitch(30)
	coasting.Craft().Orientation().Pitch(30)
	if err := o.SetThrust(0.01); err != nil {
		t.Fatal(err)
	}
	const dt = 2.
	if err := coasting.Step(dt); err != nil {
		t.Fatal(err)
	}
	if err := thrusting.Step(dt); err != nil {
		t.Fatal(err)
	}
	for i, b := range thrusting.Bodies() {
		other := coasting.Bodies()[i]
		if b.Piloted() {
			dv := r3.Sub(b.Velocity(), other.Velocity())
			if !vectorsEqual(dv, r3.Scale(0.01*dt, o.Forward()), 1e-12) {
				t.Fatalf("thrust changed the velocity by %+v", dv)
			}
			continue
		}
		if b.Location() != other.Location() || b.Velocity() != other.Velocity() {
			t.Fatalf("thrust affected %s", b.Name())
		}
	}
}

func TestLowEarthOrbit(t *testing.T) {
	u := mustUniverse(t, DefaultScenario())
	earth := u.Reference()
	for i := 0; i < 600; i++ {
		if err := u.Step(1); err != nil {
			t.Fatal(err)
		}
	}
	if r := u.Craft().DistanceTo(earth); r < 6600 || r > 6850 {
		t.Fatalf("craft left its orbit: %f km from the center of the Earth", r)
	}
}

func TestSpin(t *testing.T) {
	u := mustUniverse(t, DefaultScenario())
	earth, _ := u.Body("Earth")
	u.Step(6 * 3600)
	if !scalar.EqualWithinAbs(earth.Spin(), 90, 1e-9) {
		t.Fatalf("spin after 6h = %f", earth.Spin())
	}
	u.Step(12 * 3600)
	if !scalar.EqualWithinAbs(earth.Spin(), -90, 1e-9) {
		t.Fatalf("spin after 18h = %f", earth.Spin())
	}
	if sun, _ := u.Body("The Sun"); sun.Spin() != 0 {
		t.Fatalf("the Sun does not spin, got %f", sun.Spin())
	}
}

func TestStepErrors(t *testing.T) {
	u := mustUniverse(t, DefaultScenario())
	if err := u.Step(-1); !errors.Is(err, ErrInvalidTimeStep) {
		t.Fatalf("expected ErrInvalidTimeStep, got %v", err)
	}
	if err := u.Step(0); err != nil {
		t.Fatalf("a zero step should be valid: %s", err)
	}
	if u.Elapsed() != 0 {
		t.Fatalf("elapsed %f", u.Elapsed())
	}
}

func TestCycleReference(t *testing.T) {
	u := mustUniverse(t, DefaultScenario())
	for _, exp := range []string{"The Sun", "Earth", "The Sun"} {
		if ref := u.CycleReference(); ref.Name() != exp {
			t.Fatalf("expected %s, got %s", exp, ref.Name())
		}
	}
	if err := u.SetReference("Spaceship"); err != nil {
		t.Fatal(err)
	}
	if ref := u.CycleReference(); ref.Name() != "The Sun" {
		t.Fatalf("expected The Sun, got %s", ref.Name())
	}
}

func TestCollisionLog(t *testing.T) {
	var buf bytes.Buffer
	s := DefaultScenario()
	s.Bodies[2].Location = []float64{0, 0, 100}
	u, err := NewUniverse(s, kitlog.NewLogfmtLogger(&buf))
	if err != nil {
		t.Fatal(err)
	}
	u.Step(0.1)
	u.Step(0.1)
	if n := strings.Count(buf.String(), "collided=Earth"); n != 1 {
		t.Fatalf("expected one collision log, got %d:\n%s", n, buf.String())
	}
}

func TestInvalidUniverses(t *testing.T) {
	for _, tc := range []struct {
		name   string
		edit   func(*Scenario)
		target error
	}{
		{"no bodies", func(s *Scenario) { s.Bodies = nil }, ErrInvalidConfig},
		{"zero G", func(s *Scenario) { s.G = 0 }, ErrInvalidConfig},
		{"negative mass", func(s *Scenario) { s.Bodies[1].Mass = -1 }, ErrInvalidMass},
		{"zero mass", func(s *Scenario) { s.Bodies[0].Mass = 0 }, ErrInvalidMass},
		{"duplicate", func(s *Scenario) { s.Bodies[1].Name = "The Sun" }, ErrDuplicateBody},
		{"unknown origin", func(s *Scenario) { s.Bodies[2].RelativeTo = "Moon" }, ErrUnknownBody},
		{"origin defined later", func(s *Scenario) { s.Bodies[1].RelativeTo = "Spaceship" }, ErrUnknownBody},
		{"unknown craft", func(s *Scenario) { s.Craft = "Enterprise" }, ErrUnknownBody},
		{"unknown track", func(s *Scenario) { s.Track = "Enterprise" }, ErrUnknownBody},
		{"unknown reference", func(s *Scenario) { s.Reference = "Enterprise" }, ErrUnknownBody},
		{"coincident", func(s *Scenario) { s.Bodies[2].Location = []float64{0, 0, 0} }, ErrCoincidentBodies},
		{"bad vector", func(s *Scenario) { s.Bodies[2].Velocity = []float64{1, 2} }, ErrInvalidConfig},
		{"negative spin", func(s *Scenario) { s.Bodies[1].SpinPeriod = -1 }, ErrInvalidConfig},
		{"ephemeris without origin", func(s *Scenario) { s.Bodies[0].Ephemeris = true }, ErrInvalidConfig},
		{"ephemeris without data", func(s *Scenario) { s.Bodies[1].Ephemeris = true }, ErrInvalidConfig},
	} {
		s := DefaultScenario()
		tc.edit(&s)
		if _, err := NewUniverse(s, nil); !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.target, err)
		}
	}
}
