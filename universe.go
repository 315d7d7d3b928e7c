package explorer

import (
	"fmt"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/spatial/r3"
)

// Universe owns the bodies and drives the physics.
// Absolute heliocentric coordinates are only used for physics; rendering reads coordinates
// relative to the tracked body (the floating origin) which are never stored.
type Universe struct {
	Name     string
	Gravity  Gravity
	Controls Controls
	bodies   []*Body // insertion order, stable
	byName   map[string]*Body
	craft    *Body
	tracked  *Body
	ref      *Body
	start    time.Time
	elapsed  float64 // seconds since start
	tick     uint64
	accs     []r3.Vec
	collided map[[2]int]bool
	logger   kitlog.Logger
}

// View is the display state of a body, relative to the tracked body.
type View struct {
	Name     string
	Location r3.Vec // km, relative to the tracked body
	Radius   float64
	Spin     float64
	Color    string
	Craft    bool
	Tracked  bool
}

// BodyState is the absolute state of a body at a given time.
type BodyState struct {
	Name     string
	Location r3.Vec
	Velocity r3.Vec
}

// State is a copy of the universe at a given tick, safe to hand over to other goroutines.
type State struct {
	DT     time.Time
	Tick   uint64
	Bodies []BodyState
}

// NewUniverse builds the universe defined by the scenario. Configuration errors are returned
// as is and never corrected. A zero epoch is that of DefaultScenario. A nil logger discards all logs.
func NewUniverse(s Scenario, logger kitlog.Logger) (*Universe, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if !isFinite(s.G) || s.G <= 0 {
		return nil, fmt.Errorf("%w: gravitational constant %g", ErrInvalidConfig, s.G)
	}
	if len(s.Bodies) == 0 {
		return nil, fmt.Errorf("%w: no bodies", ErrInvalidConfig)
	}
	if s.Epoch.IsZero() {
		// Ephemeris bodies are computed at this date too.
		s.Epoch = DefaultScenario().Epoch
	}
	u := &Universe{
		Name:     s.Name,
		Gravity:  Gravity{s.G},
		Controls: s.Controls,
		byName:   make(map[string]*Body),
		start:    s.Epoch.UTC(),
		collided: make(map[[2]int]bool),
		logger:   kitlog.With(logger, "universe", s.Name),
	}
	for _, conf := range s.Bodies {
		b, err := u.newBody(conf, s)
		if err != nil {
			return nil, err
		}
		u.bodies = append(u.bodies, b)
		u.byName[b.name] = b
		if b.Piloted() {
			u.craft = b
		}
	}
	if s.Craft != "" && u.craft == nil {
		return nil, fmt.Errorf("%w: craft %w `%s`", ErrInvalidConfig, ErrUnknownBody, s.Craft)
	}
	// Two bodies defined at the same point would make the first step divide by zero.
	for i, a := range u.bodies {
		for _, b := range u.bodies[i+1:] {
			if a.location == b.location {
				return nil, fmt.Errorf("%w: %w: %s and %s at %+v", ErrInvalidConfig, ErrCoincidentBodies, a.name, b.name, a.location)
			}
		}
	}
	u.accs = make([]r3.Vec, len(u.bodies))

	u.tracked = u.craft
	if u.tracked == nil {
		u.tracked = u.bodies[0]
	}
	if s.Track != "" {
		if err := u.Track(s.Track); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	u.ref = u.defaultReference()
	if s.Reference != "" {
		if err := u.SetReference(s.Reference); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	u.logger.Log("level", "info", "subsys", "astro", "bodies", len(u.bodies), "epoch", u.start, "tracked", u.tracked.name)
	return u, nil
}

func (u *Universe) newBody(conf BodyConfig, s Scenario) (*Body, error) {
	if _, exists := u.byName[conf.Name]; exists {
		return nil, fmt.Errorf("%w: %w `%s`", ErrInvalidConfig, ErrDuplicateBody, conf.Name)
	}
	location, err := vecFromSlice(conf.Location)
	if err != nil {
		return nil, fmt.Errorf("location of %s: %w", conf.Name, err)
	}
	velocity, err := vecFromSlice(conf.Velocity)
	if err != nil {
		return nil, fmt.Errorf("velocity of %s: %w", conf.Name, err)
	}
	var origin *Body
	if conf.RelativeTo != "" {
		var ok bool
		if origin, ok = u.byName[conf.RelativeTo]; !ok {
			return nil, fmt.Errorf("%w: %s is relative to an %w `%s` (it must be defined before)", ErrInvalidConfig, conf.Name, ErrUnknownBody, conf.RelativeTo)
		}
	}
	if conf.Ephemeris {
		if origin == nil {
			return nil, fmt.Errorf("%w: ephemeris of %s must be relative to the star", ErrInvalidConfig, conf.Name)
		}
		// μ in km^3/s^2.
		μ := s.G * origin.mass / (kmToM * kmToM * kmToM)
		if location, velocity, err = HelioState(conf.Name, s.VSOP87Dir, s.Epoch, μ); err != nil {
			return nil, err
		}
	}
	if origin != nil {
		location = origin.Offset(location)
		velocity = origin.RelativeVelocity(velocity)
	}
	var b *Body
	if conf.Name == s.Craft {
		throttle, terr := NewThrottle(s.Controls.ThrustStep, s.Controls.ThrustMax)
		if terr != nil {
			return nil, terr
		}
		b, err = NewCraft(conf.Name, conf.Mass, conf.Radius, location, velocity, NewOrientation(InitialAttitude(), throttle, s.Controls.RenormalizeEvery))
	} else {
		b, err = NewBody(conf.Name, conf.Mass, conf.Radius, location, velocity)
	}
	if err != nil {
		return nil, err
	}
	if err = b.SetSpinPeriod(conf.SpinPeriod); err != nil {
		return nil, err
	}
	b.Color = conf.Color
	return b, nil
}

// defaultReference returns the first body which is neither the star (first body) nor the craft.
func (u *Universe) defaultReference() *Body {
	for _, b := range u.bodies[1:] {
		if b != u.craft {
			return b
		}
	}
	return u.bodies[0]
}

// Step advances the universe by dt seconds. All accelerations are computed from the locations
// at the start of the step, so the order of the bodies has no effect. If any acceleration
// cannot be computed, no body is moved.
func (u *Universe) Step(dt float64) error {
	if !isFinite(dt) || dt < 0 {
		return fmt.Errorf("%w: %f s", ErrInvalidTimeStep, dt)
	}
	for i, b := range u.bodies {
		acc, err := u.Gravity.Acceleration(b, u.bodies)
		if err != nil {
			u.logger.Log("level", "critical", "subsys", "astro", "tick", u.tick, "dt", u.Epoch(), "err", err)
			return fmt.Errorf("tick %d: %w", u.tick, err)
		}
		if b.orientation != nil {
			acc = r3.Add(acc, b.orientation.ThrustVector())
		}
		if !vecIsFinite(acc) {
			return fmt.Errorf("tick %d: %w: acceleration of %s", u.tick, ErrNonFinite, b.name)
		}
		u.accs[i] = acc
	}
	for i, b := range u.bodies {
		if err := Integrate(b, u.accs[i], dt); err != nil {
			return fmt.Errorf("tick %d: %w", u.tick, err)
		}
		b.advanceSpin(dt)
	}
	u.elapsed += dt
	u.tick++
	u.checkCollisions()
	return nil
}

// checkCollisions logs bodies which entered another one, and those which left it again.
func (u *Universe) checkCollisions() {
	for i, a := range u.bodies {
		for j, b := range u.bodies {
			if i == j || b.Radius == 0 {
				continue
			}
			key := [2]int{i, j}
			r := a.DistanceTo(b)
			if !u.collided[key] && r < b.Radius {
				u.collided[key] = true
				u.logger.Log("level", "critical", "subsys", "astro", "collided", b.name, "body", a.name, "dt", u.Epoch(), "r", r, "radius", b.Radius)
			} else if u.collided[key] && r > b.Radius*1.1 {
				// Now further from the 10% dead zone
				delete(u.collided, key)
				u.logger.Log("level", "critical", "subsys", "astro", "revived", b.name, "body", a.name, "dt", u.Epoch())
			}
		}
	}
}

// Jump teleports the craft along its heading by the configured jump distance.
func (u *Universe) Jump() error {
	if u.craft == nil {
		return fmt.Errorf("%w: no craft in %s", ErrNotPiloted, u.Name)
	}
	if err := u.craft.Jump(u.Controls.JumpDistance); err != nil {
		return err
	}
	u.logger.Log("level", "notice", "subsys", "prop", "jump(km)", u.Controls.JumpDistance, "dt", u.Epoch())
	return nil
}

// ViewLocation returns the location of the body relative to the tracked body, in km.
// It is computed afresh from the absolute locations on every call.
func (u *Universe) ViewLocation(b *Body) r3.Vec {
	return r3.Sub(b.location, u.tracked.location)
}

// ViewState returns the display state of every body, in order.
func (u *Universe) ViewState() []View {
	views := make([]View, len(u.bodies))
	for i, b := range u.bodies {
		views[i] = View{
			Name:     b.name,
			Location: u.ViewLocation(b),
			Radius:   b.Radius,
			Spin:     b.spin,
			Color:    b.Color,
			Craft:    b == u.craft,
			Tracked:  b == u.tracked,
		}
	}
	return views
}

// Snapshot returns a copy of the absolute state of all bodies.
func (u *Universe) Snapshot() State {
	st := State{DT: u.Epoch(), Tick: u.tick, Bodies: make([]BodyState, len(u.bodies))}
	for i, b := range u.bodies {
		st.Bodies[i] = BodyState{b.name, b.location, b.velocity}
	}
	return st
}

// Track sets the floating origin on the named body.
func (u *Universe) Track(name string) error {
	b, err := u.Body(name)
	if err != nil {
		return err
	}
	u.tracked = b
	return nil
}

// SetReference sets the body the dashboard is relative to.
func (u *Universe) SetReference(name string) error {
	b, err := u.Body(name)
	if err != nil {
		return err
	}
	u.ref = b
	return nil
}

// CycleReference moves the dashboard reference to the next body, skipping the craft.
func (u *Universe) CycleReference() *Body {
	idx := 0
	for i, b := range u.bodies {
		if b == u.ref {
			idx = i
			break
		}
	}
	for n := 1; n <= len(u.bodies); n++ {
		if next := u.bodies[(idx+n)%len(u.bodies)]; next != u.craft {
			u.ref = next
			break
		}
	}
	return u.ref
}

// Body returns the body of the provided name.
func (u *Universe) Body(name string) (*Body, error) {
	b, ok := u.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w `%s`", ErrUnknownBody, name)
	}
	return b, nil
}

// Bodies returns the bodies in their insertion order. The slice must not be modified.
func (u *Universe) Bodies() []*Body {
	return u.bodies
}

// Craft returns the piloted body, or nil.
func (u *Universe) Craft() *Body {
	return u.craft
}

// Tracked returns the floating origin body.
func (u *Universe) Tracked() *Body {
	return u.tracked
}

// Reference returns the dashboard reference body.
func (u *Universe) Reference() *Body {
	return u.ref
}

// Epoch returns the current simulation time.
func (u *Universe) Epoch() time.Time {
	return u.start.Add(time.Duration(u.elapsed * float64(time.Second)))
}

// Elapsed returns the simulated seconds since the start.
func (u *Universe) Elapsed() float64 {
	return u.elapsed
}

// Tick returns the number of steps performed.
func (u *Universe) Tick() uint64 {
	return u.tick
}
