package explorer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/planetposition"
	"gonum.org/v1/gonum/spatial/r3"
)

// AU is one astronomical unit in kilometers.
const AU = 1.49597870700e8

// vsop87Planet is the VSOP87 index and the semi major axis (km) of a planet.
type vsop87Planet struct {
	index int
	a     float64
}

var vsop87Planets = map[string]vsop87Planet{
	"mercury": {planetposition.Mercury, 57909083},
	"venus":   {planetposition.Venus, 108208601},
	"earth":   {planetposition.Earth, 149598023},
	"mars":    {planetposition.Mars, 227939282.5616},
	"jupiter": {planetposition.Jupiter, 778298361},
	"saturn":  {planetposition.Saturn, 1429394133},
	"uranus":  {planetposition.Uranus, 2875038615},
	"neptune": {planetposition.Neptune, 4504449769},
}

// HelioState returns the heliocentric position (km) and velocity (km/s) of the named planet
// at the provided time, from the VSOP87 files in dir. μ is the GM of the Sun in km^3/s^2.
// The velocity is the vis-viva speed perpendicular to the position, in the ecliptic plane:
// that is good enough for initial conditions, not for navigation.
func HelioState(planet, dir string, dt time.Time, μ float64) (R, V r3.Vec, err error) {
	p, ok := vsop87Planets[strings.ToLower(planet)]
	if !ok {
		return R, V, fmt.Errorf("%w: no ephemeris for `%s`", ErrUnknownBody, planet)
	}
	if dir == "" {
		return R, V, fmt.Errorf("%w: ephemeris of %s requested without a VSOP87 directory", ErrInvalidConfig, planet)
	}
	pp, err := planetposition.LoadPlanetPath(p.index, dir)
	if err != nil {
		return R, V, fmt.Errorf("could not load planet %s: %w", planet, err)
	}
	l, b, r := pp.Position2000(julian.TimeToJD(dt))
	R, V = stateFromLBR(l.Rad(), b.Rad(), r*AU, p.a, μ)
	return R, V, nil
}

// stateFromLBR converts heliocentric longitude, latitude (radians) and distance (km) into
// Cartesian coordinates, with a vis-viva velocity for the semi major axis a.
func stateFromLBR(l, b, r, a, μ float64) (R, V r3.Vec) {
	sB, cB := math.Sincos(b)
	sL, cL := math.Sincos(l)
	R = r3.Vec{X: r * cB * cL, Y: r * cB * sL, Z: r * sB}
	v := math.Sqrt(2*μ/r - μ/a)
	// Let's find the direction of the velocity vector.
	vDir := unit(r3.Cross(R, r3.Vec{X: 0, Y: 0, Z: -1}))
	V = r3.Scale(v, vDir)
	return
}
