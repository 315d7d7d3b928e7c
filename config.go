package explorer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

// ConfigEnv is the environment variable holding the path to the scenario file.
const ConfigEnv = "EXPLORER_CONFIG"

// Scenario defines the initial conditions of a universe and how it is flown.
type Scenario struct {
	Name      string
	Epoch     time.Time // UTC
	VSOP87Dir string    // only needed for bodies defined from their ephemeris
	G         float64
	TimeScale float64 // simulated seconds per wall clock second
	Controls  Controls
	Craft     string // piloted body
	Track     string // floating origin anchor, defaults to the craft
	Reference string // dashboard reference, defaults to the first body after the star
	Bodies    []BodyConfig
}

// Controls configures the inputs of the craft.
type Controls struct {
	ThrustStep       float64 `mapstructure:"thrust_step"`   // km/s^2
	ThrustMax        float64 `mapstructure:"thrust_max"`    // km/s^2, zero for no cap
	RotationStep     float64 `mapstructure:"rotation_step"` // degrees
	JumpDistance     float64 `mapstructure:"jump_distance"` // km
	RenormalizeEvery int     `mapstructure:"renormalize_every"`
}

// BodyConfig defines a body. If RelativeTo is set, the location and velocity are offsets
// from that body, which must be defined earlier in the list.
type BodyConfig struct {
	Name       string    `mapstructure:"name"`
	Mass       float64   `mapstructure:"mass"`
	Radius     float64   `mapstructure:"radius"`
	Location   []float64 `mapstructure:"location"`
	Velocity   []float64 `mapstructure:"velocity"`
	RelativeTo string    `mapstructure:"relative_to"`
	SpinPeriod float64   `mapstructure:"spin_period"`
	Color      string    `mapstructure:"color"`
	Ephemeris  bool      `mapstructure:"ephemeris"`
}

// DefaultControls returns the default control configuration.
func DefaultControls() Controls {
	return Controls{ThrustStep: 1e-3, ThrustMax: 0, RotationStep: 1, JumpDistance: 250000, RenormalizeEvery: DefaultRenormalizeEvery}
}

// DefaultScenario returns the Sun, the Earth and a craft flying roughly as high as the ISS.
func DefaultScenario() Scenario {
	return Scenario{
		Name:      "low earth orbit",
		Epoch:     time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC),
		G:         G,
		TimeScale: 1,
		Controls:  DefaultControls(),
		Craft:     "Spaceship",
		Track:     "Spaceship",
		Reference: "Earth",
		Bodies: []BodyConfig{
			{Name: "The Sun", Mass: SunMass, Radius: SunRadius, Location: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}, Color: "#ffff80"},
			{Name: "Earth", Mass: EarthMass, Radius: EarthRadius, RelativeTo: "The Sun",
				Location: []float64{79262956, -128906582, -13927363}, Velocity: []float64{24.85, 15.34, 2.499},
				SpinPeriod: EarthSpinPeriod, Color: "#3070ff"},
			// Other interesting altitudes: 19999 km at -4.4667 km/s, and GEO at 42164 km and -3.07 km/s.
			{Name: "Spaceship", Mass: CraftMass, Radius: 0.05, RelativeTo: "Earth",
				Location: []float64{0, 0, EarthRadius + 340}, Velocity: []float64{-7.73, 0, 0}, Color: "#ffffff"},
		},
	}
}

// LoadScenario reads a TOML (or any viper supported format) scenario file.
// Any key which is not set keeps its value from DefaultScenario.
func LoadScenario(path string) (Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return scenarioFromViper(v)
}

// ScenarioFromEnv loads the optional .env file, then the scenario pointed to by EXPLORER_CONFIG.
// The default scenario is returned if that variable is not set.
func ScenarioFromEnv() (Scenario, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Scenario{}, fmt.Errorf(".env: %w", err)
	}
	path := os.Getenv(ConfigEnv)
	if path == "" {
		return DefaultScenario(), nil
	}
	return LoadScenario(path)
}

func scenarioFromViper(v *viper.Viper) (Scenario, error) {
	s := DefaultScenario()
	v.SetDefault("general.name", s.Name)
	v.SetDefault("physics.G", s.G)
	v.SetDefault("physics.timescale", s.TimeScale)
	v.SetDefault("controls.thrust_step", s.Controls.ThrustStep)
	v.SetDefault("controls.thrust_max", s.Controls.ThrustMax)
	v.SetDefault("controls.rotation_step", s.Controls.RotationStep)
	v.SetDefault("controls.jump_distance", s.Controls.JumpDistance)
	v.SetDefault("controls.renormalize_every", s.Controls.RenormalizeEvery)

	s.Name = v.GetString("general.name")
	s.VSOP87Dir = v.GetString("general.vsop87")
	if v.IsSet("general.epoch") {
		epoch, err := readJDEorTime(v, "general.epoch")
		if err != nil {
			return Scenario{}, err
		}
		s.Epoch = epoch
	}
	s.G = v.GetFloat64("physics.G")
	s.TimeScale = v.GetFloat64("physics.timescale")
	s.Controls = Controls{
		ThrustStep:       v.GetFloat64("controls.thrust_step"),
		ThrustMax:        v.GetFloat64("controls.thrust_max"),
		RotationStep:     v.GetFloat64("controls.rotation_step"),
		JumpDistance:     v.GetFloat64("controls.jump_distance"),
		RenormalizeEvery: v.GetInt("controls.renormalize_every"),
	}
	if v.IsSet("bodies") {
		var bodies []BodyConfig
		if err := v.UnmarshalKey("bodies", &bodies); err != nil {
			return Scenario{}, fmt.Errorf("%w: bodies: %s", ErrInvalidConfig, err)
		}
		s.Bodies = bodies
		// The default view targets are meaningless for another set of bodies.
		s.Craft, s.Track, s.Reference = "", "", ""
	}
	if v.IsSet("view.craft") {
		s.Craft = v.GetString("view.craft")
	}
	if v.IsSet("view.track") {
		s.Track = v.GetString("view.track")
	}
	if v.IsSet("view.reference") {
		s.Reference = v.GetString("view.reference")
	}
	return s, nil
}

// readJDEorTime reads a date either as a Julian date or as a time.
func readJDEorTime(v *viper.Viper, key string) (time.Time, error) {
	if jde := v.GetFloat64(key); jde != 0 {
		return julian.JDToTime(jde).UTC(), nil
	}
	dt := v.GetTime(key)
	if dt.IsZero() {
		return time.Time{}, fmt.Errorf("%w: could not understand `%s`", ErrInvalidConfig, key)
	}
	return dt.UTC(), nil
}
