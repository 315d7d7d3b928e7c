// Package telemetry formats the state of the craft for humans, and exports it to Prometheus.
package telemetry

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gpjt/explorer"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// normalise formats a value in kilo-units, e.g. 0.05 km as "50.0", 12.3 km as "12.3k".
func normalise(value float64) string {
	switch {
	case value < 0.1:
		return printer.Sprintf("%.1f", value*1000)
	case value < 1:
		return printer.Sprintf("%.0f", value*1000)
	case value < 10:
		return printer.Sprintf("%.2fk", value)
	case value < 100:
		return printer.Sprintf("%.1fk", value)
	default:
		return printer.Sprintf("%.0fk", value)
	}
}

// FormatDistance formats a distance given in km.
func FormatDistance(km float64) string {
	return normalise(km) + "m"
}

// FormatSpeed formats a speed given in km/s.
func FormatSpeed(kms float64) string {
	return normalise(kms) + "m/s"
}

// FormatAcceleration formats an acceleration given in km/s^2.
func FormatAcceleration(kms2 float64) string {
	return normalise(kms2) + "m/s²"
}

// degrees formats an angle to the nearest degree, without negative zeros.
func degrees(a float64) string {
	return fmt.Sprintf("%.0f°", math.Round(a)+0)
}

// Row is a labelled line of the dashboard.
type Row struct {
	Label, Value string
}

// Dashboard is what the pilot sees of the craft.
type Dashboard struct {
	Observer         string
	Reference        string
	Distance         float64 // km
	Speed            float64 // km/s
	Thrust           float64 // km/s^2
	Yaw, Pitch, Roll float64 // degrees
	Epoch            time.Time
	Warp             float64
}

// FromUniverse reads the dashboard of the craft (or of the tracked body if there is no craft)
// relative to the reference body of the universe.
func FromUniverse(u *explorer.Universe, warp float64) Dashboard {
	observer := u.Craft()
	if observer == nil {
		observer = u.Tracked()
	}
	ref := u.Reference()
	d := Dashboard{
		Observer:  observer.Name(),
		Reference: ref.Name(),
		Distance:  observer.DistanceTo(ref),
		Speed:     observer.SpeedRelativeTo(ref),
		Epoch:     u.Epoch(),
		Warp:      warp,
	}
	if o := observer.Orientation(); o != nil {
		d.Thrust = o.Thrust()
		d.Yaw, d.Pitch, d.Roll = o.Heading()
	}
	return d
}

// Rows returns the lines of the dashboard, in display order.
func (d Dashboard) Rows() []Row {
	return []Row{
		{"Relative to", d.Reference},
		{"Distance", FormatDistance(d.Distance)},
		{"Velocity", FormatSpeed(d.Speed)},
		{"Thrust", FormatAcceleration(d.Thrust)},
		{"Heading", fmt.Sprintf("yaw %s pitch %s roll %s", degrees(d.Yaw), degrees(d.Pitch), degrees(d.Roll))},
		{"Date", d.Epoch.UTC().Format("2006-01-02 15:04:05")},
		{"Time warp", fmt.Sprintf("×%g", d.Warp)},
	}
}

// String returns the rows as plain text, one per line.
func (d Dashboard) String() string {
	var b strings.Builder
	for _, r := range d.Rows() {
		fmt.Fprintf(&b, "%-12s %s\n", r.Label+":", r.Value)
	}
	return b.String()
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(13)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

// Render returns the dashboard in a box for terminals.
func (d Dashboard) Render() string {
	lines := []string{titleStyle.Render(d.Observer)}
	for _, r := range d.Rows() {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r.Label), valueStyle.Render(r.Value)))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
