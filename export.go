package explorer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ExportConfig configures the exporting of the simulation.
type ExportConfig struct {
	Dir       string
	Filename  string
	XYZV      bool     // Cosmographia interpolated states, one file per body
	AsCSV     bool     // a single CSV file for all the exported bodies
	Timestamp bool     // append the creation time to the file names
	Bodies    []string // bodies to export, all of them if empty
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.XYZV && !c.AsCSV
}

func (c ExportConfig) exports(name string) bool {
	if len(c.Bodies) == 0 {
		return true
	}
	for _, b := range c.Bodies {
		if b == name {
			return true
		}
	}
	return false
}

func (c ExportConfig) path(prefix, name, ext string) string {
	filename := prefix + "-" + c.Filename
	if name != "" {
		filename += "-" + strings.ReplaceAll(name, " ", "_")
	}
	if c.Timestamp {
		t := time.Now()
		filename += fmt.Sprintf("-%d-%02d-%02dT%02d.%02d.%02d", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	return filepath.Join(c.Dir, filename+"."+ext)
}

// CgInterpolatedState is a line of a Cosmographia interpolated states file.
type CgInterpolatedState struct {
	JD       float64
	Position [3]float64
	Velocity [3]float64
}

// FromText initializes from text.
// The `record` parameter must be an array of seven items.
func (i *CgInterpolatedState) FromText(record []string) error {
	if len(record) != 7 {
		return fmt.Errorf("expected seven fields, got %d", len(record))
	}
	var vals [7]float64
	for j, field := range record {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return err
		}
		vals[j] = val
	}
	i.JD = vals[0]
	copy(i.Position[:], vals[1:4])
	copy(i.Velocity[:], vals[4:7])
	return nil
}

// ToText converts to text for written output.
func (i *CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position[0], i.Position[1], i.Position[2], i.Velocity[0], i.Velocity[1], i.Velocity[2])
}

// ParseInterpolatedStates reads the interpolated states from the provided reader.
func ParseInterpolatedStates(r io.Reader) ([]*CgInterpolatedState, error) {
	var states []*CgInterpolatedState
	cr := csv.NewReader(r)
	cr.Comma = ' '
	cr.Comment = '#'
	for {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		state := CgInterpolatedState{}
		if err := state.FromText(record); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(states)+1, err)
		}
		states = append(states, &state)
	}
	return states, nil
}

// writeInterpolatedHeader writes the header of an xyzv file.
func writeInterpolatedHeader(w io.Writer, body string, stateDT time.Time) error {
	_, err := fmt.Fprintf(w, `# Creation date (UTC): %s
# Body: %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a Julian date
#   Position in km
#   Velocity in km/sec
#   Simulation time start (UTC): %s`, time.Now().UTC(), body, stateDT.UTC())
	return err
}

// csvHeader is the header of the CSV export.
var csvHeader = []string{"time", "jd", "body", "x", "y", "z", "vx", "vy", "vz"}

// csvRecords converts a state into one CSV record per exported body.
func csvRecords(conf ExportConfig, state State) [][]string {
	var records [][]string
	dt := state.DT.UTC().Format("2006-01-02 15:04:05")
	jd := strconv.FormatFloat(julian.TimeToJD(state.DT), 'f', 6, 64)
	for _, b := range state.Bodies {
		if !conf.exports(b.Name) {
			continue
		}
		record := []string{dt, jd, b.Name}
		for _, v := range []float64{b.Location.X, b.Location.Y, b.Location.Z, b.Velocity.X, b.Velocity.Y, b.Velocity.Z} {
			record = append(record, strconv.FormatFloat(v, 'f', 6, 64))
		}
		records = append(records, record)
	}
	return records
}

// StreamStates streams the output of the channel to the configured files, until the channel is closed.
// The channel is always drained, even if a file cannot be written.
func StreamStates(conf ExportConfig, stateChan <-chan State) (err error) {
	xyzv := make(map[string]*os.File)
	var fAsCSV *os.File
	var w *csv.Writer
	var prev *State
	defer func() {
		for range stateChan {
			// Drain so that the propagation never blocks on a failed export.
		}
		for _, f := range xyzv {
			if prev != nil {
				fmt.Fprintf(f, "\n# Simulation time end (UTC): %s\n", prev.DT.UTC())
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
		if w != nil {
			w.Flush()
			if err == nil {
				err = w.Error()
			}
		}
		if fAsCSV != nil {
			if cerr := fAsCSV.Close(); err == nil {
				err = cerr
			}
		}
	}()

	for state := range stateChan {
		if prev == nil {
			if conf.XYZV {
				for _, b := range state.Bodies {
					if !conf.exports(b.Name) {
						continue
					}
					f, cerr := os.Create(conf.path("prop", b.Name, "xyzv"))
					if cerr != nil {
						return cerr
					}
					xyzv[b.Name] = f
					if err = writeInterpolatedHeader(f, b.Name, state.DT); err != nil {
						return err
					}
				}
			}
			if conf.AsCSV {
				if fAsCSV, err = os.Create(conf.path("states", "", "csv")); err != nil {
					return err
				}
				w = csv.NewWriter(fAsCSV)
				if err = w.Write(csvHeader); err != nil {
					return err
				}
			}
		}
		prev = &state
		if conf.XYZV {
			jd := julian.TimeToJD(state.DT)
			for _, b := range state.Bodies {
				f, ok := xyzv[b.Name]
				if !ok {
					continue
				}
				asTxt := CgInterpolatedState{JD: jd, Position: [3]float64{b.Location.X, b.Location.Y, b.Location.Z}, Velocity: [3]float64{b.Velocity.X, b.Velocity.Y, b.Velocity.Z}}
				if _, err = f.WriteString("\n" + asTxt.ToText()); err != nil {
					return err
				}
			}
		}
		if w != nil {
			if err = w.WriteAll(csvRecords(conf, state)); err != nil {
				return err
			}
		}
	}
	return nil
}
