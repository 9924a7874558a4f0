package sweep

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoSamples is returned when there is nothing to plot.
var ErrNoSamples = errors.New("no samples for program")

// Series groups the per-operation time of one variant by measurement key.
type Series struct {
	Variant string
	Values  plotter.Values
}

// Key identifies a measurement within a program's output.
func (s Sample) Key() string {
	return s.Section + " / " + s.Label
}

// Group arranges the samples of one program for a grouped bar chart.
// Keys and series follow first-appearance order. A variant missing a key
// gets a zero bar.
//
// Arguments:
//   - samples: Samples of any number of programs.
//   - program: Program to select.
//
// Returns:
//   - []string: Measurement keys, one bar group each.
//   - []Series: One series per variant, values in nanoseconds per operation.
func Group(samples []Sample, program string) ([]string, []Series) {
	var keys, variants []string
	keyIndex := map[string]int{}
	values := map[string]map[string]float64{}

	for _, s := range samples {
		if s.Program != program {
			continue
		}
		if _, ok := keyIndex[s.Key()]; !ok {
			keyIndex[s.Key()] = len(keys)
			keys = append(keys, s.Key())
		}
		if _, ok := values[s.Variant]; !ok {
			values[s.Variant] = map[string]float64{}
			variants = append(variants, s.Variant)
		}
		values[s.Variant][s.Key()] = s.PerOperationSeconds * 1e9
	}

	series := make([]Series, 0, len(variants))
	for _, variant := range variants {
		vals := make(plotter.Values, len(keys))
		for key, i := range keyIndex {
			vals[i] = values[variant][key]
		}
		series = append(series, Series{Variant: variant, Values: vals})
	}
	return keys, series
}

// Plot saves a bar chart of one program's per-operation times, grouped by
// measurement with one bar per variant. The image format follows the
// extension of path.
func Plot(path string, samples []Sample, program string) error {
	keys, series := Group(samples, program)
	if len(keys) == 0 {
		return errors.Wrap(ErrNoSamples, program)
	}

	p := plot.New()
	p.Title.Text = program
	p.Y.Label.Text = "ns per operation"
	p.Y.Min = 0

	width := vg.Points(12)
	for i, s := range series {
		bars, err := plotter.NewBarChart(s.Values, width)
		if err != nil {
			return errors.Wrapf(err, "failed to chart variant %s", s.Variant)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = width * vg.Length(2*i-len(series)+1) / 2

		p.Add(bars)
		p.Legend.Add(s.Variant, bars)
	}
	p.Legend.Top = true
	p.NominalX(keys...)
	p.X.Tick.Label.Rotation = math.Pi / 6

	groupWidth := vg.Length(len(keys)) * width * vg.Length(len(series)+1)
	imageWidth := 6 * vg.Inch
	if groupWidth > imageWidth {
		imageWidth = groupWidth
	}

	if err := p.Save(imageWidth, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot %s", path)
	}
	return nil
}
