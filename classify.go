/*
Copyright © 2026 the geomap authors.
This file is part of geomap.

geomap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

geomap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with geomap.  If not, see <http://www.gnu.org/licenses/>.
*/

package geomap

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BreakScheme selects the rule partitioning a numeric attribute into
// discrete color bins.
type BreakScheme int

const (
	// SchemeQuantile places an equal number of values in each class.
	SchemeQuantile BreakScheme = iota
	// SchemeEqualInterval divides the value range into equal spans.
	SchemeEqualInterval
	// SchemeJenks minimizes within-class variance (natural breaks).
	SchemeJenks
	// SchemePretty chooses round-numbered break values covering the range.
	SchemePretty
)

// String implements fmt.Stringer, returning the name used in
// configuration files.
func (s BreakScheme) String() string {
	switch s {
	case SchemeQuantile:
		return "quantile"
	case SchemeEqualInterval:
		return "equal"
	case SchemeJenks:
		return "jenks"
	case SchemePretty:
		return "pretty"
	}
	return fmt.Sprintf("BreakScheme(%d)", int(s))
}

// ParseBreakScheme converts a scheme name from a configuration file.
func ParseBreakScheme(name string) (BreakScheme, error) {
	switch name {
	case "quantile":
		return SchemeQuantile, nil
	case "equal":
		return SchemeEqualInterval, nil
	case "jenks":
		return SchemeJenks, nil
	case "pretty":
		return SchemePretty, nil
	}
	return 0, fmt.Errorf("geomap: unknown break scheme `%s`", name)
}

// Breaks calculates the interior break values (at most n-1) partitioning
// vals into n classes according to the scheme. The returned slice is
// sorted ascending and does not include the data minimum or maximum.
func Breaks(vals []float64, scheme BreakScheme, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("geomap: need at least 2 classes; got %d", n)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("geomap: cannot classify an empty value set")
	}
	sorted := append([]float64{}, vals...)
	sort.Float64s(sorted)

	switch scheme {
	case SchemeQuantile:
		o := make([]float64, n-1)
		for i := 1; i < n; i++ {
			o[i-1] = stat.Quantile(float64(i)/float64(n), stat.Empirical, sorted, nil)
		}
		return o, nil
	case SchemeEqualInterval:
		min, max := sorted[0], sorted[len(sorted)-1]
		span := (max - min) / float64(n)
		o := make([]float64, n-1)
		for i := 1; i < n; i++ {
			o[i-1] = min + span*float64(i)
		}
		return o, nil
	case SchemeJenks:
		return jenksBreaks(sorted, n), nil
	case SchemePretty:
		return prettyBreaks(sorted[0], sorted[len(sorted)-1], n), nil
	}
	return nil, fmt.Errorf("geomap: unknown break scheme %d", scheme)
}

// jenksBreaks implements the Fisher-Jenks natural breaks optimization
// over sorted values, minimizing the sum of within-class squared
// deviations from the class mean.
func jenksBreaks(sorted []float64, n int) []float64 {
	m := len(sorted)
	if sorted[0] == sorted[m-1] {
		// One distinct value; a single class covers everything.
		return nil
	}
	if n >= m {
		// Every value gets its own class; break between neighbors.
		o := make([]float64, 0, m-1)
		for i := 1; i < m; i++ {
			o = append(o, sorted[i-1])
		}
		return o
	}

	// lowerClassLimits[i][j] holds the index of the lowest value in the
	// jth class of the optimal classification of the first i values.
	lowerClassLimits := make([][]int, m+1)
	variance := make([][]float64, m+1)
	for i := range lowerClassLimits {
		lowerClassLimits[i] = make([]int, n+1)
		variance[i] = make([]float64, n+1)
	}
	for j := 1; j <= n; j++ {
		lowerClassLimits[1][j] = 1
		for i := 2; i <= m; i++ {
			variance[i][j] = math.Inf(1)
		}
	}

	for i := 2; i <= m; i++ {
		var sum, sumSq, w float64
		for k := i; k >= 1; k-- {
			v := sorted[k-1]
			w++
			sum += v
			sumSq += v * v
			sseg := sumSq - sum*sum/w
			if k > 1 {
				for j := 2; j <= n; j++ {
					if variance[i][j] >= sseg+variance[k-1][j-1] {
						lowerClassLimits[i][j] = k
						variance[i][j] = sseg + variance[k-1][j-1]
					}
				}
			}
		}
		lowerClassLimits[i][1] = 1
		variance[i][1] = sumSq - sum*sum/w
	}

	o := make([]float64, n-1)
	k := m
	for j := n; j > 1; j-- {
		// Ties can collapse a class to the first value; keep the lower
		// limit within range.
		lower := lowerClassLimits[k][j]
		if lower < 2 {
			lower = 2
		}
		o[j-2] = sorted[lower-2]
		k = lower - 1
	}
	return o
}

// prettyBreaks chooses round break values (multiples of 1, 2, or 5
// times a power of ten) spanning [min, max].
func prettyBreaks(min, max float64, n int) []float64 {
	if min == max {
		return []float64{min}
	}
	rawStep := (max - min) / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(rawStep)))
	var step float64
	switch {
	case rawStep/mag < 1.5:
		step = mag
	case rawStep/mag < 3:
		step = 2 * mag
	case rawStep/mag < 7:
		step = 5 * mag
	default:
		step = 10 * mag
	}
	var o []float64
	for v := math.Ceil(min/step) * step; v < max; v += step {
		if v <= min {
			continue
		}
		o = append(o, v)
	}
	return o
}

// A Classifier assigns colors to values using precomputed class breaks.
type Classifier struct {
	// Breaks holds the interior class boundaries, ascending.
	Breaks []float64
	// Palette holds one color per class (len(Breaks)+1 colors).
	Palette []color.NRGBA
}

// NewClassifier computes breaks over vals and pairs them with a palette
// interpolated to the class count.
func NewClassifier(vals []float64, scheme BreakScheme, classes int, palette []color.NRGBA) (*Classifier, error) {
	breaks, err := Breaks(vals, scheme, classes)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		Breaks:  breaks,
		Palette: interpolatePalette(palette, len(breaks)+1),
	}, nil
}

// Class returns the class index for v.
func (c *Classifier) Class(v float64) int {
	i := sort.SearchFloat64s(c.Breaks, v)
	if i >= len(c.Palette) {
		i = len(c.Palette) - 1
	}
	return i
}

// Color returns the palette color for v.
func (c *Classifier) Color(v float64) color.NRGBA {
	return c.Palette[c.Class(v)]
}

// YlOrBr is a sequential yellow-orange-brown palette.
var YlOrBr = []color.NRGBA{
	{255, 255, 212, 255},
	{254, 217, 142, 255},
	{254, 153, 41, 255},
	{217, 95, 14, 255},
	{153, 52, 4, 255},
}

// Blues is a sequential light-to-dark blue palette.
var Blues = []color.NRGBA{
	{239, 243, 255, 255},
	{189, 215, 231, 255},
	{107, 174, 214, 255},
	{49, 130, 189, 255},
	{8, 81, 156, 255},
}

// Terrain is a palette for elevation-style data.
var Terrain = []color.NRGBA{
	{0, 166, 0, 255},
	{231, 231, 10, 255},
	{214, 145, 20, 255},
	{145, 85, 36, 255},
	{245, 245, 245, 255},
}

// interpolatePalette resamples a palette to n colors.
func interpolatePalette(p []color.NRGBA, n int) []color.NRGBA {
	if len(p) == 0 || n <= 0 {
		return nil
	}
	if n == 1 {
		return []color.NRGBA{p[0]}
	}
	o := make([]color.NRGBA, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1) * float64(len(p)-1)
		j := int(math.Floor(t))
		if j >= len(p)-1 {
			o[i] = p[len(p)-1]
			continue
		}
		frac := t - float64(j)
		o[i] = color.NRGBA{
			R: lerp(p[j].R, p[j+1].R, frac),
			G: lerp(p[j].G, p[j+1].G, frac),
			B: lerp(p[j].B, p[j+1].B, frac),
			A: 255,
		}
	}
	return o
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// classRange formats the value range of class i for legends.
func (c *Classifier) classRange(i int, min, max float64) string {
	lo, hi := min, max
	if i > 0 {
		lo = c.Breaks[i-1]
	}
	if i < len(c.Breaks) {
		hi = c.Breaks[i]
	}
	return fmt.Sprintf("%s to %s", formatTick(lo), formatTick(hi))
}

func formatTick(v float64) string {
	if v == math.Floor(v) && math.Abs(v) < 1.e7 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3g", v)
}

// sharedScale computes one classifier spanning several value slices so
// panels or frames rendered separately stay comparable.
func sharedScale(valSets [][]float64, scheme BreakScheme, classes int, palette []color.NRGBA) (*Classifier, float64, float64, error) {
	var all []float64
	for _, v := range valSets {
		all = append(all, v...)
	}
	if len(all) == 0 {
		return nil, 0, 0, fmt.Errorf("geomap: cannot classify an empty value set")
	}
	c, err := NewClassifier(all, scheme, classes, palette)
	if err != nil {
		return nil, 0, 0, err
	}
	return c, floats.Min(all), floats.Max(all), nil
}
