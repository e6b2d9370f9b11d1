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
	"math"
	"reflect"
	"testing"
)

func TestQuantileBreaks(t *testing.T) {
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	got, err := Breaks(vals, SchemeQuantile, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{25, 50, 75}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("have %v, want %v", got, want)
	}
}

func TestEqualIntervalBreaks(t *testing.T) {
	got, err := Breaks([]float64{0, 30, 60, 100}, SchemeEqualInterval, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{25, 50, 75}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1.e-9 {
			t.Errorf("break %d: have %g, want %g", i, got[i], want[i])
		}
	}
}

func TestJenksBreaks(t *testing.T) {
	vals := []float64{1, 2, 3, 100, 101, 102}
	got, err := Breaks(vals, SchemeJenks, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("have %d breaks, want 1", len(got))
	}
	// The natural break separates the two clusters.
	if got[0] < 3 || got[0] >= 100 {
		t.Errorf("have break %g, want a value in [3, 100)", got[0])
	}
}

func TestJenksConstantValues(t *testing.T) {
	got, err := Breaks([]float64{1, 1, 1, 1}, SchemeJenks, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("constant data has no interior breaks; have %v", got)
	}

	c, err := NewClassifier([]float64{1, 1, 1, 1}, SchemeJenks, 3, YlOrBr)
	if err != nil {
		t.Fatal(err)
	}
	if cls := c.Class(1); cls != 0 {
		t.Errorf("have class %d, want 0", cls)
	}
}

func TestJenksTiedValues(t *testing.T) {
	got, err := Breaks([]float64{1, 1, 1, 1, 1, 2}, SchemeJenks, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range got {
		if b < 1 || b > 2 {
			t.Errorf("break %d is %g, want a value in [1, 2]", i, b)
		}
	}
}

func TestPrettyBreaks(t *testing.T) {
	got, err := Breaks([]float64{0, 87}, SchemePretty, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{20, 40, 60, 80}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("have %v, want %v", got, want)
	}
}

func TestBreaksErrors(t *testing.T) {
	if _, err := Breaks(nil, SchemeQuantile, 4); err == nil {
		t.Error("empty values should fail")
	}
	if _, err := Breaks([]float64{1, 2}, SchemeQuantile, 1); err == nil {
		t.Error("fewer than 2 classes should fail")
	}
}

func TestParseBreakScheme(t *testing.T) {
	for _, name := range []string{"quantile", "equal", "jenks", "pretty"} {
		s, err := ParseBreakScheme(name)
		if err != nil {
			t.Fatal(err)
		}
		if s.String() != name {
			t.Errorf("have %q, want %q", s.String(), name)
		}
	}
	if _, err := ParseBreakScheme("nope"); err == nil {
		t.Error("unknown scheme name should fail")
	}
}

func TestClassifier(t *testing.T) {
	c := &Classifier{
		Breaks:  []float64{10, 20},
		Palette: interpolatePalette(Blues, 3),
	}
	cases := []struct {
		v    float64
		want int
	}{
		{5, 0},
		{10, 0}, // values equal to a break fall in the lower class
		{15, 1},
		{25, 2},
		{1000, 2},
	}
	for _, c2 := range cases {
		if got := c.Class(c2.v); got != c2.want {
			t.Errorf("Class(%g): have %d, want %d", c2.v, got, c2.want)
		}
	}
	if c.Color(5) != c.Palette[0] {
		t.Error("Color should match the class palette entry")
	}
}

func TestNewClassifierPaletteSize(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	c, err := NewClassifier(vals, SchemeQuantile, 4, YlOrBr)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Palette) != len(c.Breaks)+1 {
		t.Errorf("have %d colors for %d breaks", len(c.Palette), len(c.Breaks))
	}
}
