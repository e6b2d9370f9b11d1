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

	"github.com/ctessum/geom"
)

// square returns a unit square with its lower-left corner at (x, y).
func square(x, y float64) geom.Polygon {
	return geom.Polygon{{
		{X: x, Y: y}, {X: x + 1, Y: y}, {X: x + 1, Y: y + 1}, {X: x, Y: y + 1},
	}}
}

func testCollection(t *testing.T) *FeatureCollection {
	t.Helper()
	fc := NewFeatureCollection("name", "pop", "area", "year")
	rows := []struct {
		name      string
		pop, area float64
		year      float64
	}{
		{"a", 10, 2, 1970},
		{"b", 20, 4, 1970},
		{"c", 30, 5, 1990},
		{"d", 40, 8, 1990},
	}
	for i, r := range rows {
		if err := fc.Append(square(float64(i), 0), r.name, r.pop, r.area, r.year); err != nil {
			t.Fatal(err)
		}
	}
	fc.Proj4 = LongLatProj
	fc.SR = longlatSR()
	return fc
}

func TestAppendArity(t *testing.T) {
	fc := NewFeatureCollection("a", "b")
	err := fc.Append(square(0, 0), 1.0)
	if err == nil {
		t.Fatal("appending 1 value to a 2-column collection should fail")
	}
	if _, ok := err.(ShapeMismatchError); !ok {
		t.Errorf("have %T, want ShapeMismatchError", err)
	}
}

func TestSlice(t *testing.T) {
	fc := testCollection(t)

	sub, err := fc.Slice(1, 3, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 2 {
		t.Fatalf("have %d rows, want 2", sub.Len())
	}
	wantCols := []string{"pop", "area"}
	if !reflect.DeepEqual(sub.Columns(), wantCols) {
		t.Errorf("have columns %v, want %v", sub.Columns(), wantCols)
	}
	pop, err := sub.Floats("pop")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(pop, []float64{20, 30}) {
		t.Errorf("have pop %v, want [20 30]", pop)
	}
	if !sub.Geometry[0].Similar(fc.Geometry[1], 1.e-10) {
		t.Error("sliced geometry should match source row 1")
	}

	if _, err := fc.Slice(0, 5, 0, 1); err == nil {
		t.Error("row range beyond the collection should fail")
	}
	if _, err := fc.Slice(0, 1, 0, 9); err == nil {
		t.Error("column range beyond the collection should fail")
	}
	if _, err := fc.Slice(2, 1, 0, 1); err == nil {
		t.Error("inverted row range should fail")
	}
}

func TestFilter(t *testing.T) {
	fc := testCollection(t)
	years, err := fc.Floats("year")
	if err != nil {
		t.Fatal(err)
	}
	sub := fc.Filter(func(i int) bool { return years[i] == 1990 })
	if sub.Len() != 2 {
		t.Fatalf("have %d rows, want 2", sub.Len())
	}
	names, err := sub.Strings("name")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"c", "d"}) {
		t.Errorf("have %v, want [c d]", names)
	}
}

func TestUnknownColumn(t *testing.T) {
	fc := testCollection(t)
	_, err := fc.Floats("nope")
	if err == nil {
		t.Fatal("unknown column should fail")
	}
	if _, ok := err.(UnknownColumnError); !ok {
		t.Errorf("have %T, want UnknownColumnError", err)
	}
}

func TestAddDerivedColumn(t *testing.T) {
	fc := testCollection(t)
	if err := fc.AddDerivedColumn("density", "pop / area"); err != nil {
		t.Fatal(err)
	}
	got, err := fc.Floats("density")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{5, 5, 6, 5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1.e-10 {
			t.Errorf("row %d: have %g, want %g", i, got[i], want[i])
		}
	}

	if err := fc.AddDerivedColumn("bad", "pop / missing"); err == nil {
		t.Error("expression referencing a missing column should fail")
	}
}

func TestSummarize(t *testing.T) {
	fc := testCollection(t)
	sums := fc.Summarize()
	if len(sums) != 4 {
		t.Fatalf("have %d summaries, want 4", len(sums))
	}
	byName := make(map[string]ColumnSummary)
	for _, s := range sums {
		byName[s.Column] = s
	}
	pop := byName["pop"]
	if !pop.Numeric {
		t.Error("pop should be numeric")
	}
	if pop.Min != 10 || pop.Max != 40 || pop.Mean != 25 {
		t.Errorf("pop summary: have min %g mean %g max %g, want 10 25 40", pop.Min, pop.Mean, pop.Max)
	}
	name := byName["name"]
	if name.Numeric {
		t.Error("name should not be numeric")
	}
	if name.Distinct != 4 {
		t.Errorf("name: have %d distinct values, want 4", name.Distinct)
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	fc := testCollection(t)
	g, err := fc.ToGeoJSON("pop", "year")
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Features) != fc.Len() {
		t.Fatalf("have %d features, want %d", len(g.Features), fc.Len())
	}

	fc2, err := FromGeoJSON(g)
	if err != nil {
		t.Fatal(err)
	}
	if fc2.Len() != fc.Len() {
		t.Fatalf("have %d features after round trip, want %d", fc2.Len(), fc.Len())
	}
	for i := range fc.Geometry {
		if !fc2.Geometry[i].Similar(fc.Geometry[i], 1.e-9) {
			t.Errorf("feature %d geometry changed in round trip", i)
		}
	}
	pop, err := fc2.Floats("pop")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(pop, []float64{10, 20, 30, 40}) {
		t.Errorf("have pop %v after round trip, want [10 20 30 40]", pop)
	}
}

func TestDistinctFloats(t *testing.T) {
	fc := testCollection(t)
	got, err := fc.DistinctFloats("year")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []float64{1970, 1990}) {
		t.Errorf("have %v, want [1970 1990]", got)
	}
}
