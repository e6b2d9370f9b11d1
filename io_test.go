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
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
)

func TestShapefileRoundTrip(t *testing.T) {
	fc, err := LoadDataset("worldbounds")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "world.shp")
	if err := WriteShapefile(fc, path); err != nil {
		t.Fatal(err)
	}

	fc2, err := ReadShapefile(path)
	if err != nil {
		t.Fatal(err)
	}
	if fc2.Len() != fc.Len() {
		t.Fatalf("have %d features, want %d", fc2.Len(), fc.Len())
	}
	if fc2.SR == nil {
		t.Error("spatial reference should survive the round trip")
	}
	if fc2.Proj4 == "" {
		t.Error("projection string should survive the round trip")
	}
	want, err := fc.Floats("pop_mil")
	if err != nil {
		t.Fatal(err)
	}
	got, err := fc2.Floats("pop_mil")
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1.e-6 {
			t.Errorf("row %d: have pop_mil %g, want %g", i, got[i], want[i])
		}
	}
	for i := range fc.Geometry {
		b1, b2 := fc.Geometry[i].Bounds(), fc2.Geometry[i].Bounds()
		if !b1.Similar(b2, 1.e-6) {
			t.Errorf("feature %d extent changed in round trip", i)
		}
		a1 := math.Abs(fc.Geometry[i].(geom.Polygonal).Area())
		a2 := math.Abs(fc2.Geometry[i].(geom.Polygonal).Area())
		if math.Abs(a1-a2) > 1.e-6 {
			t.Errorf("feature %d: have area %g, want %g", i, a2, a1)
		}
	}
}

func TestReadShapefileMissing(t *testing.T) {
	_, err := ReadShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	if err == nil {
		t.Fatal("a missing shapefile should fail")
	}
	if _, ok := err.(MissingResourceError); !ok {
		t.Errorf("have %T, want MissingResourceError", err)
	}
}

func TestGeoJSONFileRoundTrip(t *testing.T) {
	fc, err := LoadDataset("worldbounds")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "world.geojson")
	if err := WriteGeoJSON(fc, path, "pop_mil"); err != nil {
		t.Fatal(err)
	}

	fc2, err := ReadGeoJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if fc2.Len() != fc.Len() {
		t.Fatalf("have %d features, want %d", fc2.Len(), fc.Len())
	}
	for i := range fc.Geometry {
		if !fc2.Geometry[i].Similar(fc.Geometry[i], 1.e-9) {
			t.Errorf("feature %d geometry changed in round trip", i)
		}
	}
}

func TestReadGeoJSONMissing(t *testing.T) {
	_, err := ReadGeoJSON(filepath.Join(t.TempDir(), "nope.geojson"))
	if err == nil {
		t.Fatal("a missing file should fail")
	}
	if _, ok := err.(MissingResourceError); !ok {
		t.Errorf("have %T, want MissingResourceError", err)
	}
}

func TestWriteXLSX(t *testing.T) {
	fc, err := LoadDataset("worldbounds")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "world.xlsx")
	if err := WriteXLSX(fc, path); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Error("spreadsheet file should not be empty")
	}
}

func TestWriteEmptyShapefile(t *testing.T) {
	fc := NewFeatureCollection("a")
	err := WriteShapefile(fc, filepath.Join(t.TempDir(), "empty.shp"))
	if err == nil {
		t.Error("writing an empty collection should fail")
	}
}
