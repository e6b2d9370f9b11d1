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
	"path/filepath"
	"testing"
)

func TestNetCDFRoundTrip(t *testing.T) {
	a, err := LoadRasterDataset("elevation")
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadRasterDataset("landcover")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewStack(a, b)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "grids.nc")
	if err := WriteNetCDF(s, path); err != nil {
		t.Fatal(err)
	}

	s2, err := ReadNetCDF(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s2.Layers) != 2 {
		t.Fatalf("have %d layers, want 2", len(s2.Layers))
	}

	a2, err := s2.Layer("elevation")
	if err != nil {
		t.Fatal(err)
	}
	if a2.Nx() != a.Nx() || a2.Ny() != a.Ny() {
		t.Fatalf("have %dx%d, want %dx%d", a2.Nx(), a2.Ny(), a.Nx(), a.Ny())
	}
	if a2.W != a.W || a2.S != a.S || a2.Dx != a.Dx || a2.Dy != a.Dy {
		t.Errorf("georeferencing changed: have (%g %g %g %g), want (%g %g %g %g)",
			a2.W, a2.S, a2.Dx, a2.Dy, a.W, a.S, a.Dx, a.Dy)
	}
	if a2.Proj4 != a.Proj4 {
		t.Errorf("have crs %q, want %q", a2.Proj4, a.Proj4)
	}
	for i, want := range a.Data.Elements {
		// Values pass through float32 storage.
		if math.Abs(a2.Data.Elements[i]-want) > 1.e-4 {
			t.Errorf("element %d: have %g, want %g", i, a2.Data.Elements[i], want)
		}
	}
}

func TestReadNetCDFLayer(t *testing.T) {
	a, err := LoadRasterDataset("landcover")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewStack(a)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "lc.nc")
	if err := WriteNetCDF(s, path); err != nil {
		t.Fatal(err)
	}

	r, err := ReadNetCDFLayer(path, "landcover")
	if err != nil {
		t.Fatal(err)
	}
	if r.At(0, 0) != a.At(0, 0) {
		t.Errorf("have %g, want %g", r.At(0, 0), a.At(0, 0))
	}

	if _, err := ReadNetCDFLayer(path, "nope"); err == nil {
		t.Error("reading a missing layer should fail")
	}
}

func TestWriteNetCDFEmptyStack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.nc")
	if err := WriteNetCDF(&Stack{}, path); err == nil {
		t.Error("an empty stack should fail to write")
	}
}

func TestReadNetCDFMissing(t *testing.T) {
	_, err := ReadNetCDF(filepath.Join(t.TempDir(), "nope.nc"))
	if err == nil {
		t.Fatal("a missing file should fail")
	}
	if _, ok := err.(MissingResourceError); !ok {
		t.Errorf("have %T, want MissingResourceError", err)
	}
}
