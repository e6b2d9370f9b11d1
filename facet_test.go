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
	"bytes"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func metroFacets(t *testing.T) *FacetSpec {
	t.Helper()
	fc, err := LoadDataset("metropop")
	if err != nil {
		t.Fatal(err)
	}
	return &FacetSpec{
		Features: fc,
		Key:      "year",
		Column:   "pop_mil",
		Rows:     2,
		Width:    200,
	}
}

// Faceting by year must produce one frame per distinct year, in
// ascending order.
func TestFacetFrames(t *testing.T) {
	f := metroFacets(t)
	frames, vals, err := f.Frames(200, 150)
	if err != nil {
		t.Fatal(err)
	}
	wantVals := []float64{1970, 1990, 2010, 2030}
	if !reflect.DeepEqual(vals, wantVals) {
		t.Errorf("have facet values %v, want %v", vals, wantVals)
	}
	if len(frames) != 4 {
		t.Fatalf("have %d frames, want 4", len(frames))
	}
	for i, fr := range frames {
		if fr.Bounds().Dx() != 200 || fr.Bounds().Dy() != 150 {
			t.Errorf("frame %d is %v, want 200x150", i, fr.Bounds())
		}
	}
}

func TestFacetFixedValues(t *testing.T) {
	f := metroFacets(t)
	f.Values = []float64{2010, 1970}
	_, vals, err := f.Frames(100, 80)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(vals, []float64{1970, 2010}) {
		t.Errorf("have %v, want fixed values sorted ascending", vals)
	}
}

func TestRenderPanels(t *testing.T) {
	f := metroFacets(t)
	var buf bytes.Buffer
	if err := f.RenderPanels(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("panel output should be a PNG: %v", err)
	}
}

// Leaving the row count unset lays the panels out near-square, so four
// facet values give a 2x2 grid rather than one long row.
func TestRenderPanelsDefaultRows(t *testing.T) {
	f := metroFacets(t)
	f.Rows = 0
	var buf bytes.Buffer
	if err := f.RenderPanels(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if w := img.Bounds().Dx(); w != 2*f.Width {
		t.Errorf("have width %d, want %d for a two-column grid", w, 2*f.Width)
	}
}

func TestAnimate(t *testing.T) {
	f := metroFacets(t)
	path := filepath.Join(t.TempDir(), "metro.gif")
	if err := f.Animate(path, 120, 90, 50); err != nil {
		t.Fatal(err)
	}
	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	g, err := gif.DecodeAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 4 {
		t.Errorf("have %d animation frames, want 4", len(g.Image))
	}
	if g.Delay[0] != 50 {
		t.Errorf("have delay %d, want 50", g.Delay[0])
	}
}

func TestFacetMissingKey(t *testing.T) {
	f := metroFacets(t)
	f.Key = ""
	if _, _, err := f.Frames(100, 80); err == nil {
		t.Error("a facet spec with no key should fail")
	}
}
