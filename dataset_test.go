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
	"reflect"
	"testing"
)

func TestDatasets(t *testing.T) {
	vector, raster := Datasets()
	if !reflect.DeepEqual(vector, []string{"metropop", "worldbounds"}) {
		t.Errorf("have vector datasets %v", vector)
	}
	if !reflect.DeepEqual(raster, []string{"elevation", "landcover"}) {
		t.Errorf("have raster datasets %v", raster)
	}
}

func TestLoadDataset(t *testing.T) {
	for _, name := range []string{"worldbounds", "metropop"} {
		fc, err := LoadDataset(name)
		if err != nil {
			t.Fatal(err)
		}
		if fc.Len() == 0 {
			t.Errorf("%s should not be empty", name)
		}
		if fc.SR == nil {
			t.Errorf("%s should carry a spatial reference", name)
		}
	}

	_, err := LoadDataset("nope")
	if err == nil {
		t.Fatal("an unknown dataset should fail")
	}
	if _, ok := err.(MissingResourceError); !ok {
		t.Errorf("have %T, want MissingResourceError", err)
	}
}

func TestLoadRasterDataset(t *testing.T) {
	r, err := LoadRasterDataset("landcover")
	if err != nil {
		t.Fatal(err)
	}
	if r.Levels == nil {
		t.Fatal("landcover should carry a levels table")
	}
	lab, err := r.Levels.Label(int(r.At(0, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if lab != "forest" {
		t.Errorf("have %q, want forest", lab)
	}
	wet, err := r.Levels.Attr("wetness", 3)
	if err != nil {
		t.Fatal(err)
	}
	if wet != "wet" {
		t.Errorf("have %q, want wet", wet)
	}

	if _, err := LoadRasterDataset("nope"); err == nil {
		t.Error("an unknown dataset should fail")
	}
}

func TestMetroPopYears(t *testing.T) {
	fc, err := LoadDataset("metropop")
	if err != nil {
		t.Fatal(err)
	}
	years, err := fc.DistinctFloats("year")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(years, []float64{1970, 1990, 2010, 2030}) {
		t.Errorf("have years %v", years)
	}
	if fc.Len()%len(years) != 0 {
		t.Errorf("each metro should appear once per year; have %d rows", fc.Len())
	}
}
