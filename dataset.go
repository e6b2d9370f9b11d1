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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// LongLatProj is the Proj4 representation of unprojected WGS84
// longitude-latitude coordinates, the reference of the bundled sample
// datasets.
const LongLatProj = "+proj=longlat +datum=WGS84 +no_defs"

// WebMercatorProj is the spatial reference used by browser tile maps.
const WebMercatorProj = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 " +
	"+lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

func longlatSR() *proj.SR {
	sr, err := proj.Parse(LongLatProj)
	if err != nil {
		panic(err) // The constant is known to parse.
	}
	return sr
}

// rect builds a rectangular polygon from corner coordinates.
func rect(w, s, e, n float64) geom.Polygon {
	return geom.Polygon{{
		{X: w, Y: s}, {X: e, Y: s}, {X: e, Y: n}, {X: w, Y: n},
	}}
}

// vectorDatasets maps sample dataset identifiers to their builders.
var vectorDatasets = map[string]func() *FeatureCollection{
	"worldbounds": worldBounds,
	"metropop":    metroPop,
}

// rasterDatasets maps sample grid identifiers to their builders.
var rasterDatasets = map[string]func() *Raster{
	"elevation": elevationGrid,
	"landcover": landCoverGrid,
}

// Datasets returns the identifiers of the bundled sample datasets,
// vector and raster, in sorted order.
func Datasets() (vector, raster []string) {
	for name := range vectorDatasets {
		vector = append(vector, name)
	}
	for name := range rasterDatasets {
		raster = append(raster, name)
	}
	sort.Strings(vector)
	sort.Strings(raster)
	return
}

// LoadDataset returns the bundled sample feature collection with the
// given identifier.
func LoadDataset(name string) (*FeatureCollection, error) {
	build, ok := vectorDatasets[name]
	if !ok {
		return nil, MissingResourceError{Resource: name}
	}
	return build(), nil
}

// LoadRasterDataset returns the bundled sample grid with the given
// identifier.
func LoadRasterDataset(name string) (*Raster, error) {
	build, ok := rasterDatasets[name]
	if !ok {
		return nil, MissingResourceError{Resource: name}
	}
	return build(), nil
}

// worldBounds is a coarse set of region outlines with population and
// economic attributes, for choropleth demonstrations.
func worldBounds() *FeatureCollection {
	fc := NewFeatureCollection("name", "pop_mil", "gdp_cap", "area_mkm2")
	fc.Proj4 = LongLatProj
	fc.SR = longlatSR()

	regions := []struct {
		g    geom.Polygon
		name string
		pop  float64 // millions
		gdp  float64 // USD per capita
		area float64 // million km²
	}{
		{rect(-168, 7, -52, 72), "North America", 579, 49240, 24.7},
		{rect(-81, -56, -34, 12), "South America", 423, 8560, 17.8},
		{rect(-10, 36, 40, 71), "Europe", 748, 29410, 10.2},
		{rect(-17, -35, 51, 37), "Africa", 1340, 1930, 30.4},
		{rect(26, 5, 180, 77), "Asia", 4641, 7850, 44.6},
		{rect(113, -47, 179, -10), "Oceania", 42, 42260, 8.5},
	}
	for _, r := range regions {
		fc.Append(r.g, r.name, r.pop, r.gdp, r.area)
	}
	return fc
}

// metroPop is a point dataset of metropolitan areas with population by
// year, for facet and animation demonstrations. One row per metro per
// year.
func metroPop() *FeatureCollection {
	fc := NewFeatureCollection("name", "year", "pop_mil")
	fc.Proj4 = LongLatProj
	fc.SR = longlatSR()

	metros := []struct {
		pt   geom.Point
		name string
		pop  [4]float64 // population (millions) in 1970, 1990, 2010, 2030
	}{
		{geom.Point{X: 139.69, Y: 35.69}, "Tokyo", [4]float64{23.3, 32.5, 36.8, 37.2}},
		{geom.Point{X: 77.21, Y: 28.61}, "Delhi", [4]float64{3.5, 9.3, 21.9, 38.9}},
		{geom.Point{X: -99.13, Y: 19.43}, "Mexico City", [4]float64{8.8, 15.6, 20.1, 24.3}},
		{geom.Point{X: -46.63, Y: -23.55}, "São Paulo", [4]float64{7.6, 14.8, 19.7, 23.8}},
		{geom.Point{X: -74.01, Y: 40.71}, "New York", [4]float64{16.2, 16.1, 18.4, 19.9}},
		{geom.Point{X: 31.23, Y: 30.05}, "Cairo", [4]float64{5.6, 9.9, 16.9, 25.5}},
		{geom.Point{X: 3.38, Y: 6.52}, "Lagos", [4]float64{1.4, 4.8, 10.4, 24.2}},
	}
	years := []float64{1970, 1990, 2010, 2030}
	for _, m := range metros {
		for i, year := range years {
			fc.Append(m.pt, m.name, year, m.pop[i])
		}
	}
	return fc
}

// elevationGrid is a small single-band synthetic elevation surface.
func elevationGrid() *Raster {
	values := []float64{
		5, 12, 30, 55, 80, 105, 140, 190, 240, 280,
		8, 18, 42, 70, 110, 150, 200, 260, 330, 380,
		12, 28, 60, 100, 160, 220, 290, 370, 450, 510,
		18, 40, 85, 140, 220, 310, 400, 500, 600, 670,
		22, 50, 100, 170, 270, 380, 490, 610, 720, 800,
		18, 42, 88, 150, 235, 330, 430, 540, 650, 720,
		12, 30, 65, 110, 175, 245, 320, 410, 500, 560,
		6, 15, 35, 62, 95, 135, 185, 245, 310, 355,
	}
	r, err := NewRaster("elevation", 10, 8, 5.7, 45.0, 0.01, 0.01, values)
	if err != nil {
		panic(err) // The literal dimensions are known to match.
	}
	r.Proj4 = LongLatProj
	r.SR = longlatSR()
	return r
}

// landCoverGrid is a categorical grid with a levels table including a
// wetness attribute per cover class.
func landCoverGrid() *Raster {
	values := []float64{
		2, 2, 2, 1, 1, 1, 1, 3, 3, 3,
		2, 2, 1, 1, 1, 1, 4, 4, 3, 3,
		2, 1, 1, 1, 1, 4, 4, 4, 3, 3,
		1, 1, 1, 1, 4, 4, 4, 3, 3, 3,
		1, 1, 1, 4, 4, 4, 3, 3, 3, 3,
		1, 1, 4, 4, 4, 3, 3, 3, 3, 3,
		1, 4, 4, 4, 3, 3, 3, 3, 3, 3,
		4, 4, 4, 3, 3, 3, 3, 3, 3, 3,
	}
	r, err := NewRaster("landcover", 10, 8, 5.7, 45.0, 0.01, 0.01, values)
	if err != nil {
		panic(err)
	}
	r.Proj4 = LongLatProj
	r.SR = longlatSR()

	levels, err := NewLevels(
		[]int{1, 2, 3, 4},
		[]string{"cropland", "forest", "water", "wetland"},
	)
	if err != nil {
		panic(err)
	}
	if err := levels.AddColumn("wetness", []string{"dry", "dry", "wet", "wet"}); err != nil {
		panic(err)
	}
	return r.SetLevels(levels)
}
