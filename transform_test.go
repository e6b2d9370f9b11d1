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
	"testing"

	"github.com/ctessum/geom"
)

func TestReproject(t *testing.T) {
	fc := NewFeatureCollection("name")
	fc.Proj4 = LongLatProj
	fc.SR = longlatSR()
	if err := fc.Append(geom.Point{X: 10, Y: 0}, "p"); err != nil {
		t.Fatal(err)
	}

	out, err := Reproject(fc, WebMercatorProj)
	if err != nil {
		t.Fatal(err)
	}
	p := out.Geometry[0].(geom.Point)
	// 10 degrees of longitude at the equator in web mercator meters.
	const wantX = 1113194.9079327357
	if math.Abs(p.X-wantX) > 1 {
		t.Errorf("have x %g, want %g", p.X, wantX)
	}
	if math.Abs(p.Y) > 1 {
		t.Errorf("have y %g, want 0", p.Y)
	}
	if out.Proj4 != WebMercatorProj {
		t.Error("projection string should be replaced")
	}

	// The source is unchanged.
	if fc.Geometry[0].(geom.Point).X != 10 {
		t.Error("reprojection should not modify the source")
	}
}

func TestReprojectBadProj(t *testing.T) {
	fc := NewFeatureCollection()
	fc.Proj4 = LongLatProj
	fc.SR = longlatSR()
	if _, err := Reproject(fc, "+proj=nosuchthing"); err == nil {
		t.Error("an unparseable projection should fail")
	}
}

func TestUnion(t *testing.T) {
	fc := NewFeatureCollection()
	fc.Append(square(0, 0))
	fc.Append(square(0.5, 0))

	u, err := Union(fc)
	if err != nil {
		t.Fatal(err)
	}
	if got := math.Abs(u.Area()); math.Abs(got-1.5) > 1.e-9 {
		t.Errorf("have union area %g, want 1.5", got)
	}
}

func TestCentroidOfLargest(t *testing.T) {
	fc := NewFeatureCollection()
	fc.Append(square(0, 0))
	fc.Append(geom.Polygon{{
		{X: 10, Y: 10}, {X: 14, Y: 10}, {X: 14, Y: 14}, {X: 10, Y: 14},
	}})

	c, err := CentroidOfLargest(fc)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.X-12) > 1.e-9 || math.Abs(c.Y-12) > 1.e-9 {
		t.Errorf("have centroid (%g, %g), want (12, 12)", c.X, c.Y)
	}
}

func TestIntersect(t *testing.T) {
	fc := NewFeatureCollection("name")
	fc.Append(square(0, 0), "in")
	fc.Append(square(10, 10), "out")

	clip := NewFeatureCollection()
	clip.Append(geom.Polygon{{
		{X: -1, Y: -1}, {X: 2, Y: -1}, {X: 2, Y: 2}, {X: -1, Y: 2},
	}})

	out, err := Intersect(fc, clip)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 1 {
		t.Fatalf("have %d features, want 1", out.Len())
	}
	names, err := out.Strings("name")
	if err != nil {
		t.Fatal(err)
	}
	if names[0] != "in" {
		t.Errorf("have %q, want in", names[0])
	}
	var area float64
	for _, p := range out.Geometry[0].(geom.Polygonal).Polygons() {
		area += math.Abs(p.Area())
	}
	if math.Abs(area-1) > 1.e-9 {
		t.Errorf("have clipped area %g, want 1", area)
	}
}

func TestFilterGeometry(t *testing.T) {
	fc := NewFeatureCollection("name")
	fc.Append(square(0, 0), "poly")
	fc.Append(geom.Point{X: 1, Y: 1}, "pt")
	fc.Append(geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 1}}, "line")

	polys := FilterGeometry(fc, PolygonKind)
	if polys.Len() != 1 {
		t.Fatalf("have %d polygons, want 1", polys.Len())
	}
	pts := FilterGeometry(fc, PointKind)
	if pts.Len() != 1 {
		t.Fatalf("have %d points, want 1", pts.Len())
	}
	names, err := pts.Strings("name")
	if err != nil {
		t.Fatal(err)
	}
	if names[0] != "pt" {
		t.Errorf("have %q, want pt", names[0])
	}
}
