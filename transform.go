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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// Reproject returns a copy of the collection with every geometry
// transformed to the spatial reference described by proj4. The source
// reference must be known (fc.SR non-nil).
func Reproject(fc *FeatureCollection, proj4 string) (*FeatureCollection, error) {
	if fc.SR == nil {
		return nil, fmt.Errorf("geomap: reproject: input has no spatial reference")
	}
	dst, err := proj.Parse(proj4)
	if err != nil {
		return nil, fmt.Errorf("geomap: reproject: parsing `%s`: %v", proj4, err)
	}
	// Parse accepts any well-formed proj4 string; an unknown projection
	// only surfaces when a transformer is built.
	if _, _, err := dst.Transformers(); err != nil {
		return nil, fmt.Errorf("geomap: reproject: parsing `%s`: %v", proj4, err)
	}
	t, err := fc.SR.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("geomap: reproject: %v", err)
	}
	o := fc.Filter(func(int) bool { return true })
	o.Proj4, o.SR = proj4, dst
	for i, g := range o.Geometry {
		gg, err := g.Transform(t)
		if err != nil {
			return nil, fmt.Errorf("geomap: reproject: feature %d: %v", i, err)
		}
		o.Geometry[i] = gg
	}
	return o, nil
}

// polygonal converts g to its polygonal interface.
func polygonal(g geom.Geom) (geom.Polygonal, bool) {
	p, ok := g.(geom.Polygonal)
	return p, ok
}

// toPolygon flattens a polygonal geometry into a single multi-ring
// polygon.
func toPolygon(p geom.Polygonal) geom.Polygon {
	var o geom.Polygon
	for _, poly := range p.Polygons() {
		o = append(o, poly...)
	}
	return o
}

// Union dissolves all polygonal features in the collection into a
// single geometry. Non-polygonal features are ignored.
func Union(fc *FeatureCollection) (geom.Polygon, error) {
	var u geom.Polygon
	var any bool
	for _, g := range fc.Geometry {
		p, ok := polygonal(g)
		if !ok {
			continue
		}
		if !any {
			u = toPolygon(p)
			any = true
			continue
		}
		u = u.Union(p)
	}
	if !any {
		return nil, fmt.Errorf("geomap: union: no polygonal features in input")
	}
	return u, nil
}

// CentroidOfLargest returns the centroid of the polygonal feature with
// the greatest area.
func CentroidOfLargest(fc *FeatureCollection) (geom.Point, error) {
	var largest geom.Polygonal
	var maxArea float64
	for _, g := range fc.Geometry {
		p, ok := polygonal(g)
		if !ok {
			continue
		}
		if a := p.Area(); largest == nil || a > maxArea {
			largest, maxArea = p, a
		}
	}
	if largest == nil {
		return geom.Point{}, fmt.Errorf("geomap: centroid: no polygonal features in input")
	}
	return largest.Centroid(), nil
}

type indexedPolygonal struct {
	geom.Polygonal
	i int
}

// Intersect clips the polygonal features of fc against the polygonal
// features of clip, keeping the attributes of fc. Features with an
// empty intersection are dropped. A spatial index over clip keeps the
// pairing from being quadratic.
func Intersect(fc, clip *FeatureCollection) (*FeatureCollection, error) {
	index := rtree.NewTree(25, 50)
	var anyClip bool
	for i, g := range clip.Geometry {
		if p, ok := polygonal(g); ok {
			index.Insert(indexedPolygonal{Polygonal: p, i: i})
			anyClip = true
		}
	}
	if !anyClip {
		return nil, fmt.Errorf("geomap: intersect: no polygonal features in clip input")
	}

	clipped := make([]geom.Geom, 0, fc.Len())
	keep := make([]bool, fc.Len())
	for i, g := range fc.Geometry {
		p, ok := polygonal(g)
		if !ok {
			continue
		}
		var isect geom.Polygon
		for _, c := range index.SearchIntersect(p.Bounds()) {
			piece := p.Intersection(c.(indexedPolygonal).Polygonal)
			if len(piece) == 0 {
				continue
			}
			if isect == nil {
				isect = piece
			} else {
				isect = isect.Union(piece)
			}
		}
		if isect != nil {
			keep[i] = true
			clipped = append(clipped, isect)
		}
	}

	o := fc.Filter(func(i int) bool { return keep[i] })
	for i := range o.Geometry {
		o.Geometry[i] = clipped[i]
	}
	return o, nil
}

// GeometryKind partitions geometries into the three feature subtypes.
type GeometryKind int

const (
	PointKind GeometryKind = iota
	LineKind
	PolygonKind
)

func kindOf(g geom.Geom) (GeometryKind, bool) {
	switch g.(type) {
	case geom.Point, geom.MultiPoint:
		return PointKind, true
	case geom.LineString, geom.MultiLineString:
		return LineKind, true
	case geom.Polygon, geom.MultiPolygon:
		return PolygonKind, true
	}
	return 0, false
}

// FilterGeometry extracts the features of one geometry subtype,
// keeping their attribute rows.
func FilterGeometry(fc *FeatureCollection, kind GeometryKind) *FeatureCollection {
	return fc.Filter(func(i int) bool {
		k, ok := kindOf(fc.Geometry[i])
		return ok && k == kind
	})
}
