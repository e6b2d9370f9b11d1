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

// Package geomap loads, inspects, transforms, and renders geographic
// vector and raster data. Geometry operations and coordinate transforms
// are delegated to github.com/ctessum/geom; gridded data is held in
// github.com/ctessum/sparse arrays.
package geomap

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/proj"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// A FeatureCollection is an ordered set of geometric features paired with
// a table of attribute values, one row per feature. The geometry is
// always present and is not counted as an attribute column.
type FeatureCollection struct {
	// Geometry holds one geometry per feature.
	Geometry []geom.Geom

	// Proj4 is the Proj4 representation of the spatial reference of
	// the geometry.
	Proj4 string

	// SR is the parsed spatial reference. It may be nil for data with
	// no associated projection information.
	SR *proj.SR

	columns []string
	attrs   map[string][]interface{}
}

// NewFeatureCollection creates an empty collection with the given
// attribute columns, in order.
func NewFeatureCollection(columns ...string) *FeatureCollection {
	fc := &FeatureCollection{
		columns: append([]string{}, columns...),
		attrs:   make(map[string][]interface{}),
	}
	for _, c := range columns {
		fc.attrs[c] = nil
	}
	return fc
}

// Append adds a feature and its attribute row. The number of values must
// equal the number of columns.
func (fc *FeatureCollection) Append(g geom.Geom, vals ...interface{}) error {
	if len(vals) != len(fc.columns) {
		return ShapeMismatchError{
			Want: fmt.Sprintf("%d attribute values", len(fc.columns)),
			Got:  fmt.Sprintf("%d", len(vals)),
		}
	}
	fc.Geometry = append(fc.Geometry, g)
	for i, c := range fc.columns {
		fc.attrs[c] = append(fc.attrs[c], vals[i])
	}
	return nil
}

// Len returns the number of features.
func (fc *FeatureCollection) Len() int { return len(fc.Geometry) }

// Columns returns the attribute column names in order. The geometry is
// not included.
func (fc *FeatureCollection) Columns() []string {
	return append([]string{}, fc.columns...)
}

// HasColumn reports whether the named attribute column exists.
func (fc *FeatureCollection) HasColumn(name string) bool {
	_, ok := fc.attrs[name]
	return ok
}

// Values returns the raw attribute values for the named column.
func (fc *FeatureCollection) Values(column string) ([]interface{}, error) {
	v, ok := fc.attrs[column]
	if !ok {
		return nil, UnknownColumnError{Column: column}
	}
	return v, nil
}

// Floats returns the values of the named column as float64s,
// converting string and integer attributes where possible.
func (fc *FeatureCollection) Floats(column string) ([]float64, error) {
	vals, err := fc.Values(column)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(vals))
	for i, v := range vals {
		switch vv := v.(type) {
		case float64:
			o[i] = vv
		case int:
			o[i] = float64(vv)
		case int64:
			o[i] = float64(vv)
		case string:
			f, err := strconv.ParseFloat(vv, 64)
			if err != nil {
				return nil, fmt.Errorf("geomap: column `%s` row %d: %v", column, i, err)
			}
			o[i] = f
		default:
			return nil, fmt.Errorf("geomap: column `%s` row %d: cannot convert %T to float64", column, i, v)
		}
	}
	return o, nil
}

// Strings returns the values of the named column formatted as strings.
func (fc *FeatureCollection) Strings(column string) ([]string, error) {
	vals, err := fc.Values(column)
	if err != nil {
		return nil, err
	}
	o := make([]string, len(vals))
	for i, v := range vals {
		o[i] = fmt.Sprintf("%v", v)
	}
	return o, nil
}

// Slice returns a new collection holding features [r0,r1) and attribute
// columns [c0,c1). The geometry is always carried along regardless of the
// column range.
func (fc *FeatureCollection) Slice(r0, r1, c0, c1 int) (*FeatureCollection, error) {
	if r0 < 0 || r1 > fc.Len() || r0 > r1 {
		return nil, fmt.Errorf("geomap: row range [%d,%d) is outside of [0,%d)", r0, r1, fc.Len())
	}
	if c0 < 0 || c1 > len(fc.columns) || c0 > c1 {
		return nil, fmt.Errorf("geomap: column range [%d,%d) is outside of [0,%d)", c0, c1, len(fc.columns))
	}
	o := NewFeatureCollection(fc.columns[c0:c1]...)
	o.Proj4, o.SR = fc.Proj4, fc.SR
	o.Geometry = append(o.Geometry, fc.Geometry[r0:r1]...)
	for _, c := range o.columns {
		o.attrs[c] = append(o.attrs[c], fc.attrs[c][r0:r1]...)
	}
	return o, nil
}

// Filter returns a new collection holding only the features for which
// keep returns true. Row order is preserved.
func (fc *FeatureCollection) Filter(keep func(i int) bool) *FeatureCollection {
	o := NewFeatureCollection(fc.columns...)
	o.Proj4, o.SR = fc.Proj4, fc.SR
	for i := range fc.Geometry {
		if !keep(i) {
			continue
		}
		o.Geometry = append(o.Geometry, fc.Geometry[i])
		for _, c := range fc.columns {
			o.attrs[c] = append(o.attrs[c], fc.attrs[c][i])
		}
	}
	return o
}

// AddDerivedColumn appends a column whose values are calculated by
// evaluating expression for each row. Existing column names may be used
// as variables in the expression, e.g. "pop / area * 100".
func (fc *FeatureCollection) AddDerivedColumn(name, expression string) error {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return fmt.Errorf("geomap: parsing expression for column `%s`: %v", name, err)
	}
	vals := make([]interface{}, fc.Len())
	params := make(map[string]interface{}, len(fc.columns))
	for i := 0; i < fc.Len(); i++ {
		for _, c := range fc.columns {
			v := fc.attrs[c][i]
			if s, ok := v.(string); ok {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					v = f
				}
			}
			params[c] = v
		}
		result, err := expr.Evaluate(params)
		if err != nil {
			return fmt.Errorf("geomap: evaluating expression for column `%s` row %d: %v", name, i, err)
		}
		vals[i] = result
	}
	fc.columns = append(fc.columns, name)
	fc.attrs[name] = vals
	return nil
}

// ColumnSummary holds summary statistics for one attribute column.
// Min, Median, Mean, and Max are only meaningful when Numeric is true;
// Distinct counts the distinct values either way.
type ColumnSummary struct {
	Column                 string
	Numeric                bool
	Min, Median, Mean, Max float64
	Distinct               int
}

// Summarize calculates summary statistics for every attribute column.
func (fc *FeatureCollection) Summarize() []ColumnSummary {
	var o []ColumnSummary
	for _, c := range fc.columns {
		s := ColumnSummary{Column: c}
		if vals, err := fc.Floats(c); err == nil && len(vals) > 0 {
			sorted := make([]float64, len(vals))
			copy(sorted, vals)
			sort.Float64s(sorted)
			s.Numeric = true
			s.Min = sorted[0]
			s.Max = sorted[len(sorted)-1]
			s.Mean = floats.Sum(sorted) / float64(len(sorted))
			s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
			s.Distinct = distinctFloats(sorted)
		} else if strs, err := fc.Strings(c); err == nil {
			seen := make(map[string]bool)
			for _, v := range strs {
				seen[v] = true
			}
			s.Distinct = len(seen)
		}
		o = append(o, s)
	}
	return o
}

// distinctFloats counts the distinct values in a sorted slice.
func distinctFloats(sorted []float64) int {
	n := 0
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			n++
		}
	}
	return n
}

// Bounds returns the bounding box enclosing all features.
func (fc *FeatureCollection) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, g := range fc.Geometry {
		if g != nil {
			b.Extend(g.Bounds())
		}
	}
	return b
}

// DistinctFloats returns the distinct values of the named column in
// ascending order.
func (fc *FeatureCollection) DistinctFloats(column string) ([]float64, error) {
	vals, err := fc.Floats(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[float64]bool)
	var o []float64
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			o = append(o, v)
		}
	}
	sort.Float64s(o)
	return o, nil
}

// ToGeoJSON converts the collection to the carto GeoJSON representation,
// carrying the values of the given numeric columns as properties.
func (fc *FeatureCollection) ToGeoJSON(columns ...string) (*carto.GeoJSON, error) {
	props := make(map[string][]float64, len(columns))
	for _, c := range columns {
		vals, err := fc.Floats(c)
		if err != nil {
			return nil, err
		}
		props[c] = vals
	}
	g := &carto.GeoJSON{
		Type: "FeatureCollection",
		CRS:  carto.Crs{Type: "name", Properties: carto.CrsProps{Name: fc.Proj4}},
	}
	g.Features = make([]*carto.GeoJSONfeature, fc.Len())
	for i, shape := range fc.Geometry {
		gg, err := geojson.ToGeoJSON(shape)
		if err != nil {
			return nil, fmt.Errorf("geomap: encoding feature %d: %v", i, err)
		}
		f := &carto.GeoJSONfeature{
			Type:       "Feature",
			Geometry:   gg,
			Properties: make(map[string]float64, len(columns)),
		}
		for _, c := range columns {
			f.Properties[c] = props[c][i]
		}
		g.Features[i] = f
	}
	return g, nil
}

// FromGeoJSON converts a carto GeoJSON object back into a
// FeatureCollection. Property names become attribute columns.
func FromGeoJSON(g *carto.GeoJSON) (*FeatureCollection, error) {
	cols := make(map[string]bool)
	for _, f := range g.Features {
		for name := range f.Properties {
			cols[name] = true
		}
	}
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	fc := NewFeatureCollection(names...)
	fc.Proj4 = g.CRS.Properties.Name
	if fc.Proj4 != "" {
		if sr, err := proj.Parse(fc.Proj4); err == nil {
			fc.SR = sr
		}
	}
	for i, f := range g.Features {
		// geojson.FromGeoJSON only accepts JSON-decoded coordinate trees,
		// so round-trip the geometry through the wire format.
		b, err := json.Marshal(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("geomap: encoding feature %d: %v", i, err)
		}
		gg, err := geojson.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("geomap: decoding feature %d: %v", i, err)
		}
		vals := make([]interface{}, len(names))
		for j, name := range names {
			if v, ok := f.Properties[name]; ok {
				vals[j] = v
			} else {
				vals[j] = math.NaN()
			}
		}
		if err := fc.Append(gg, vals...); err != nil {
			return nil, err
		}
	}
	return fc, nil
}
