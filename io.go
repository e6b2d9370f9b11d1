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
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/tealeg/xlsx"
)

// ReadShapefile reads a shapefile and its sidecar files into a
// FeatureCollection. All attribute fields are kept; values are stored as
// strings the way the format delivers them and converted on access.
func ReadShapefile(filename string) (*FeatureCollection, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, MissingResourceError{Resource: filename}
	}
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("geomap: opening shapefile %s: %v", filename, err)
	}
	defer d.Close()

	fields := d.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	fc := NewFeatureCollection(names...)
	if sr, err := d.SR(); err == nil {
		fc.SR = sr
	}
	if b, err := os.ReadFile(strings.TrimSuffix(filename, ".shp") + ".prj"); err == nil {
		fc.Proj4 = strings.TrimSpace(string(b))
	}

	for {
		g, attrs, more := d.DecodeRowFields(names...)
		if !more {
			break
		}
		vals := make([]interface{}, len(names))
		for i, name := range names {
			vals[i] = strings.TrimSpace(attrs[name])
		}
		if err := fc.Append(g, vals...); err != nil {
			return nil, err
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("geomap: reading shapefile %s: %v", filename, err)
	}
	return fc, nil
}

// shapeType chooses the shapefile geometry type matching g.
func shapeType(g geom.Geom) (goshp.ShapeType, error) {
	switch g.(type) {
	case geom.Point:
		return goshp.POINT, nil
	case geom.MultiPoint:
		return goshp.MULTIPOINT, nil
	case geom.LineString, geom.MultiLineString:
		return goshp.POLYLINE, nil
	case geom.Polygon, geom.MultiPolygon:
		return goshp.POLYGON, nil
	}
	return goshp.NULL, fmt.Errorf("geomap: unsupported shapefile geometry type %T", g)
}

// WriteShapefile writes the collection to a shapefile, inferring field
// types from the attribute values: columns where every value parses as a
// number become numeric fields, all others become string fields.
func WriteShapefile(fc *FeatureCollection, filename string) error {
	if fc.Len() == 0 {
		return fmt.Errorf("geomap: refusing to write empty shapefile %s", filename)
	}
	st, err := shapeType(fc.Geometry[0])
	if err != nil {
		return err
	}

	cols := fc.Columns()
	colVals := make([][]interface{}, len(cols))
	fields := make([]goshp.Field, len(cols))
	for i, c := range cols {
		vals, err := fc.Values(c)
		if err != nil {
			return err
		}
		colVals[i] = append([]interface{}{}, vals...)
		if f, err := fc.Floats(c); err == nil {
			fields[i] = goshp.FloatField(c, 25, 10)
			for j, v := range f {
				colVals[i][j] = v
			}
		} else {
			fields[i] = goshp.StringField(c, 80)
		}
	}

	e, err := shp.NewEncoderFromFields(filename, st, fields...)
	if err != nil {
		return fmt.Errorf("geomap: creating shapefile %s: %v", filename, err)
	}
	defer e.Close()

	row := make([]interface{}, len(cols))
	for i, g := range fc.Geometry {
		for j := range cols {
			row[j] = colVals[j][i]
		}
		if err := e.EncodeFields(g, row...); err != nil {
			return fmt.Errorf("geomap: writing shapefile %s row %d: %v", filename, i, err)
		}
	}

	if fc.Proj4 != "" {
		prj := strings.TrimSuffix(filename, ".shp") + ".prj"
		if err := os.WriteFile(prj, []byte(fc.Proj4), 0644); err != nil {
			return fmt.Errorf("geomap: writing projection file %s: %v", prj, err)
		}
	}
	return nil
}

// ReadGeoJSON reads a GeoJSON FeatureCollection document.
func ReadGeoJSON(filename string) (*FeatureCollection, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, MissingResourceError{Resource: filename}
		}
		return nil, fmt.Errorf("geomap: opening %s: %v", filename, err)
	}
	defer f.Close()
	g, err := carto.LoadGeoJSON(f)
	if err != nil {
		return nil, fmt.Errorf("geomap: reading %s: %v", filename, err)
	}
	return FromGeoJSON(g)
}

// WriteGeoJSON writes the collection as a GeoJSON document, carrying
// the given numeric columns as feature properties.
func WriteGeoJSON(fc *FeatureCollection, filename string, columns ...string) error {
	g, err := fc.ToGeoJSON(columns...)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("geomap: creating %s: %v", filename, err)
	}
	defer f.Close()
	e := json.NewEncoder(f)
	// The feature list is untagged in carto.GeoJSON; write the
	// lowercase key other GeoJSON readers expect.
	doc := struct {
		Type     string                  `json:"type"`
		CRS      carto.Crs               `json:"crs"`
		Features []*carto.GeoJSONfeature `json:"features"`
	}{g.Type, g.CRS, g.Features}
	if err := e.Encode(doc); err != nil {
		return fmt.Errorf("geomap: writing %s: %v", filename, err)
	}
	return nil
}

// WriteXLSX exports the attribute table as a spreadsheet for
// inspection, one row per feature plus a header row. The geometry itself
// is not exported.
func WriteXLSX(fc *FeatureCollection, filename string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("attributes")
	if err != nil {
		return fmt.Errorf("geomap: creating spreadsheet: %v", err)
	}
	header := sheet.AddRow()
	for _, c := range fc.Columns() {
		header.AddCell().SetString(c)
	}
	for i := 0; i < fc.Len(); i++ {
		row := sheet.AddRow()
		for _, c := range fc.Columns() {
			vals, err := fc.Values(c)
			if err != nil {
				return err
			}
			cell := row.AddCell()
			switch v := vals[i].(type) {
			case float64:
				cell.SetFloat(v)
			case int:
				cell.SetInt(v)
			case string:
				if fv, err := strconv.ParseFloat(v, 64); err == nil {
					cell.SetFloat(fv)
				} else {
					cell.SetString(v)
				}
			default:
				cell.SetString(fmt.Sprintf("%v", v))
			}
		}
	}
	if err := f.Save(filename); err != nil {
		return fmt.Errorf("geomap: saving %s: %v", filename, err)
	}
	return nil
}
