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

package geomaputil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BLMcCall/geomap"
	"github.com/spf13/cast"
)

// vectorData loads the vector data named by the "data" option:
// a local file, a URL, or a built-in dataset. The data is reprojected
// when the "proj" option is set.
func vectorData() (*geomap.FeatureCollection, error) {
	name := Cfg.GetString("data")
	if name == "" {
		return nil, fmt.Errorf("geomap: no vector data specified")
	}
	fc, err := loadVectorSource(name)
	if err != nil {
		return nil, err
	}
	if p := Cfg.GetString("proj"); p != "" {
		return geomap.Reproject(fc, p)
	}
	return fc, nil
}

// loadVectorSource loads vector data from a file path, URL, or
// built-in dataset name.
func loadVectorSource(name string) (*geomap.FeatureCollection, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".shp":
		path, err := maybeDownload(name, Log)
		if err != nil {
			return nil, err
		}
		return geomap.ReadShapefile(path)
	case ".geojson", ".json":
		path, err := maybeDownload(name, Log)
		if err != nil {
			return nil, err
		}
		return geomap.ReadGeoJSON(path)
	default:
		return geomap.LoadDataset(name)
	}
}

// rasterData loads the gridded data named by the "raster" option, or
// returns nil when the option is unset.
func rasterData() (*geomap.Raster, error) {
	name := Cfg.GetString("raster")
	if name == "" {
		return nil, nil
	}
	return loadRasterSource(name)
}

// loadRasterSource loads gridded data from a file path, URL, or
// built-in dataset name.
func loadRasterSource(name string) (*geomap.Raster, error) {
	if strings.ToLower(filepath.Ext(name)) == ".nc" {
		path, err := maybeDownload(name, Log)
		if err != nil {
			return nil, err
		}
		if layer := Cfg.GetString("rasterlayer"); layer != "" {
			return geomap.ReadNetCDFLayer(path, layer)
		}
		s, err := geomap.ReadNetCDF(path)
		if err != nil {
			return nil, err
		}
		if len(s.Layers) == 0 {
			return nil, fmt.Errorf("geomap: %s holds no layers", name)
		}
		return s.Layers[0], nil
	}
	return geomap.LoadRasterDataset(name)
}

// style builds the layer style from the classification options.
func style() (geomap.Style, error) {
	s := geomap.DefaultStyle()
	scheme, err := geomap.ParseBreakScheme(Cfg.GetString("scheme"))
	if err != nil {
		return s, err
	}
	s.Scheme = scheme
	if n := Cfg.GetInt("classes"); n > 0 {
		s.Classes = n
	}
	return s, nil
}

// buildSpec assembles a map specification from the configured data
// sources and style options.
func buildSpec() (*geomap.MapSpec, error) {
	if lf := Cfg.GetString("layerfile"); lf != "" {
		c, err := ReadLayersConfig(lf)
		if err != nil {
			return nil, err
		}
		return specFromConfig(c)
	}

	sty, err := style()
	if err != nil {
		return nil, err
	}
	spec := geomap.NewMapSpec(Cfg.GetString("title"), Cfg.GetInt("width"))
	if bt := Cfg.GetString("basetiles"); bt != "" {
		spec.BaseTiles = bt
	}

	r, err := rasterData()
	if err != nil {
		return nil, err
	}
	if r != nil {
		spec.AddLayer(&geomap.Layer{Name: r.Name, Raster: r, Style: sty})
	}

	// The vector data is skipped when a raster is configured and the
	// data option still holds its default value.
	if r == nil || Cfg.GetString("data") != "worldbounds" {
		fc, err := vectorData()
		if err != nil {
			return nil, err
		}
		name := Cfg.GetString("data")
		spec.AddLayer(&geomap.Layer{
			Name:     name,
			Features: fc,
			Column:   Cfg.GetString("column"),
			Style:    sty,
		})
	}

	if len(spec.Layers()) == 0 {
		return nil, fmt.Errorf("geomap: no data to map")
	}
	return spec, nil
}

// buildFacets assembles a facet specification from the configured
// vector data, key column, and style options.
func buildFacets() (*geomap.FacetSpec, error) {
	fc, err := vectorData()
	if err != nil {
		return nil, err
	}
	key := Cfg.GetString("key")
	if key == "" {
		return nil, fmt.Errorf("geomap: facets and animations need a --key column")
	}
	column := Cfg.GetString("column")
	if column == "" {
		return nil, fmt.Errorf("geomap: facets and animations need a --column to map")
	}
	sty, err := style()
	if err != nil {
		return nil, err
	}
	var vals []float64
	for _, s := range Cfg.GetStringSlice("values") {
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("geomap: parsing facet value %q: %v", s, err)
		}
		vals = append(vals, v)
	}
	return &geomap.FacetSpec{
		Features: fc,
		Key:      key,
		Column:   column,
		Style:    sty,
		Values:   vals,
		Rows:     Cfg.GetInt("rows"),
		Width:    Cfg.GetInt("width"),
	}, nil
}
