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
	"os"

	"github.com/BurntSushi/toml"

	"github.com/BLMcCall/geomap"
)

// A LayersConfig describes a multi-layer map in a TOML file. Each
// layer names its data source the same way the --data and --raster
// options do.
type LayersConfig struct {
	Title  string
	Width  int
	Layers []LayerConfig `toml:"layer"`
}

// A LayerConfig describes one layer of a multi-layer map.
type LayerConfig struct {
	Name    string
	Data    string // vector source: file, URL, or dataset name
	Raster  string // gridded source: file, URL, or dataset name
	Column  string
	Scheme  string
	Classes int
}

// ReadLayersConfig reads a multi-layer map description from a TOML
// file.
func ReadLayersConfig(filename string) (*LayersConfig, error) {
	f, err := os.Open(os.ExpandEnv(filename))
	if err != nil {
		return nil, geomap.MissingResourceError{Resource: filename}
	}
	defer f.Close()
	c := new(LayersConfig)
	if _, err := toml.DecodeReader(f, c); err != nil {
		return nil, fmt.Errorf("geomap: parsing layer file %s: %v", filename, err)
	}
	if len(c.Layers) == 0 {
		return nil, fmt.Errorf("geomap: layer file %s describes no layers", filename)
	}
	return c, nil
}

// specFromConfig assembles a map specification from a layer file.
func specFromConfig(c *LayersConfig) (*geomap.MapSpec, error) {
	width := c.Width
	if width == 0 {
		width = Cfg.GetInt("width")
	}
	spec := geomap.NewMapSpec(c.Title, width)
	if bt := Cfg.GetString("basetiles"); bt != "" {
		spec.BaseTiles = bt
	}
	for i, lc := range c.Layers {
		l, err := configLayer(lc)
		if err != nil {
			return nil, fmt.Errorf("geomap: layer %d: %v", i, err)
		}
		spec.AddLayer(l)
	}
	return spec, nil
}

func configLayer(lc LayerConfig) (*geomap.Layer, error) {
	sty := geomap.DefaultStyle()
	if lc.Scheme != "" {
		scheme, err := geomap.ParseBreakScheme(lc.Scheme)
		if err != nil {
			return nil, err
		}
		sty.Scheme = scheme
	}
	if lc.Classes > 0 {
		sty.Classes = lc.Classes
	}

	l := &geomap.Layer{Name: lc.Name, Column: lc.Column, Style: sty}
	switch {
	case lc.Raster != "":
		r, err := loadRasterSource(lc.Raster)
		if err != nil {
			return nil, err
		}
		l.Raster = r
		if l.Name == "" {
			l.Name = r.Name
		}
	case lc.Data != "":
		fc, err := loadVectorSource(lc.Data)
		if err != nil {
			return nil, err
		}
		l.Features = fc
		if l.Name == "" {
			l.Name = lc.Data
		}
	default:
		return nil, fmt.Errorf("neither data nor raster source given")
	}
	return l, nil
}
