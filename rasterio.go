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
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// ReadNetCDF reads a NetCDF grid file into a stack with one layer per
// file variable. Each variable must have exactly two dimensions (y, x).
// The grid origin and resolution are read from the global attributes
// "x0", "y0", "dx", and "dy".
func ReadNetCDF(filename string) (*Stack, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, MissingResourceError{Resource: filename}
		}
		return nil, fmt.Errorf("geomap: opening %s: %v", filename, err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("geomap: reading %s: %v", filename, err)
	}

	var w, s, dx, dy float64
	for _, a := range []struct {
		name string
		dst  *float64
	}{{"x0", &w}, {"y0", &s}, {"dx", &dx}, {"dy", &dy}} {
		attr := cf.Header.GetAttribute("", a.name)
		if attr == nil {
			return nil, fmt.Errorf("geomap: %s is missing global attribute `%s`", filename, a.name)
		}
		v, ok := attr.([]float64)
		if !ok || len(v) != 1 {
			return nil, fmt.Errorf("geomap: %s: global attribute `%s` must be a single float", filename, a.name)
		}
		*a.dst = v[0]
	}

	var proj4 string
	var sr *proj.SR
	if attr := cf.Header.GetAttribute("", "crs"); attr != nil {
		if v, ok := attr.(string); ok && v != "" {
			proj4 = v
			if p, err := proj.Parse(v); err == nil {
				sr = p
			}
		}
	}

	vars := cf.Header.Variables()
	sort.Strings(vars)
	layers := make([]*Raster, 0, len(vars))
	for _, v := range vars {
		dims := cf.Header.Lengths(v)
		if len(dims) != 2 {
			return nil, fmt.Errorf("geomap: %s: variable `%s` has %d dimensions; want 2", filename, v, len(dims))
		}
		data := sparse.ZerosDense(dims...)
		buf := make([]float32, len(data.Elements))
		if _, err := cf.Reader(v, nil, nil).Read(buf); err != nil {
			return nil, fmt.Errorf("geomap: %s: reading variable `%s`: %v", filename, v, err)
		}
		for i, val := range buf {
			data.Elements[i] = float64(val)
		}
		layers = append(layers, &Raster{
			Name:  v,
			Data:  data,
			W:     w, S: s, Dx: dx, Dy: dy,
			Proj4: proj4,
			SR:    sr,
		})
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("geomap: %s holds no variables", filename)
	}
	return NewStack(layers...)
}

// ReadNetCDFLayer reads a single named layer from a NetCDF grid file.
func ReadNetCDFLayer(filename, name string) (*Raster, error) {
	s, err := ReadNetCDF(filename)
	if err != nil {
		return nil, err
	}
	return s.Layer(name)
}

// WriteNetCDF writes a stack to a NetCDF grid file, one variable per
// layer, with the origin and resolution stored as global attributes.
func WriteNetCDF(s *Stack, filename string) error {
	if len(s.Layers) == 0 {
		return fmt.Errorf("geomap: cannot write an empty stack to %s", filename)
	}
	first := s.Layers[0]
	h := cdf.NewHeader([]string{"y", "x"}, []int{first.Ny(), first.Nx()})
	h.AddAttribute("", "comment", "geomap grid data file")
	h.AddAttribute("", "x0", []float64{first.W})
	h.AddAttribute("", "y0", []float64{first.S})
	h.AddAttribute("", "dx", []float64{first.Dx})
	h.AddAttribute("", "dy", []float64{first.Dy})
	if first.Proj4 != "" {
		h.AddAttribute("", "crs", first.Proj4)
	}
	for _, l := range s.Layers {
		h.AddVariable(l.Name, []string{"y", "x"}, []float32{0})
	}
	h.Define()

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("geomap: creating %s: %v", filename, err)
	}
	defer f.Close()

	cf, err := cdf.Create(f, h) // writes the header
	if err != nil {
		return fmt.Errorf("geomap: writing %s: %v", filename, err)
	}
	for _, l := range s.Layers {
		if err := writeNCF(cf, l.Name, l.Data); err != nil {
			return fmt.Errorf("geomap: writing variable %s to %s: %v", l.Name, filename, err)
		}
	}
	if err := cdf.UpdateNumRecs(f); err != nil {
		return fmt.Errorf("geomap: finalizing %s: %v", filename, err)
	}
	return nil
}

func writeNCF(f *cdf.File, Var string, data *sparse.DenseArray) error {
	n := 1
	for _, v := range data.Shape {
		n *= v
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	_, err := w.Write(data32)
	return err
}
