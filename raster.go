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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// A Raster is a regular grid of cells, each holding one value, plus the
// spatial metadata locating the grid on the Earth. Cell values are stored
// in row-major order with the first array axis being Y (north-south),
// matching the NetCDF convention.
type Raster struct {
	// Name identifies the layer, e.g. in stacks and rendering legends.
	Name string

	// Data holds the cell values with shape [ny, nx].
	Data *sparse.DenseArray

	// W and S are the coordinates of the lower-left grid corner, and
	// Dx and Dy are the cell dimensions.
	W, S, Dx, Dy float64

	// Proj4 is the Proj4 representation of the spatial reference.
	Proj4 string

	// SR is the parsed spatial reference; it may be nil.
	SR *proj.SR

	// Levels optionally maps integer cell codes to category labels for
	// categorical grids.
	Levels *Levels
}

// NewRaster creates a grid from a flat slice of values in row-major
// order: the first nx values form the southernmost row, west to east.
// It fails unless len(values) == nx*ny.
func NewRaster(name string, nx, ny int, w, s, dx, dy float64, values []float64) (*Raster, error) {
	if len(values) != nx*ny {
		return nil, ShapeMismatchError{
			Want: fmt.Sprintf("%d values (%d×%d cells)", nx*ny, nx, ny),
			Got:  fmt.Sprintf("%d values", len(values)),
		}
	}
	if nx <= 0 || ny <= 0 || dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("geomap: raster `%s`: dimensions and resolution must be positive", name)
	}
	data := sparse.ZerosDense(ny, nx)
	copy(data.Elements, values)
	return &Raster{
		Name: name,
		Data: data,
		W:    w, S: s, Dx: dx, Dy: dy,
	}, nil
}

// Nx returns the number of columns.
func (r *Raster) Nx() int { return r.Data.Shape[1] }

// Ny returns the number of rows.
func (r *Raster) Ny() int { return r.Data.Shape[0] }

// Bounds returns the geographic extent of the grid.
func (r *Raster) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: r.W, Y: r.S},
		Max: geom.Point{
			X: r.W + float64(r.Nx())*r.Dx,
			Y: r.S + float64(r.Ny())*r.Dy,
		},
	}
}

// At returns the value of the cell in row j (from the south edge) and
// column i (from the west edge).
func (r *Raster) At(j, i int) float64 { return r.Data.Get(j, i) }

// CellPolygon returns the footprint of cell (j, i).
func (r *Raster) CellPolygon(j, i int) geom.Polygon {
	x0 := r.W + float64(i)*r.Dx
	y0 := r.S + float64(j)*r.Dy
	return geom.Polygon{{
		{X: x0, Y: y0},
		{X: x0 + r.Dx, Y: y0},
		{X: x0 + r.Dx, Y: y0 + r.Dy},
		{X: x0, Y: y0 + r.Dy},
	}}
}

// compatible reports whether two grids share dimensions, resolution,
// and origin closely enough to be stacked.
func (r *Raster) compatible(o *Raster) bool {
	const tol = 1.e-10
	return r.Nx() == o.Nx() && r.Ny() == o.Ny() &&
		math.Abs(r.Dx-o.Dx) < tol && math.Abs(r.Dy-o.Dy) < tol &&
		math.Abs(r.W-o.W) < tol && math.Abs(r.S-o.S) < tol
}

// A Stack composes multiple grids sharing the same extent and
// resolution into one multi-layer dataset.
type Stack struct {
	Layers []*Raster
}

// NewStack combines grids into a multi-layer stack. All inputs must
// share identical dimensions, resolution, and origin; the layer count of
// the result is the total number of input layers. Stack inputs are
// flattened, so stacks may be combined with single grids.
func NewStack(layers ...*Raster) (*Stack, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("geomap: a stack requires at least one layer")
	}
	first := layers[0]
	for _, l := range layers[1:] {
		if !first.compatible(l) {
			return nil, ShapeMismatchError{
				Want: fmt.Sprintf("%d×%d cells at %gx%g resolution (layer `%s`)",
					first.Nx(), first.Ny(), first.Dx, first.Dy, first.Name),
				Got: fmt.Sprintf("%d×%d cells at %gx%g resolution (layer `%s`)",
					l.Nx(), l.Ny(), l.Dx, l.Dy, l.Name),
			}
		}
	}
	return &Stack{Layers: append([]*Raster{}, layers...)}, nil
}

// Add appends the layers of another stack, enforcing the same
// compatibility rules as NewStack.
func (s *Stack) Add(o *Stack) (*Stack, error) {
	return NewStack(append(append([]*Raster{}, s.Layers...), o.Layers...)...)
}

// Layer returns the named layer.
func (s *Stack) Layer(name string) (*Raster, error) {
	for _, l := range s.Layers {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, MissingResourceError{Resource: name}
}

// Levels is a lookup table mapping integer cell codes of a categorical
// grid to labels, with optional auxiliary columns describing each
// category (for example a wetness flag per land cover class).
type Levels struct {
	Codes  []int
	Labels []string
	attrs  map[string][]string
}

// NewLevels creates a levels table. Codes and labels must be parallel.
func NewLevels(codes []int, labels []string) (*Levels, error) {
	if len(codes) != len(labels) {
		return nil, ShapeMismatchError{
			Want: fmt.Sprintf("%d labels", len(codes)),
			Got:  fmt.Sprintf("%d", len(labels)),
		}
	}
	return &Levels{
		Codes:  append([]int{}, codes...),
		Labels: append([]string{}, labels...),
		attrs:  make(map[string][]string),
	}, nil
}

// AddColumn attaches an auxiliary descriptive column, one value per
// category code.
func (l *Levels) AddColumn(name string, values []string) error {
	if len(values) != len(l.Codes) {
		return ShapeMismatchError{
			Want: fmt.Sprintf("%d values", len(l.Codes)),
			Got:  fmt.Sprintf("%d", len(values)),
		}
	}
	l.attrs[name] = append([]string{}, values...)
	return nil
}

// Label returns the label for a cell code.
func (l *Levels) Label(code int) (string, error) {
	for i, c := range l.Codes {
		if c == code {
			return l.Labels[i], nil
		}
	}
	return "", fmt.Errorf("geomap: no level for cell code %d", code)
}

// Attr returns the value of an auxiliary column for a cell code.
func (l *Levels) Attr(column string, code int) (string, error) {
	vals, ok := l.attrs[column]
	if !ok {
		return "", UnknownColumnError{Column: column}
	}
	for i, c := range l.Codes {
		if c == code {
			return vals[i], nil
		}
	}
	return "", fmt.Errorf("geomap: no level for cell code %d", code)
}

// SetLevels attaches a category lookup table to the raster without
// copying cells, and returns the raster for chaining.
func (r *Raster) SetLevels(l *Levels) *Raster {
	r.Levels = l
	return r
}
