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
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"os"
	"sort"

	"github.com/ctessum/geom/carto"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// A FacetSpec repeats a map across the values of a partition key,
// producing either a grid of panels or an animation. The key column is
// numeric (e.g. a year); each panel or frame shows the features whose
// key equals one facet value.
type FacetSpec struct {
	Features *FeatureCollection
	// Key is the attribute column to partition by.
	Key string
	// Column is the attribute to classify within each panel.
	Column string
	Style  Style

	// Values fixes the facet values explicitly. When empty, the
	// distinct values of Key are used in ascending order.
	Values []float64
	// Rows fixes the panel grid row count; when unset the grid is laid
	// out near-square.
	Rows int

	// Width is the output width in pixels per panel (for panel grids)
	// or per frame (for animations).
	Width int
}

// facetValues returns the facet values in render order: the fixed
// values if given, otherwise the distinct key values ascending.
func (f *FacetSpec) facetValues() ([]float64, error) {
	if len(f.Values) > 0 {
		vals := append([]float64{}, f.Values...)
		sort.Float64s(vals)
		return vals, nil
	}
	return f.Features.DistinctFloats(f.Key)
}

// panels partitions the features by facet value, preserving the
// value order, and computes a classifier shared by all panels so the
// color scale is comparable across them.
func (f *FacetSpec) panels() ([]*FeatureCollection, []float64, *Classifier, error) {
	if f.Key == "" {
		return nil, nil, nil, fmt.Errorf("geomap: facet specification has no key column")
	}
	vals, err := f.facetValues()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(vals) == 0 {
		return nil, nil, nil, fmt.Errorf("geomap: facet key `%s` has no values", f.Key)
	}
	keys, err := f.Features.Floats(f.Key)
	if err != nil {
		return nil, nil, nil, err
	}

	subsets := make([]*FeatureCollection, len(vals))
	valSets := make([][]float64, len(vals))
	for i, v := range vals {
		v := v
		subsets[i] = f.Features.Filter(func(j int) bool { return keys[j] == v })
		colVals, err := subsets[i].Floats(f.Column)
		if err != nil {
			return nil, nil, nil, err
		}
		valSets[i] = colVals
	}

	style := f.style()
	cls, _, _, err := sharedScale(valSets, style.Scheme, style.Classes, style.Palette)
	if err != nil {
		return nil, nil, nil, err
	}
	return subsets, vals, cls, nil
}

func (f *FacetSpec) style() Style {
	if f.Style.Palette == nil {
		return DefaultStyle()
	}
	return f.Style
}

// drawPanel draws one facet subset onto a canvas region.
func (f *FacetSpec) drawPanel(mc *carto.Canvas, subset *FeatureCollection, cls *Classifier) error {
	style := f.style()
	vals, err := subset.Floats(f.Column)
	if err != nil {
		return err
	}
	ls := vgdraw.LineStyle{Width: style.LineWidth, Color: style.LineColor}
	marker := vgdraw.GlyphStyle{Radius: 2, Shape: vgdraw.CircleGlyph{}}
	for i, g := range subset.Geometry {
		fill := cls.Color(vals[i])
		marker.Color = fill
		if err := mc.DrawVector(g, fill, ls, marker); err != nil {
			return fmt.Errorf("geomap: facet feature %d: %v", i, err)
		}
	}
	return nil
}

// RenderPanels renders one panel per facet value, arranged in a grid
// with the spec's row count (or a near-square layout when the row count
// is zero), and writes the result as a PNG image. Panel order follows
// ascending facet values.
func (f *FacetSpec) RenderPanels(w io.Writer) error {
	subsets, _, cls, err := f.panels()
	if err != nil {
		return err
	}
	rows := f.Rows
	if rows < 1 {
		rows = int(math.Floor(math.Sqrt(float64(len(subsets)))))
		if rows < 1 {
			rows = 1
		}
	}
	cols := (len(subsets) + rows - 1) / rows

	b := f.Features.Bounds()
	aspect := (b.Max.Y - b.Min.Y) / (b.Max.X - b.Min.X)
	pxW := f.Width * cols
	pxH := int(float64(f.Width) * aspect * float64(rows))
	if pxH < 1 {
		pxH = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, pxW, pxH))
	vgc := vgimg.NewWith(vgimg.UseImage(img))
	dc := vgdraw.New(vgc)
	tiles := vgdraw.Tiles{Rows: rows, Cols: cols}

	for i, subset := range subsets {
		panel := tiles.At(dc, i%cols, i/cols)
		mc := carto.NewCanvas(b.Max.Y, b.Min.Y, b.Max.X, b.Min.X, panel)
		if err := f.drawPanel(mc, subset, cls); err != nil {
			return err
		}
	}

	png := vgimg.PngCanvas{Canvas: vgc}
	_, err = png.WriteTo(w)
	return err
}

// Frames renders one image per facet value at the given pixel size, in
// ascending facet order, sharing one color scale across frames.
func (f *FacetSpec) Frames(width, height int) ([]*image.RGBA, []float64, error) {
	subsets, vals, cls, err := f.panels()
	if err != nil {
		return nil, nil, err
	}
	b := f.Features.Bounds()
	frames := make([]*image.RGBA, len(subsets))
	for i, subset := range subsets {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		// White background so frames do not show through each other.
		draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		vgc := vgimg.NewWith(vgimg.UseImage(img))
		dc := vgdraw.New(vgc)
		mc := carto.NewCanvas(b.Max.Y, b.Min.Y, b.Max.X, b.Min.X, dc)
		if err := f.drawPanel(mc, subset, cls); err != nil {
			return nil, nil, err
		}
		frames[i] = img
	}
	return frames, vals, nil
}

// Animate writes an animation file to path, one frame per ascending
// facet value, at the given pixel size. The delay between frames is
// given in hundredths of a second.
func (f *FacetSpec) Animate(path string, width, height, delay int) error {
	frames, _, err := f.Frames(width, height)
	if err != nil {
		return err
	}
	anim := &gif.GIF{}
	for _, frame := range frames {
		pal := image.NewPaletted(frame.Bounds(), palettedColors(frame))
		draw.FloydSteinberg.Draw(pal, frame.Bounds(), frame, image.Point{})
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("geomap: creating %s: %v", path, err)
	}
	defer w.Close()
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("geomap: encoding %s: %v", path, err)
	}
	return nil
}

// palettedColors collects the distinct colors of an image, capped at
// the GIF limit of 256.
func palettedColors(img *image.RGBA) color.Palette {
	seen := make(map[color.RGBA]bool)
	pal := color.Palette{color.White, color.Black}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if !seen[c] {
				seen[c] = true
				if len(pal) < 256 {
					pal = append(pal, c)
				}
			}
		}
	}
	return pal
}
