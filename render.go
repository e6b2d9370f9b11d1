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
	"io"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Mode switches a map specification between static image output and
// interactive browser output.
type Mode int

const (
	ModeStatic Mode = iota
	ModeInteractive
)

// Style controls how one layer is drawn.
type Style struct {
	// Scheme and Classes control choropleth classification when a
	// data column is mapped.
	Scheme  BreakScheme
	Classes int
	// Palette holds the class colors; it is resampled to Classes.
	Palette []color.NRGBA

	// Fill, if non-nil, paints every feature one fixed color instead
	// of classifying a column.
	Fill *color.NRGBA

	LineColor color.NRGBA
	LineWidth vg.Length
}

// DefaultStyle returns the style used when a layer specifies none.
func DefaultStyle() Style {
	return Style{
		Scheme:    SchemeQuantile,
		Classes:   5,
		Palette:   YlOrBr,
		LineColor: color.NRGBA{0, 0, 0, 255},
		LineWidth: 0.1 * vg.Millimeter,
	}
}

// A Layer pairs one data source with the attribute column to map and
// the style to draw it in. Exactly one of Features and Raster is set.
type Layer struct {
	Name     string
	Features *FeatureCollection
	Raster   *Raster
	// Column selects the attribute to classify; empty means fixed
	// styling (vector layers) or the raw cell values (raster layers).
	Column string
	Style  Style
}

// A MapSpec is a declarative description of a map: layers, a title, the
// output size, and the output mode. Layers accumulate via AddLayer and
// are drawn in order, so later layers composite over earlier ones.
type MapSpec struct {
	Title string
	// Width is the output image width in pixels; height follows from
	// the data aspect ratio.
	Width int
	Mode  Mode
	// BaseTiles is the base-map tile URL template for interactive
	// output.
	BaseTiles string

	layers []*Layer
}

// NewMapSpec creates a map specification with no layers.
func NewMapSpec(title string, width int) *MapSpec {
	return &MapSpec{Title: title, Width: width, BaseTiles: DefaultBaseTiles}
}

// AddLayer appends a layer and returns the spec for chaining.
func (m *MapSpec) AddLayer(l *Layer) *MapSpec {
	m.layers = append(m.layers, l)
	return m
}

// Layers returns the accumulated layers in draw order.
func (m *MapSpec) Layers() []*Layer { return append([]*Layer{}, m.layers...) }

// Bounds returns the extent enclosing all layers.
func (m *MapSpec) Bounds() (*geom.Bounds, error) {
	b := geom.NewBounds()
	for _, l := range m.layers {
		switch {
		case l.Features != nil:
			b.Extend(l.Features.Bounds())
		case l.Raster != nil:
			b.Extend(l.Raster.Bounds())
		}
	}
	if b.Empty() {
		return nil, fmt.Errorf("geomap: map specification has no drawable layers")
	}
	return b, nil
}

// A Canvas is a shared drawing surface that map layers composite onto.
// It records which layers have been drawn so compositing can be
// inspected.
type Canvas struct {
	*carto.Canvas
	img   *image.RGBA
	vgc   *vgimg.Canvas
	drawn []string
}

// NewCanvas creates a canvas covering the given extent at the given
// pixel width; the height follows from the extent's aspect ratio.
func NewCanvas(b *geom.Bounds, width int) *Canvas {
	N, S := b.Max.Y, b.Min.Y
	E, W := b.Max.X, b.Min.X
	height := int(float64(width) * (N - S) / (E - W))
	if height < 1 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	vgc := vgimg.NewWith(vgimg.UseImage(img))
	dc := vgdraw.New(vgc)
	return &Canvas{
		Canvas: carto.NewCanvas(N, S, E, W, dc),
		img:    img,
		vgc:    vgc,
	}
}

// DrawnLayers returns the names of the layers drawn so far, in order.
func (c *Canvas) DrawnLayers() []string { return append([]string{}, c.drawn...) }

// Image exposes the backing image, e.g. for building animation frames.
func (c *Canvas) Image() *image.RGBA { return c.img }

// WritePNG writes the composited image.
func (c *Canvas) WritePNG(w io.Writer) error {
	png := vgimg.PngCanvas{Canvas: c.vgc}
	_, err := png.WriteTo(w)
	return err
}

// DrawLayer draws one layer onto the canvas, compositing over whatever
// has been drawn already.
func (c *Canvas) DrawLayer(l *Layer) error {
	style := l.Style
	if style.Palette == nil && style.Fill == nil {
		style = DefaultStyle()
	}
	var err error
	switch {
	case l.Features != nil:
		err = c.drawFeatures(l, style)
	case l.Raster != nil:
		err = c.drawRaster(l, style)
	default:
		return fmt.Errorf("geomap: layer `%s` has no data source", l.Name)
	}
	if err != nil {
		return err
	}
	c.drawn = append(c.drawn, l.Name)
	return nil
}

func (c *Canvas) drawFeatures(l *Layer, style Style) error {
	ls := vgdraw.LineStyle{Width: style.LineWidth, Color: style.LineColor}
	marker := vgdraw.GlyphStyle{Radius: 1.5, Shape: vgdraw.CircleGlyph{}}

	if l.Column == "" {
		fill := color.NRGBA{0, 0, 0, 0}
		if style.Fill != nil {
			fill = *style.Fill
		}
		for i, g := range l.Features.Geometry {
			marker.Color = fill
			if err := c.DrawVector(g, fill, ls, marker); err != nil {
				return fmt.Errorf("geomap: layer `%s` feature %d: %v", l.Name, i, err)
			}
		}
		return nil
	}

	vals, err := l.Features.Floats(l.Column)
	if err != nil {
		return err
	}
	cls, err := NewClassifier(vals, style.Scheme, style.Classes, style.Palette)
	if err != nil {
		return err
	}
	for i, g := range l.Features.Geometry {
		fill := cls.Color(vals[i])
		marker.Color = fill
		if err := c.DrawVector(g, fill, ls, marker); err != nil {
			return fmt.Errorf("geomap: layer `%s` feature %d: %v", l.Name, i, err)
		}
	}
	return nil
}

func (c *Canvas) drawRaster(l *Layer, style Style) error {
	r := l.Raster
	var colorFor func(v float64) color.NRGBA
	if r.Levels != nil {
		palette := interpolatePalette(style.Palette, len(r.Levels.Codes))
		codeColor := make(map[int]color.NRGBA, len(r.Levels.Codes))
		for i, code := range r.Levels.Codes {
			codeColor[code] = palette[i]
		}
		colorFor = func(v float64) color.NRGBA { return codeColor[int(v)] }
	} else {
		cls, err := NewClassifier(r.Data.Elements, style.Scheme, style.Classes, style.Palette)
		if err != nil {
			return err
		}
		colorFor = cls.Color
	}

	// No cell outlines; the fill is the datum.
	ls := vgdraw.LineStyle{Width: 0, Color: color.NRGBA{0, 0, 0, 0}}
	for j := 0; j < r.Ny(); j++ {
		for i := 0; i < r.Nx(); i++ {
			fill := colorFor(r.At(j, i))
			if err := c.DrawVector(r.CellPolygon(j, i), fill, ls, vgdraw.GlyphStyle{}); err != nil {
				return fmt.Errorf("geomap: layer `%s` cell (%d,%d): %v", l.Name, j, i, err)
			}
		}
	}
	return nil
}

// RenderOn draws all of the spec's layers. When keep is true and c is
// non-nil the layers composite onto the existing canvas; otherwise a
// fresh canvas covering the spec's extent is created. The canvas that
// was drawn on is returned.
func (m *MapSpec) RenderOn(c *Canvas, keep bool) (*Canvas, error) {
	if !keep || c == nil {
		b, err := m.Bounds()
		if err != nil {
			return nil, err
		}
		c = NewCanvas(b, m.Width)
	}
	for _, l := range m.layers {
		if err := c.DrawLayer(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Render produces the map in the spec's output mode: a PNG image for
// ModeStatic, or a self-contained interactive HTML document for
// ModeInteractive.
func (m *MapSpec) Render(w io.Writer) error {
	switch m.Mode {
	case ModeStatic:
		c, err := m.RenderOn(nil, false)
		if err != nil {
			return err
		}
		return c.WritePNG(w)
	case ModeInteractive:
		return m.WriteInteractiveHTML(w)
	}
	return fmt.Errorf("geomap: unknown render mode %d", m.Mode)
}

// RenderColumns renders one panel per attribute column as a grid of
// small multiples sharing the collection's extent, and writes the
// result as a PNG image.
func RenderColumns(fc *FeatureCollection, columns []string, style Style, width int, w io.Writer) error {
	if len(columns) == 0 {
		return fmt.Errorf("geomap: no columns to render")
	}
	b := fc.Bounds()
	aspect := (b.Max.Y - b.Min.Y) / (b.Max.X - b.Min.X)
	height := int(float64(width) / float64(len(columns)) * aspect)
	if height < 1 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	vgc := vgimg.NewWith(vgimg.UseImage(img))
	dc := vgdraw.New(vgc)
	tiles := vgdraw.Tiles{Rows: 1, Cols: len(columns)}

	for i, col := range columns {
		panel := tiles.At(dc, i, 0)
		mc := carto.NewCanvas(b.Max.Y, b.Min.Y, b.Max.X, b.Min.X, panel)
		vals, err := fc.Floats(col)
		if err != nil {
			return err
		}
		cls, err := NewClassifier(vals, style.Scheme, style.Classes, style.Palette)
		if err != nil {
			return err
		}
		ls := vgdraw.LineStyle{Width: style.LineWidth, Color: style.LineColor}
		for j, g := range fc.Geometry {
			if err := mc.DrawVector(g, cls.Color(vals[j]), ls, vgdraw.GlyphStyle{}); err != nil {
				return fmt.Errorf("geomap: column `%s` feature %d: %v", col, j, err)
			}
		}
	}

	png := vgimg.PngCanvas{Canvas: vgc}
	_, err := png.WriteTo(w)
	return err
}

// Legend draws a horizontal class legend for the given column of the
// first classified layer and writes it as a PNG image.
func (m *MapSpec) Legend(w io.Writer) error {
	for _, l := range m.layers {
		if l.Features == nil && l.Raster == nil {
			continue
		}
		if l.Features != nil && l.Column == "" {
			continue
		}
		return l.writeLegend(w)
	}
	return fmt.Errorf("geomap: no classified layer to build a legend from")
}

// writeLegend renders the layer's class swatches and tick labels as a
// PNG legend strip.
func (l *Layer) writeLegend(w io.Writer) error {
	var vals []float64
	var label string
	switch {
	case l.Features != nil && l.Column != "":
		v, err := l.Features.Floats(l.Column)
		if err != nil {
			return err
		}
		vals, label = v, l.Column
	case l.Raster != nil:
		vals, label = l.Raster.Data.Elements, l.Raster.Name
	default:
		return fmt.Errorf("geomap: layer `%s` has no mapped values", l.Name)
	}
	if len(vals) == 0 {
		return fmt.Errorf("geomap: layer `%s` has no mapped values", l.Name)
	}
	style := l.Style
	if style.Palette == nil {
		style = DefaultStyle()
	}
	cls, err := NewClassifier(vals, style.Scheme, style.Classes, style.Palette)
	if err != nil {
		return err
	}
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return drawLegend(w, cls, label, min, max)
}

// drawLegend renders one swatch plus range label per class.
func drawLegend(w io.Writer, cls *Classifier, label string, min, max float64) error {
	const (
		legendWidth  = 6.2 * vg.Inch
		legendHeight = legendWidth * 0.1067
		pad          = vg.Length(4)
	)
	font, err := vg.MakeFont("Helvetica", 8)
	if err != nil {
		return err
	}
	textStyle := vgdraw.TextStyle{Color: color.NRGBA{0, 0, 0, 255}, Font: font}

	vgc := vgimg.New(legendWidth, legendHeight)
	dc := vgdraw.New(vgc)

	n := len(cls.Palette)
	swatchW := (legendWidth - 2*pad) / vg.Length(n)
	swatchTop := legendHeight - pad - textStyle.Height(label)
	swatchBottom := pad + textStyle.Height("0") + 2

	for i, clr := range cls.Palette {
		x0 := pad + vg.Length(i)*swatchW
		dc.FillPolygon(clr, []vg.Point{
			{X: x0, Y: swatchBottom}, {X: x0 + swatchW, Y: swatchBottom},
			{X: x0 + swatchW, Y: swatchTop}, {X: x0, Y: swatchTop},
			{X: x0, Y: swatchBottom},
		})
		sty := textStyle
		sty.XAlign = -0.5
		sty.YAlign = 0
		dc.FillText(sty, vg.Point{X: x0 + swatchW/2, Y: pad}, cls.classRange(i, min, max))
	}
	sty := textStyle
	sty.XAlign = -0.5
	sty.YAlign = -1
	dc.FillText(sty, vg.Point{X: legendWidth / 2, Y: legendHeight - pad}, label)

	png := vgimg.PngCanvas{Canvas: vgc}
	_, err = png.WriteTo(w)
	return err
}
