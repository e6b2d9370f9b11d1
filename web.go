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
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"github.com/ctessum/geom/proj"
	"github.com/go-chi/chi/v5"
	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
)

// DefaultBaseTiles is the base-map tile source used when a
// specification does not name one.
const DefaultBaseTiles = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// tileCacheSize bounds the number of rendered map tiles kept in memory.
const tileCacheSize = 1000

// A MapServer serves a map specification as an interactive browser
// map: a Leaflet page with pan and zoom over a base-map tile source,
// with each data layer drawn as server-rendered map tiles.
type MapServer struct {
	Log *logrus.Logger

	spec      *MapSpec
	layerData map[string]*carto.MapData

	mu    sync.Mutex
	tiles *lru.Cache
}

// NewMapServer prepares a server for the given specification,
// reprojecting every layer to the web mercator reference used by
// browser tile maps.
func NewMapServer(spec *MapSpec) (*MapServer, error) {
	webSR, err := proj.Parse(WebMercatorProj)
	if err != nil {
		return nil, fmt.Errorf("geomap: parsing web mercator reference: %v", err)
	}

	s := &MapServer{
		Log:       logrus.StandardLogger(),
		spec:      spec,
		layerData: make(map[string]*carto.MapData),
		tiles:     lru.New(tileCacheSize),
	}

	for _, l := range spec.layers {
		md, err := layerMapData(l, webSR)
		if err != nil {
			return nil, err
		}
		s.layerData[l.Name] = md
	}
	return s, nil
}

// layerMapData converts one layer to web mercator shapes paired with
// the values of its mapped column.
func layerMapData(l *Layer, webSR *proj.SR) (*carto.MapData, error) {
	var shapes []geom.Geom
	var vals []float64
	var srcSR *proj.SR

	switch {
	case l.Features != nil:
		srcSR = l.Features.SR
		shapes = append(shapes, l.Features.Geometry...)
		if l.Column != "" {
			v, err := l.Features.Floats(l.Column)
			if err != nil {
				return nil, err
			}
			vals = v
		} else {
			vals = make([]float64, len(shapes))
		}
	case l.Raster != nil:
		srcSR = l.Raster.SR
		r := l.Raster
		for j := 0; j < r.Ny(); j++ {
			for i := 0; i < r.Nx(); i++ {
				shapes = append(shapes, r.CellPolygon(j, i))
				vals = append(vals, r.At(j, i))
			}
		}
	default:
		return nil, fmt.Errorf("geomap: layer `%s` has no data source", l.Name)
	}

	if srcSR == nil {
		return nil, fmt.Errorf("geomap: layer `%s` has no spatial reference", l.Name)
	}
	t, err := srcSR.NewTransform(webSR)
	if err != nil {
		return nil, fmt.Errorf("geomap: layer `%s`: %v", l.Name, err)
	}

	md := carto.NewMapData(len(shapes), carto.Linear)
	for i, g := range shapes {
		gg, err := g.Transform(t)
		if err != nil {
			return nil, fmt.Errorf("geomap: layer `%s` feature %d: %v", l.Name, i, err)
		}
		md.Shapes[i] = gg
		md.Data[i] = vals[i]
	}
	md.Cmap.AddArray(md.Data)
	md.Cmap.Set()
	return md, nil
}

// Handler returns the HTTP routes for the interactive map.
func (s *MapServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.indexHandler)
	r.Get("/tiles/{layer}/{z}/{x}/{y}.png", s.tileHandler)
	r.Get("/data/{layer}.geojson", s.geoJSONHandler)
	r.Get("/legend/{layer}.png", s.legendHandler)
	return r
}

// ListenAndServe serves the interactive map at addr until the server
// fails.
func (s *MapServer) ListenAndServe(addr string) error {
	s.Log.WithField("addr", addr).Info("serving interactive map")
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	return srv.ListenAndServe()
}

func (s *MapServer) layer(name string) (*carto.MapData, error) {
	md, ok := s.layerData[name]
	if !ok {
		return nil, MissingResourceError{Resource: name}
	}
	return md, nil
}

func (s *MapServer) tileHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "layer")
	var zxy [3]int
	for i, p := range []string{"z", "x", "y"} {
		v, err := strconv.Atoi(chi.URLParam(r, p))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		zxy[i] = v
	}

	key := fmt.Sprintf("%s/%d/%d/%d", name, zxy[0], zxy[1], zxy[2])
	s.mu.Lock()
	cached, ok := s.tiles.Get(key)
	s.mu.Unlock()
	if ok {
		w.Header().Set("Content-Type", "image/png")
		w.Write(cached.([]byte))
		return
	}

	md, err := s.layer(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := md.WriteGoogleMapTile(&buf, zxy[0], zxy[1], zxy[2]); err != nil {
		s.Log.WithError(err).WithField("tile", key).Error("rendering tile")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.mu.Lock()
	s.tiles.Add(key, buf.Bytes())
	s.mu.Unlock()

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *MapServer) geoJSONHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "layer")
	md, err := s.layer(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	g, err := md.ToGeoJSON(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(g); err != nil {
		s.Log.WithError(err).Error("encoding geojson")
	}
}

func (s *MapServer) legendHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "layer")
	var layer *Layer
	for _, l := range s.spec.layers {
		if l.Name == name {
			layer = l
			break
		}
	}
	if layer == nil {
		http.Error(w, MissingResourceError{Resource: name}.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := layer.writeLegend(w); err != nil {
		s.Log.WithError(err).WithField("layer", name).Error("writing legend")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>{{.Title}}</title>
	<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
	<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
	<style>html, body, #map {height: 100%; margin: 0;}</style>
</head>
<body>
<div id="map"></div>
<script>
	var map = L.map('map').setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
	L.tileLayer('{{.BaseTiles}}', {maxZoom: 18}).addTo(map);
	{{range .Layers}}
	L.tileLayer('/tiles/{{.}}/{z}/{x}/{y}.png', {maxZoom: 18, opacity: 0.7}).addTo(map);
	{{end}}
</script>
</body>
</html>
`))

func (s *MapServer) indexHandler(w http.ResponseWriter, r *http.Request) {
	lon, lat, zoom := s.view()
	var layers []string
	for _, l := range s.spec.layers {
		layers = append(layers, l.Name)
	}
	base := s.spec.BaseTiles
	if base == "" {
		base = DefaultBaseTiles
	}
	err := indexTmpl.Execute(w, struct {
		Title     string
		Lat, Lon  float64
		Zoom      int
		BaseTiles template.JS
		Layers    []string
	}{
		Title:     s.spec.Title,
		Lat:       lat,
		Lon:       lon,
		Zoom:      zoom,
		BaseTiles: template.JS(base),
		Layers:    layers,
	})
	if err != nil {
		s.Log.WithError(err).Error("rendering index page")
	}
}

// view picks a map center and zoom from the first layer's extent in
// longitude-latitude coordinates.
func (s *MapServer) view() (lon, lat float64, zoom int) {
	lon, lat, zoom = 0, 0, 2
	for _, l := range s.spec.layers {
		var b *geom.Bounds
		var srcSR *proj.SR
		switch {
		case l.Features != nil:
			b, srcSR = l.Features.Bounds(), l.Features.SR
		case l.Raster != nil:
			b, srcSR = l.Raster.Bounds(), l.Raster.SR
		}
		if b == nil || b.Empty() || srcSR == nil {
			continue
		}
		llSR, err := proj.Parse(LongLatProj)
		if err != nil {
			return
		}
		t, err := srcSR.NewTransform(llSR)
		if err != nil {
			return
		}
		g, err := b.Transform(t)
		if err != nil {
			return
		}
		bb := g.Bounds()
		lon = (bb.Min.X + bb.Max.X) / 2
		lat = (bb.Min.Y + bb.Max.Y) / 2
		zoom = 4
		return
	}
	return
}

// interactiveTmpl is the standalone document written by
// WriteInteractiveHTML, with the layer data embedded as GeoJSON so no
// server is needed.
var interactiveTmpl = template.Must(template.New("doc").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>{{.Title}}</title>
	<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
	<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
	<style>html, body, #map {height: 100%; margin: 0;}</style>
</head>
<body>
<div id="map"></div>
<script>
	var map = L.map('map').setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
	L.tileLayer('{{.BaseTiles}}', {maxZoom: 18}).addTo(map);
	{{range .Layers}}
	(function() {
		var colors = {{.Colors}};
		var i = 0;
		L.geoJSON({{.Data}}, {
			style: function() { return {color: '#000', weight: 0.5, fillColor: colors[i++], fillOpacity: 0.7}; },
			pointToLayer: function(f, latlng) {
				return L.circleMarker(latlng, {radius: 5, fillColor: colors[i++], fillOpacity: 0.9, weight: 0.5, color: '#000'});
			}
		}).addTo(map);
	})();
	{{end}}
</script>
</body>
</html>
`))

type htmlLayer struct {
	Data   template.JS
	Colors template.JS
}

// WriteInteractiveHTML writes a self-contained interactive document
// for the spec, embedding every layer as GeoJSON in longitude-latitude
// coordinates with precomputed class colors.
func (m *MapSpec) WriteInteractiveHTML(w io.Writer) error {
	var layers []htmlLayer
	var lon, lat float64
	var haveView bool

	for _, l := range m.layers {
		fc := l.Features
		if fc == nil && l.Raster != nil {
			fc = rasterFeatures(l.Raster)
		}
		if fc == nil {
			return fmt.Errorf("geomap: layer `%s` has no data source", l.Name)
		}
		if fc.SR != nil && fc.Proj4 != LongLatProj {
			var err error
			fc, err = Reproject(fc, LongLatProj)
			if err != nil {
				return err
			}
		}

		style := l.Style
		if style.Palette == nil && style.Fill == nil {
			style = DefaultStyle()
		}
		colors := make([]string, fc.Len())
		if l.Column != "" {
			vals, err := fc.Floats(l.Column)
			if err != nil {
				return err
			}
			cls, err := NewClassifier(vals, style.Scheme, style.Classes, style.Palette)
			if err != nil {
				return err
			}
			for i, v := range vals {
				c := cls.Color(v)
				colors[i] = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
			}
		} else {
			hex := "#3388ff"
			if style.Fill != nil {
				hex = fmt.Sprintf("#%02x%02x%02x", style.Fill.R, style.Fill.G, style.Fill.B)
			}
			for i := range colors {
				colors[i] = hex
			}
		}

		var cols []string
		if l.Column != "" {
			cols = []string{l.Column}
		}
		g, err := fc.ToGeoJSON(cols...)
		if err != nil {
			return err
		}
		// carto.GeoJSON leaves its feature list untagged, so marshal a
		// shim with the lowercase keys browsers expect.
		data, err := json.Marshal(struct {
			Type     string                  `json:"type"`
			Features []*carto.GeoJSONfeature `json:"features"`
		}{"FeatureCollection", g.Features})
		if err != nil {
			return fmt.Errorf("geomap: encoding layer `%s`: %v", l.Name, err)
		}
		colorJSON, err := json.Marshal(colors)
		if err != nil {
			return err
		}
		layers = append(layers, htmlLayer{
			Data:   template.JS(data),
			Colors: template.JS(colorJSON),
		})

		if !haveView {
			b := fc.Bounds()
			if !b.Empty() {
				lon = (b.Min.X + b.Max.X) / 2
				lat = (b.Min.Y + b.Max.Y) / 2
				haveView = true
			}
		}
	}

	base := m.BaseTiles
	if base == "" {
		base = DefaultBaseTiles
	}
	return interactiveTmpl.Execute(w, struct {
		Title     string
		Lat, Lon  float64
		Zoom      int
		BaseTiles template.JS
		Layers    []htmlLayer
	}{
		Title:     m.Title,
		Lat:       lat,
		Lon:       lon,
		Zoom:      4,
		BaseTiles: template.JS(base),
		Layers:    layers,
	})
}

// rasterFeatures converts a grid to one polygon feature per cell so it
// can be embedded in GeoJSON output.
func rasterFeatures(r *Raster) *FeatureCollection {
	fc := NewFeatureCollection("value")
	fc.Proj4, fc.SR = r.Proj4, r.SR
	for j := 0; j < r.Ny(); j++ {
		for i := 0; i < r.Nx(); i++ {
			fc.Append(r.CellPolygon(j, i), r.At(j, i))
		}
	}
	return fc
}
