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

// Package geomaputil wires the geomap library into a command-line
// tool for inspecting and rendering geographic data.
package geomaputil

import (
	"fmt"
	"os"
	"strings"

	"github.com/BLMcCall/geomap"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives progress and diagnostic messages from the commands.
var Log = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to geomap.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "data",
			usage: `
              data specifies the vector data to work with: the path to a
              shapefile or GeoJSON file, an http or https URL to download
              one from, or the name of a built-in dataset.`,
			shorthand:  "d",
			defaultVal: "worldbounds",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "raster",
			usage: `
              raster specifies gridded data to work with: the path or URL
              of a NetCDF file, or the name of a built-in dataset. When
              set it is drawn in addition to (or instead of) the vector
              data.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "rasterlayer",
			usage: `
              rasterlayer names the variable to read from a multi-layer
              NetCDF file. The default is the first variable in the file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "column",
			usage: `
              column names the attribute whose values set the fill color
              of each feature. When empty, features are drawn with a
              uniform fill.`,
			shorthand:  "c",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "proj",
			usage: `
              proj gives a Proj4 specification to reproject the data to
              before rendering. When empty, the data's own reference is
              kept.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "scheme",
			usage: `
              scheme selects how attribute values are divided into color
              classes: quantile, equal, jenks, or pretty.`,
			defaultVal: "quantile",
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), facetsCmd.Flags(), animateCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "classes",
			usage: `
              classes sets the number of color classes.`,
			defaultVal: 5,
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), facetsCmd.Flags(), animateCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "title",
			usage: `
              title sets the map title.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "width",
			usage: `
              width sets the output image width in pixels.`,
			defaultVal: 800,
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), facetsCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is the file to write. The extension selects the
              format: .png for a static image, .html for a standalone
              interactive page, .gif for an animation, .xlsx for an
              attribute table.`,
			shorthand:  "o",
			defaultVal: "map.png",
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), facetsCmd.Flags(), animateCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "layerfile",
			usage: `
              layerfile is the path to a TOML file describing a
              multi-layer map. When set it replaces the --data, --raster,
              and --column options.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{renderCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "key",
			usage: `
              key names the attribute whose distinct values split the data
              into facet panels or animation frames.`,
			shorthand:  "k",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{facetsCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "values",
			usage: `
              values fixes the key values to facet or animate over. The
              default is every distinct value of the key column.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{facetsCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "rows",
			usage: `
              rows sets the number of rows in the facet panel grid. The
              default of 0 chooses a near-square layout.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{facetsCmd.Flags()},
		},
		{
			name: "delay",
			usage: `
              delay is the time between animation frames in hundredths of
              a second.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{animateCmd.Flags()},
		},
		{
			name: "addr",
			usage: `
              addr is the address to serve the interactive map at.`,
			defaultVal: "localhost:8080",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "basetiles",
			usage: `
              basetiles is the URL template for the base-map tile source
              underneath the data layers.`,
			defaultVal: geomap.DefaultBaseTiles,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), renderCmd.Flags()},
		},
		{
			name: "open",
			usage: `
              open launches the served map in the default browser.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GEOMAP")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(renderCmd)
	Root.AddCommand(facetsCmd)
	Root.AddCommand(animateCmd)
	Root.AddCommand(serveCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("geomap: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "geomap",
	Short: "Load, transform, and map geographic data.",
	Long: `geomap reads vector and gridded geographic data and renders it as
static, faceted, animated, or interactive maps.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GEOMAP_var' where 'var' is
the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of geomap.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("geomap v%s\n", geomap.Version)
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe a dataset",
	Long: `info prints the geometry type, spatial extent, and per-column value
summaries of the given data. If --output names an .xlsx file, the full
attribute table is written to it as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, err := vectorData()
		if err != nil {
			return err
		}
		printInfo(cmd, fc)
		if out := Cfg.GetString("output"); strings.HasSuffix(out, ".xlsx") {
			if err := geomap.WriteXLSX(fc, out); err != nil {
				return err
			}
			Log.WithField("file", out).Info("wrote attribute table")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw a map",
	Long: `render draws the data to the file named by --output. A .png
extension produces a static image and an .html extension produces a
standalone interactive page with the data embedded in it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := buildSpec()
		if err != nil {
			return err
		}
		out := Cfg.GetString("output")
		if strings.HasSuffix(out, ".html") {
			spec.Mode = geomap.ModeInteractive
		}
		w, err := os.Create(out)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := spec.Render(w); err != nil {
			return err
		}
		Log.WithField("file", out).Info("wrote map")
		return nil
	},
	DisableAutoGenTag: true,
}

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "Draw a panel of small multiples",
	Long: `facets splits the data by the distinct values of the --key column
and draws one map panel per value, all sharing a single color scale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := buildFacets()
		if err != nil {
			return err
		}
		out := Cfg.GetString("output")
		w, err := os.Create(out)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := f.RenderPanels(w); err != nil {
			return err
		}
		Log.WithField("file", out).Info("wrote facet panels")
		return nil
	},
	DisableAutoGenTag: true,
}

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Draw an animation",
	Long: `animate splits the data by the distinct values of the --key column
and writes one animation frame per value, in ascending order, to an
animated GIF.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := buildFacets()
		if err != nil {
			return err
		}
		out := Cfg.GetString("output")
		if !strings.HasSuffix(out, ".gif") {
			out = strings.TrimSuffix(out, ".png") + ".gif"
		}
		width := Cfg.GetInt("width")
		if err := f.Animate(out, width, width*3/4, Cfg.GetInt("delay")); err != nil {
			return err
		}
		Log.WithField("file", out).Info("wrote animation")
		return nil
	},
	DisableAutoGenTag: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an interactive map",
	Long: `serve renders the data as map tiles over a base map and serves a
pannable, zoomable page at --addr until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := buildSpec()
		if err != nil {
			return err
		}
		spec.Mode = geomap.ModeInteractive
		s, err := geomap.NewMapServer(spec)
		if err != nil {
			return err
		}
		s.Log = Log
		addr := Cfg.GetString("addr")
		if Cfg.GetBool("open") {
			if err := open.Run("http://" + addr); err != nil {
				Log.WithError(err).Warn("opening browser")
			}
		}
		return s.ListenAndServe(addr)
	},
	DisableAutoGenTag: true,
}

// printInfo writes a dataset description to the command output.
func printInfo(cmd *cobra.Command, fc *geomap.FeatureCollection) {
	b := fc.Bounds()
	cmd.Printf("features: %d\n", fc.Len())
	if !b.Empty() {
		cmd.Printf("extent: [%g, %g, %g, %g]\n", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}
	if fc.Proj4 != "" {
		cmd.Printf("projection: %s\n", fc.Proj4)
	}
	for _, s := range fc.Summarize() {
		if s.Numeric {
			cmd.Printf("%s: min %g, median %g, mean %g, max %g\n",
				s.Column, s.Min, s.Median, s.Mean, s.Max)
		} else {
			cmd.Printf("%s: %d distinct values\n", s.Column, s.Distinct)
		}
	}
}
