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

import "fmt"

// MissingResourceError is returned when a named dataset or file path
// cannot be found.
type MissingResourceError struct {
	Resource string
}

func (e MissingResourceError) Error() string {
	return fmt.Sprintf("geomap: resource `%s` does not exist", e.Resource)
}

// ShapeMismatchError is returned when grid dimensions, resolutions, or
// attribute row counts are incompatible.
type ShapeMismatchError struct {
	Want, Got string
}

func (e ShapeMismatchError) Error() string {
	return fmt.Sprintf("geomap: shape mismatch: want %s but got %s", e.Want, e.Got)
}

// UnknownColumnError is returned when a requested attribute column does
// not exist in a feature collection or levels table.
type UnknownColumnError struct {
	Column string
}

func (e UnknownColumnError) Error() string {
	return fmt.Sprintf("geomap: unknown attribute column `%s`", e.Column)
}
