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
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if the input is an existing local file. If it
// is not, and it is an http or https URL, the file is downloaded to a
// temporary directory and the path to the downloaded copy is returned.
// For shapefiles, all sibling files are downloaded and the path to the
// file with the ".shp" extension is returned.
func maybeDownload(path string, log *logrus.Logger) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(path, log)
	}

	return path, nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file, retrying transient failures with
// exponential backoff.
func downloadHTTP(path string, log *logrus.Logger) (string, error) {
	dir, err := ioutil.TempDir("", "geomap")
	if err != nil {
		return "", fmt.Errorf("geomaputil: creating temporary download directory: %v", err)
	}

	fnames := expandShp(path)
	for _, fname := range fnames {
		if err := fetchFile(fname, filepath.Join(dir, filepath.Base(fname)), log); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

func fetchFile(url, dst string, log *logrus.Logger) error {
	w, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("geomaputil: creating file for download: %v", err)
	}
	defer w.Close()

	return backoff.RetryNotify(
		func() error {
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("geomaputil: downloading %s: %s", url, resp.Status)
			}
			if err := w.Truncate(0); err != nil {
				return err
			}
			if _, err := w.Seek(0, io.SeekStart); err != nil {
				return err
			}
			_, err = io.Copy(w, resp.Body)
			return err
		},
		backoff.NewExponentialBackOff(),
		func(err error, d time.Duration) {
			log.WithError(err).Warnf("download failed, retrying in %v", d)
		},
	)
}

// expandShp returns the given file plus the associated [.dbf, .shx,
// .prj] files if the given file has the .shp extension, and returns
// the given file alone otherwise.
func expandShp(filename string) []string {
	o := []string{filename}
	if filepath.Ext(filename) != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}
