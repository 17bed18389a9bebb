/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package hydroroute

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/ctessum/geom"
)

func init() {
	gob.Register(geom.Point{})
}

const snapshotVersion = "1"

type versionedBasin struct {
	Version string
	Basin   *Basin
}

// SaveBasin writes basin to w as a versioned gob stream (format
// description at https://golang.org/pkg/encoding/gob/), the same
// encoding the teacher's Save uses for its grid cells (save.go).
func SaveBasin(w io.Writer, basin *Basin) error {
	data := versionedBasin{Version: snapshotVersion, Basin: basin}
	if err := gob.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("hydroroute: saving basin snapshot: %w", err)
	}
	return nil
}

// LoadBasin reads a basin snapshot written by SaveBasin.
func LoadBasin(r io.Reader) (*Basin, error) {
	var data versionedBasin
	if err := gob.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("hydroroute: loading basin snapshot: %w", err)
	}
	if data.Version != snapshotVersion {
		return nil, fmt.Errorf("hydroroute: basin snapshot version %q is not compatible with required version %q", data.Version, snapshotVersion)
	}
	return data.Basin, nil
}
