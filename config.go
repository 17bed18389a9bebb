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
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the driver configuration recognized by Route (spec.md
// §6), plus the minimal I/O knobs needed to drive the engine from the
// CLI in cmd/hydroroute. Loaded with BurntSushi/toml, the same library
// the teacher uses in inmap/cmd/config.go.
type Config struct {
	// VerboseFlag controls diagnostic emission only; it has no effect
	// on numerics.
	VerboseFlag bool

	// StdScale is the scalar multiplier applied to each patch's
	// microtopographic standard deviation, widening or narrowing the
	// transmissivity quadrature.
	StdScale float64

	// NumProcessors overrides GOMAXPROCS for the routing loops if > 0.
	NumProcessors int

	// InputSnapshot and OutputSnapshot are gob-encoded Basin snapshots
	// read/written by the `hydroroute run` CLI command. Ingestion of
	// real patch/soil parameters remains out of scope for the core;
	// this is only the interchange format for exercising the CLI.
	// Environment variables in both paths are expanded on read.
	InputSnapshot  string
	OutputSnapshot string
}

// ReadConfigFile reads and parses a TOML configuration file, mirroring
// the teacher's ReadConfigFile (inmap/cmd/config.go).
func ReadConfigFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("hydroroute: opening configuration file %q: %w", filename, err)
	}
	defer f.Close()

	cfg := new(Config)
	if _, err := toml.DecodeReader(f, cfg); err != nil {
		return nil, fmt.Errorf("hydroroute: parsing configuration file %q: %w", filename, err)
	}
	if cfg.StdScale == 0 {
		cfg.StdScale = 1.
	}
	cfg.InputSnapshot = os.ExpandEnv(cfg.InputSnapshot)
	cfg.OutputSnapshot = os.ExpandEnv(cfg.OutputSnapshot)
	return cfg, nil
}
