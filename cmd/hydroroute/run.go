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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ctessum/hydroroute"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var extstep float64

func init() {
	runCmd.Flags().Float64Var(&extstep, "extstep", 3600, "external coupling step, in seconds")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one external coupling step over a basin snapshot.",
	Long: "run loads the basin snapshot named by the configuration's InputSnapshot,\n" +
		"advances it by --extstep seconds, and writes the result to OutputSnapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return labelErr(runRoute(extstep))
	},
}

func runRoute(extstepSeconds float64) error {
	if cfg.InputSnapshot == "" {
		return fmt.Errorf("hydroroute: run: configuration has no InputSnapshot")
	}
	in, err := os.Open(cfg.InputSnapshot)
	if err != nil {
		return fmt.Errorf("hydroroute: run: %w", err)
	}
	basin, err := hydroroute.LoadBasin(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("hydroroute: run: %w", err)
	}

	ctx := hydroroute.NewRoutingContext(cfg)
	if err := ctx.Route(extstepSeconds, basin); err != nil {
		var topoErr *hydroroute.TopologyError
		if errors.As(err, &topoErr) {
			// A bad basin topology is a fatal configuration problem,
			// not something a caller can recover from mid-run; the CLI
			// is the boundary that turns it into process termination.
			logrus.WithError(topoErr).Fatal("hydroroute: run: invalid basin topology")
		}
		return fmt.Errorf("hydroroute: run: %w", err)
	}

	if cfg.OutputSnapshot == "" {
		return fmt.Errorf("hydroroute: run: configuration has no OutputSnapshot")
	}
	out, err := os.Create(cfg.OutputSnapshot)
	if err != nil {
		return fmt.Errorf("hydroroute: run: %w", err)
	}
	defer out.Close()
	if err := hydroroute.SaveBasin(out, basin); err != nil {
		return fmt.Errorf("hydroroute: run: %w", err)
	}
	return nil
}

func labelErr(err error) error {
	if err != nil {
		return fmt.Errorf("ERROR: %v", err)
	}
	return nil
}
