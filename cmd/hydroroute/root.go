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
	"fmt"

	"github.com/ctessum/hydroroute"
	"github.com/spf13/cobra"
)

var configFile string

// cfg holds the configuration loaded from configFile by the root
// command's PersistentPreRunE, the way the teacher's RootCmd loads
// Config in its own PersistentPreRunE (inmap/cmd/root.go).
var cfg *hydroroute.Config

var rootCmd = &cobra.Command{
	Use:   "hydroroute",
	Short: "A coupled hydrological routing engine.",
	Long: "hydroroute routes lateral subsurface flow, vertical infiltration,\n" +
		"and kinematic-wave surface flow across a basin of patches.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = hydroroute.ReadConfigFile(configFile)
		if err != nil {
			return fmt.Errorf("hydroroute: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./hydroroute.toml", "configuration file location")
	rootCmd.AddCommand(versionCmd)
}

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hydroroute v%s\n", version)
	},
}
