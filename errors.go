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

import "fmt"

// TopologyError reports a fatal configuration problem discovered while
// building a Topology: fan-in overflow past MaxNeighbors, or an
// outflow edge referencing a patch that isn't in the basin. Per
// spec.md §7, these are not recoverable; BuildTopology returns one as
// an ordinary Go error so callers can log and terminate however suits
// them (the CLI in cmd/hydroroute calls logrus.Fatal on it).
type TopologyError struct {
	Kind string // "fan-in overflow" or "unresolved patch"
	Dst  int    // destination patch index, when Kind is "fan-in overflow"
	Src  int    // offending source patch index, when relevant
}

func (e *TopologyError) Error() string {
	switch e.Kind {
	case "fan-in overflow":
		return fmt.Sprintf("hydroroute: topology: patch %d exceeds MaxNeighbors (%d) inbound edges", e.Dst, MaxNeighbors)
	case "unresolved patch":
		return fmt.Sprintf("hydroroute: topology: outflow edge from patch %d references a patch not present in the basin", e.Src)
	default:
		return fmt.Sprintf("hydroroute: topology: %s", e.Kind)
	}
}
