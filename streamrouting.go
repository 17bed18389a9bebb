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

// StreamRouter is the interface the core requires of the stream
// network collaborator (spec.md §4.5): given the current sub-step, it
// scavenges lateral inflow targeted at stream-labelled patches,
// applies baseflow accounting, and returns any overflow to the
// corresponding surface pools. The stream network itself is out of
// scope for this core; only the contract is specified.
type StreamRouter interface {
	// StreamRouting is called once per sub-step, after sfc_routing and
	// before sub_vertical, with write access to the surface pools of
	// stream-labelled patches only.
	StreamRouting(patches []*Patch, substep float64, sfcH2O []float64, sfcSpecies [4][]float64)
}

// NoopStream implements StreamRouter by doing nothing, the correct
// behavior for a basin with no stream edges (spec.md §4.5: "free to
// no-op this component if the basin has no stream edges").
type NoopStream struct{}

// StreamRouting implements StreamRouter as a no-op.
func (NoopStream) StreamRouting(_ []*Patch, _ float64, _ []float64, _ [4][]float64) {}

// SinkStream drains all surface water and species at stream-labelled
// patches into an accumulator, representing a basin whose streams are
// a perfect sink with no baseflow return. It supplements the stub with
// just enough behavior to exercise mass-balance tests that need a
// sink term (spec.md §3 invariant: edges to a sink are accounted for
// separately from the closed-basin conservation check).
type SinkStream struct {
	DrainedH2O     float64
	DrainedSpecies [4]float64
}

// StreamRouting implements StreamRouter by draining stream patches.
func (s *SinkStream) StreamRouting(patches []*Patch, _ float64, sfcH2O []float64, sfcSpecies [4][]float64) {
	for i, p := range patches {
		if !p.IsStream {
			continue
		}
		s.DrainedH2O += sfcH2O[i]
		sfcH2O[i] = 0
		for sp := 0; sp < 4; sp++ {
			s.DrainedSpecies[sp] += sfcSpecies[sp][i]
			sfcSpecies[sp][i] = 0
		}
	}
}
