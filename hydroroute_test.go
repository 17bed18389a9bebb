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
	"math"

	"github.com/ctessum/geom"
)

// absDifferent reports whether a and b differ by more than an
// absolute tolerance (adapted from the relative-tolerance `different`
// in the teacher's inmap_test.go: our quantities routinely cross
// zero, where a relative comparison is meaningless).
func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance
}

// testPatch builds a Patch with a flat soil profile and no neighbors
// yet; callers wire SurfaceNeighbors/SubsurfaceNeighbors afterward.
func testPatch(x, y, z, area float64) *Patch {
	return &Patch{
		Pos:      geom.Point{X: x, Y: y},
		Area:     area,
		Z:        z,
		SlopeMax: 0.3,
		MannN:    0.03,
		Std:      0,
		Soil: SoilProfile{
			NSoil:          10,
			DzSoil:         0.1,
			Depth:          1,
			KsatVertical:   1e-6,
			Ksat0:          0, // infiltration disabled unless a test overrides it
			MzV:            0.5,
			PorD:           0.5,
			Por0:           0.4,
			PsiAirEntry:    0.3,
			FieldCapacity:  1,
			Retdep:         0,
			Transmissivity: flatProfile(1e-4, 11),
		},
	}
}

// flatProfile returns a constant transmissivity lookup table, enough
// to exercise transmissivityAt without a sat-deficit-dependent curve.
func flatProfile(value float64, n int) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = value
	}
	return p
}

func chainEdge(from, to *Patch, gamma float64) {
	from.SurfaceNeighbors = append(from.SurfaceNeighbors, NeighborRef{Patch: to, Gamma: gamma})
	from.SubsurfaceNeighbors = append(from.SubsurfaceNeighbors, NeighborRef{Patch: to, Gamma: gamma})
}

// setColumnH2O sets a patch's initial column water total by deriving
// the stored SatDeficit from it, the inverse of what snapshot does.
func setColumnH2O(p *Patch, totH2O float64) {
	p.SatDeficit = p.Soil.FieldCapacity - totH2O
}

// newTestContext builds a RoutingContext and a populated workingState
// for basin, running single-threaded (nprocs=1) so test assertions
// don't need to reason about goroutine scheduling.
func newTestContext(t interface{ Fatalf(string, ...interface{}) }, basin *Basin) (*RoutingContext, *workingState) {
	topo, err := BuildTopology(basin, 1, nil)
	if err != nil {
		t.Fatalf("BuildTopology: %v", err)
	}
	ctx := &RoutingContext{
		Cfg:        &Config{StdScale: 1},
		Canopy:     ZeroCanopy{},
		Stream:     NoopStream{},
		nprocs:     1,
		topo:       topo,
		subScratch: newSubScratch(topo),
		sfcScratch: newSfcScratch(topo.N),
	}
	state := newWorkingState(topo)
	state.snapshot(topo)
	return ctx, state
}
