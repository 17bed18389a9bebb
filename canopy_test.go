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

import "testing"

// A fully open patch (GapFraction 1) passes its whole rate straight
// through as throughfall, since no canopy intercepts it.
func TestSimpleCanopyFullyOpenPassesThrough(t *testing.T) {
	patches := []*Patch{testPatch(0, 0, 0, 100)}
	c := &SimpleCanopy{
		Rate:        []float64{1e-5},
		GapFraction: []float64{1},
		Capacity:    []float64{0.01},
	}
	out := newCanopyRateArrays(1)
	c.CanopyRates(patches, 60, out)

	if absDifferent(out.h2o[0], 1e-5, 1e-12) {
		t.Errorf("h2o = %v, want %v (fully open canopy intercepts nothing)", out.h2o[0], 1e-5)
	}
}

// A closed canopy (GapFraction 0) intercepts up to its remaining
// capacity and passes nothing through until that capacity fills, at
// which point throughfall rises to match the incoming rate.
func TestSimpleCanopyClosedFillsThenOverflows(t *testing.T) {
	patches := []*Patch{testPatch(0, 0, 0, 100)}
	c := &SimpleCanopy{
		Rate:        []float64{1e-4},
		GapFraction: []float64{0},
		Capacity:    []float64{1e-3},
	}
	out := newCanopyRateArrays(1)

	// First sub-step: canopy has full capacity available, so it
	// intercepts the whole rate and throughfall is zero.
	c.CanopyRates(patches, 1, out)
	if absDifferent(out.h2o[0], 0, 1e-12) {
		t.Errorf("step 1 h2o = %v, want 0 (canopy still has capacity)", out.h2o[0])
	}

	// Drive the canopy to saturation, then it can intercept no more:
	// throughfall should equal the full incoming rate.
	for i := 0; i < 20; i++ {
		c.CanopyRates(patches, 1, out)
	}
	if absDifferent(out.h2o[0], 1e-4, 1e-12) {
		t.Errorf("saturated h2o = %v, want %v (canopy at capacity passes rate through)", out.h2o[0], 1e-4)
	}
}
