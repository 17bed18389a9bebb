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

// S3: surface sheet flow, open chain of 3 patches, identical
// parameters, initial storage only on the uphill patch. After one
// sub-step, mass has migrated monotonically downhill with the total
// sum conserved (no infiltration, no stream sink, no canopy input).
func TestSfcRoutingOpenChain(t *testing.T) {
	const tstep = 600.

	p := make([]*Patch, 3)
	p[0] = testPatch(0, 0, 10, 100)
	p[1] = testPatch(10, 0, 5, 100)
	p[2] = testPatch(20, 0, 0, 100)
	chainEdge(p[0], p[1], 1)
	chainEdge(p[1], p[2], 1)

	basin := &Basin{Patches: p}
	ctx, state := newTestContext(t, basin)
	state.sfcH2O[0] = 0.05

	can := newCanopyRateArrays(len(p))

	before := state.sfcH2O[0] + state.sfcH2O[1] + state.sfcH2O[2]
	ctx.sfcRouting(tstep, state, can)
	after := state.sfcH2O[0] + state.sfcH2O[1] + state.sfcH2O[2]

	if absDifferent(before, after, 1e-9) {
		t.Errorf("total sfcH2O = %v after routing, want %v (conserved, no sink)", after, before)
	}
	if state.sfcH2O[0] >= 0.05 {
		t.Errorf("sfcH2O[0] = %v, want strictly less than the initial 0.05 (water left the uphill patch)", state.sfcH2O[0])
	}
	if state.sfcH2O[2] <= 0 {
		t.Errorf("sfcH2O[2] = %v, want > 0 (water reached the downhill end of the chain)", state.sfcH2O[2])
	}
}

// S4: ponding → infiltration. Verify infH2O > 0, the surface store
// decreases by exactly infH2O, and species transfer proportionally at
// ratio infH2O/sfcH2O_before.
func TestSfcRoutingInfiltration(t *testing.T) {
	const tstep = 600.

	a := testPatch(0, 0, 0, 100)
	a.Soil.Retdep = 0
	a.Soil.Ksat0 = 1e-5
	a.Soil.MzV = 0.5
	a.Soil.Por0 = 0.4
	a.Soil.PorD = 0.5
	a.Soil.PsiAirEntry = 0.3
	a.Soil.KsatVertical = 1e-5
	a.RootzoneS = 0.3

	basin := &Basin{Patches: []*Patch{a}}
	ctx, state := newTestContext(t, basin)
	state.sfcH2O[0] = 0.02
	state.satDeficitZ[0] = 1 // well above zero, so infiltration isn't capped by a saturated column
	const sfcBefore = 0.02
	state.sfcSpecies[0][0] = 4. // NO3, arbitrary nonzero mass to track the transfer ratio

	can := newCanopyRateArrays(1)
	res := ctx.sfcRouting(tstep, state, can)

	if res.InfH2O[0] <= 0 {
		t.Fatalf("InfH2O[0] = %v, want > 0 (ponded water should infiltrate)", res.InfH2O[0])
	}
	gotSfc := state.sfcH2O[0]
	wantSfc := sfcBefore - res.InfH2O[0]
	if absDifferent(gotSfc, wantSfc, 1e-9) {
		t.Errorf("sfcH2O after = %v, want %v (sfcH2O_before - infH2O)", gotSfc, wantSfc)
	}

	wantRatio := res.InfH2O[0] / sfcBefore
	gotRatio := res.InfSpecies[0][0] / 4.
	if absDifferent(gotRatio, wantRatio, 1e-6) {
		t.Errorf("species transfer ratio = %v, want %v (= infH2O/sfcH2O_before)", gotRatio, wantRatio)
	}
}

// With infiltration disabled (Ksat0 == 0, the testPatch default),
// infiltrate must always return zero regardless of ponding.
func TestInfiltrateDisabled(t *testing.T) {
	a := testPatch(0, 0, 0, 100)
	basin := &Basin{Patches: []*Patch{a}}
	ctx, state := newTestContext(t, basin)
	state.sfcH2O[0] = 1
	state.satDeficitZ[0] = 1

	if got := ctx.infiltrate(0, 600, state); got != 0 {
		t.Errorf("infiltrate with Ksat0=0 = %v, want 0", got)
	}
}
