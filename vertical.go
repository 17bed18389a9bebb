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

import "math"

// subVertical merges this sub-step's infiltration into the column
// totals, splits off any field-capacity overflow back to the surface,
// and otherwise re-derives the water-table depth from the new column
// total (spec.md §4.6). It runs after sfc_routing and stream_routing,
// closing out a sub-step.
func (ctx *RoutingContext) subVertical(state *workingState, sfc *sfcRoutingResult) {
	t := ctx.topo

	forEachPatch(t.N, ctx.nprocs, func(i int) {
		state.totH2O[i] += sfc.InfH2O[i]
		for sp := 0; sp < 4; sp++ {
			state.totSpecies[sp][i] += sfc.InfSpecies[sp][i]
		}

		capH2O := t.FieldCapacity[i]
		totH2O := state.totH2O[i]
		if totH2O > capH2O && totH2O > zero {
			fac := (totH2O - capH2O) / totH2O
			state.sfcH2O[i] += fac * totH2O
			for sp := 0; sp < 4; sp++ {
				overflow := fac * state.totSpecies[sp][i]
				state.sfcSpecies[sp][i] += overflow
				state.totSpecies[sp][i] -= overflow
			}
			state.totH2O[i] = capH2O
			state.satDeficitZ[i] = 0
			state.waterZ[i] = t.Patches[i].Z
			return
		}

		z := ctx.computeZFinal(i, state.totH2O[i])
		state.satDeficitZ[i] = z
		state.waterZ[i] = t.Patches[i].Z - z
	})
}

// computeZFinal inverts the depth-integrated porosity profile to find
// the water-table depth z whose pore volume above it equals the
// current field-capacity deficit (spec.md §4.6, "external collaborator
// compute_z_final"). The profile has a closed form but not a closed-
// form inverse, so this bisects: monotonic and well-conditioned; 40
// iterations narrow the bracket to zMax/2^40 (about 1e-12 of zMax).
func (ctx *RoutingContext) computeZFinal(i int, totH2O float64) float64 {
	t := ctx.topo
	deficit := t.FieldCapacity[i] - totH2O
	if deficit <= zero {
		return 0
	}

	zMax := t.DzSoil[i] * float64(t.NSoil[i])
	if zMax <= 0 {
		zMax = 10
	}
	poreVolume := func(z float64) float64 {
		if t.PorD[i] < 999.9 {
			return t.PorD[i] * t.Por0[i] * (1 - math.Exp(-z/t.PorD[i]))
		}
		return t.Por0[i] * z
	}
	if poreVolume(zMax) <= deficit {
		return zMax
	}

	lo, hi := 0., zMax
	for iter := 0; iter < 40; iter++ {
		mid := 0.5 * (lo + hi)
		if poreVolume(mid) < deficit {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}
