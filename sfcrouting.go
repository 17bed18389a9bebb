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
	"sync"
)

// sfcScratch holds per-internal-iteration working arrays for
// sfc_routing: outflow rates owned by source, reused across the
// internal adaptive loop's iterations the way subScratch is reused
// across outer sub-steps.
type sfcScratch struct {
	outH2O     []float64
	outSpecies [4][]float64
}

func newSfcScratch(n int) *sfcScratch {
	s := &sfcScratch{outH2O: make([]float64, n)}
	for sp := 0; sp < 4; sp++ {
		s.outSpecies[sp] = make([]float64, n)
	}
	return s
}

// sfcRoutingResult accumulates the infiltration this call moved from
// the surface store into the column, summed across the internal
// adaptive loop's iterations, for sub_vertical to merge in.
type sfcRoutingResult struct {
	InfH2O     []float64
	InfSpecies [4][]float64
}

// sfcRouting runs the kinematic-wave overland flow model with its own
// inner adaptive timestep (spec.md §4.4), mutating state.sfcH2O and
// state.sfcSpecies in place and returning the infiltration that moved
// into the column this sub-step.
func (ctx *RoutingContext) sfcRouting(substep float64, state *workingState, can *canopyRateArrays) *sfcRoutingResult {
	t := ctx.topo
	n := t.N
	sc := ctx.sfcScratch

	res := &sfcRoutingResult{InfH2O: make([]float64, n)}
	for sp := 0; sp < 4; sp++ {
		res.InfSpecies[sp] = make([]float64, n)
	}

	tElapsed := 0.
	for tElapsed < substep-Epsilon {
		initCmax := Coumax / substep
		var cmaxMu sync.Mutex
		cmax := initCmax

		forEachPatch(n, ctx.nprocs, func(i int) {
			hh := state.sfcH2O[i] - t.Retdep[i]
			if hh <= 0 || len(t.SurfOut[i]) == 0 {
				// No downhill surface neighbor: the patch is a closed
				// boundary and self-loops rather than draining off the
				// basin (spec.md §4.4 S3).
				sc.outH2O[i] = 0
				for sp := 0; sp < 4; sp++ {
					sc.outSpecies[sp][i] = 0
				}
				return
			}
			vel := t.Sfcknl[i] * math.Pow(hh, twoThirds)
			sc.outH2O[i] = vel * hh
			if state.sfcH2O[i] <= 0 {
				for sp := 0; sp < 4; sp++ {
					sc.outSpecies[sp][i] = 0
				}
			} else {
				depthFrac := hh / state.sfcH2O[i]
				for sp := 0; sp < 4; sp++ {
					sc.outSpecies[sp][i] = vel * depthFrac * state.sfcSpecies[sp][i]
				}
			}
			if vel > 0 {
				cmaxMu.Lock()
				if vel > cmax {
					cmax = vel
				}
				cmaxMu.Unlock()
			}
		})

		dt := minF(Coumax/cmax, substep-tElapsed)

		forEachPatch(n, ctx.nprocs, func(i int) {
			var inH2O float64
			for _, in := range t.SurfIn[i] {
				inH2O += in.Weight * sc.outH2O[in.Src]
			}
			state.sfcH2O[i] += dt * (-sc.outH2O[i] + inH2O + can.h2o[i])

			for sp := 0; sp < 4; sp++ {
				var inX float64
				for _, in := range t.SurfIn[i] {
					inX += in.Weight * sc.outSpecies[sp][in.Src]
				}
				state.sfcSpecies[sp][i] += dt * (-sc.outSpecies[sp][i] + inX + can.species[sp][i])
			}
		})

		forEachPatch(n, ctx.nprocs, func(i int) {
			infH2O := ctx.infiltrate(i, dt, state)
			if infH2O <= 0 {
				return
			}
			res.InfH2O[i] += infH2O
			afac := infH2O / state.sfcH2O[i]
			state.sfcH2O[i] -= infH2O
			for sp := 0; sp < 4; sp++ {
				moved := afac * state.sfcSpecies[sp][i]
				res.InfSpecies[sp][i] += moved
				state.sfcSpecies[sp][i] -= moved
			}
		})

		tElapsed += dt
	}
	return res
}

// infiltrate computes the Green-Ampt sorptivity-based infiltration
// candidate for patch i over dt (spec.md §4.4), without mutating
// state; the caller applies the proportional species transfer.
func (ctx *RoutingContext) infiltrate(i int, dt float64, state *workingState) float64 {
	t := ctx.topo
	rootzS := t.Patches[i].RootzoneS
	if rootzS >= 1 || t.Ksat0[i] <= zero || state.sfcH2O[i] <= zero {
		return 0
	}
	z := state.satDeficitZ[i]
	if z <= zero {
		return 0
	}

	var ksat float64
	if t.MzV[i] > 0 {
		ksat = t.MzV[i] * t.Ksat0[i] * (1 - math.Exp(-z/t.MzV[i])) / z
	} else {
		ksat = t.Ksat0[i]
	}
	var poro float64
	if t.PorD[i] < 999.9 {
		poro = t.PorD[i] * t.Por0[i] * (1 - math.Exp(-z/t.PorD[i])) / z
	} else {
		poro = t.Por0[i]
	}

	theta := rootzS * poro
	psiF := 0.76 * t.PsiAir[i]
	sp := math.Sqrt(2 * ksat * psiF)

	intensity := state.sfcH2O[i] / dt
	var tp float64
	if intensity > ksat {
		tp = ksat * psiF * (poro - theta) / (intensity * (intensity - ksat))
	} else {
		tp = dt
	}

	var delta float64
	if dt <= tp {
		delta = t.KsatV[i] * state.sfcH2O[i]
	} else {
		cand := sp*math.Sqrt(dt-tp) + math.Pow(ksat, 1.5)/3 + tp*state.sfcH2O[i]
		delta = t.KsatV[i] * minF(cand, state.sfcH2O[i])
	}
	if delta < 0 {
		delta = 0
	}
	if delta > state.sfcH2O[i] {
		delta = state.sfcH2O[i]
	}
	return delta
}
