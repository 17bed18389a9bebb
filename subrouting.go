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
	"runtime"
	"sync"
)

// subScratch holds the per-sub-step working arrays for sub_routing.
// Its lifetime is one sub-step (spec.md §3 Lifecycles), but the
// backing slices are allocated once per RoutingContext and reused,
// the way the teacher reuses its Calculations() WaitGroup rather than
// constructing one per call.
type subScratch struct {
	t     []float64   // transmissivity at the water table, per patch
	wsum  []float64   // Σ per-patch outflow rates
	gsum  []float64   // Σ per-patch slopes
	dHdt   [][]float64 // per source, per outflow edge: dH2O/dt(i→k)
	slope  [][]float64 // per source, per outflow edge: slope(i,k)
	rtefac [][]float64 // per source, per outflow edge: rtefac(i,k)
}

func newSubScratch(t *Topology) *subScratch {
	s := &subScratch{
		t:      make([]float64, t.N),
		wsum:   make([]float64, t.N),
		gsum:   make([]float64, t.N),
		dHdt:   make([][]float64, t.N),
		slope:  make([][]float64, t.N),
		rtefac: make([][]float64, t.N),
	}
	for i := range t.SubOut {
		n := len(t.SubOut[i])
		s.dHdt[i] = make([]float64, n)
		s.slope[i] = make([]float64, n)
		s.rtefac[i] = make([]float64, n)
	}
	return s
}

// forEachPatch runs f(i) concurrently across [0,n), partitioning the
// index space by worker the way the teacher's Calculations (run.go)
// does: `for ii := pp; ii < n; ii += nprocs`. Each call owns disjoint
// indexes, so no locking is needed beyond whatever f does internally
// (e.g. a reduction).
func forEachPatch(n, nprocs int, f func(i int)) {
	if nprocs < 1 {
		nprocs = 1
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < n; ii += nprocs {
				f(ii)
			}
		}(pp)
	}
	wg.Wait()
}

// transmissivityAt evaluates the transmissivity profile at a patch's
// current sat deficit, integrated over the Gauss-Hermite quadrature of
// width pscale when pscale > 0 (spec.md §4.2 step 1).
func transmissivityAt(profile []float64, dzSoil float64, nsoil int, satDeficit, pscale float64) float64 {
	if len(profile) == 0 {
		return 0
	}
	idxAt := func(sd float64) int {
		i := int(math.Round(sd / dzSoil))
		return clampInt(i, 0, nsoil)
	}
	if pscale <= 0 {
		i := clampInt(idxAt(satDeficit), 0, len(profile)-1)
		return profile[i]
	}
	var tt float64
	for m := 0; m < 9; m++ {
		i := idxAt(satDeficit + gaussHermiteNodes[m]*pscale)
		i = clampInt(i, 0, len(profile)-1)
		tt += gaussHermiteWeights[m] * profile[i]
	}
	return tt
}

// subRoutingResult carries the per-patch lateral deltas and the
// Courant-stable sub-step emitted by a single sub_routing call.
type subRoutingResult struct {
	Substep  float64
	LatH2O   []float64
	LatSpecies [4][]float64 // NO3, NH4, DON, DOC
}

// subRouting computes the Courant-stable coupling sub-step and the
// per-patch lateral deltas for water and each species (spec.md §4.2).
// state holds the current column water/species totals and the
// current water-table elevation (waterZ); both are read-only here.
func (ctx *RoutingContext) subRouting(tstep float64, state *workingState) *subRoutingResult {
	t := ctx.topo
	n := t.N
	sc := ctx.subScratch

	for i := 0; i < n; i++ {
		satDeficit := t.FieldCapacity[i] - state.totH2O[i]
		sc.t[i] = transmissivityAt(t.Transmissivity[i], t.DzSoil[i], t.NSoil[i], satDeficit, t.Pscale[i])
	}

	initCmax := Coumax / minF(tstep, CplMax)
	var cmaxMu sync.Mutex
	cmax := initCmax

	forEachPatch(n, ctx.nprocs, func(i int) {
		var wsum, gsum, localMax float64
		edges := t.SubOut[i]
		for ei, e := range edges {
			slope := (state.waterZ[i] - state.waterZ[e.Dst]) / e.Subdist
			if slope <= 0 {
				sc.dHdt[i][ei] = 0
				sc.slope[i][ei] = 0
				continue
			}
			vel := slope * sc.t[i] / t.Psize[i]
			dHdt := e.Perimf * 0.5 * (state.waterZ[i] + state.waterZ[e.Dst]) * vel
			sc.dHdt[i][ei] = dHdt
			sc.slope[i][ei] = slope
			wsum += dHdt
			gsum += slope
			if vel > localMax {
				localMax = vel
			}
		}
		sc.wsum[i] = wsum
		sc.gsum[i] = gsum
		if localMax > 0 {
			cmaxMu.Lock()
			if localMax > cmax {
				cmax = localMax
			}
			cmaxMu.Unlock()
		}
	})

	dt := minF(Coumax/cmax, tstep)

	// Per-patch leaving fractions and per-edge rtefac, owned by
	// source (depends only on source-local quantities).
	forEachPatch(n, ctx.nprocs, func(i int) {
		totH2O := state.totH2O[i]
		edges := t.SubOut[i]
		if totH2O <= zero || sc.gsum[i] <= zero {
			for ei := range edges {
				sc.rtefac[i][ei] = 0
			}
			return
		}
		for ei := range edges {
			gamma := sc.slope[i][ei] / sc.gsum[i]
			sc.rtefac[i][ei] = (dt / totH2O) * gamma * sc.dHdt[i][ei]
		}
	})

	res := &subRoutingResult{
		Substep: dt,
		LatH2O:  make([]float64, n),
	}
	for s := 0; s < 4; s++ {
		res.LatSpecies[s] = make([]float64, n)
	}

	// State update, owned by destination: each worker writes only the
	// indexes it's handed, reading neighbor values through the
	// pre-built inflow table. This is the race-free inflow-matrix
	// update spec.md §9 calls the central correctness invariant.
	forEachPatch(n, ctx.nprocs, func(i int) {
		var inH2O float64
		for _, in := range t.SubIn[i] {
			inH2O += sc.dHdt[in.Src][in.EdgeIdx] * dt
		}
		res.LatH2O[i] = -sc.wsum[i]*dt + inH2O

		totH2O := state.totH2O[i]
		var outfac float64
		if totH2O > zero {
			outfac = dt * sc.wsum[i] / totH2O
		}
		for s := 0; s < 4; s++ {
			var inX float64
			for _, in := range t.SubIn[i] {
				inX += sc.rtefac[in.Src][in.EdgeIdx] * state.totSpecies[s][in.Src]
			}
			res.LatSpecies[s][i] = -outfac*state.totSpecies[s][i] + inX
		}
	})

	return res
}

func defaultNprocs() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}
