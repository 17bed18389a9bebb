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

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// SurfInflow is one entry in a destination patch's surface inflow
// table: the source patch index and the static weight
// gam_in(R,m) = gammaNorm(S,R)*area(S)/area(R).
type SurfInflow struct {
	Src    int
	Weight float64
}

// SubInflow is one entry in a destination patch's subsurface inflow
// table. The weight is not static (it depends on the live water-table
// slope), so this only records which outflow edge at the source feeds
// this destination; sub_routing looks up the edge by EdgeIdx each
// sub-step.
type SubInflow struct {
	Src     int
	EdgeIdx int
}

// Topology holds the time-independent factors computed once per run:
// the dense index space, per-patch scalars, per-edge geometric
// factors, and the inverted inflow tables. It is built lazily on
// first Route call and never mutated afterward (spec.md §3
// Lifecycles). This is the "routing context object" spec.md §9 calls
// for, replacing the teacher's module-level globals initialized via a
// `num_patches == -9999` sentinel.
type Topology struct {
	N       int
	Patches []*Patch

	Psize  []float64
	Pscale []float64
	Sfcknl []float64
	Area   []float64

	SubOut  [][]Edge // per-source subsurface outflow edges
	SurfOut [][]Edge // per-source surface outflow edges (GammaNorm set)

	SurfIn [][]SurfInflow // per-destination surface inflow table
	SubIn  [][]SubInflow  // per-destination subsurface inflow table

	BasinArea float64

	// Flattened soil parameters, read-only after construction (spec.md
	// §9 "Dense-flat storage"): parallel columnar arrays instead of
	// per-patch heterogeneous records, so the inner loops in
	// sub_routing/sfc_routing/sub_vertical touch only slices.
	FieldCapacity []float64
	Retdep        []float64
	Ksat0         []float64
	KsatV         []float64
	MzV           []float64
	PorD          []float64
	Por0          []float64
	PsiAir        []float64
	DzSoil        []float64
	NSoil         []int
	Transmissivity [][]float64
}

// BuildTopology flattens basin into a dense index space, computes
// time-independent per-patch and per-edge factors, and inverts the
// outflow tables into inflow tables. It is a fatal configuration error
// (returned, not panicked, per SPEC_FULL.md §6.3) if any patch's
// fan-in exceeds MaxNeighbors or if an outflow edge references a patch
// not present in basin.
func BuildTopology(basin *Basin, stdScale float64, log *logrus.Logger) (*Topology, error) {
	n := len(basin.Patches)
	t := &Topology{
		N:       n,
		Patches: basin.Patches,
		Psize:   make([]float64, n),
		Pscale:  make([]float64, n),
		Sfcknl:  make([]float64, n),
		Area:    make([]float64, n),
		SubOut:  make([][]Edge, n),
		SurfOut: make([][]Edge, n),
		SurfIn:  make([][]SurfInflow, n),
		SubIn:   make([][]SubInflow, n),

		FieldCapacity:  make([]float64, n),
		Retdep:         make([]float64, n),
		Ksat0:          make([]float64, n),
		KsatV:          make([]float64, n),
		MzV:            make([]float64, n),
		PorD:           make([]float64, n),
		Por0:           make([]float64, n),
		PsiAir:         make([]float64, n),
		DzSoil:         make([]float64, n),
		NSoil:          make([]int, n),
		Transmissivity: make([][]float64, n),
	}

	// Attach a dense index to every patch by pointer identity in a
	// single pass, so that resolving a neighbor pointer to an index is
	// an O(1) map lookup rather than the teacher-adjacent source's
	// O(N) linear scan (spec.md §9, "Pointer-identity patch lookup").
	idx := make(map[*Patch]int, n)
	for i, p := range basin.Patches {
		p.index = i
		idx[p] = i
	}

	for i, p := range basin.Patches {
		t.Psize[i] = p.Psize()
		t.Pscale[i] = stdScale * p.Std
		t.Area[i] = p.Area
		t.Sfcknl[i] = math.Sqrt(math.Tan(p.SlopeMax)) / (p.MannN * t.Psize[i])

		t.FieldCapacity[i] = p.Soil.FieldCapacity
		t.Retdep[i] = p.Soil.Retdep
		t.Ksat0[i] = p.Soil.Ksat0
		t.KsatV[i] = p.Soil.KsatVertical
		t.MzV[i] = p.Soil.MzV
		t.PorD[i] = p.Soil.PorD
		t.Por0[i] = p.Soil.Por0
		t.PsiAir[i] = p.Soil.PsiAirEntry
		t.DzSoil[i] = p.Soil.DzSoil
		t.NSoil[i] = p.Soil.NSoil
		t.Transmissivity[i] = p.Soil.Transmissivity
	}
	t.BasinArea = floats.Sum(t.Area)

	// Surface outflow: normalize gamma(i,·) to sum 1, then build the
	// per-source edge list.
	for i, p := range basin.Patches {
		var gammaSum float64
		for _, nb := range p.SurfaceNeighbors {
			gammaSum += nb.Gamma
		}
		edges := make([]Edge, 0, len(p.SurfaceNeighbors))
		for _, nb := range p.SurfaceNeighbors {
			j, ok := idx[nb.Patch]
			if !ok {
				return nil, &TopologyError{Kind: "unresolved patch", Src: i}
			}
			var gammaNorm float64
			if gammaSum > zero {
				gammaNorm = nb.Gamma / gammaSum
			}
			edges = append(edges, Edge{Src: i, Dst: j, GammaNorm: gammaNorm})
		}
		t.SurfOut[i] = edges
	}

	// Subsurface outflow: classify axis-aligned vs. diagonal and
	// compute perimf and subdist.
	for i, p := range basin.Patches {
		edges := make([]Edge, 0, len(p.SubsurfaceNeighbors))
		for _, nb := range p.SubsurfaceNeighbors {
			j, ok := idx[nb.Patch]
			if !ok {
				return nil, &TopologyError{Kind: "unresolved patch", Src: i}
			}
			dx := p.Pos.X - nb.Patch.Pos.X
			dy := p.Pos.Y - nb.Patch.Pos.Y
			subdist := math.Hypot(dx, dy)
			areaRatio := p.Area / nb.Patch.Area
			var perimf float64
			diagonal := math.Abs(dx)+math.Abs(dy) < 1.1*subdist
			if diagonal {
				perimf = 0.5 * math.Sqrt(0.5) * areaRatio
			} else {
				perimf = 0.5 * areaRatio
			}
			edges = append(edges, Edge{
				Src: i, Dst: j,
				Perimf: perimf, Subdist: subdist, Diagonal: diagonal,
			})
		}
		t.SubOut[i] = edges
	}

	// Inflow inversion: walk every outflow edge and append to the
	// destination's inflow table. The source material's inner loop
	// breaks after the first append, silently dropping every
	// subsequent inbound edge at a shared destination; spec.md §9
	// names this a bug. We append every (S,j) without early exit.
	for i, edges := range t.SurfOut {
		for _, e := range edges {
			in := t.SurfIn[e.Dst]
			if len(in) >= MaxNeighbors {
				return nil, &TopologyError{Kind: "fan-in overflow", Dst: e.Dst}
			}
			weight := e.GammaNorm * t.Area[i] / t.Area[e.Dst]
			t.SurfIn[e.Dst] = append(in, SurfInflow{Src: i, Weight: weight})
		}
	}
	for i, edges := range t.SubOut {
		for ei, e := range edges {
			in := t.SubIn[e.Dst]
			if len(in) >= MaxNeighbors {
				return nil, &TopologyError{Kind: "fan-in overflow", Dst: e.Dst}
			}
			t.SubIn[e.Dst] = append(in, SubInflow{Src: i, EdgeIdx: ei})
		}
	}

	if log != nil {
		log.Debugf("hydroroute: topology built: %d patches, basin area %.3g m²", n, t.BasinArea)
	}
	return t, nil
}
