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

// Package hydroroute simulates coupled hydrological routing across a
// landscape discretized into patches within a basin: lateral subsurface
// flow, vertical infiltration and groundwater rebalancing, and
// two-dimensional kinematic-wave surface flow over an irregular
// drainage graph.
package hydroroute

import (
	"math"
	"sync"

	"github.com/ctessum/geom"
)

// Compile-time constants governing the routing engine.
const (
	// MaxNeighbors is the static bound on fan-in and fan-out for any
	// patch. Must stay a multiple of 4 for alignment; raising it
	// requires a recompile.
	MaxNeighbors = 16

	// CplMax is the upper bound, in seconds, on the subsurface-driven
	// coupling sub-step.
	CplMax = 1800.

	// Coumax is the maximum allowed Courant number.
	Coumax = 0.2

	// Epsilon is the outer-loop round-off tolerance, in seconds.
	Epsilon = 1e-5

	twoThirds = 2. / 3.
	deg2rad   = math.Pi / 180.

	zero = 1e-12 // guard threshold for "effectively zero" denominators
)

// Species numbers the five routed quantities, with H2O at 0. The
// four-wide species arrays in this package (SfcSpecies, ColumnSpecies
// and the working arrays) omit H2O and hold NO3 at index 0, so they
// are not indexed by these values.
type Species int

// The five routed quantities: water and the four dissolved species.
const (
	H2O Species = iota
	NO3
	NH4
	DON
	DOC
	numSpecies
)

// SoilProfile holds the time-independent soil parameters and
// transmissivity lookup table for a patch, as supplied by the (out of
// scope) patch/soil parameter loader.
type SoilProfile struct {
	NSoil         int       // number of vertical intervals
	DzSoil        float64   // interval size, m
	Depth         float64   // soil depth, m
	KsatVertical  float64   // Ksat_vertical, m/s
	Ksat0         float64   // surface saturated hydraulic conductivity, m/s
	MzV           float64   // decay coefficient for K, m
	PorD          float64   // decay coefficient for porosity, m
	Por0          float64   // surface porosity
	PsiAirEntry   float64   // air-entry tension, m
	FieldCapacity float64   // field capacity, m
	Retdep        float64   // detention-store capacity, m
	Transmissivity []float64 // per-interval transmissivity lookup table
}

// NeighborRef is a downhill-neighbor reference used by both the
// surface and subsurface drainage lists.
type NeighborRef struct {
	Patch  *Patch
	Gamma  float64 // surface exchange weight (ignored for subsurface neighbors)
}

// Patch is the smallest spatial unit of the simulation: a cell
// carrying geometry, soil parameters, and mutable hydrologic state.
type Patch struct {
	// Geometry.
	Pos        geom.Point // planar position (x, y)
	Area       float64    // planar area, m²
	SlopeMax   float64    // maximum surface slope, radians
	MannN      float64    // Manning roughness
	Perimeter  float64    // m
	Z          float64    // elevation, m
	Std        float64    // microtopographic standard deviation, m

	Soil SoilProfile

	// Hydrologic state (read/written by the driver).
	SfcH2O    float64    // detention-store water, m
	SfcSpecies [4]float64 // surface pool species: NO3, NH4, DON, DOC

	SatDeficit  float64 // field capacity minus column water, m
	SatDeficitZ float64 // depth equivalent of SatDeficit, m
	RootzoneS   float64 // root-zone saturation fraction S

	ColumnSpecies [4]float64 // column totals: NO3, NH4, DON, DOC

	// Drainage lists (built by the external ingest layer, consumed by
	// the topology builder).
	SurfaceNeighbors    []NeighborRef // ordered surface downhill neighbors
	SubsurfaceNeighbors []NeighborRef // ordered subsurface downhill neighbors

	// IsStream marks a patch as stream-labelled for the stream router.
	IsStream bool

	// index is this patch's dense index in the last basin it was
	// topology-built against. Attached at build time so lookups never
	// need a linear pointer scan (see topology.go).
	index int

	mu sync.RWMutex // guards concurrent reads of hydrologic state from outside the routing loop
}

// Lock / RLock expose the patch's mutex to callers (e.g. reporting
// code) that read state concurrently with a running Route call.
// Route takes the write lock only while copying its results back onto
// a patch; its inner loops work on flat arrays and never lock, since
// the inflow-matrix formulation guarantees each slot is written by
// exactly one worker per phase.
func (p *Patch) Lock()    { p.mu.Lock() }
func (p *Patch) Unlock()  { p.mu.Unlock() }
func (p *Patch) RLock()   { p.mu.RLock() }
func (p *Patch) RUnlock() { p.mu.RUnlock() }

// Psize is sqrt(area), the characteristic cell size used throughout
// the lateral and surface routers.
func (p *Patch) Psize() float64 { return math.Sqrt(p.Area) }

// Edge is an outflow edge from a source patch to a destination patch.
type Edge struct {
	Src, Dst int // dense patch indexes

	// Perimf is the geometric outflow factor for subsurface edges:
	// 0.5*areaSrc/areaDst for axis-aligned edges, 0.5*sqrt(0.5)*areaSrc/areaDst
	// for diagonals.
	Perimf float64

	// Subdist is the Euclidean separation between patch centers, used
	// by subsurface edges.
	Subdist float64

	// Diagonal records the axis-aligned vs. diagonal classification
	// made at topology-build time.
	Diagonal bool

	// GammaNorm is the surface exchange weight gamma(S,R) normalized
	// so that Σ_R GammaNorm(S,·) = 1. Unused for subsurface edges,
	// whose gamma is recomputed every sub-step from the live water
	// table slope.
	GammaNorm float64
}

// Basin is a collection of patches with no required routing order:
// the inflow-matrix formulation makes the lateral and surface updates
// order-independent.
type Basin struct {
	Patches []*Patch
}

func max(vals ...float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
