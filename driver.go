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
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// workingState is the per-Route-call flat snapshot of mutable
// hydrologic state (spec.md §4.7 step 1): column totals, the surface
// pool, and the water-table elevation derived from them. It is
// rebuilt from the basin's patches at the start of every Route call
// and written back at the end; nothing outside a Route call observes
// it mid-flight.
type workingState struct {
	totH2O     []float64
	totSpecies [4][]float64 // NO3, NH4, DON, DOC

	sfcH2O     []float64
	sfcSpecies [4][]float64

	waterZ      []float64 // water-table elevation, m
	satDeficitZ []float64 // depth equivalent of field-capacity deficit, m
}

func newWorkingState(t *Topology) *workingState {
	s := &workingState{
		totH2O:      make([]float64, t.N),
		sfcH2O:      make([]float64, t.N),
		waterZ:      make([]float64, t.N),
		satDeficitZ: make([]float64, t.N),
	}
	for sp := 0; sp < 4; sp++ {
		s.totSpecies[sp] = make([]float64, t.N)
		s.sfcSpecies[sp] = make([]float64, t.N)
	}
	return s
}

// snapshot populates the working arrays from the topology's patches
// and derives the initial water-table elevation
// z − max(satDeficitZ, 0) (spec.md §4.7 step 1). Column water totals
// are derived from the stored deficit: totH2O = fieldCapacity −
// satDeficit.
func (s *workingState) snapshot(t *Topology) {
	for i, p := range t.Patches {
		s.totH2O[i] = t.FieldCapacity[i] - p.SatDeficit
		for sp := 0; sp < 4; sp++ {
			s.totSpecies[sp][i] = p.ColumnSpecies[sp]
			s.sfcSpecies[sp][i] = p.SfcSpecies[sp]
		}
		s.sfcH2O[i] = p.SfcH2O

		s.satDeficitZ[i] = p.SatDeficitZ
		deficit := p.SatDeficitZ
		if deficit < 0 {
			deficit = 0
		}
		s.waterZ[i] = p.Z - deficit
	}
}

// writeBack copies the final working arrays onto the basin's patches,
// closing out the Route call: sat_deficit = field_capacity − totH2O
// (spec.md §4.7 step 3). Each patch's write lock is held while its
// state is copied back.
func (s *workingState) writeBack(t *Topology) {
	for i, p := range t.Patches {
		p.Lock()
		p.SatDeficit = t.FieldCapacity[i] - s.totH2O[i]
		for sp := 0; sp < 4; sp++ {
			p.ColumnSpecies[sp] = s.totSpecies[sp][i]
			p.SfcSpecies[sp] = s.sfcSpecies[sp][i]
		}
		p.SfcH2O = s.sfcH2O[i]
		p.SatDeficitZ = s.satDeficitZ[i]
		p.Unlock()
	}
}

// RoutingContext bundles everything a Route call needs: the
// time-independent Topology, configuration, logging, the canopy and
// stream collaborators, and the reusable per-phase scratch arrays.
// It replaces the teacher's module-level globals guarded by a
// `num_patches == -9999` sentinel (framework.go) with an explicit,
// lazily-built value: build one with NewRoutingContext (the zero value
// has no Config or collaborators); its Topology is constructed on the
// first Route call and reused by every later call (spec.md §9).
type RoutingContext struct {
	Cfg    *Config
	Log    *logrus.Logger
	Canopy CanopyProducer
	Stream StreamRouter

	nprocs int

	once sync.Once
	topo *Topology

	subScratch *subScratch
	sfcScratch *sfcScratch
}

// NewRoutingContext builds a RoutingContext from a Config, defaulting
// the canopy and stream collaborators to no-ops and the logger to one
// constructed from Cfg.VerboseFlag.
func NewRoutingContext(cfg *Config) *RoutingContext {
	ctx := &RoutingContext{
		Cfg:    cfg,
		Log:    newLogger(cfg.VerboseFlag),
		Canopy: ZeroCanopy{},
		Stream: NoopStream{},
		nprocs: cfg.NumProcessors,
	}
	if ctx.nprocs < 1 {
		ctx.nprocs = defaultNprocs()
	}
	return ctx
}

// ensureTopology builds ctx.topo from basin on first use and reuses it
// on every subsequent call against the same RoutingContext, matching
// the teacher's lazy one-time setup idiom without a magic sentinel
// field (spec.md §9).
func (ctx *RoutingContext) ensureTopology(basin *Basin) error {
	var err error
	ctx.once.Do(func() {
		ctx.topo, err = BuildTopology(basin, ctx.Cfg.StdScale, ctx.Log)
		if err != nil {
			return
		}
		ctx.subScratch = newSubScratch(ctx.topo)
		ctx.sfcScratch = newSfcScratch(ctx.topo.N)
	})
	return err
}

// Route advances basin's hydrologic state by extstepSeconds, the
// external model coupling interval (spec.md §4.7). It repeatedly
// computes a Courant-stable coupling sub-step via sub_routing, then
// runs canopy, surface, stream, and vertical balancing across that
// sub-step, until the external step is exhausted to within Epsilon.
func (ctx *RoutingContext) Route(extstepSeconds float64, basin *Basin) error {
	if err := ctx.ensureTopology(basin); err != nil {
		return err
	}
	t := ctx.topo

	state := newWorkingState(t)
	state.snapshot(t)

	var massBefore float64
	if ctx.Log != nil {
		massBefore = floats.Sum(state.totH2O) + floats.Sum(state.sfcH2O)
	}

	can := newCanopyRateArrays(t.N)

	remaining := extstepSeconds
	for remaining > Epsilon {
		sub := ctx.subRouting(remaining, state)
		substep := sub.Substep

		forEachPatch(t.N, ctx.nprocs, func(i int) {
			state.totH2O[i] += sub.LatH2O[i]
			for sp := 0; sp < 4; sp++ {
				state.totSpecies[sp][i] += sub.LatSpecies[sp][i]
			}
		})

		ctx.Canopy.CanopyRates(t.Patches, substep, can)

		sfc := ctx.sfcRouting(substep, state, can)

		ctx.Stream.StreamRouting(t.Patches, substep, state.sfcH2O, state.sfcSpecies)

		ctx.subVertical(state, sfc)

		remaining -= substep
	}

	state.writeBack(t)
	if ctx.Log != nil {
		ctx.Log.Debugf("hydroroute: route: advanced %.6gs across %d patches", extstepSeconds, t.N)

		massAfter := floats.Sum(state.totH2O) + floats.Sum(state.sfcH2O)
		meanH2O, stdH2O := stat.MeanStdDev(state.totH2O, nil)
		ctx.Log.WithFields(logrus.Fields{
			"massDrift":    massAfter - massBefore,
			"meanColH2O":   meanH2O,
			"stdDevColH2O": stdH2O,
		}).Debug("hydroroute: route: mass-drift diagnostic")
	}
	return nil
}
