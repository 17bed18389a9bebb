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

// canopyRateArrays holds the five per-patch surface source rates
// supplied by the canopy rate producer for the current sub-step
// (spec.md §4.3): rates per unit time, not depths, for water and each
// species. One slice per routed quantity, length N.
type canopyRateArrays struct {
	h2o     []float64
	species [4][]float64 // NO3, NH4, DON, DOC
}

func newCanopyRateArrays(n int) *canopyRateArrays {
	c := &canopyRateArrays{h2o: make([]float64, n)}
	for s := 0; s < 4; s++ {
		c.species[s] = make([]float64, n)
	}
	return c
}

func (c *canopyRateArrays) zero() {
	for i := range c.h2o {
		c.h2o[i] = 0
	}
	for s := 0; s < 4; s++ {
		for i := range c.species[s] {
			c.species[s][i] = 0
		}
	}
}

// CanopyProducer supplies per-patch surface source rates for the
// current sub-step. The core only consumes the five rate arrays; how
// they're computed (throughfall, drip, snowmelt) is an external
// collaborator's concern (spec.md §4.3) — a full per-stratum
// ecohydrology model is out of scope here. CanopyRates must zero all
// five arrays before superimposing its own contributions.
type CanopyProducer interface {
	CanopyRates(patches []*Patch, substep float64, out *canopyRateArrays)
}

// ZeroCanopy is a CanopyProducer that always emits zero rates, useful
// for tests isolating other components and for basins with no
// external canopy forcing.
type ZeroCanopy struct{}

// CanopyRates implements CanopyProducer by zeroing out.
func (ZeroCanopy) CanopyRates(_ []*Patch, _ float64, out *canopyRateArrays) {
	out.zero()
}

// SimpleCanopy is a minimal, representative (not authoritative)
// interception model: potential interception is bounded by canopy
// capacity minus current storage and by (1-gapFraction)*rate,
// matching the sketch in spec.md §4.3. It supplements the dropped
// per-stratum ecohydrology producer with just enough behavior to
// drive the core end-to-end in tests and the CLI.
type SimpleCanopy struct {
	// Rate is the incoming throughfall/snow rate per patch (m/s),
	// e.g. rainfall intensity before interception.
	Rate []float64

	// GapFraction is the fraction of each patch's canopy that is open
	// (non-vegetated), in [0,1]. A patch with GapFraction==1 passes
	// its full rate straight through as surface water.
	GapFraction []float64

	// Capacity is the canopy water-holding capacity per patch (m).
	Capacity []float64

	// stored tracks current canopy water storage per patch between
	// calls.
	stored []float64
}

// CanopyRates implements CanopyProducer.
func (c *SimpleCanopy) CanopyRates(patches []*Patch, substep float64, out *canopyRateArrays) {
	out.zero()
	if c.stored == nil {
		c.stored = make([]float64, len(patches))
	}
	for i := range patches {
		rate := c.Rate[i]
		gap := c.GapFraction[i]
		vegRate := (1 - gap) * rate
		capacity := c.Capacity[i] - c.stored[i]
		if substep > 0 {
			capacity /= substep // remaining storage as a rate over this sub-step
		}
		intercepted := vegRate
		if capacity < intercepted {
			intercepted = capacity
		}
		if intercepted < 0 {
			intercepted = 0
		}
		c.stored[i] += intercepted * substep
		throughfall := rate - intercepted
		out.h2o[i] = throughfall
	}
}
