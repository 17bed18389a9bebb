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

// SinkStream drains surface water and species only at stream-labelled
// patches, leaving every other patch's surface pool untouched, and
// accumulates what it drained.
func TestSinkStreamDrainsOnlyStreamPatches(t *testing.T) {
	a := testPatch(0, 0, 10, 100)
	b := testPatch(10, 0, 0, 100)
	b.IsStream = true

	patches := []*Patch{a, b}
	sfcH2O := []float64{0.02, 0.05}
	var sfcSpecies [4][]float64
	sfcSpecies[0] = []float64{3, 4} // NO3
	for sp := 1; sp < 4; sp++ {
		sfcSpecies[sp] = make([]float64, len(patches))
	}

	s := &SinkStream{}
	s.StreamRouting(patches, 60, sfcH2O, sfcSpecies)

	if absDifferent(sfcH2O[0], 0.02, 1e-12) {
		t.Errorf("non-stream patch sfcH2O = %v, want unchanged at 0.02", sfcH2O[0])
	}
	if sfcH2O[1] != 0 {
		t.Errorf("stream patch sfcH2O = %v, want drained to 0", sfcH2O[1])
	}
	if absDifferent(sfcSpecies[0][0], 3, 1e-12) {
		t.Errorf("non-stream patch sfcSpecies[NO3] = %v, want unchanged at 3", sfcSpecies[0][0])
	}
	if sfcSpecies[0][1] != 0 {
		t.Errorf("stream patch sfcSpecies[NO3] = %v, want drained to 0", sfcSpecies[0][1])
	}

	if absDifferent(s.DrainedH2O, 0.05, 1e-12) {
		t.Errorf("DrainedH2O = %v, want %v", s.DrainedH2O, 0.05)
	}
	if absDifferent(s.DrainedSpecies[0], 4, 1e-12) {
		t.Errorf("DrainedSpecies[NO3] = %v, want %v", s.DrainedSpecies[0], 4)
	}
}
