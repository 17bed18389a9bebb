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

// S6: Fan-in saturation. 17 patches all drain into one sink; the
// topology builder must refuse the input with a fatal error.
func TestBuildTopologyFanInOverflow(t *testing.T) {
	sink := testPatch(0, 0, 0, 100)
	patches := []*Patch{sink}
	for i := 0; i < MaxNeighbors+1; i++ {
		src := testPatch(float64(i+1), 0, 10, 100)
		chainEdge(src, sink, 1)
		patches = append(patches, src)
	}
	basin := &Basin{Patches: patches}

	_, err := BuildTopology(basin, 1, nil)
	if err == nil {
		t.Fatal("expected a fan-in overflow error, got nil")
	}
	topoErr, ok := err.(*TopologyError)
	if !ok {
		t.Fatalf("expected *TopologyError, got %T", err)
	}
	if topoErr.Kind != "fan-in overflow" {
		t.Errorf("Kind = %q, want %q", topoErr.Kind, "fan-in overflow")
	}
}

// A basin whose fan-in stays within MaxNeighbors builds successfully,
// and every patch ends up with the dense index BuildTopology assigned
// it (exercises the pointer-identity lookup, not a linear scan).
func TestBuildTopologyOK(t *testing.T) {
	sink := testPatch(0, 0, 0, 100)
	patches := []*Patch{sink}
	for i := 0; i < MaxNeighbors; i++ {
		src := testPatch(float64(i+1), 0, 10, 100)
		chainEdge(src, sink, 1)
		patches = append(patches, src)
	}
	basin := &Basin{Patches: patches}

	topo, err := BuildTopology(basin, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if topo.N != len(patches) {
		t.Fatalf("N = %d, want %d", topo.N, len(patches))
	}
	for i, p := range patches {
		if p.index != i {
			t.Errorf("patch %d: index = %d, want %d", i, p.index, i)
		}
	}
	if len(topo.SurfIn[0]) != MaxNeighbors {
		t.Errorf("sink surface inflow count = %d, want %d", len(topo.SurfIn[0]), MaxNeighbors)
	}
	if len(topo.SubIn[0]) != MaxNeighbors {
		t.Errorf("sink subsurface inflow count = %d, want %d", len(topo.SubIn[0]), MaxNeighbors)
	}
}

// An edge to a patch pointer absent from the basin is a configuration
// error, not a panic.
func TestBuildTopologyUnresolvedPatch(t *testing.T) {
	a := testPatch(0, 0, 10, 100)
	stranger := testPatch(1, 0, 0, 100)
	chainEdge(a, stranger, 1)
	basin := &Basin{Patches: []*Patch{a}}

	_, err := BuildTopology(basin, 1, nil)
	if err == nil {
		t.Fatal("expected an unresolved-patch error, got nil")
	}
	topoErr, ok := err.(*TopologyError)
	if !ok || topoErr.Kind != "unresolved patch" {
		t.Fatalf("got %v, want a TopologyError of kind \"unresolved patch\"", err)
	}
}
