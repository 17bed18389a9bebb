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

// gaussHermiteNodes and gaussHermiteWeights are a 9-point
// Gauss-Hermite-style quadrature over the standard normal
// distribution: Σ_m gaussHermiteWeights[m]·f(gaussHermiteNodes[m])
// approximates E[f(X)] for X ~ N(0,1). Used by the subsurface router
// to integrate the transmissivity profile over the distribution of
// sat deficit implied by a patch's microtopographic standard
// deviation (§4.2).
var (
	gaussHermiteNodes = [9]float64{
		-4.512745863, -3.205429577, -2.076847978, -1.023255468, 0,
		1.023255468, 2.076847978, 3.205429577, 4.512745863,
	}
	gaussHermiteWeights = [9]float64{
		0.0000223458, 0.002789141, 0.049916407, 0.244097503, 0.406349206,
		0.244097503, 0.049916407, 0.002789141, 0.0000223458,
	}
)
