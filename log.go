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
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger returns a logrus logger configured per VerboseFlag. This
// generalizes the teacher's Log(w io.Writer) DomainManipulator
// (run.go): rather than a single free-text sink stitched into the
// calculation chain, each component takes the logger and emits at
// Debug level, which verbose gates.
func newLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	if verbose {
		l.Level = logrus.DebugLevel
	} else {
		l.Level = logrus.WarnLevel
	}
	return l
}
