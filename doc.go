/*
 * doc.go, part of sqlmd.
 *
 * Copyright 2026 The sqlmd authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*
Package sqlmd reads molecular dynamics trajectories in the extended XYZ
format, where each atom line carries, besides the element and the
cartesian coordinates, a scalar property and a vector property:

	<number of atoms>
	iter:<step> [anything]
	<element> <x> <y> <z> <scalar> <vx> <vy> <vz>
	...

Frames follow each other with no separator, each one declaring its own
number of atoms. The whole file is read into memory, as a Trajectory.

The subpackages take it from there: store puts the atoms in an SQLite
database, histo bins their positions in 2D histograms and densplot
draws those as log-scaled density maps. The sqlmd command ties them together.
*/
package sqlmd
