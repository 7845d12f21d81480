/*
 * doc.go, part of golattice.
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package lattice is the main package of the goLattice library. It provides lattice cells,
cell parameters, integer changes of basis and the reductions needed to tell apart the
14 Bravais lattices (the recognition itself lives in the bravais subpackage).



	**goLattice Capabilities**


    Builds cells from lattice vectors or from cell parameters (a, b, c, alpha, beta, gamma)
	and gets the cell parameters, metric tensor and volume of any cell.

    Compares cells independently of their orientation.

    Niggli-reduces cells, returning also the integer operation that maps the
	original basis onto the reduced one.

    Reduces any basis of 1 to 3 vectors with a greedy, recursive algorithm that
	gives short and nearly orthogonal vectors.

    Recognizes the Bravais lattice of any cell (package bravais) and builds, offline,
	the table of operations needed for that (package bravais/optable).

    The command golattice (cmd/golattice) gives access to the recognition and the
	table generation from the command line.

*/
package lattice
