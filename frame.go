/*
 * frame.go, part of sqlmd.
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

package sqlmd

import (
	"fmt"
	"strconv"
	"strings"
)

// iterTag marks the iteration index in the comment line of a frame.
const iterTag = "iter:"

// an atom line is "element x y z scalar vx vy vz", anything after that is ignored.
const atomFields = 8

// ParseFrame builds a frame from its lines: the header with the number of atoms,
// the comment line, which must contain the iteration tag (i.e. "iter:20"), and
// exactly as many atom lines as the header declares. iterOffset is added to the
// iteration index read from the comment. The comment of the returned frame is
// rebuilt as "iter:<index> <annotation>" (just "iter:<index>" if annotation is empty).
func ParseFrame(lines []string, iterOffset int, annotation string) (*Frame, error) {
	F, err := parseFrame(lines, iterOffset, annotation, 1)
	if err != nil {
		return nil, errDecorate(err, "ParseFrame", "")
	}
	return F, nil
}

// parseFrame does the work for ParseFrame. first is the line number of
// lines[0] in the input, used only for error reporting.
func parseFrame(lines []string, iterOffset int, annotation string, first int) (*Frame, error) {
	if len(lines) == 0 {
		return nil, newError(ErrMalformedHeader, first, "parseFrame", nil, "no header line")
	}
	natoms, err := parseHeader(lines[0])
	if err != nil {
		return nil, newError(ErrMalformedHeader, first, "parseFrame", err, "expected atom count, got %q", strings.TrimSpace(lines[0]))
	}
	if len(lines) < 2 {
		return nil, newError(ErrTruncatedFrame, first, "parseFrame", nil, "no comment line")
	}
	if len(lines)-2 != natoms {
		return nil, newError(ErrTruncatedFrame, first, "parseFrame", nil, "%d atoms declared but %d atom lines given", natoms, len(lines)-2)
	}
	iter, err := parseIter(lines[1])
	if err != nil {
		return nil, newError(ErrMissingIterationTag, first+1, "parseFrame", nil, "%v", err)
	}
	iter += iterOffset
	F := &Frame{
		iter:    iter,
		natoms:  natoms,
		comment: strings.TrimSpace(fmt.Sprintf("%s%d %s", iterTag, iter, annotation)),
		atoms:   make([]Atom, natoms),
	}
	for i, line := range lines[2:] {
		F.atoms[i], err = parseAtom(line)
		if err != nil {
			return nil, newError(ErrMalformedAtomLine, first+2+i, "parseFrame", nil, "%v", err)
		}
	}
	return F, nil
}

// parseHeader reads the number of atoms from a header line.
func parseHeader(line string) (int, error) {
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, err
	}
	if natoms < 0 {
		return 0, fmt.Errorf("negative atom count %d", natoms)
	}
	return natoms, nil
}

// parseIter extracts the integer that follows the iteration tag in a comment line.
func parseIter(comment string) (int, error) {
	idx := strings.Index(comment, iterTag)
	if idx < 0 {
		return 0, fmt.Errorf("no %q in comment line %q", iterTag, strings.TrimSpace(comment))
	}
	fields := strings.Fields(comment[idx+len(iterTag):])
	if len(fields) == 0 {
		return 0, fmt.Errorf("no value after %q", iterTag)
	}
	iter, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("iteration value %q is not an integer", fields[0])
	}
	return iter, nil
}

func parseAtom(line string) (Atom, error) {
	var A Atom
	fields := strings.Fields(line)
	if len(fields) < atomFields {
		return A, fmt.Errorf("%d fields found, at least %d expected", len(fields), atomFields)
	}
	var vals [atomFields - 1]float64
	var err error
	for i := range vals {
		vals[i], err = strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return A, fmt.Errorf("field %d (%q) is not a number", i+2, fields[i+1])
		}
	}
	A.element = fields[0]
	A.pos = [3]float64{vals[0], vals[1], vals[2]}
	A.scalar = vals[3]
	A.vec = [3]float64{vals[4], vals[5], vals[6]}
	return A, nil
}
