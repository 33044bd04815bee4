/*
 * atom.go, part of sqlmd.
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
	"gonum.org/v1/gonum/mat"
)

// Atom is one atom record of a frame: an element label, a position,
// a scalar property (usually the charge) and a vector property (usually
// the velocity). Atoms are values and can't be changed once built.
type Atom struct {
	element string
	pos     [3]float64
	scalar  float64
	vec     [3]float64
}

// NewAtom returns an Atom with the given data.
func NewAtom(element string, pos [3]float64, scalar float64, vec [3]float64) Atom {
	return Atom{element: element, pos: pos, scalar: scalar, vec: vec}
}

// Element returns the element label, exactly as it appeared in the file.
func (A Atom) Element() string { return A.element }

// Pos returns the cartesian coordinates of the atom.
func (A Atom) Pos() [3]float64 { return A.pos }

func (A Atom) X() float64 { return A.pos[0] }

func (A Atom) Y() float64 { return A.pos[1] }

func (A Atom) Z() float64 { return A.pos[2] }

// Scalar returns the scalar property of the atom.
func (A Atom) Scalar() float64 { return A.scalar }

// Vec returns the vector property of the atom.
func (A Atom) Vec() [3]float64 { return A.vec }

// Frame is one snapshot of a trajectory.
type Frame struct {
	iter    int
	natoms  int
	comment string
	atoms   []Atom
}

// Iter returns the iteration (simulation step) index of the frame.
func (F *Frame) Iter() int { return F.iter }

// Len returns the number of atoms in the frame.
func (F *Frame) Len() int { return F.natoms }

// Comment returns the rebuilt comment line of the frame, which always
// starts with "iter:<Iter()>".
func (F *Frame) Comment() string { return F.comment }

// Atom returns the i-th atom of the frame. It panics if i is out of range.
func (F *Frame) Atom(i int) Atom { return F.atoms[i] }

// Atoms returns a copy of the atoms in the frame, in file order.
func (F *Frame) Atoms() []Atom {
	ret := make([]Atom, len(F.atoms))
	copy(ret, F.atoms)
	return ret
}

// Coords returns the positions of the atoms in the frame as a Nx3 matrix.
// The matrix is a new one, changing it doesn't affect the frame.
// Returns nil for a frame without atoms, as gonum doesn't allow empty matrices.
func (F *Frame) Coords() *mat.Dense {
	if F.natoms == 0 {
		return nil
	}
	c := make([]float64, 0, 3*F.natoms)
	for _, a := range F.atoms {
		c = append(c, a.pos[0], a.pos[1], a.pos[2])
	}
	return mat.NewDense(F.natoms, 3, c)
}

// Trajectory is an ordered sequence of frames. The order is that of the
// file, which is also the order in simulation time.
type Trajectory struct {
	frames []*Frame
}

// Len returns the number of frames in the trajectory.
func (T *Trajectory) Len() int { return len(T.frames) }

// Frame returns the i-th frame of the trajectory. It panics if i is out of range.
func (T *Trajectory) Frame(i int) *Frame { return T.frames[i] }

// Frames returns a slice with the frames of the trajectory. The frames
// are shared, the slice is not.
func (T *Trajectory) Frames() []*Frame {
	ret := make([]*Frame, len(T.frames))
	copy(ret, T.frames)
	return ret
}

// LastIter returns the iteration index of the last frame, or -1
// if the trajectory is empty. Useful to obtain the offset needed
// to read a trajectory that continues this one.
func (T *Trajectory) LastIter() int {
	if len(T.frames) == 0 {
		return -1
	}
	return T.frames[len(T.frames)-1].iter
}

// Elements returns the distinct element labels in the trajectory,
// in the order in which they first appear.
func (T *Trajectory) Elements() []string {
	seen := make(map[string]bool)
	ret := make([]string, 0)
	for _, f := range T.frames {
		for _, a := range f.atoms {
			if !seen[a.element] {
				seen[a.element] = true
				ret = append(ret, a.element)
			}
		}
	}
	return ret
}

// XY returns the x and y coordinates of all the atoms with the
// given element label, over all frames. If element is the empty
// string, all atoms are considered.
func (T *Trajectory) XY(element string) (xs, ys []float64) {
	xs = make([]float64, 0)
	ys = make([]float64, 0)
	for _, f := range T.frames {
		for _, a := range f.atoms {
			if element != "" && a.element != element {
				continue
			}
			xs = append(xs, a.pos[0])
			ys = append(ys, a.pos[1])
		}
	}
	return xs, ys
}

// Concat returns a new trajectory with the frames of all the given
// trajectories, in the order given. nil trajectories are skipped.
func Concat(trajs ...*Trajectory) *Trajectory {
	n := 0
	for _, t := range trajs {
		if t != nil {
			n += len(t.frames)
		}
	}
	ret := &Trajectory{frames: make([]*Frame, 0, n)}
	for _, t := range trajs {
		if t == nil {
			continue
		}
		ret.frames = append(ret.frames, t.frames...)
	}
	return ret
}
