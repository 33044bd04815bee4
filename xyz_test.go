/*
 * xyz_test.go, part of sqlmd.
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
	"compress/gzip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

const twoAtoms = "2\niter:5 test\nC 1.0 2.0 3.0 0.5 0.1 0.2 0.3\nO 4.0 5.0 6.0 0.6 0.4 0.5 0.6\n"

// threeFrames has 3 headers, a zero-atom frame and no final newline.
const threeFrames = "2\niter:0 start\nC 0.1 0.2 0.3 -0.1 0 0 0\nH 1.1 1.2 1.3 0.1 1 1 1\n" +
	"0\niter:10\n" +
	"1\n  iter:20 end  \nC -1 -2 -3 0 0 0 0"

func writeTestFile(Te *testing.T, name, content string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		Te.Fatal(err)
	}
	return path
}

func TestXYZRead(Te *testing.T) {
	T, err := XYZRead(strings.NewReader(twoAtoms), 0)
	if err != nil {
		Te.Fatal(err)
	}
	if T.Len() != 1 {
		Te.Fatalf("expected 1 frame, got %d", T.Len())
	}
	F := T.Frame(0)
	if F.Iter() != 5 || F.Len() != 2 {
		Te.Errorf("expected iter 5 and 2 atoms, got iter %d and %d atoms", F.Iter(), F.Len())
	}
	if a := F.Atom(1); a.Element() != "O" || a.Pos() != [3]float64{4, 5, 6} || a.Scalar() != 0.6 || a.Vec() != [3]float64{0.4, 0.5, 0.6} {
		Te.Errorf("unexpected second atom %+v", a)
	}
	T, err = XYZRead(strings.NewReader(twoAtoms), 10)
	if err != nil {
		Te.Fatal(err)
	}
	if T.Frame(0).Iter() != 15 || !strings.HasPrefix(T.Frame(0).Comment(), "iter:15") {
		Te.Errorf("offset not applied: iter %d, comment %q", T.Frame(0).Iter(), T.Frame(0).Comment())
	}
}

func TestXYZReadFrames(Te *testing.T) {
	T, err := XYZRead(strings.NewReader(threeFrames), 0)
	if err != nil {
		Te.Fatal(err)
	}
	headers := 3
	if T.Len() != headers {
		Te.Fatalf("expected %d frames, got %d", headers, T.Len())
	}
	iters := []int{0, 10, 20}
	for i, F := range T.Frames() {
		if F.Iter() != iters[i] {
			Te.Errorf("frame %d: expected iter %d, got %d", i, iters[i], F.Iter())
		}
		if len(F.Atoms()) != F.Len() {
			Te.Errorf("frame %d: %d atoms but %d declared", i, len(F.Atoms()), F.Len())
		}
	}
	if T.Frame(1).Len() != 0 {
		Te.Errorf("expected an empty second frame")
	}
	if T.Frame(2).Atom(0).Z() != -3 {
		Te.Errorf("last line, without newline, not read properly: %+v", T.Frame(2).Atom(0))
	}
	if T.LastIter() != 20 {
		Te.Errorf("expected last iteration 20, got %d", T.LastIter())
	}
	if e := T.Elements(); !reflect.DeepEqual(e, []string{"C", "H"}) {
		Te.Errorf("unexpected elements %v", e)
	}
	xs, ys := T.XY("C")
	if !reflect.DeepEqual(xs, []float64{0.1, -1}) || !reflect.DeepEqual(ys, []float64{0.2, -2}) {
		Te.Errorf("unexpected C positions %v %v", xs, ys)
	}
	xs, _ = T.XY("")
	if len(xs) != 3 {
		Te.Errorf("expected 3 positions for all atoms, got %d", len(xs))
	}
}

func TestXYZReadEmpty(Te *testing.T) {
	for _, in := range []string{"", "\n", "   \n"} {
		T, err := XYZRead(strings.NewReader(in), 0)
		if err != nil {
			Te.Errorf("%q: %v", in, err)
			continue
		}
		if T.Len() != 0 || T.LastIter() != -1 {
			Te.Errorf("%q: expected an empty trajectory, got %d frames", in, T.Len())
		}
	}
}

func TestXYZReadBlankLineEnds(Te *testing.T) {
	T, err := XYZRead(strings.NewReader(twoAtoms+"\n"+twoAtoms), 0)
	if err != nil {
		Te.Fatal(err)
	}
	if T.Len() != 1 {
		Te.Errorf("a blank header should end the trajectory, got %d frames", T.Len())
	}
}

func TestXYZReadErrors(Te *testing.T) {
	cases := []struct {
		name string
		in   string
		kind error
		line int
	}{
		{"header", "abc\n", ErrMalformedHeader, 1},
		{"secondheader", twoAtoms + "x2\niter:3\n", ErrMalformedHeader, 5},
		{"nocomment", "2\n", ErrTruncatedFrame, 1},
		{"noatoms", "2\niter:1\n", ErrTruncatedFrame, 1},
		{"shortframe", "2\niter:1\nC 1 2 3 4 5 6 7\n", ErrTruncatedFrame, 1},
		{"notag", "1\nstep 1\nC 1 2 3 4 5 6 7\n", ErrMissingIterationTag, 2},
		{"atom", twoAtoms + "1\niter:6\nC 1 2 3\n", ErrMalformedAtomLine, 7},
		{"blankatom", "2\niter:1\n\nC 1 2 3 4 5 6 7\n", ErrMalformedAtomLine, 3},
	}
	for _, c := range cases {
		T, err := XYZRead(strings.NewReader(c.in), 0)
		if err == nil {
			Te.Errorf("%s: expected an error, got %d frames", c.name, T.Len())
			continue
		}
		if T != nil {
			Te.Errorf("%s: got a trajectory together with an error", c.name)
		}
		if !errors.Is(err, c.kind) {
			Te.Errorf("%s: expected %v, got %v", c.name, c.kind, err)
		}
		var e *Error
		if errors.As(err, &e) && e.Line() != c.line {
			Te.Errorf("%s: expected error at line %d, got %d (%v)", c.name, c.line, e.Line(), err)
		}
	}
}

func TestXYZReadTruncatedMessages(Te *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0\n", "no comment line"},
		{"2\n", "no comment line"},
		{"2\niter:1\n", "after 0 of 2 atom lines"},
		{"2\niter:1\nC 1 2 3 4 5 6 7\n", "after 1 of 2 atom lines"},
	}
	for _, c := range cases {
		_, err := XYZRead(strings.NewReader(c.in), 0)
		if !errors.Is(err, ErrTruncatedFrame) {
			Te.Errorf("%q: expected a truncated frame, got %v", c.in, err)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			Te.Errorf("%q: expected %q in the message, got %v", c.in, c.want, err)
		}
	}
}

func TestXYZFileRead(Te *testing.T) {
	path := writeTestFile(Te, "traj.xyz", threeFrames)
	T1, err := XYZFileRead(path, 0)
	if err != nil {
		Te.Fatal(err)
	}
	T2, err := XYZFileRead(path, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if !reflect.DeepEqual(T1, T2) {
		Te.Error("reading the same file twice gave different trajectories")
	}
	bad := writeTestFile(Te, "bad.xyz", "abc\n")
	_, err = XYZFileRead(bad, 0)
	var e *Error
	if !errors.As(err, &e) {
		Te.Fatalf("expected an *Error, got %v", err)
	}
	if e.FileName() != bad || e.FileFormat() != "XYZ" || !e.Critical() {
		Te.Errorf("unexpected error data: %s %s %v", e.FileName(), e.FileFormat(), e.Critical())
	}
	fmt.Println(err)
	if _, err = XYZFileRead(filepath.Join(Te.TempDir(), "nope.xyz"), 0); !errors.Is(err, os.ErrNotExist) {
		Te.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestXYZFileReadCompressed(Te *testing.T) {
	plain, err := XYZRead(strings.NewReader(threeFrames), 0)
	if err != nil {
		Te.Fatal(err)
	}
	dir := Te.TempDir()

	zpath := filepath.Join(dir, "traj.xyz.zst")
	zf, err := os.Create(zpath)
	if err != nil {
		Te.Fatal(err)
	}
	zw, err := zstd.NewWriter(zf)
	if err != nil {
		Te.Fatal(err)
	}
	zw.Write([]byte(threeFrames))
	zw.Close()
	zf.Close()

	gpath := filepath.Join(dir, "traj.xyz.gz")
	gf, err := os.Create(gpath)
	if err != nil {
		Te.Fatal(err)
	}
	gw := gzip.NewWriter(gf)
	gw.Write([]byte(threeFrames))
	gw.Close()
	gf.Close()

	for _, path := range []string{zpath, gpath} {
		T, err := XYZFileRead(path, 0)
		if err != nil {
			Te.Errorf("%s: %v", path, err)
			continue
		}
		if !reflect.DeepEqual(T, plain) {
			Te.Errorf("%s: compressed trajectory differs from the plain one", path)
		}
	}
}

func TestConcat(Te *testing.T) {
	a, err := XYZRead(strings.NewReader(threeFrames), 0)
	if err != nil {
		Te.Fatal(err)
	}
	b, err := XYZRead(strings.NewReader(twoAtoms), a.LastIter())
	if err != nil {
		Te.Fatal(err)
	}
	c := Concat(a, nil, b)
	if c.Len() != a.Len()+b.Len() {
		Te.Fatalf("expected %d frames, got %d", a.Len()+b.Len(), c.Len())
	}
	if c.Frame(3).Iter() != 25 {
		Te.Errorf("expected the joined frame to have iter 25, got %d", c.Frame(3).Iter())
	}
	if a.Len() != 3 {
		Te.Error("Concat modified its input")
	}
	prev := -1
	for _, F := range c.Frames() {
		if F.Iter() < prev {
			Te.Errorf("iterations not in order: %d after %d", F.Iter(), prev)
		}
		prev = F.Iter()
	}
}
