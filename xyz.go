/*
 * xyz.go, part of sqlmd.
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
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// XYZFileRead reads all the frames in the XYZ trajectory file filename.
// iterOffset is added to the iteration index of each frame, which is
// useful to join trajectories that restart the count from zero.
// Files ending in ".zst" or ".gz" are decompressed on the fly.
// On error, no trajectory is returned.
func XYZFileRead(filename string, iterOffset int) (*Trajectory, error) {
	xyzfile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("XYZFileRead: unable to open %s: %w", filename, err)
	}
	defer xyzfile.Close()
	r, err := decompressor(filename, xyzfile)
	if err != nil {
		return nil, fmt.Errorf("XYZFileRead: %s: %w", filename, err)
	}
	defer r.Close()
	T, err := XYZRead(r, iterOffset)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead", filename)
	}
	return T, nil
}

// zstdCloser lets a *zstd.Decoder be used as an io.ReadCloser.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// decompressor wraps f in a decompressing reader chosen from the extension of filename.
func decompressor(filename string, f io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(filename, ".zst"):
		d, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		return zstdCloser{d}, nil
	case strings.HasSuffix(filename, ".gz"):
		return gzip.NewReader(f)
	default:
		return io.NopCloser(f), nil
	}
}

// atom lines allocated in advance for a frame
const maxPrealloc = 1 << 16

// lineReader reads a stream one line at a time, and keeps track of the line number.
type lineReader struct {
	r    *bufio.Reader
	line int
	eof  bool
}

// next returns the next line, and false if the stream ended before any
// character of the line could be read. A last line without a newline is
// still a line.
func (L *lineReader) next() (string, bool, error) {
	if L.eof {
		return "", false, nil
	}
	s, err := L.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, err
		}
		L.eof = true
		if s == "" {
			return "", false, nil
		}
	}
	L.line++
	return s, true, nil
}

// XYZRead reads all the frames of an XYZ trajectory from r. See XYZFileRead.
// A header line that is empty (or only whitespace) ends the trajectory.
func XYZRead(r io.Reader, iterOffset int) (*Trajectory, error) {
	L := &lineReader{r: bufio.NewReader(r)}
	T := &Trajectory{frames: make([]*Frame, 0)}
	for {
		header, ok, err := L.next()
		if err != nil {
			return nil, fmt.Errorf("XYZRead: reading line %d: %w", L.line+1, err)
		}
		if !ok || strings.TrimSpace(header) == "" {
			break
		}
		first := L.line
		natoms, err := parseHeader(header)
		if err != nil {
			return nil, newError(ErrMalformedHeader, first, "XYZRead", err, "expected atom count, got %q", strings.TrimSpace(header))
		}
		//the header could be corrupt, so we don't trust it for large allocations.
		lines := make([]string, 1, min(natoms, maxPrealloc)+2)
		lines[0] = header
		for i := 0; i < natoms+1; i++ {
			line, ok, err := L.next()
			if err != nil {
				return nil, fmt.Errorf("XYZRead: reading line %d: %w", L.line+1, err)
			}
			if !ok && i == 0 {
				return nil, newError(ErrTruncatedFrame, first, "XYZRead", nil, "no comment line")
			}
			if !ok {
				return nil, newError(ErrTruncatedFrame, first, "XYZRead", nil, "input ended after %d of %d atom lines", i-1, natoms)
			}
			lines = append(lines, line)
		}
		F, err := parseFrame(lines, iterOffset, "", first)
		if err != nil {
			return nil, errDecorate(err, "XYZRead", "")
		}
		T.frames = append(T.frames, F)
	}
	return T, nil
}
