/*
 * errors.go, part of sqlmd.
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
	"errors"
	"fmt"
	"strings"
)

// The kinds of parse error. Use errors.Is to check which one
// an error returned by this package is.
var (
	ErrMalformedHeader     = errors.New("malformed header")
	ErrMissingIterationTag = errors.New("missing iteration tag")
	ErrMalformedAtomLine   = errors.New("malformed atom line")
	ErrTruncatedFrame      = errors.New("truncated frame")
)

// Error is the error returned when reading XYZ trajectories.
// All of them are critical: the whole trajectory is discarded.
type Error struct {
	kind     error
	message  string
	filename string //the input file that has problems, or empty string if none.
	line     int    //1-based, 0 if unknown
	deco     []string
	cause    error
}

func newError(kind error, line int, caller string, cause error, format string, a ...any) *Error {
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, a...),
		line:    line,
		deco:    []string{caller},
		cause:   cause,
	}
}

func (E *Error) Error() string {
	var b strings.Builder
	b.WriteString("XYZ trajectory")
	if E.filename != "" {
		fmt.Fprintf(&b, " file %s", E.filename)
	}
	if E.line > 0 {
		fmt.Fprintf(&b, " line %d", E.line)
	}
	fmt.Fprintf(&b, ": %v: %s", E.kind, E.message)
	if E.cause != nil {
		fmt.Fprintf(&b, ": %v", E.cause)
	}
	return b.String()
}

// Decorate adds the name of a caller (and, optionally, extra info in the form
// "Caller: info") to the error, and returns the list of decorations so far.
// An empty string adds nothing.
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// Unwrap allows errors.Is to match both the kind of error and its cause, if any.
func (E *Error) Unwrap() []error {
	if E.cause == nil {
		return []error{E.kind}
	}
	return []error{E.kind, E.cause}
}

// Kind returns the sentinel error for the kind of problem found.
func (E *Error) Kind() error { return E.kind }

func (E *Error) FileName() string { return E.filename }

// Line returns the line of the input where the problem was found,
// or 0 if it is not known.
func (E *Error) Line() int { return E.line }

// FileFormat returns the name of the trajectory format.
func (E *Error) FileFormat() string { return "XYZ" }

func (E *Error) Critical() bool { return true }

// errDecorate decorates err with the caller's name if it is an *Error,
// and sets the file name if not yet set. Other errors are returned untouched.
func errDecorate(err error, caller, filename string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		if e.filename == "" {
			e.filename = filename
		}
	}
	return err
}
