//go:build !cgo
// +build !cgo

// Package z3 decides ground formulas with Z3. This build has no cgo, so New
// always fails with ErrNoCgo and callers fall back to another backend.
package z3

import (
	"github.com/pkg/errors"

	"github.com/vhavlena/cegis-go/smt"
	"github.com/vhavlena/cegis-go/term"
)

// Available reports whether this build links against Z3.
const Available = false

var (
	// ErrNoCgo is returned by New when the package is built without cgo.
	ErrNoCgo = errors.New("z3: built without cgo")
	// ErrUnsupported is returned for terms the lowering cannot express.
	ErrUnsupported = errors.New("z3: unsupported term")
)

// Backend is a placeholder that satisfies smt.Backend.
type Backend struct{}

var _ smt.Backend = (*Backend)(nil)

func New(*term.Manager) (*Backend, error) { return nil, ErrNoCgo }

func (*Backend) Add(term.Term) error                   { return ErrNoCgo }
func (*Backend) Solve([]term.Term) (smt.Result, error) { return smt.Unknown, ErrNoCgo }
func (*Backend) Value(term.Term) (term.Term, bool)     { return term.Term{}, false }
func (*Backend) Solves() int                           { return 0 }
func (*Backend) Reason() string                        { return "" }
func (*Backend) Close() error                          { return nil }
