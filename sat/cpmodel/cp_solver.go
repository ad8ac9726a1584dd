// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cpmodel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

var (
	// ErrClosed is returned by every Session method after Close.
	ErrClosed = errors.New("session is closed")
	// ErrNoModel is returned by Session.Model when the last check was not satisfiable.
	ErrNoModel = errors.New("no model available: last check was not satisfiable")
	// ErrStaleModel is returned by Session.Model when constraints were added after the last check.
	ErrStaleModel = errors.New("model is stale: constraints were added after the last check")
)

// pollInterval is how often a running check looks at its context.
const pollInterval = 5 * time.Millisecond

// Status is the outcome of a satisfiability check. The values match gini's result codes.
type Status int

const (
	// Unknown means the solver could not decide, e.g. because it was interrupted.
	Unknown Status = 0
	// Satisfiable means a model of all asserted constraints exists.
	Satisfiable Status = 1
	// Unsatisfiable means no assignment satisfies the asserted constraints.
	Unsatisfiable Status = -1
)

func (s Status) String() string {
	switch s {
	case Satisfiable:
		return "sat"
	case Unsatisfiable:
		return "unsat"
	}
	return "unknown"
}

// SessionOption configures a Session.
type SessionOption func(s *Session) error

// WithTimeout bounds every check of the session. A check that runs out of time is stopped and
// reports Unknown. A zero duration means no bound.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) error {
		if d < 0 {
			return fmt.Errorf("negative timeout %v", d)
		}
		s.timeout = d
		return nil
	}
}

// Session owns one gini solver loaded with a Model. Constraints only accumulate: Add never
// removes anything, so every check sees a superset of the previous constraints.
//
// A Session is not safe for concurrent use.
type Session struct {
	model   *Model
	g       *gini.Gini
	enc     *encoder
	marks   []int8
	timeout time.Duration

	last   Status
	stale  bool
	closed bool
	checks int
}

// NewSession tightens the domains of m, encodes every constraint of m and loads the result into
// a fresh solver.
func NewSession(m *Model, opts ...SessionOption) (*Session, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	domains := make([]Domain, len(m.vars))
	for i, v := range m.vars {
		domains[i] = v.domain
		if v.domain.IsEmpty() {
			return nil, fmt.Errorf("variable %s: %w", m.varName(VarIndex(i)), ErrEmptyDomain)
		}
	}
	feasible := presolve(domains, linearRows(m.constraints))
	if feasible {
		if err := checkBounded(m, domains); err != nil {
			return nil, err
		}
	} else {
		// The model is unsatisfiable and false is asserted below. Pin every variable to one
		// declared value so that unbounded declarations still encode.
		for i, v := range m.vars {
			domains[i] = NewSingleDomain(placeholder(v.domain))
		}
	}
	for i, d := range domains {
		log.V(2).Infof("session: %s in %v (%d values)", m.varName(VarIndex(i)), d, d.Size())
	}

	s := &Session{model: m, g: gini.New(), last: Unknown}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.enc = newEncoder(m, domains)
	s.assert(s.enc.c.T)
	if !feasible {
		s.assert(s.enc.c.F)
	}
	for _, lit := range s.enc.domainLits() {
		s.assert(lit)
	}
	for _, ct := range m.constraints {
		s.assert(s.enc.lit(ct.formula()))
	}
	if err := s.enc.Error(); err != nil {
		return nil, err
	}
	log.V(1).Infof("session: %d variables, %d constraints, %d circuit nodes", len(m.vars), len(m.constraints), s.enc.c.Len())
	return s, nil
}

// placeholder returns a finite value of the non-empty domain d.
func placeholder(d Domain) int64 {
	lo, _ := d.Min()
	hi, _ := d.Max()
	switch {
	case lo != negInf:
		return lo
	case hi != posInf:
		return hi
	case d.Contains(0):
		return 0
	}
	return d.Intervals()[0].End
}

// assert teaches the solver the clauses defining m that it has not seen yet, then adds m as a
// unit clause.
func (s *Session) assert(m z.Lit) {
	s.marks, _ = s.enc.c.CnfSince(s.g, s.marks, m)
	s.g.Add(m)
	s.g.Add(z.LitNull)
}

// Add asserts f for all future checks.
func (s *Session) Add(f Formula) error {
	if s.closed {
		return ErrClosed
	}
	n := len(s.enc.errs)
	m := s.enc.lit(f)
	if len(s.enc.errs) > n {
		err := s.enc.errs[n]
		s.enc.errs = s.enc.errs[:n]
		return fmt.Errorf("adding %v: %w", f, err)
	}
	log.V(2).Infof("session: add %v", f)
	s.assert(m)
	s.stale = true
	return nil
}

// Check decides whether the asserted constraints have a model.
func (s *Session) Check(ctx context.Context) (Status, error) {
	return s.CheckAssuming(ctx)
}

// CheckAssuming is like Check but also requires the given formulas to hold, for this check only.
func (s *Session) CheckAssuming(ctx context.Context, assumptions ...Formula) (Status, error) {
	if s.closed {
		return Unknown, ErrClosed
	}
	ms := make([]z.Lit, len(assumptions))
	for i, f := range assumptions {
		n := len(s.enc.errs)
		ms[i] = s.enc.lit(f)
		if len(s.enc.errs) > n {
			err := s.enc.errs[n]
			s.enc.errs = s.enc.errs[:n]
			return Unknown, fmt.Errorf("assuming %v: %w", f, err)
		}
		s.marks, _ = s.enc.c.CnfSince(s.g, s.marks, ms[i])
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	s.checks++
	s.stale = false
	if ctx.Err() != nil {
		s.last = Unknown
		return s.last, nil
	}
	s.g.Assume(ms...)
	if ctx.Done() == nil {
		s.last = Status(s.g.Solve())
	} else {
		s.last = s.solveInterruptible(ctx)
	}
	log.V(1).Infof("session: check %d returned %v after %v", s.checks, s.last, time.Since(start))
	return s.last, nil
}

// solveInterruptible runs the solver in the background and stops it when ctx is done.
func (s *Session) solveInterruptible(ctx context.Context) Status {
	solve := s.g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if res, done := solve.Test(); done {
			return Status(res)
		}
		select {
		case <-ctx.Done():
			return Status(solve.Stop())
		case <-ticker.C:
		}
	}
}

// Model returns the assignment found by the last check.
func (s *Session) Model() (*Assignment, error) {
	switch {
	case s.closed:
		return nil, ErrClosed
	case s.last != Satisfiable:
		return nil, ErrNoModel
	case s.stale:
		return nil, ErrStaleModel
	}
	values := make([]int64, len(s.model.vars))
	for i := range values {
		values[i] = s.enc.value(VarIndex(i), s.value)
	}
	return &Assignment{model: s.model, values: values}, nil
}

func (s *Session) value(m z.Lit) bool {
	if m.Var() > s.g.MaxVar() {
		return false
	}
	return s.g.Value(m)
}

// NumChecks returns the number of checks run so far.
func (s *Session) NumChecks() int {
	return s.checks
}

// Close releases the solver. Calling Close more than once has no effect.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.g = nil
	s.enc = nil
	return nil
}

// Assignment maps every variable of a Model to a value satisfying the constraints checked by the
// Session that produced it.
type Assignment struct {
	model  *Model
	values []int64
}

// Value returns the value of a variable or linear expression.
func (a *Assignment) Value(la LinearArgument) int64 {
	return evaluate(la, a.values)
}

// BoolValue returns the value of a Boolean literal.
func (a *Assignment) BoolValue(b BoolVar) bool {
	return evaluate(b, a.values) != 0
}

// Vars returns the model variables in declaration order.
func (a *Assignment) Vars() []IntVar {
	return a.model.Variables()
}

// Values returns the values of all variables in declaration order.
func (a *Assignment) Values() []int64 {
	return append([]int64(nil), a.values...)
}

// IsBool reports whether v was declared as a Boolean variable.
func (a *Assignment) IsBool(v IntVar) bool {
	return a.model.IsBool(v)
}

// String renders the assignment as `[x = 1, flag = true]`.
func (a *Assignment) String() string {
	parts := make([]string, len(a.values))
	for i, v := range a.values {
		val := fmt.Sprint(v)
		if a.model.vars[i].isBool {
			val = fmt.Sprint(v != 0)
		}
		parts[i] = a.model.varName(VarIndex(i)) + " = " + val
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func evaluate(la LinearArgument, values []int64) int64 {
	e := asLinearExpr(la)
	result := e.offset
	for _, vc := range e.varCoeffs {
		result += values[vc.ind] * vc.coeff
	}
	return result
}
