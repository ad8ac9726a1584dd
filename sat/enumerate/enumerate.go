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

// Package enumerate lists the models of a cpmodel.Session one by one. After each model it
// asserts a blocking clause that excludes exactly that model, so every model is reported once.
package enumerate

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/golang/glog"
	"github.com/sattoys/sattoys/sat/cpmodel"
)

// ErrStop can be returned by a Visitor to end the enumeration early without an error.
var ErrStop = errors.New("enumeration stopped by visitor")

// State is the state of an Enumerator.
type State int

const (
	// Searching means more models may exist.
	Searching State = iota
	// Done means the enumeration is over; see Summary.Reason.
	Done
)

func (s State) String() string {
	if s == Done {
		return "done"
	}
	return "searching"
}

// Reason tells why an enumeration ended.
type Reason int

const (
	// Exhausted means the last check was unsatisfiable: every model was reported.
	Exhausted Reason = iota
	// Undecided means the solver returned Unknown, so more models may exist.
	Undecided
	// LimitReached means the configured number of models was reported.
	LimitReached
	// Stopped means the context was cancelled or the visitor returned ErrStop.
	Stopped
)

func (r Reason) String() string {
	switch r {
	case Exhausted:
		return "exhausted"
	case Undecided:
		return "undecided"
	case LimitReached:
		return "limit reached"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Summary describes a finished enumeration.
type Summary struct {
	// Solutions is the number of models reported.
	Solutions int
	// Final is the status of the last check.
	Final  cpmodel.Status
	Reason Reason
}

// Predicate selects the interesting values of a model.
type Predicate func(v int64) bool

// Positive holds for values strictly greater than zero.
func Positive(v int64) bool { return v > 0 }

// Any holds for every value.
func Any(int64) bool { return true }

// Solution is one model found by the Enumerator.
type Solution struct {
	// Index counts models from 1.
	Index      int
	Assignment *cpmodel.Assignment
	// Selected holds the variables whose value satisfies the Predicate, in order.
	Selected []cpmodel.IntVar
}

// Visitor is called once per model.
type Visitor func(sol *Solution) error

// Option configures an Enumerator.
type Option func(e *Enumerator) error

// WithLimit stops the enumeration after n models. Zero means no limit.
func WithLimit(n int) Option {
	return func(e *Enumerator) error {
		if n < 0 {
			return fmt.Errorf("negative limit %d", n)
		}
		e.limit = n
		return nil
	}
}

// WithTimeout bounds each check. A check that runs out of time ends the enumeration with
// Reason Undecided. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Enumerator) error {
		if d < 0 {
			return fmt.Errorf("negative timeout %v", d)
		}
		e.timeout = d
		return nil
	}
}

// WithTracer sets the Tracer notified after each model.
func WithTracer(t Tracer) Option {
	return func(e *Enumerator) error {
		e.tracer = t
		return nil
	}
}

// WithPredicate sets the Predicate used to fill Solution.Selected. The default is Any.
func WithPredicate(p Predicate) Option {
	return func(e *Enumerator) error {
		e.pred = p
		return nil
	}
}

var defaults = []Option{
	func(e *Enumerator) error {
		if e.tracer == nil {
			e.tracer = DefaultTracer{}
		}
		return nil
	},
	func(e *Enumerator) error {
		if e.pred == nil {
			e.pred = Any
		}
		return nil
	},
}

// Enumerator walks through the models of a Session. It adds blocking clauses to the session,
// so the session cannot be reused for other queries afterwards.
type Enumerator struct {
	s       *cpmodel.Session
	vars    []cpmodel.IntVar
	limit   int
	timeout time.Duration
	tracer  Tracer
	pred    Predicate

	state   State
	summary Summary
}

// New returns an Enumerator over the models of s, projected on vars. Two models are distinct
// when they differ on vars; an empty vars means all model variables.
func New(s *cpmodel.Session, vars []cpmodel.IntVar, opts ...Option) (*Enumerator, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	e := &Enumerator{s: s, vars: vars, summary: Summary{Final: cpmodel.Unknown}}
	for _, opt := range append(opts, defaults...) {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// State returns the current state.
func (e *Enumerator) State() State {
	return e.state
}

// Summary returns the outcome so far. It is final once State is Done.
func (e *Enumerator) Summary() Summary {
	return e.summary
}

func (e *Enumerator) finish(r Reason) {
	e.state = Done
	e.summary.Reason = r
	log.V(1).Infof("enumerate: done after %d models: %v (last check %v)", e.summary.Solutions, r, e.summary.Final)
}

// Next checks for another model. It returns nil once the enumeration is Done.
func (e *Enumerator) Next(ctx context.Context) (*Solution, error) {
	if e.state == Done {
		return nil, nil
	}
	if e.limit > 0 && e.summary.Solutions >= e.limit {
		e.finish(LimitReached)
		return nil, nil
	}

	checkCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	st, err := e.s.Check(checkCtx)
	if err != nil {
		return nil, err
	}
	e.summary.Final = st
	switch st {
	case cpmodel.Unsatisfiable:
		e.finish(Exhausted)
		return nil, nil
	case cpmodel.Unknown:
		if ctx.Err() != nil {
			e.finish(Stopped)
		} else {
			e.finish(Undecided)
		}
		return nil, nil
	}

	a, err := e.s.Model()
	if err != nil {
		return nil, err
	}
	vars := e.vars
	if len(vars) == 0 {
		vars = a.Vars()
	}
	block := BlockingClause(a, vars)
	if err := e.s.Add(block); err != nil {
		return nil, fmt.Errorf("blocking model %v: %w", a, err)
	}
	e.summary.Solutions++

	sol := &Solution{Index: e.summary.Solutions, Assignment: a}
	for _, v := range vars {
		if e.pred(a.Value(v)) {
			sol.Selected = append(sol.Selected, v)
		}
	}
	log.V(2).Infof("enumerate: model %d %v", sol.Index, a)
	e.tracer.Trace(position{sol: sol, block: block})
	return sol, nil
}

// Run calls visit for every remaining model and returns the final Summary.
func (e *Enumerator) Run(ctx context.Context, visit Visitor) (Summary, error) {
	for {
		sol, err := e.Next(ctx)
		if err != nil {
			return e.summary, err
		}
		if sol == nil {
			return e.summary, nil
		}
		if err := visit(sol); err != nil {
			if errors.Is(err, ErrStop) {
				e.finish(Stopped)
				return e.summary, nil
			}
			return e.summary, err
		}
	}
}

// Enumerate is a shortcut for New followed by Run.
func Enumerate(ctx context.Context, s *cpmodel.Session, vars []cpmodel.IntVar, visit Visitor, opts ...Option) (Summary, error) {
	e, err := New(s, vars, opts...)
	if err != nil {
		return Summary{}, err
	}
	return e.Run(ctx, visit)
}

// BlockingClause returns the formula that excludes the values a gives to vars:
// `Or(x1 != v1, x2 != v2, ...)`. With no vars it is false.
func BlockingClause(a *cpmodel.Assignment, vars []cpmodel.IntVar) cpmodel.Formula {
	diff := make([]cpmodel.Formula, len(vars))
	for i, v := range vars {
		diff[i] = cpmodel.NotEqual(v, cpmodel.NewConstant(a.Value(v)))
	}
	return cpmodel.Or(diff...)
}
