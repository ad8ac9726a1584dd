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
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newSession(t *testing.T, model *Builder, opts ...SessionOption) *Session {
	t.Helper()
	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	s, err := NewSession(m, opts...)
	if err != nil {
		t.Fatalf("NewSession() returned with unexpected error %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCheck(t *testing.T, s *Session, want Status) {
	t.Helper()
	got, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() returned with unexpected error %v", err)
	}
	if got != want {
		t.Fatalf("Check() = %v, want %v", got, want)
	}
}

// allModels collects the values of vars in every model of s, blocking each one in turn.
func allModels(t *testing.T, s *Session, vars ...LinearArgument) [][]int64 {
	t.Helper()
	var out [][]int64
	for {
		st, err := s.Check(context.Background())
		if err != nil {
			t.Fatalf("Check() returned with unexpected error %v", err)
		}
		if st != Satisfiable {
			return out
		}
		a, err := s.Model()
		if err != nil {
			t.Fatalf("Model() returned with unexpected error %v", err)
		}
		row := make([]int64, len(vars))
		diff := make([]Formula, len(vars))
		for i, v := range vars {
			row[i] = a.Value(v)
			diff[i] = NotEqual(v, NewConstant(row[i]))
		}
		out = append(out, row)
		if err := s.Add(Or(diff...)); err != nil {
			t.Fatalf("Add() returned with unexpected error %v", err)
		}
	}
}

var sortRows = cmpopts.SortSlices(func(a, b []int64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
})

func TestSession_BoolModel(t *testing.T) {
	model := NewCpModelBuilder()
	tie := model.NewBoolVar().WithName("Tie")
	shirt := model.NewBoolVar().WithName("Shirt")
	model.AddBoolOr(tie, shirt)
	model.AddBoolOr(tie.Not(), shirt)
	model.AddBoolOr(tie.Not(), shirt.Not())

	s := newSession(t, model)
	mustCheck(t, s, Satisfiable)
	a, err := s.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	if a.BoolValue(tie) || !a.BoolValue(shirt) {
		t.Errorf("Model() returned (Tie, Shirt) = (%v, %v), want (false, true)", a.BoolValue(tie), a.BoolValue(shirt))
	}
	if !a.BoolValue(tie.Not()) {
		t.Errorf("BoolValue(Not(Tie)) = false, want true")
	}
	if got, want := a.String(), "[Tie = false, Shirt = true]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := s.NumChecks(), 1; got != want {
		t.Errorf("NumChecks() = %v, want %v", got, want)
	}
}

func TestSession_LinearModels(t *testing.T) {
	testCases := []struct {
		name  string
		build func(model *Builder) []LinearArgument
		want  [][]int64
	}{
		{
			name: "NegativeCoefficients",
			build: func(model *Builder) []LinearArgument {
				x := model.NewIntVar(-5, 5)
				y := model.NewIntVar(-5, 5)
				model.AddEquality(NewLinearExpr().AddTerm(x, 1).AddTerm(y, -2), NewConstant(7))
				model.AddEquality(NewLinearExpr().AddSum(x, y), NewConstant(1))
				return []LinearArgument{x, y}
			},
			want: [][]int64{{3, -2}},
		},
		{
			name: "DomainWithHoles",
			build: func(model *Builder) []LinearArgument {
				x := model.NewIntVarFromDomain(FromValues([]int64{1, 4, 9}))
				model.AddGreaterOrEqual(x, NewConstant(2))
				model.AddLessOrEqual(x, NewConstant(8))
				return []LinearArgument{x}
			},
			want: [][]int64{{4}},
		},
		{
			name: "NotEqual",
			build: func(model *Builder) []LinearArgument {
				x := model.NewIntVar(0, 2)
				y := model.NewIntVar(0, 2)
				model.AddNotEqual(x, y)
				model.AddLessThan(x, NewConstant(1))
				return []LinearArgument{x, y}
			},
			want: [][]int64{{0, 1}, {0, 2}},
		},
		{
			name: "InDomain",
			build: func(model *Builder) []LinearArgument {
				x := model.NewIntVar(0, 10)
				model.AddLinearConstraintForDomain(NewLinearExpr().AddTerm(x, 2).AddConstant(1), FromValues([]int64{3, 4, 11, 30}))
				return []LinearArgument{x}
			},
			want: [][]int64{{1}, {5}},
		},
		{
			name: "Enforcement",
			build: func(model *Builder) []LinearArgument {
				x := model.NewIntVar(0, 3)
				b := model.NewBoolVar()
				model.AddEquality(x, NewConstant(2)).OnlyEnforceIf(b)
				model.AddGreaterThan(x, NewConstant(0)).OnlyEnforceIf(b.Not())
				model.AddLessOrEqual(x, NewConstant(1)).OnlyEnforceIf(b.Not())
				return []LinearArgument{x, b}
			},
			want: [][]int64{{2, 1}, {1, 0}},
		},
		{
			name: "WideCoefficients",
			build: func(model *Builder) []LinearArgument {
				x := model.NewIntVar(0, 1000)
				y := model.NewIntVar(0, 1000)
				model.AddLinearConstraint(NewLinearExpr().AddTerm(x, 997).AddTerm(y, -991), 6, 6)
				model.AddLessOrEqual(NewLinearExpr().AddSum(x, y), NewConstant(1000))
				return []LinearArgument{x, y}
			},
			want: [][]int64{{1, 1}},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			model := NewCpModelBuilder()
			vars := test.build(model)
			s := newSession(t, model)
			got := allModels(t, s, vars...)
			if diff := cmp.Diff(test.want, got, sortRows); diff != "" {
				t.Errorf("models returned with unexpected diff (-want+got);\n%s", diff)
			}
		})
	}
}

func TestSession_BoolConstraints(t *testing.T) {
	testCases := []struct {
		name  string
		build func(model *Builder, bs []BoolVar)
		want  int
	}{
		{
			name:  "Xor",
			build: func(model *Builder, bs []BoolVar) { model.AddBoolXor(bs...) },
			want:  4,
		},
		{
			name:  "ExactlyOne",
			build: func(model *Builder, bs []BoolVar) { model.AddExactlyOne(bs...) },
			want:  3,
		},
		{
			name:  "AtMostOne",
			build: func(model *Builder, bs []BoolVar) { model.AddAtMostOne(bs...) },
			want:  4,
		},
		{
			name:  "AtLeastTwo",
			build: func(model *Builder, bs []BoolVar) { model.Add(AtLeast(2, bs...)) },
			want:  4,
		},
		{
			name:  "BoolAnd",
			build: func(model *Builder, bs []BoolVar) { model.AddBoolAnd(bs[0], bs[1].Not()) },
			want:  2,
		},
		{
			name:  "Implication",
			build: func(model *Builder, bs []BoolVar) { model.AddImplication(bs[0], bs[1]) },
			want:  6,
		},
		{
			name: "Nested",
			build: func(model *Builder, bs []BoolVar) {
				model.Add(Or(And(bs[0], bs[1]), Not(Or(bs[1], bs[2]))))
			},
			want: 4,
		},
		{
			name:  "LinearOverBools",
			build: func(model *Builder, bs []BoolVar) { model.AddEquality(NewLinearExpr().AddSum(bs[0], bs[1].Not(), bs[2]), NewConstant(2)) },
			want:  3,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			model := NewCpModelBuilder()
			bs := []BoolVar{model.NewBoolVar(), model.NewBoolVar(), model.NewBoolVar()}
			test.build(model, bs)
			s := newSession(t, model)
			vars := make([]LinearArgument, len(bs))
			for i, b := range bs {
				vars[i] = b
			}
			if got := len(allModels(t, s, vars...)); got != test.want {
				t.Errorf("number of models = %v, want %v", got, test.want)
			}
		})
	}
}

func TestSession_Unsatisfiable(t *testing.T) {
	testCases := []struct {
		name  string
		build func(model *Builder)
	}{
		{
			name: "Bool",
			build: func(model *Builder) {
				a := model.NewBoolVar()
				model.AddBoolAnd(a, a.Not())
			},
		},
		{
			name: "PresolveInfeasible",
			build: func(model *Builder) {
				x := model.NewIntVar(0, 3)
				model.AddGreaterOrEqual(x, NewConstant(5))
			},
		},
		{
			name: "Parity",
			build: func(model *Builder) {
				x := model.NewIntVar(0, 10)
				y := model.NewIntVar(0, 10)
				model.AddEquality(NewLinearExpr().AddTerm(x, 2).AddTerm(y, 4), NewConstant(7))
			},
		},
		{
			name: "Cardinality",
			build: func(model *Builder) {
				a, b := model.NewBoolVar(), model.NewBoolVar()
				model.Add(AtLeast(3, a, b))
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			model := NewCpModelBuilder()
			test.build(model)
			s := newSession(t, model)
			mustCheck(t, s, Unsatisfiable)
			if _, err := s.Model(); !errors.Is(err, ErrNoModel) {
				t.Errorf("Model() returned with unexpected error %v; want ErrNoModel", err)
			}
		})
	}
}

func TestSession_Lifecycle(t *testing.T) {
	model := NewCpModelBuilder()
	x := model.NewIntVar(0, 3)
	s := newSession(t, model)

	if _, err := s.Model(); !errors.Is(err, ErrNoModel) {
		t.Errorf("Model() before Check returned with unexpected error %v; want ErrNoModel", err)
	}
	mustCheck(t, s, Satisfiable)
	if err := s.Add(GreaterOrEqual(x, NewConstant(2))); err != nil {
		t.Fatalf("Add() returned with unexpected error %v", err)
	}
	if _, err := s.Model(); !errors.Is(err, ErrStaleModel) {
		t.Errorf("Model() after Add returned with unexpected error %v; want ErrStaleModel", err)
	}
	mustCheck(t, s, Satisfiable)
	a, err := s.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	if got := a.Value(x); got < 2 {
		t.Errorf("Value(x) = %v, want >= 2", got)
	}
	if err := s.Add(LessThan(x, NewConstant(2))); err != nil {
		t.Fatalf("Add() returned with unexpected error %v", err)
	}
	mustCheck(t, s, Unsatisfiable)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() returned with unexpected error %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() returned with unexpected error %v", err)
	}
	if _, err := s.Check(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Check() returned with unexpected error %v; want ErrClosed", err)
	}
	if err := s.Add(Equal(x, NewConstant(1))); !errors.Is(err, ErrClosed) {
		t.Errorf("Add() returned with unexpected error %v; want ErrClosed", err)
	}
	if _, err := s.Model(); !errors.Is(err, ErrClosed) {
		t.Errorf("Model() returned with unexpected error %v; want ErrClosed", err)
	}
}

func TestSession_CheckAssuming(t *testing.T) {
	model := NewCpModelBuilder()
	a := model.NewBoolVar()
	b := model.NewBoolVar()
	model.AddImplication(a, b)
	s := newSession(t, model)

	got, err := s.CheckAssuming(context.Background(), a, b.Not())
	if err != nil {
		t.Fatalf("CheckAssuming() returned with unexpected error %v", err)
	}
	if got != Unsatisfiable {
		t.Errorf("CheckAssuming(a, Not(b)) = %v, want %v", got, Unsatisfiable)
	}
	// Assumptions do not persist.
	mustCheck(t, s, Satisfiable)
}

func TestSession_AddErrors(t *testing.T) {
	model := NewCpModelBuilder()
	model.NewBoolVar()
	s := newSession(t, model)

	other := NewCpModelBuilder().NewBoolVar()
	if err := s.Add(other); !errors.Is(err, ErrMixedModels) {
		t.Errorf("Add(other) returned with unexpected error %v; want ErrMixedModels", err)
	}
	late := model.NewBoolVar()
	if err := s.Add(late); err == nil {
		t.Errorf("Add(late) returned no error, want an error for a variable declared after Model()")
	}
	// Failed additions leave the session usable.
	mustCheck(t, s, Satisfiable)
}

func TestSession_Interrupted(t *testing.T) {
	model := NewCpModelBuilder()
	x := model.NewIntVar(0, 10)
	model.AddEquality(x, NewConstant(4))
	s := newSession(t, model)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := s.Check(ctx)
	if err != nil {
		t.Fatalf("Check() returned with unexpected error %v", err)
	}
	if got != Unknown {
		t.Errorf("Check(cancelled) = %v, want %v", got, Unknown)
	}
	if _, err := s.Model(); !errors.Is(err, ErrNoModel) {
		t.Errorf("Model() returned with unexpected error %v; want ErrNoModel", err)
	}
	// A live context still decides the problem.
	ctx, cancel = context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if got, err := s.Check(ctx); err != nil || got != Satisfiable {
		t.Errorf("Check() = (%v, %v), want (%v, nil)", got, err, Satisfiable)
	}
}

func TestNewSession_Errors(t *testing.T) {
	model := NewCpModelBuilder()
	x := model.NewNonNegativeIntVar()
	model.AddGreaterOrEqual(x, NewConstant(3))
	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	if _, err := NewSession(m); !errors.Is(err, ErrUnbounded) {
		t.Errorf("NewSession() returned with unexpected error %v; want ErrUnbounded", err)
	}
	if _, err := NewSession(nil); err == nil {
		t.Errorf("NewSession(nil) returned no error")
	}

	model = NewCpModelBuilder()
	model.NewBoolVar()
	m, err = model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	if _, err := NewSession(m, WithTimeout(-time.Second)); err == nil {
		t.Errorf("NewSession(WithTimeout(-1s)) returned no error")
	}
}

// addPigeonhole adds the clauses putting pigeons into holes, at most one per hole, and
// returns a variable per pigeon and hole.
func addPigeonhole(model *Builder, pigeons, holes int) [][]BoolVar {
	in := make([][]BoolVar, pigeons)
	for i := range in {
		in[i] = make([]BoolVar, holes)
		for j := range in[i] {
			in[i][j] = model.NewBoolVar()
		}
		model.AddBoolOr(in[i]...)
	}
	for j := 0; j < holes; j++ {
		for a := 0; a < pigeons; a++ {
			for b := a + 1; b < pigeons; b++ {
				model.AddBoolOr(in[a][j].Not(), in[b][j].Not())
			}
		}
	}
	return in
}

func TestSession_Timeout(t *testing.T) {
	model := NewCpModelBuilder()
	addPigeonhole(model, 11, 10)
	s := newSession(t, model, WithTimeout(50*time.Millisecond))

	start := time.Now()
	got, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() returned with unexpected error %v", err)
	}
	if got != Unknown {
		t.Errorf("Check() = %v, want %v once the timeout expires", got, Unknown)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Check() took %v, want it stopped shortly after the timeout", elapsed)
	}
	if _, err := s.Model(); !errors.Is(err, ErrNoModel) {
		t.Errorf("Model() returned with unexpected error %v; want ErrNoModel", err)
	}

	// A deadline on the context interrupts the search the same way.
	s = newSession(t, model)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if got, err := s.Check(ctx); err != nil || got != Unknown {
		t.Errorf("Check(deadline) = (%v, %v), want (%v, nil)", got, err, Unknown)
	}
}

func TestNewSession_InfeasibleUnbounded(t *testing.T) {
	model := NewCpModelBuilder()
	x := model.NewNonNegativeIntVar().WithName("x")
	y := model.NewIntVarFromDomain(NewUnboundedDomain()).WithName("y")
	b := model.NewBoolVar()
	model.AddEquality(NewLinearExpr().AddTerm(x, 2), NewConstant(-1))
	model.AddGreaterOrEqual(y, b)
	s := newSession(t, model)

	mustCheck(t, s, Unsatisfiable)
	if _, err := s.Model(); !errors.Is(err, ErrNoModel) {
		t.Errorf("Model() returned with unexpected error %v; want ErrNoModel", err)
	}
}

func TestPlaceholder(t *testing.T) {
	testCases := []struct {
		d    Domain
		want int64
	}{
		{d: NewDomain(3, 9), want: 3},
		{d: NewDomain(0, math.MaxInt64), want: 0},
		{d: NewDomain(math.MinInt64, -4), want: -4},
		{d: NewUnboundedDomain(), want: 0},
		{d: FromIntervals([]ClosedInterval{{math.MinInt64, -2}, {5, math.MaxInt64}}), want: -2},
	}

	for _, test := range testCases {
		if got := placeholder(test.d); got != test.want {
			t.Errorf("placeholder(%v) = %v, want %v", test.d, got, test.want)
		}
	}
}
