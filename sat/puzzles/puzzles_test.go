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

package puzzles

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sattoys/sattoys/sat/cpmodel"
)

func TestShirtTie(t *testing.T) {
	// A fresh session must reproduce the same answer every time.
	for run := 0; run < 2; run++ {
		p, err := ShirtTie()
		if err != nil {
			t.Fatalf("ShirtTie() returned with unexpected error %v", err)
		}
		s, err := cpmodel.NewSession(p.Model)
		if err != nil {
			t.Fatalf("NewSession() returned with unexpected error %v", err)
		}
		st, err := s.Check(context.Background())
		if err != nil {
			t.Fatalf("Check() returned with unexpected error %v", err)
		}
		if st != cpmodel.Satisfiable {
			t.Fatalf("Check() = %v, want %v", st, cpmodel.Satisfiable)
		}
		a, err := s.Model()
		if err != nil {
			t.Fatalf("Model() returned with unexpected error %v", err)
		}
		if got, want := a.String(), "[Tie = false, Shirt = true]"; got != want {
			t.Errorf("run %d: Model() = %s, want %s", run, got, want)
		}
		s.Close()
	}
}

func TestXKCDOrder(t *testing.T) {
	p, err := XKCDOrder()
	if err != nil {
		t.Fatalf("XKCDOrder() returned with unexpected error %v", err)
	}
	if got, want := p.Model.NumVariables(), len(Appetizers); got != want {
		t.Errorf("NumVariables() = %v, want %v", got, want)
	}
	for i, q := range p.Quantities {
		if got, want := q.Name(), Appetizers[i].Name; got != want {
			t.Errorf("Quantities[%d].Name() = %q, want %q", i, got, want)
		}
	}

	res, err := cpmodel.SolveCpModel(context.Background(), p.Model)
	if err != nil {
		t.Fatalf("SolveCpModel() returned with unexpected error %v", err)
	}
	if res.Status != cpmodel.Optimal {
		t.Fatalf("SolveCpModel() returned status = %v, want %v", res.Status, cpmodel.Optimal)
	}
	var sum int64
	for i, q := range p.Quantities {
		v := cpmodel.SolutionIntegerValue(res, q)
		if v < 0 {
			t.Errorf("%s = %d, want >= 0", q.Name(), v)
		}
		sum += v * Appetizers[i].Price
	}
	if sum != OrderTotal {
		t.Errorf("order costs %d, want %d", sum, OrderTotal)
	}
}

func TestExactChange_BadPrice(t *testing.T) {
	if _, err := ExactChange([]Item{{Name: "free", Price: 0}}, 10); err == nil {
		t.Errorf("ExactChange() with a zero price returned no error")
	}
}

func TestWoodWorkshop(t *testing.T) {
	p, err := WoodWorkshop()
	if err != nil {
		t.Fatalf("WoodWorkshop() returned with unexpected error %v", err)
	}
	res, err := cpmodel.SolveCpModel(context.Background(), p.Model)
	if err != nil {
		t.Fatalf("SolveCpModel() returned with unexpected error %v", err)
	}
	if got, want := res.Status, cpmodel.Optimal; got != want {
		t.Fatalf("SolveCpModel() returned status = %v, want %v", got, want)
	}
	if got, want := res.ObjectiveValue, int64(275); got != want {
		t.Errorf("SolveCpModel() returned objective = %v, want %v", got, want)
	}
	got := make([]int64, len(p.Counts))
	for i, c := range p.Counts {
		got[i] = cpmodel.SolutionIntegerValue(res, c)
	}
	if diff := cmp.Diff([]int64{250, 25, 0, 0}, got); diff != "" {
		t.Errorf("cuts returned with unexpected diff (-want+got);\n%s", diff)
	}
	if got := cpmodel.SolutionIntegerValue(res, p.Total); got != 275 {
		t.Errorf("workpieces_total = %v, want 275", got)
	}
}

func TestCountExactChange(t *testing.T) {
	prices := make([]int64, len(Appetizers))
	for i, it := range Appetizers {
		prices[i] = it.Price
	}
	testCases := []struct {
		name   string
		prices []int64
		target int64
		want   int
	}{
		{name: "xkcd", prices: prices, target: OrderTotal, want: 2},
		{name: "coins", prices: []int64{1, 2}, target: 4, want: 3},
		{name: "zero", prices: []int64{3, 5}, target: 0, want: 1},
		{name: "impossible", prices: []int64{4, 6}, target: 7, want: 0},
		{name: "no prices", prices: nil, target: 3, want: 0},
		{name: "zero price", prices: []int64{0}, target: 3, want: 0},
	}

	for _, test := range testCases {
		if got := CountExactChange(test.prices, test.target); got != test.want {
			t.Errorf("CountExactChange(%s) = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestExactChange_NoOrder(t *testing.T) {
	// Presolve proves 2x == -1 infeasible before the unbounded x gets a finite range.
	p, err := ExactChange([]Item{{Name: "x", Price: 2}}, -1)
	if err != nil {
		t.Fatalf("ExactChange() returned with unexpected error %v", err)
	}
	s, err := cpmodel.NewSession(p.Model)
	if err != nil {
		t.Fatalf("NewSession() returned with unexpected error %v", err)
	}
	defer s.Close()
	if st, err := s.Check(context.Background()); err != nil || st != cpmodel.Unsatisfiable {
		t.Errorf("Check() = (%v, %v), want (%v, nil)", st, err, cpmodel.Unsatisfiable)
	}

	res, err := cpmodel.SolveCpModel(context.Background(), p.Model)
	if err != nil {
		t.Fatalf("SolveCpModel() returned with unexpected error %v", err)
	}
	if got, want := res.Status, cpmodel.Infeasible; got != want {
		t.Errorf("SolveCpModel() returned status = %v, want %v", got, want)
	}
}

func TestPigeonhole(t *testing.T) {
	testCases := []struct {
		pigeons, holes int
		want           cpmodel.Status
	}{
		{pigeons: 3, holes: 3, want: cpmodel.Satisfiable},
		{pigeons: 2, holes: 4, want: cpmodel.Satisfiable},
		{pigeons: 4, holes: 3, want: cpmodel.Unsatisfiable},
		{pigeons: 1, holes: 0, want: cpmodel.Unsatisfiable},
	}

	for _, test := range testCases {
		p, err := Pigeonhole(test.pigeons, test.holes)
		if err != nil {
			t.Fatalf("Pigeonhole(%d, %d) returned with unexpected error %v", test.pigeons, test.holes, err)
		}
		s, err := cpmodel.NewSession(p.Model)
		if err != nil {
			t.Fatalf("NewSession() returned with unexpected error %v", err)
		}
		st, err := s.Check(context.Background())
		if err != nil || st != test.want {
			t.Errorf("Pigeonhole(%d, %d): Check() = (%v, %v), want (%v, nil)", test.pigeons, test.holes, st, err, test.want)
		}
		if st == cpmodel.Satisfiable {
			a, err := s.Model()
			if err != nil {
				t.Fatalf("Model() returned with unexpected error %v", err)
			}
			for j := 0; j < test.holes; j++ {
				n := 0
				for i := range p.In {
					if a.BoolValue(p.In[i][j]) {
						n++
					}
				}
				if n > 1 {
					t.Errorf("Pigeonhole(%d, %d): hole %d holds %d pigeons", test.pigeons, test.holes, j, n)
				}
			}
		}
		s.Close()
	}
	if _, err := Pigeonhole(-1, 2); err == nil {
		t.Errorf("Pigeonhole(-1, 2) returned no error")
	}
}
