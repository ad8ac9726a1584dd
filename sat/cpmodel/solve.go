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
	"time"

	log "github.com/golang/glog"
)

// SolverStatus is the status of a one-shot solve.
type SolverStatus int

const (
	// SolverUnknown means no solution was found before the time limit.
	SolverUnknown SolverStatus = iota
	// ModelInvalid means the model could not be encoded, see Response.SolutionInfo.
	ModelInvalid
	// Feasible means a solution was found but its optimality was not proven.
	Feasible
	// Infeasible means the model has no solution.
	Infeasible
	// Optimal means the solution is optimal, or simply a solution when there is no objective.
	Optimal
)

func (s SolverStatus) String() string {
	switch s {
	case ModelInvalid:
		return "MODEL_INVALID"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case Optimal:
		return "OPTIMAL"
	}
	return "UNKNOWN"
}

// Parameters tune SolveCpModelWithParameters.
type Parameters struct {
	// MaxTime bounds the whole solve. Zero means no bound.
	MaxTime time.Duration
}

// Response is the result of a one-shot solve.
type Response struct {
	Status SolverStatus
	// Solution holds one value per model variable, in declaration order. It is empty unless
	// Status is Optimal or Feasible.
	Solution       []int64
	ObjectiveValue int64
	// SolutionInfo explains a ModelInvalid status.
	SolutionInfo string
	WallTime     time.Duration
	NumChecks    int
}

// SolveCpModel solves m and returns a Response.
func SolveCpModel(ctx context.Context, m *Model) (*Response, error) {
	return SolveCpModelWithParameters(ctx, m, nil)
}

// SolveCpModelWithParameters solves m under the given parameters and returns a Response.
//
// When m has an objective, the solver bisects the objective range: each check assumes
// `objective <= mid`; a satisfiable check improves the best solution and an unsatisfiable one
// asserts `objective > mid` for the rest of the solve. A solve interrupted by the time limit or
// ctx returns the best solution found with status Feasible.
func SolveCpModelWithParameters(ctx context.Context, m *Model, params *Parameters) (*Response, error) {
	start := time.Now()
	if params != nil && params.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.MaxTime)
		defer cancel()
	}

	s, err := NewSession(m)
	if err != nil {
		log.V(1).Infof("solve: invalid model: %v", err)
		return &Response{Status: ModelInvalid, SolutionInfo: err.Error(), WallTime: time.Since(start)}, nil
	}
	defer s.Close()

	res := &Response{}
	finish := func(status SolverStatus) (*Response, error) {
		res.Status = status
		res.WallTime = time.Since(start)
		res.NumChecks = s.NumChecks()
		log.V(1).Infof("solve: %v after %d checks in %v", res.Status, res.NumChecks, res.WallTime)
		return res, nil
	}
	record := func() error {
		a, err := s.Model()
		if err != nil {
			return err
		}
		res.Solution = a.Values()
		if m.objective != nil {
			res.ObjectiveValue = a.Value(m.objective.expr)
		}
		return nil
	}

	st, err := s.Check(ctx)
	if err != nil {
		return nil, err
	}
	switch st {
	case Unsatisfiable:
		return finish(Infeasible)
	case Unknown:
		return finish(SolverUnknown)
	}
	if err := record(); err != nil {
		return nil, err
	}
	if m.objective == nil {
		return finish(Optimal)
	}

	// Minimize obj; a maximization minimizes the negated objective.
	obj := m.objective.expr
	if m.objective.maximize {
		obj = NewLinearExpr().AddTerm(m.objective.expr, -1)
	}
	best := evaluate(obj, res.Solution)
	lo, _ := s.enc.exprBounds(obj)
	for lo < best {
		mid := lo + (best-lo)/2
		st, err := s.CheckAssuming(ctx, LessOrEqual(obj, NewConstant(mid)))
		if err != nil {
			return nil, err
		}
		switch st {
		case Unknown:
			return finish(Feasible)
		case Satisfiable:
			if err := record(); err != nil {
				return nil, err
			}
			best = evaluate(obj, res.Solution)
			log.V(1).Infof("solve: objective improved to %d", res.ObjectiveValue)
		case Unsatisfiable:
			lo = mid + 1
			if err := s.Add(GreaterOrEqual(obj, NewConstant(lo))); err != nil {
				return nil, err
			}
		}
	}
	return finish(Optimal)
}

// SolutionIntegerValue returns the value of a linear argument in the solution of r.
func SolutionIntegerValue(r *Response, la LinearArgument) int64 {
	return evaluate(la, r.Solution)
}

// SolutionBooleanValue returns the value of a Boolean literal in the solution of r.
func SolutionBooleanValue(r *Response, bv BoolVar) bool {
	return evaluate(bv, r.Solution) != 0
}
