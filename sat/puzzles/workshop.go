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
	"fmt"

	"github.com/sattoys/sattoys/sat/cpmodel"
)

// Cut is one way to cut a 6"x13" plywood workpiece into 4"x5" pieces (output A) and 2"x3"
// pieces (output B).
type Cut struct {
	Name    string
	OutputA int64
	OutputB int64
}

// Cuts lists the four ways to cut a workpiece.
var Cuts = []Cut{
	{Name: "a_cuts", OutputA: 3, OutputB: 1},
	{Name: "b_cuts", OutputA: 2, OutputB: 6},
	{Name: "c_cuts", OutputA: 1, OutputB: 9},
	{Name: "d_cuts", OutputA: 0, OutputB: 13},
}

// Demands of the workshop.
const (
	DemandA = 800
	DemandB = 400
)

// WorkshopProblem holds the model of the wood workshop.
type WorkshopProblem struct {
	Model *cpmodel.Model
	// Counts holds the number of workpieces cut each way, in the order of Cuts.
	Counts []cpmodel.IntVar
	Total  cpmodel.IntVar
}

// WoodWorkshop builds the problem of meeting both demands exactly while using as few
// workpieces as possible. The optimum uses 275 workpieces: 250 cut as A and 25 cut as B.
func WoodWorkshop() (*WorkshopProblem, error) {
	model := cpmodel.NewCpModelBuilder()

	total := model.NewNonNegativeIntVar().WithName("workpieces_total")
	counts := make([]cpmodel.IntVar, len(Cuts))
	outA := cpmodel.NewLinearExpr()
	outB := cpmodel.NewLinearExpr()
	used := cpmodel.NewLinearExpr()
	for i, c := range Cuts {
		counts[i] = model.NewNonNegativeIntVar().WithName(c.Name)
		outA.AddTerm(counts[i], c.OutputA)
		outB.AddTerm(counts[i], c.OutputB)
		used.Add(counts[i])
	}
	model.AddEquality(used, total)
	model.AddEquality(outA, cpmodel.NewConstant(DemandA))
	model.AddEquality(outB, cpmodel.NewConstant(DemandB))
	model.Minimize(total)

	m, err := model.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate the CP model: %w", err)
	}
	return &WorkshopProblem{Model: m, Counts: counts, Total: total}, nil
}
