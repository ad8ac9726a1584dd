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

// PigeonholeProblem holds the model of putting pigeons into holes, at most one per hole.
type PigeonholeProblem struct {
	Model *cpmodel.Model
	// In[i][j] is true when pigeon i sits in hole j.
	In [][]cpmodel.BoolVar
}

// Pigeonhole builds the pigeonhole problem with plain clauses: each pigeon sits in some hole
// and no two pigeons share a hole. It is unsatisfiable when pigeons > holes, and resolution
// based solvers need exponential time to prove it, which makes it a handy hard instance.
func Pigeonhole(pigeons, holes int) (*PigeonholeProblem, error) {
	if pigeons < 0 || holes < 0 {
		return nil, fmt.Errorf("negative size %d pigeons, %d holes", pigeons, holes)
	}
	model := cpmodel.NewCpModelBuilder()
	in := make([][]cpmodel.BoolVar, pigeons)
	for i := range in {
		in[i] = make([]cpmodel.BoolVar, holes)
		for j := range in[i] {
			in[i][j] = model.NewBoolVar().WithName(fmt.Sprintf("p%d_h%d", i, j))
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

	m, err := model.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate the CP model: %w", err)
	}
	return &PigeonholeProblem{Model: m, In: in}, nil
}
