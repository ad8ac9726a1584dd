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

package enumerate

import (
	"fmt"
	"io"

	"github.com/sattoys/sattoys/sat/cpmodel"
)

// Position is the enumeration state handed to a Tracer.
type Position interface {
	Solution() *Solution
	// Blocking is the clause asserted to exclude the current model.
	Blocking() cpmodel.Formula
}

// Tracer observes an enumeration.
type Tracer interface {
	Trace(p Position)
}

type position struct {
	sol   *Solution
	block cpmodel.Formula
}

func (p position) Solution() *Solution       { return p.sol }
func (p position) Blocking() cpmodel.Formula { return p.block }

// DefaultTracer ignores everything.
type DefaultTracer struct{}

// Trace does nothing.
func (DefaultTracer) Trace(_ Position) {
}

// LoggingTracer writes every model and its blocking clause to Writer.
type LoggingTracer struct {
	Writer io.Writer
}

// Trace writes the model at p followed by the clause blocking it.
func (t LoggingTracer) Trace(p Position) {
	fmt.Fprintf(t.Writer, "---\nModel %d:\n%v\n", p.Solution().Index, p.Solution().Assignment)
	fmt.Fprintf(t.Writer, "Blocking:\n- %v\n", p.Blocking())
}
