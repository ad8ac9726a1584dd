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

// Package report prints check results, models and solve responses as text or JSON.
package report

import (
	"fmt"
	"io"

	"github.com/sattoys/sattoys/sat/cpmodel"
	"github.com/sattoys/sattoys/sat/enumerate"
)

// Format is an output format.
type Format string

const (
	// Text is the plain text format.
	Text Format = "text"
	// JSON renders a google.protobuf.Struct with protojson.
	JSON Format = "json"
)

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Text, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q, want %q or %q", s, Text, JSON)
}

// WriteStatus writes the status of a check on its own line.
func WriteStatus(w io.Writer, st cpmodel.Status) error {
	_, err := fmt.Fprintln(w, st)
	return err
}

// WriteModel writes a model on its own line, as `[x = 1, flag = true]`.
func WriteModel(w io.Writer, a *cpmodel.Assignment) error {
	_, err := fmt.Fprintln(w, a)
	return err
}

// WriteSolution writes one enumerated model followed by a `<n> of <name>` line for each
// selected variable and a blank line.
func WriteSolution(w io.Writer, sol *enumerate.Solution) error {
	if _, err := fmt.Fprintf(w, "model solution:\n%v\n\n", sol.Assignment); err != nil {
		return err
	}
	for _, v := range sol.Selected {
		if _, err := fmt.Fprintf(w, "%d of %v\n", sol.Assignment.Value(v), v); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteSummary writes how an enumeration ended.
func WriteSummary(w io.Writer, s enumerate.Summary) error {
	_, err := fmt.Fprintf(w, "%d solutions, last check %v (%v)\n", s.Solutions, s.Final, s.Reason)
	return err
}

// WriteResponse writes the status of a one-shot solve, its objective value when m has an
// objective, and one `name = value` line per variable.
func WriteResponse(w io.Writer, m *cpmodel.Model, r *cpmodel.Response) error {
	if _, err := fmt.Fprintln(w, r.Status); err != nil {
		return err
	}
	if r.Status == cpmodel.ModelInvalid {
		_, err := fmt.Fprintln(w, r.SolutionInfo)
		return err
	}
	if len(r.Solution) == 0 {
		return nil
	}
	if m.HasObjective() {
		if _, err := fmt.Fprintf(w, "objective = %d\n", r.ObjectiveValue); err != nil {
			return err
		}
	}
	for _, v := range m.Variables() {
		val := fmt.Sprint(cpmodel.SolutionIntegerValue(r, v))
		if m.IsBool(v) {
			val = fmt.Sprint(cpmodel.SolutionIntegerValue(r, v) != 0)
		}
		if _, err := fmt.Fprintf(w, "%v = %s\n", v, val); err != nil {
			return err
		}
	}
	return nil
}
