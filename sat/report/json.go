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

package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/sattoys/sattoys/sat/cpmodel"
	"github.com/sattoys/sattoys/sat/enumerate"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrDuplicateName is returned when two variables would share a JSON key.
var ErrDuplicateName = errors.New("duplicate variable name")

// AssignmentStruct maps every variable name of a to its value. Boolean variables map to bool
// values, the others to numbers.
func AssignmentStruct(a *cpmodel.Assignment) (*structpb.Struct, error) {
	fields := map[string]any{}
	for _, v := range a.Vars() {
		if _, ok := fields[v.String()]; ok {
			return nil, fmt.Errorf("variable %d named %q: %w", v.Index(), v.String(), ErrDuplicateName)
		}
		if a.IsBool(v) {
			fields[v.String()] = a.Value(v) != 0
		} else {
			fields[v.String()] = a.Value(v)
		}
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("converting %v: %w", a, err)
	}
	return s, nil
}

// CheckStruct describes a single check: `{"status": "sat", "model": {...}}`. a may be nil.
func CheckStruct(st cpmodel.Status, a *cpmodel.Assignment) (*structpb.Struct, error) {
	out := &structpb.Struct{Fields: map[string]*structpb.Value{
		"status": structpb.NewStringValue(st.String()),
	}}
	if a != nil {
		m, err := AssignmentStruct(a)
		if err != nil {
			return nil, err
		}
		out.Fields["model"] = structpb.NewStructValue(m)
	}
	return out, nil
}

// EnumerationStruct describes an enumeration: its models in order and how it ended.
func EnumerationStruct(sols []*enumerate.Solution, s enumerate.Summary) (*structpb.Struct, error) {
	models := make([]*structpb.Value, len(sols))
	for i, sol := range sols {
		m, err := AssignmentStruct(sol.Assignment)
		if err != nil {
			return nil, err
		}
		models[i] = structpb.NewStructValue(m)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"solutions": structpb.NewListValue(&structpb.ListValue{Values: models}),
		"count":     structpb.NewNumberValue(float64(s.Solutions)),
		"status":    structpb.NewStringValue(s.Final.String()),
		"reason":    structpb.NewStringValue(s.Reason.String()),
	}}, nil
}

// ResponseStruct describes a one-shot solve of m.
func ResponseStruct(m *cpmodel.Model, r *cpmodel.Response) (*structpb.Struct, error) {
	out := &structpb.Struct{Fields: map[string]*structpb.Value{
		"status":     structpb.NewStringValue(r.Status.String()),
		"num_checks": structpb.NewNumberValue(float64(r.NumChecks)),
		"wall_time":  structpb.NewStringValue(r.WallTime.String()),
	}}
	if r.SolutionInfo != "" {
		out.Fields["solution_info"] = structpb.NewStringValue(r.SolutionInfo)
	}
	if len(r.Solution) == 0 {
		return out, nil
	}
	if m.HasObjective() {
		out.Fields["objective_value"] = structpb.NewNumberValue(float64(r.ObjectiveValue))
	}
	values := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	for _, v := range m.Variables() {
		if _, ok := values.Fields[v.String()]; ok {
			return nil, fmt.Errorf("variable %d named %q: %w", v.Index(), v.String(), ErrDuplicateName)
		}
		val := cpmodel.SolutionIntegerValue(r, v)
		if m.IsBool(v) {
			values.Fields[v.String()] = structpb.NewBoolValue(val != 0)
		} else {
			values.Fields[v.String()] = structpb.NewNumberValue(float64(val))
		}
	}
	out.Fields["solution"] = structpb.NewStructValue(values)
	return out, nil
}

// WriteJSON renders msg as indented JSON followed by a newline.
func WriteJSON(w io.Writer, msg proto.Message) error {
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling %T: %w", msg, err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}
