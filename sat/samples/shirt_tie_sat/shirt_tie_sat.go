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

// The shirt_tie_sat command checks the shirt and tie puzzle and prints its only model.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/golang/glog"
	"github.com/sattoys/sattoys/sat/cpmodel"
	"github.com/sattoys/sattoys/sat/puzzles"
	"github.com/sattoys/sattoys/sat/report"
)

var (
	timeout = flag.Duration("timeout", 0, "bound on the check; 0 means no bound")
	format  = flag.String("format", "text", "output format: text or json")
)

func shirtTie(ctx context.Context) error {
	f, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}
	p, err := puzzles.ShirtTie()
	if err != nil {
		return err
	}
	s, err := cpmodel.NewSession(p.Model, cpmodel.WithTimeout(*timeout))
	if err != nil {
		return fmt.Errorf("failed to load the model: %w", err)
	}
	defer s.Close()

	start := time.Now()
	st, err := s.Check(ctx)
	if err != nil {
		return fmt.Errorf("failed to check the model: %w", err)
	}
	log.V(1).Infof("check returned %v after %v", st, time.Since(start))

	var a *cpmodel.Assignment
	if st == cpmodel.Satisfiable {
		if a, err = s.Model(); err != nil {
			return err
		}
	}
	if f == report.JSON {
		out, err := report.CheckStruct(st, a)
		if err != nil {
			return err
		}
		return report.WriteJSON(os.Stdout, out)
	}
	if err := report.WriteStatus(os.Stdout, st); err != nil {
		return err
	}
	if a == nil {
		return nil
	}
	return report.WriteModel(os.Stdout, a)
}

func main() {
	flag.Parse()
	if err := shirtTie(context.Background()); err != nil {
		log.Exitf("shirtTie returned with error: %v", err)
	}
}
