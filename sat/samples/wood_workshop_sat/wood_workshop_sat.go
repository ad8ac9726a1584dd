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

// The wood_workshop_sat command finds the fewest plywood workpieces that meet the demand of
// the wood workshop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/golang/glog"
	"github.com/sattoys/sattoys/sat/cpmodel"
	"github.com/sattoys/sattoys/sat/puzzles"
	"github.com/sattoys/sattoys/sat/report"
)

var (
	timeout = flag.Duration("timeout", 0, "bound on the whole solve; 0 means no bound")
	format  = flag.String("format", "text", "output format: text or json")
)

func woodWorkshop(ctx context.Context) error {
	f, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}
	p, err := puzzles.WoodWorkshop()
	if err != nil {
		return err
	}
	response, err := cpmodel.SolveCpModelWithParameters(ctx, p.Model, &cpmodel.Parameters{MaxTime: *timeout})
	if err != nil {
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	log.V(1).Infof("solve returned %v after %d checks in %v", response.Status, response.NumChecks, response.WallTime)

	if f == report.JSON {
		out, err := report.ResponseStruct(p.Model, response)
		if err != nil {
			return err
		}
		return report.WriteJSON(os.Stdout, out)
	}
	return report.WriteResponse(os.Stdout, p.Model, response)
}

func main() {
	flag.Parse()
	if err := woodWorkshop(context.Background()); err != nil {
		log.Exitf("woodWorkshop returned with error: %v", err)
	}
}
