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

// The xkcd_order_sat command lists every order of appetizers that costs exactly $15.05
// (https://xkcd.com/287/).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	log "github.com/golang/glog"
	"github.com/sattoys/sattoys/sat/cpmodel"
	"github.com/sattoys/sattoys/sat/enumerate"
	"github.com/sattoys/sattoys/sat/puzzles"
	"github.com/sattoys/sattoys/sat/report"
)

var (
	timeout      = flag.Duration("timeout", 0, "bound on each check; 0 means no bound")
	maxSolutions = flag.Int("max_solutions", 0, "stop after this many orders; 0 means all of them")
	format       = flag.String("format", "text", "output format: text or json")
	trace        = flag.Bool("trace", false, "log every model and its blocking clause to stderr")
)

func xkcdOrder(ctx context.Context) error {
	f, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}
	p, err := puzzles.XKCDOrder()
	if err != nil {
		return err
	}
	s, err := cpmodel.NewSession(p.Model)
	if err != nil {
		return fmt.Errorf("failed to load the model: %w", err)
	}
	defer s.Close()

	opts := []enumerate.Option{
		enumerate.WithLimit(*maxSolutions),
		enumerate.WithTimeout(*timeout),
		enumerate.WithPredicate(enumerate.Positive),
	}
	if *trace {
		opts = append(opts, enumerate.WithTracer(enumerate.LoggingTracer{Writer: os.Stderr}))
	}

	var sols []*enumerate.Solution
	summary, err := enumerate.Enumerate(ctx, s, p.Quantities, func(sol *enumerate.Solution) error {
		if f == report.JSON {
			sols = append(sols, sol)
			return nil
		}
		return report.WriteSolution(os.Stdout, sol)
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to enumerate the orders: %w", err)
	}
	log.V(1).Infof("enumeration ended after %d checks: %+v", s.NumChecks(), summary)

	if f == report.JSON {
		out, err := report.EnumerationStruct(sols, summary)
		if err != nil {
			return err
		}
		return report.WriteJSON(os.Stdout, out)
	}
	return report.WriteSummary(os.Stdout, summary)
}

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := xkcdOrder(ctx); err != nil {
		log.Exitf("xkcdOrder returned with error: %v", err)
	}
}
