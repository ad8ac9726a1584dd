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
	"errors"
	"fmt"
	"math"
	"slices"

	log "github.com/golang/glog"
)

// MaxDomainSpan is the largest `max-min` accepted for a variable once its bounds have been
// tightened. Wider variables would need more than 32 bits each.
const MaxDomainSpan = int64(1) << 32

// ErrUnbounded is returned when a variable has no finite bounds after presolve.
var ErrUnbounded = errors.New("variable domain is unbounded")

const (
	negInf = math.MinInt64
	posInf = math.MaxInt64

	maxPresolveRounds = 64
)

func satAdd(a, b int64) int64 {
	switch {
	case a == negInf || b == negInf:
		return negInf
	case a == posInf || b == posInf:
		return posInf
	}
	s := a + b
	if a > 0 && b > 0 && s < 0 {
		return posInf
	}
	if a < 0 && b < 0 && s >= 0 {
		return negInf
	}
	return s
}

func satNeg(a int64) int64 {
	switch a {
	case negInf:
		return posInf
	case posInf:
		return negInf
	}
	return -a
}

func satMul(a, c int64) int64 {
	if a == 0 || c == 0 {
		return 0
	}
	neg := (a < 0) != (c < 0)
	if a == negInf || a == posInf {
		if neg {
			return negInf
		}
		return posInf
	}
	p := a * c
	if p/c != a || (a == -1 && c == math.MinInt64) || (c == -1 && a == math.MinInt64) {
		if neg {
			return negInf
		}
		return posInf
	}
	return p
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// linearRows returns the linear formulas that must hold in every solution: top-level linear
// constraints without enforcement literals, looking through top-level conjunctions.
func linearRows(cts []constraint) []linearFormula {
	var rows []linearFormula
	var visit func(Formula)
	visit = func(f Formula) {
		switch t := f.(type) {
		case linearFormula:
			rows = append(rows, t)
		case boolFormula:
			if t.op == opAnd {
				for _, a := range t.args {
					visit(a)
				}
			}
		}
	}
	for _, ct := range cts {
		if len(ct.enforce) == 0 {
			visit(ct.f)
		}
	}
	return rows
}

// presolve tightens the variable domains by bounds propagation over the linear rows, until a
// fixed point or maxPresolveRounds. It reports false when some domain became empty.
func presolve(domains []Domain, rows []linearFormula) bool {
	for round := 0; round < maxPresolveRounds; round++ {
		changed := false
		for _, row := range rows {
			ok, c := tightenRow(domains, row)
			if !ok {
				log.V(1).Infof("presolve: %v is infeasible", row)
				return false
			}
			changed = changed || c
		}
		if !changed {
			log.V(2).Infof("presolve: fixed point after %d rounds", round+1)
			return true
		}
	}
	return true
}

type termBounds struct {
	ind      VarIndex
	coeff    int64
	min, max int64
}

func tightenRow(domains []Domain, row linearFormula) (ok, changed bool) {
	rowMin, okMin := row.domain.Min()
	rowMax, okMax := row.domain.Max()
	if !okMin || !okMax {
		return false, false
	}
	lo := satAdd(rowMin, satNeg(row.expr.offset))
	hi := satAdd(rowMax, satNeg(row.expr.offset))
	if rowMin == negInf {
		lo = negInf
	}
	if rowMax == posInf {
		hi = posInf
	}

	terms := row.expr.terms()
	bounds := make([]termBounds, len(terms))
	var sumMin, sumMax int64
	var infMin, infMax int
	for i, t := range terms {
		d := domains[t.ind]
		dmin, _ := d.Min()
		dmax, _ := d.Max()
		a, b := satMul(dmin, t.coeff), satMul(dmax, t.coeff)
		if t.coeff < 0 {
			a, b = b, a
		}
		bounds[i] = termBounds{ind: t.ind, coeff: t.coeff, min: a, max: b}
		if a == negInf {
			infMin++
		} else {
			sumMin = satAdd(sumMin, a)
		}
		if b == posInf {
			infMax++
		} else {
			sumMax = satAdd(sumMax, b)
		}
	}

	for _, tb := range bounds {
		// residual bounds of the row without this term
		resMin, resMax := int64(negInf), int64(posInf)
		if tb.min == negInf && infMin == 1 || infMin == 0 {
			resMin = sumMin
			if tb.min != negInf {
				resMin = satAdd(sumMin, satNeg(tb.min))
			}
		}
		if tb.max == posInf && infMax == 1 || infMax == 0 {
			resMax = sumMax
			if tb.max != posInf {
				resMax = satAdd(sumMax, satNeg(tb.max))
			}
		}
		// coeff*x in [termLo, termHi]
		termLo, termHi := int64(negInf), int64(posInf)
		if lo != negInf && resMax != posInf {
			termLo = satAdd(lo, satNeg(resMax))
		}
		if hi != posInf && resMin != negInf {
			termHi = satAdd(hi, satNeg(resMin))
		}
		newLo, newHi := int64(negInf), int64(posInf)
		if tb.coeff > 0 {
			if termLo != negInf && termLo != posInf {
				newLo = ceilDiv(termLo, tb.coeff)
			}
			if termHi != posInf && termHi != negInf {
				newHi = floorDiv(termHi, tb.coeff)
			}
		} else {
			if termHi != posInf && termHi != negInf {
				newLo = ceilDiv(termHi, tb.coeff)
			}
			if termLo != negInf && termLo != posInf {
				newHi = floorDiv(termLo, tb.coeff)
			}
		}
		if newLo == negInf && newHi == posInf {
			continue
		}
		d := domains[tb.ind]
		nd := d.IntersectionWith(NewDomain(newLo, newHi))
		if nd.IsEmpty() {
			domains[tb.ind] = nd
			return false, true
		}
		if !slices.Equal(nd.FlattenedIntervals(), d.FlattenedIntervals()) {
			domains[tb.ind] = nd
			changed = true
		}
	}
	return true, changed
}

// checkBounded returns an error naming the first variable whose span exceeds MaxDomainSpan.
func checkBounded(m *Model, domains []Domain) error {
	for i, d := range domains {
		lo, _ := d.Min()
		hi, _ := d.Max()
		if lo == negInf || hi == posInf || satAdd(hi, satNeg(lo)) > MaxDomainSpan {
			return fmt.Errorf("variable %s with domain %v: %w", m.varName(VarIndex(i)), d, ErrUnbounded)
		}
	}
	return nil
}
