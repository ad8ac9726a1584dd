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
	"fmt"
	"math"
	"strings"
)

// Formula is a Boolean-valued expression over the variables of one Builder. Formulas are
// asserted with Builder.Add or Session.Add and may be nested freely.
type Formula interface {
	fmt.Stringer
	isFormula()
}

type boolOp uint8

const (
	opAnd boolOp = iota
	opOr
	opXor
)

func (op boolOp) String() string {
	switch op {
	case opAnd:
		return "And"
	case opOr:
		return "Or"
	}
	return "Xor"
}

// boolFormula combines its arguments with one n-ary connective. An empty And is true, an empty
// Or and an empty Xor are false.
type boolFormula struct {
	op   boolOp
	args []Formula
}

func (boolFormula) isFormula() {}

func (f boolFormula) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%v(%s)", f.op, strings.Join(parts, ", "))
}

type notFormula struct {
	arg Formula
}

func (notFormula) isFormula() {}

func (f notFormula) String() string {
	return fmt.Sprintf("Not(%v)", f.arg)
}

// linearFormula holds when the value of expr lies in domain.
type linearFormula struct {
	expr   *LinearExpr
	domain Domain
}

func (linearFormula) isFormula() {}

func (f linearFormula) String() string {
	its := f.domain.intervals
	if len(its) == 1 {
		itv := its[0]
		switch {
		case itv.Start == itv.End:
			return fmt.Sprintf("%v == %d", f.expr, itv.Start)
		case itv.Start == math.MinInt64:
			return fmt.Sprintf("%v <= %d", f.expr, itv.End)
		case itv.End == math.MaxInt64:
			return fmt.Sprintf("%v >= %d", f.expr, itv.Start)
		}
	}
	if len(its) == 2 && its[0].Start == math.MinInt64 && its[1].End == math.MaxInt64 && its[0].End+2 == its[1].Start {
		return fmt.Sprintf("%v != %d", f.expr, its[0].End+1)
	}
	return fmt.Sprintf("%v in %v", f.expr, f.domain)
}

// cardFormula holds when the number of true literals lies in `[lo,hi]`.
type cardFormula struct {
	lits   []BoolVar
	lo, hi int
}

func (cardFormula) isFormula() {}

func (f cardFormula) String() string {
	parts := make([]string, len(f.lits))
	for i, l := range f.lits {
		parts[i] = l.String()
	}
	return fmt.Sprintf("Card[%d,%d](%s)", f.lo, f.hi, strings.Join(parts, ", "))
}

// Or holds when at least one of fs holds.
func Or(fs ...Formula) Formula {
	return boolFormula{op: opOr, args: fs}
}

// And holds when every one of fs holds.
func And(fs ...Formula) Formula {
	return boolFormula{op: opAnd, args: fs}
}

// Xor holds when an odd number of fs hold.
func Xor(fs ...Formula) Formula {
	return boolFormula{op: opXor, args: fs}
}

// Not negates f.
func Not(f Formula) Formula {
	if bv, ok := f.(BoolVar); ok {
		return bv.Not()
	}
	if n, ok := f.(notFormula); ok {
		return n.arg
	}
	return notFormula{arg: f}
}

// Implies holds when a is false or b is true.
func Implies(a, b Formula) Formula {
	return Or(Not(a), b)
}

// InDomain holds when the value of expr lies in d.
func InDomain(expr LinearArgument, d Domain) Formula {
	return linearFormula{expr: NewLinearExpr().Add(expr), domain: d}
}

func difference(lhs, rhs LinearArgument) *LinearExpr {
	return NewLinearExpr().Add(lhs).AddTerm(rhs, -1)
}

// Equal holds when `lhs == rhs`.
func Equal(lhs, rhs LinearArgument) Formula {
	return linearFormula{expr: difference(lhs, rhs), domain: NewSingleDomain(0)}
}

// NotEqual holds when `lhs != rhs`.
func NotEqual(lhs, rhs LinearArgument) Formula {
	return linearFormula{expr: difference(lhs, rhs), domain: NewSingleDomain(0).Complement()}
}

// LessOrEqual holds when `lhs <= rhs`.
func LessOrEqual(lhs, rhs LinearArgument) Formula {
	return linearFormula{expr: difference(lhs, rhs), domain: NewDomain(math.MinInt64, 0)}
}

// LessThan holds when `lhs < rhs`.
func LessThan(lhs, rhs LinearArgument) Formula {
	return linearFormula{expr: difference(lhs, rhs), domain: NewDomain(math.MinInt64, -1)}
}

// GreaterOrEqual holds when `lhs >= rhs`.
func GreaterOrEqual(lhs, rhs LinearArgument) Formula {
	return linearFormula{expr: difference(lhs, rhs), domain: NewDomain(0, math.MaxInt64)}
}

// GreaterThan holds when `lhs > rhs`.
func GreaterThan(lhs, rhs LinearArgument) Formula {
	return linearFormula{expr: difference(lhs, rhs), domain: NewDomain(1, math.MaxInt64)}
}

// AtMost holds when at most n of the literals are true.
func AtMost(n int, bvs ...BoolVar) Formula {
	return cardFormula{lits: bvs, lo: 0, hi: n}
}

// AtLeast holds when at least n of the literals are true.
func AtLeast(n int, bvs ...BoolVar) Formula {
	return cardFormula{lits: bvs, lo: n, hi: len(bvs)}
}

// Exactly holds when exactly n of the literals are true.
func Exactly(n int, bvs ...BoolVar) Formula {
	return cardFormula{lits: bvs, lo: n, hi: n}
}

// formulaBuilders returns the builders owning the variables referenced by f, without
// duplicates.
func formulaBuilders(f Formula) []*Builder {
	seen := map[*Builder]bool{}
	var out []*Builder
	note := func(b *Builder) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	var walk func(Formula)
	walk = func(f Formula) {
		switch t := f.(type) {
		case BoolVar:
			note(t.cpb)
		case boolFormula:
			for _, a := range t.args {
				walk(a)
			}
		case notFormula:
			walk(t.arg)
		case linearFormula:
			for _, vc := range t.expr.varCoeffs {
				note(vc.cpb)
			}
		case cardFormula:
			for _, l := range t.lits {
				note(l.cpb)
			}
		}
	}
	walk(f)
	return out
}
