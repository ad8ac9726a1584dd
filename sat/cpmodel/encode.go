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
	"math/bits"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// encoder translates variables and formulas of one Model into a combinational circuit whose
// literals are shared with the SAT solver.
//
// An integer variable x with domain [lo,hi] is represented by bitLen(hi-lo) circuit inputs
// holding x-lo in binary, least significant bit first. A variable with a single value has no
// input at all.
type encoder struct {
	m       *Model
	c       *logic.C
	domains []Domain
	lo      []int64
	bits    [][]z.Lit
	errs    []error
}

func newEncoder(m *Model, domains []Domain) *encoder {
	e := &encoder{
		m:       m,
		c:       logic.NewCCap(4 * len(domains)),
		domains: domains,
		lo:      make([]int64, len(domains)),
		bits:    make([][]z.Lit, len(domains)),
	}
	for i, d := range domains {
		lo, _ := d.Min()
		hi, _ := d.Max()
		e.lo[i] = lo
		width := bits.Len64(uint64(hi - lo))
		e.bits[i] = make([]z.Lit, width)
		for j := range e.bits[i] {
			e.bits[i][j] = e.c.Lit()
		}
	}
	return e
}

// domainLits returns, for each variable whose binary range is wider than its domain, the
// literal restricting it to the domain.
func (e *encoder) domainLits() []z.Lit {
	var out []z.Lit
	for i, d := range e.domains {
		v := e.vec(VarIndex(i))
		m := e.inDomain(v, d.Offset(-e.lo[i]))
		if m != e.c.T {
			out = append(out, m)
		}
	}
	return out
}

func (e *encoder) errorf(format string, a ...any) z.Lit {
	e.errs = append(e.errs, fmt.Errorf(format, a...))
	return e.c.F
}

// Error aggregates the errors met while encoding, or returns nil.
func (e *encoder) Error() error {
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	}
	s := make([]string, len(e.errs))
	for i, err := range e.errs {
		s[i] = err.Error()
	}
	return fmt.Errorf("%d errors encountered: %s: %w", len(s), strings.Join(s, ", "), e.errs[0])
}

func (e *encoder) checkVar(ind VarIndex, cpb *Builder) bool {
	if cpb != e.m.cpb {
		e.errorf("variable %v: %w", ind, ErrMixedModels)
		return false
	}
	if int(ind.positiveIndex()) >= len(e.bits) {
		e.errorf("variable %v was declared after the model was frozen", ind.positiveIndex())
		return false
	}
	return true
}

// lit returns the circuit literal equivalent to f.
func (e *encoder) lit(f Formula) z.Lit {
	switch t := f.(type) {
	case BoolVar:
		if !e.checkVar(t.ind, t.cpb) {
			return e.c.F
		}
		m := e.boolLit(t.ind.positiveIndex())
		if t.ind < 0 {
			return m.Not()
		}
		return m
	case boolFormula:
		ms := make([]z.Lit, len(t.args))
		for i, a := range t.args {
			ms[i] = e.lit(a)
		}
		switch t.op {
		case opAnd:
			return e.c.Ands(ms...)
		case opOr:
			return e.c.Ors(ms...)
		}
		acc := e.c.F
		for _, m := range ms {
			acc = e.c.Xor(acc, m)
		}
		return acc
	case notFormula:
		return e.lit(t.arg).Not()
	case linearFormula:
		return e.linear(t.expr, t.domain)
	case cardFormula:
		return e.card(t)
	case nil:
		return e.errorf("nil formula")
	}
	return e.errorf("unsupported formula %T", f)
}

// boolLit returns the literal true iff the 0/1 variable ind is 1.
func (e *encoder) boolLit(ind VarIndex) z.Lit {
	lo := e.lo[ind]
	switch bs := e.bits[ind]; {
	case len(bs) == 0 && lo == 1:
		return e.c.T
	case len(bs) == 0 && lo == 0:
		return e.c.F
	case len(bs) == 1 && lo == 0:
		return bs[0]
	}
	return e.errorf("variable %s with domain %v is not Boolean", e.m.varName(ind), e.domains[ind])
}

func (e *encoder) card(f cardFormula) z.Lit {
	ms := make([]z.Lit, len(f.lits))
	for i, l := range f.lits {
		ms[i] = e.lit(l)
	}
	lo, hi := max(f.lo, 0), min(f.hi, len(ms))
	switch {
	case lo > hi:
		return e.c.F
	case lo == 0 && hi == len(ms):
		return e.c.T
	}
	cs := e.c.CardSort(ms)
	geq, leq := e.c.T, e.c.T
	if lo > 0 {
		geq = cs.Geq(lo)
	}
	if hi < len(ms) {
		leq = cs.Leq(hi)
	}
	return e.c.And(geq, leq)
}

// weighted is a literal with a positive weight in a pseudo-Boolean sum.
type weighted struct {
	m z.Lit
	w uint64
}

// linear returns the literal true iff the value of expr lies in d.
//
// The expression is rewritten as K + Σ w·m with positive weights w, using x = lo + Σ 2^j·b_j
// for every variable and w·b = w + |w|·¬b for negative w. The sum is then built as a binary
// number and compared with the shifted domain.
func (e *encoder) linear(expr *LinearExpr, d Domain) z.Lit {
	k := expr.offset
	var ws []weighted
	var total uint64
	for _, t := range expr.terms() {
		if !e.checkVar(t.ind, t.cpb) {
			return e.c.F
		}
		k = satAdd(k, satMul(t.coeff, e.lo[t.ind]))
		for j, b := range e.bits[t.ind] {
			w := satMul(t.coeff, int64(1)<<j)
			if w == negInf || w == posInf {
				return e.errorf("coefficient %d of %s overflows", t.coeff, e.m.varName(t.ind))
			}
			if w < 0 {
				k = satAdd(k, w)
				ws = append(ws, weighted{m: b.Not(), w: uint64(-w)})
			} else {
				ws = append(ws, weighted{m: b, w: uint64(w)})
			}
			total += ws[len(ws)-1].w
		}
	}
	if k == negInf || k == posInf || total > math.MaxInt64 {
		return e.errorf("linear expression %v overflows", expr)
	}
	target := d.Offset(-k).IntersectionWith(NewDomain(0, int64(total)))
	sum := e.sum(ws)
	return e.inDomain(sum, target)
}

// inDomain returns the literal true iff the unsigned value of v lies in d.
func (e *encoder) inDomain(v bitVec, d Domain) z.Lit {
	d = d.IntersectionWith(NewDomain(0, int64(v.max)))
	if d.IsEmpty() {
		return e.c.F
	}
	var ms []z.Lit
	for _, itv := range d.Intervals() {
		ms = append(ms, e.c.And(e.geq(v, uint64(itv.Start)), e.leq(v, uint64(itv.End))))
	}
	return e.c.Ors(ms...)
}

// bitVec is an unsigned binary number, least significant bit first, whose value never
// exceeds max.
type bitVec struct {
	bits []z.Lit
	max  uint64
}

func (e *encoder) vec(ind VarIndex) bitVec {
	bs := e.bits[ind]
	var top uint64
	if len(bs) > 0 {
		top = 1<<len(bs) - 1
	}
	return bitVec{bits: bs, max: top}
}

func (e *encoder) bit(v bitVec, i int) z.Lit {
	if i < len(v.bits) {
		return v.bits[i]
	}
	return e.c.F
}

func (e *encoder) scaled(m z.Lit, w uint64) bitVec {
	v := bitVec{bits: make([]z.Lit, bits.Len64(w)), max: w}
	for i := range v.bits {
		v.bits[i] = e.c.F
		if w&(1<<i) != 0 {
			v.bits[i] = m
		}
	}
	return v
}

// add is a ripple-carry adder.
func (e *encoder) add(x, y bitVec) bitVec {
	top := x.max + y.max
	out := bitVec{bits: make([]z.Lit, bits.Len64(top)), max: top}
	carry := e.c.F
	for i := range out.bits {
		a, b := e.bit(x, i), e.bit(y, i)
		ab := e.c.Xor(a, b)
		out.bits[i] = e.c.Xor(ab, carry)
		carry = e.c.Or(e.c.And(a, b), e.c.And(carry, ab))
	}
	return out
}

// sum adds the weighted literals with a balanced tree of adders.
func (e *encoder) sum(ws []weighted) bitVec {
	if len(ws) == 0 {
		return bitVec{}
	}
	vs := make([]bitVec, len(ws))
	for i, w := range ws {
		vs[i] = e.scaled(w.m, w.w)
	}
	for len(vs) > 1 {
		next := vs[:0:0]
		for i := 0; i+1 < len(vs); i += 2 {
			next = append(next, e.add(vs[i], vs[i+1]))
		}
		if len(vs)%2 == 1 {
			next = append(next, vs[len(vs)-1])
		}
		vs = next
	}
	return vs[0]
}

// leq returns the literal true iff v <= k.
func (e *encoder) leq(v bitVec, k uint64) z.Lit {
	if k >= v.max {
		return e.c.T
	}
	// res is v[0..i] <= k[0..i], folded from the least significant bit.
	res := e.c.T
	for i, b := range v.bits {
		if k&(1<<i) != 0 {
			res = e.c.Or(b.Not(), res)
		} else {
			res = e.c.And(b.Not(), res)
		}
	}
	return res
}

// geq returns the literal true iff v >= k.
func (e *encoder) geq(v bitVec, k uint64) z.Lit {
	if k == 0 {
		return e.c.T
	}
	if k > v.max {
		return e.c.F
	}
	return e.leq(v, k-1).Not()
}

// value decodes variable ind from a model of the circuit.
func (e *encoder) value(ind VarIndex, truth func(z.Lit) bool) int64 {
	v := e.lo[ind]
	for j, b := range e.bits[ind] {
		if truth(b) {
			v += int64(1) << j
		}
	}
	return v
}

// exprBounds returns the smallest and largest values expr can take over the encoded domains.
func (e *encoder) exprBounds(expr *LinearExpr) (int64, int64) {
	lo, hi := expr.offset, expr.offset
	for _, t := range expr.terms() {
		dmin, _ := e.domains[t.ind].Min()
		dmax, _ := e.domains[t.ind].Max()
		a, b := satMul(dmin, t.coeff), satMul(dmax, t.coeff)
		if t.coeff < 0 {
			a, b = b, a
		}
		lo, hi = satAdd(lo, a), satAdd(hi, b)
	}
	return lo, hi
}
