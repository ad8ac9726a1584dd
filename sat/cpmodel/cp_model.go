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

// Package cpmodel offers a small API to state constraint problems over Boolean and bounded
// integer variables and to solve them with the gini SAT solver.
//
// The `Builder` struct records variables and constraints.
// The `IntVar` and `BoolVar` structs are references to variables of a Builder and can be
// combined into `LinearExpr` values and `Formula` values.
// A frozen `Model` is handed to a `Session`, which encodes it into gini and answers
// satisfiability queries, or to `SolveCpModel` for one-shot solving and optimisation.
package cpmodel

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
)

var (
	// ErrMixedModels holds the error when elements added to a model are different.
	ErrMixedModels = errors.New("elements are not part of the same model")
	// ErrEmptyDomain is reported when a variable is declared with no possible value.
	ErrEmptyDomain = errors.New("variable has an empty domain")
)

type (
	// VarIndex is the index of a variable in the Builder, if positive. If this value is
	// negative, it represents the negation of a Boolean variable in the position (-1*VarIndex-1).
	VarIndex int32
	// ConstrIndex is the index of a constraint in the Builder.
	ConstrIndex int32
)

func (v VarIndex) positiveIndex() VarIndex {
	if v >= 0 {
		return v
	}
	return -1*v - 1
}

// LinearArgument provides an interface for BoolVar, IntVar, and LinearExpr.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, c int64)
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	varCoeffs []varCoeff
	offset    int64
}

type varCoeff struct {
	ind   VarIndex
	coeff int64
	cpb   *Builder
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c int64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds the linear argument term to the LinearExpr and returns itself.
func (l *LinearExpr) Add(la LinearArgument) *LinearExpr {
	return l.AddTerm(la, 1)
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c int64) *LinearExpr {
	l.offset += c
	return l
}

// AddTerm adds the linear argument term with the given coefficient to the LinearExpr and returns itself.
func (l *LinearExpr) AddTerm(la LinearArgument, coeff int64) *LinearExpr {
	la.addToLinearExpr(l, coeff)
	return l
}

// AddSum adds the sum of the linear arguments to the LinearExpr and returns itself.
func (l *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		l.Add(la)
	}
	return l
}

// AddWeightedSum adds the linear arguments with the corresponding coefficients to the LinearExpr
// and returns itself.
func (l *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []int64) *LinearExpr {
	if len(coeffs) != len(las) {
		log.Fatalf("las and coeffs must be the same length: %v != %v", len(las), len(coeffs))
	}
	for i, la := range las {
		l.AddTerm(la, coeffs[i])
	}
	return l
}

func (l *LinearExpr) addToLinearExpr(e *LinearExpr, c int64) {
	for _, vc := range l.varCoeffs {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: vc.ind, coeff: vc.coeff * c, cpb: vc.cpb})
	}
	e.offset += l.offset * c
}

// Offset returns the constant part of the expression.
func (l *LinearExpr) Offset() int64 {
	return l.offset
}

// terms returns the expression with one entry per variable, in first-appearance order, and
// zero coefficients dropped.
func (l *LinearExpr) terms() []varCoeff {
	pos := make(map[VarIndex]int, len(l.varCoeffs))
	var out []varCoeff
	for _, vc := range l.varCoeffs {
		if i, ok := pos[vc.ind]; ok {
			out[i].coeff += vc.coeff
			continue
		}
		pos[vc.ind] = len(out)
		out = append(out, vc)
	}
	kept := out[:0]
	for _, vc := range out {
		if vc.coeff != 0 {
			kept = append(kept, vc)
		}
	}
	return kept
}

func (l *LinearExpr) String() string {
	s := ""
	for _, vc := range l.terms() {
		name := vc.cpb.varName(vc.ind)
		switch {
		case s == "" && vc.coeff == 1:
			s = name
		case s == "" && vc.coeff == -1:
			s = "-" + name
		case s == "":
			s = fmt.Sprintf("%d*%s", vc.coeff, name)
		case vc.coeff == 1:
			s += " + " + name
		case vc.coeff == -1:
			s += " - " + name
		case vc.coeff < 0:
			s += fmt.Sprintf(" - %d*%s", -vc.coeff, name)
		default:
			s += fmt.Sprintf(" + %d*%s", vc.coeff, name)
		}
	}
	switch {
	case s == "":
		return fmt.Sprint(l.offset)
	case l.offset > 0:
		return fmt.Sprintf("%s + %d", s, l.offset)
	case l.offset < 0:
		return fmt.Sprintf("%s - %d", s, -l.offset)
	}
	return s
}

func asLinearExpr(la LinearArgument) *LinearExpr {
	if e, ok := la.(*LinearExpr); ok {
		return e
	}
	return NewLinearExpr().Add(la)
}

// IntVar is a reference to an integer variable in the model.
type IntVar struct {
	ind VarIndex
	cpb *Builder
}

// Name returns the name of the variable.
func (i IntVar) Name() string {
	return i.cpb.vars[i.ind].name
}

// Domain returns the declared domain of the variable.
func (i IntVar) Domain() Domain {
	return i.cpb.vars[i.ind].domain
}

// Index returns the index of the variable.
func (i IntVar) Index() VarIndex {
	return i.ind
}

// WithName sets the name of the variable.
func (i IntVar) WithName(s string) IntVar {
	i.cpb.vars[i.ind].name = s
	return i
}

func (i IntVar) String() string {
	return i.cpb.varName(i.ind)
}

func (i IntVar) addToLinearExpr(e *LinearExpr, c int64) {
	e.varCoeffs = append(e.varCoeffs, varCoeff{ind: i.ind, coeff: c, cpb: i.cpb})
}

// BoolVar is a reference to a Boolean variable or the negation of a Boolean variable in the
// model. A BoolVar is also the simplest Formula.
type BoolVar struct {
	ind VarIndex
	cpb *Builder
}

// Not returns the logical Not of the Boolean variable
func (b BoolVar) Not() BoolVar {
	return BoolVar{ind: -1*b.ind - 1, cpb: b.cpb}
}

// Name returns the name of the variable.
func (b BoolVar) Name() string {
	return b.cpb.vars[b.ind.positiveIndex()].name
}

// Index returns the index of the variable. If the variable is a negation of another variable v,
// its index is `-1*v.index-1`.
func (b BoolVar) Index() VarIndex {
	return b.ind
}

// WithName sets the name of the variable.
func (b BoolVar) WithName(s string) BoolVar {
	b.cpb.vars[b.ind.positiveIndex()].name = s
	return b
}

func (b BoolVar) String() string {
	if b.ind < 0 {
		return "Not(" + b.cpb.varName(b.ind.positiveIndex()) + ")"
	}
	return b.cpb.varName(b.ind)
}

func (b BoolVar) addToLinearExpr(e *LinearExpr, c int64) {
	if b.ind < 0 {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: b.ind.positiveIndex(), coeff: -c, cpb: b.cpb})
		e.offset += c
		return
	}
	e.varCoeffs = append(e.varCoeffs, varCoeff{ind: b.ind, coeff: c, cpb: b.cpb})
}

func (BoolVar) isFormula() {}

// Constraint is a reference to an asserted formula in the model.
type Constraint struct {
	ind ConstrIndex
	cpb *Builder
}

// WithName sets the name of the constraint.
func (c Constraint) WithName(s string) Constraint {
	c.cpb.constraints[c.ind].name = s
	return c
}

// Name returns the name of the constraint.
func (c Constraint) Name() string {
	return c.cpb.constraints[c.ind].name
}

// Index returns the index of the constraint.
func (c Constraint) Index() ConstrIndex {
	return c.ind
}

// OnlyEnforceIf adds a condition on the constraint. This constraint is only enforced iff all
// literals given are true.
func (c Constraint) OnlyEnforceIf(bvs ...BoolVar) Constraint {
	for _, bv := range bvs {
		if !c.cpb.checkSameModelAndSetErrorf(bv.cpb, "BoolVar %v added as enforcement literal of Constraint %v", bv.Index(), c.ind) {
			return c
		}
	}
	entry := &c.cpb.constraints[c.ind]
	entry.enforce = append(entry.enforce, bvs...)
	return c
}

type variable struct {
	name   string
	domain Domain
	isBool bool
}

type constraint struct {
	name    string
	f       Formula
	enforce []BoolVar
}

// formula returns the asserted Formula including its enforcement literals.
func (c constraint) formula() Formula {
	if len(c.enforce) == 0 {
		return c.f
	}
	conds := make([]Formula, len(c.enforce))
	for i, bv := range c.enforce {
		conds[i] = bv
	}
	return Implies(And(conds...), c.f)
}

type objective struct {
	expr     *LinearExpr
	maximize bool
}

// checkSameModelAndSetErrorf returns true if `cp` and `cp2` point to the same Builder.
// If false, an error with the error message `errString` is set on `cp` if `cp.err`
// is nil.
func (cp *Builder) checkSameModelAndSetErrorf(cp2 *Builder, format string, a ...any) bool {
	if cp == cp2 {
		return true
	}
	var args = make([]any, len(a)+1)
	copy(args, a)
	args[len(a)] = ErrMixedModels
	err := fmt.Errorf(format+": %w", args...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if cp.err == nil {
		cp.err = err
	}
	return false
}

// Builder records the variables and constraints of one problem.
type Builder struct {
	vars        []variable
	constraints []constraint
	constants   map[int64]VarIndex
	objective   *objective
	// The first and only the first error is reported in Model.
	err error
}

// NewCpModelBuilder creates and returns a new Builder.
func NewCpModelBuilder() *Builder {
	return &Builder{constants: make(map[int64]VarIndex)}
}

func (cp *Builder) varName(ind VarIndex) string {
	ind = ind.positiveIndex()
	if n := cp.vars[ind].name; n != "" {
		return n
	}
	return fmt.Sprintf("v%d", ind)
}

func (cp *Builder) newVar(d Domain, isBool bool) VarIndex {
	ind := VarIndex(len(cp.vars))
	if d.IsEmpty() && cp.err == nil {
		cp.err = fmt.Errorf("variable %d: %w", ind, ErrEmptyDomain)
	}
	cp.vars = append(cp.vars, variable{domain: d, isBool: isBool})
	return ind
}

// NewIntVar creates a new IntVar with values in `[lb,ub]`.
func (cp *Builder) NewIntVar(lb, ub int64) IntVar {
	return IntVar{cpb: cp, ind: cp.newVar(NewDomain(lb, ub), false)}
}

// NewIntVarFromDomain creates a new IntVar with the given domain.
func (cp *Builder) NewIntVarFromDomain(d Domain) IntVar {
	return IntVar{cpb: cp, ind: cp.newVar(d, false)}
}

// NewNonNegativeIntVar creates a new IntVar with values in `[0,+inf]`. The upper bound has to be
// implied by the constraints of the model.
func (cp *Builder) NewNonNegativeIntVar() IntVar {
	return cp.NewIntVar(0, math.MaxInt64)
}

// NewBoolVar creates a new BoolVar.
func (cp *Builder) NewBoolVar() BoolVar {
	return BoolVar{cpb: cp, ind: cp.newVar(NewDomain(0, 1), true)}
}

// NewConstant creates a constant variable. If this is called multiple times, the same variable will
// always be returned.
func (cp *Builder) NewConstant(v int64) IntVar {
	if i, ok := cp.constants[v]; ok {
		return IntVar{cpb: cp, ind: i}
	}
	constVar := cp.NewIntVar(v, v)
	cp.constants[v] = constVar.ind
	return constVar
}

// TrueVar returns an always true Boolean variable. If this is called multiple times, the same
// variable will always be returned.
func (cp *Builder) TrueVar() BoolVar {
	if i, ok := cp.constants[1]; ok && cp.vars[i].isBool {
		return BoolVar{cpb: cp, ind: i}
	}
	bv := BoolVar{cpb: cp, ind: cp.newVar(NewSingleDomain(1), true)}
	cp.constants[1] = bv.ind
	return bv
}

// FalseVar returns an always false Boolean variable. If this is called multiple times, the same
// variable will always be returned.
func (cp *Builder) FalseVar() BoolVar {
	if i, ok := cp.constants[0]; ok && cp.vars[i].isBool {
		return BoolVar{cpb: cp, ind: i}
	}
	bv := BoolVar{cpb: cp, ind: cp.newVar(NewSingleDomain(0), true)}
	cp.constants[0] = bv.ind
	return bv
}

// Add asserts the formula. Constraints are never retracted.
func (cp *Builder) Add(f Formula) Constraint {
	ind := ConstrIndex(len(cp.constraints))
	for _, other := range formulaBuilders(f) {
		if !cp.checkSameModelAndSetErrorf(other, "Formula %v added as Constraint %v", f, ind) {
			break
		}
	}
	cp.constraints = append(cp.constraints, constraint{f: f})
	return Constraint{cpb: cp, ind: ind}
}

func boolsAsFormulas(bvs []BoolVar) []Formula {
	fs := make([]Formula, len(bvs))
	for i, bv := range bvs {
		fs[i] = bv
	}
	return fs
}

// AddBoolOr adds the constraint that at least one of the literals must be true.
func (cp *Builder) AddBoolOr(bvs ...BoolVar) Constraint {
	return cp.Add(Or(boolsAsFormulas(bvs)...))
}

// AddBoolAnd adds the constraint that all of the literals must be true.
func (cp *Builder) AddBoolAnd(bvs ...BoolVar) Constraint {
	return cp.Add(And(boolsAsFormulas(bvs)...))
}

// AddBoolXor adds the constraint that an odd number of the literals must be true.
func (cp *Builder) AddBoolXor(bvs ...BoolVar) Constraint {
	return cp.Add(Xor(boolsAsFormulas(bvs)...))
}

// AddAtLeastOne adds the constraint that at least one of the literals must be true.
func (cp *Builder) AddAtLeastOne(bvs ...BoolVar) Constraint {
	return cp.AddBoolOr(bvs...)
}

// AddAtMostOne adds the constraint that at most one of the literals must be true.
func (cp *Builder) AddAtMostOne(bvs ...BoolVar) Constraint {
	return cp.Add(AtMost(1, bvs...))
}

// AddExactlyOne adds the constraint that exactly one of the literals must be true.
func (cp *Builder) AddExactlyOne(bvs ...BoolVar) Constraint {
	return cp.Add(Exactly(1, bvs...))
}

// AddImplication adds the constraint a => b.
func (cp *Builder) AddImplication(a, b BoolVar) Constraint {
	return cp.AddBoolOr(a.Not(), b)
}

// AddLinearConstraintForDomain adds the linear constraint `expr` in `domain`.
func (cp *Builder) AddLinearConstraintForDomain(expr LinearArgument, domain Domain) Constraint {
	return cp.Add(InDomain(expr, domain))
}

// AddLinearConstraint adds the linear constraint `lb <= expr <= ub`
func (cp *Builder) AddLinearConstraint(expr LinearArgument, lb, ub int64) Constraint {
	return cp.Add(InDomain(expr, NewDomain(lb, ub)))
}

// AddEquality adds the linear constraint `lhs == rhs`.
func (cp *Builder) AddEquality(lhs, rhs LinearArgument) Constraint {
	return cp.Add(Equal(lhs, rhs))
}

// AddLessOrEqual adds the linear constraint `lhs <= rhs`.
func (cp *Builder) AddLessOrEqual(lhs, rhs LinearArgument) Constraint {
	return cp.Add(LessOrEqual(lhs, rhs))
}

// AddLessThan adds the linear constraint `lhs < rhs`.
func (cp *Builder) AddLessThan(lhs, rhs LinearArgument) Constraint {
	return cp.Add(LessThan(lhs, rhs))
}

// AddGreaterOrEqual adds the linear constraint `lhs >= rhs`.
func (cp *Builder) AddGreaterOrEqual(lhs, rhs LinearArgument) Constraint {
	return cp.Add(GreaterOrEqual(lhs, rhs))
}

// AddGreaterThan adds the linear constraint `lhs > rhs`.
func (cp *Builder) AddGreaterThan(lhs, rhs LinearArgument) Constraint {
	return cp.Add(GreaterThan(lhs, rhs))
}

// AddNotEqual adds the linear constraint `lhs != rhs`.
func (cp *Builder) AddNotEqual(lhs, rhs LinearArgument) Constraint {
	return cp.Add(NotEqual(lhs, rhs))
}

func (cp *Builder) setObjective(obj LinearArgument, maximize bool) {
	o := asLinearExpr(obj)
	for _, vc := range o.varCoeffs {
		if !cp.checkSameModelAndSetErrorf(vc.cpb, "variable %v added to the objective", vc.ind) {
			return
		}
	}
	cp.objective = &objective{expr: NewLinearExpr().Add(o), maximize: maximize}
}

// Minimize sets a linear minimization objective.
func (cp *Builder) Minimize(obj LinearArgument) {
	cp.setObjective(obj, false)
}

// Maximize sets a linear maximization objective.
func (cp *Builder) Maximize(obj LinearArgument) {
	cp.setObjective(obj, true)
}

// Model returns a frozen copy of the problem built so far. Later calls to the Builder do not
// change the returned Model.
//
// Model returns an error when invalid parameters have been used during model building (e.g.
// passing variables from other builders).
func (cp *Builder) Model() (*Model, error) {
	if cp.err != nil {
		return nil, cp.err
	}
	m := &Model{
		cpb:         cp,
		vars:        append([]variable(nil), cp.vars...),
		constraints: append([]constraint(nil), cp.constraints...),
	}
	if cp.objective != nil {
		o := *cp.objective
		m.objective = &o
	}
	return m, nil
}

// Model is an immutable snapshot of a Builder.
type Model struct {
	cpb         *Builder
	vars        []variable
	constraints []constraint
	objective   *objective
}

// NumVariables returns the number of declared variables.
func (m *Model) NumVariables() int {
	return len(m.vars)
}

// NumConstraints returns the number of asserted constraints.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// HasObjective reports whether Minimize or Maximize was called before the snapshot.
func (m *Model) HasObjective() bool {
	return m.objective != nil
}

// Variables returns references to all variables in declaration order. Boolean variables are
// returned as IntVar with domain `[0,1]`.
func (m *Model) Variables() []IntVar {
	out := make([]IntVar, len(m.vars))
	for i := range m.vars {
		out[i] = IntVar{ind: VarIndex(i), cpb: m.cpb}
	}
	return out
}

// IsBool reports whether v was declared as a Boolean variable.
func (m *Model) IsBool(v IntVar) bool {
	return m.vars[v.ind].isBool
}

func (m *Model) varName(ind VarIndex) string {
	if n := m.vars[ind].name; n != "" {
		return n
	}
	return fmt.Sprintf("v%d", ind)
}
