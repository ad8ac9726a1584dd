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

// Package puzzles builds the models of a few classic toy constraint problems.
package puzzles

import (
	"fmt"

	"github.com/sattoys/sattoys/sat/cpmodel"
)

// ShirtTieProblem holds the model of the shirt and tie puzzle: wear a tie or a shirt, a tie
// needs a shirt, and not both.
type ShirtTieProblem struct {
	Model *cpmodel.Model
	Tie   cpmodel.BoolVar
	Shirt cpmodel.BoolVar
}

// ShirtTie builds the shirt and tie puzzle. Its only model is Tie = false, Shirt = true.
func ShirtTie() (*ShirtTieProblem, error) {
	model := cpmodel.NewCpModelBuilder()
	tie := model.NewBoolVar().WithName("Tie")
	shirt := model.NewBoolVar().WithName("Shirt")

	model.AddBoolOr(tie, shirt)
	model.AddBoolOr(tie.Not(), shirt)
	model.AddBoolOr(tie.Not(), shirt.Not())

	m, err := model.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate the CP model: %w", err)
	}
	return &ShirtTieProblem{Model: m, Tie: tie, Shirt: shirt}, nil
}

// Item is something that can be ordered, with its price in cents.
type Item struct {
	Name  string
	Price int64
}

// Appetizers is the menu of https://xkcd.com/287/.
var Appetizers = []Item{
	{Name: "mixed_fruit", Price: 215},
	{Name: "french_fries", Price: 275},
	{Name: "side_salad", Price: 335},
	{Name: "hot_wings", Price: 355},
	{Name: "mozzarella_sticks", Price: 420},
	{Name: "sampler_plate", Price: 580},
}

// OrderTotal is the amount, in cents, the order must add up to.
const OrderTotal = 1505

// OrderProblem holds the model of an exact change order.
type OrderProblem struct {
	Model *cpmodel.Model
	Items []Item
	// Quantities holds one variable per item, in the order of Items.
	Quantities []cpmodel.IntVar
}

// ExactChange builds the problem of ordering items whose prices add up to exactly target. Every
// quantity is only declared non-negative; the upper bounds follow from the equation.
func ExactChange(items []Item, target int64) (*OrderProblem, error) {
	model := cpmodel.NewCpModelBuilder()
	qs := make([]cpmodel.IntVar, len(items))
	terms := make([]cpmodel.LinearArgument, len(items))
	prices := make([]int64, len(items))
	for i, it := range items {
		if it.Price <= 0 {
			return nil, fmt.Errorf("item %q has non-positive price %d", it.Name, it.Price)
		}
		qs[i] = model.NewNonNegativeIntVar().WithName(it.Name)
		terms[i] = qs[i]
		prices[i] = it.Price
	}
	model.AddEquality(cpmodel.NewLinearExpr().AddWeightedSum(terms, prices), cpmodel.NewConstant(target))

	m, err := model.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate the CP model: %w", err)
	}
	return &OrderProblem{Model: m, Items: items, Quantities: qs}, nil
}

// XKCDOrder builds the appetizer order of https://xkcd.com/287/. It has two models:
// seven mixed fruits, or one mixed fruit, two hot wings and one sampler plate.
func XKCDOrder() (*OrderProblem, error) {
	return ExactChange(Appetizers, OrderTotal)
}

// CountExactChange counts by brute force the ways to pay exactly target with the given prices,
// each usable any number of times. It returns 0 when a price is not positive.
func CountExactChange(prices []int64, target int64) int {
	if target < 0 {
		return 0
	}
	if len(prices) == 0 {
		if target == 0 {
			return 1
		}
		return 0
	}
	if prices[0] <= 0 {
		return 0
	}
	n := 0
	for q := int64(0); q*prices[0] <= target; q++ {
		n += CountExactChange(prices[1:], target-q*prices[0])
	}
	return n
}
