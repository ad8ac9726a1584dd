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
	"sort"
	"strings"
)

// ClosedInterval is the set of integers `[Start,End]`. It is empty when Start > End.
type ClosedInterval struct {
	Start int64
	End   int64
}

// saturatingAdd returns i+delta clamped to the int64 range. The two extreme values stand for
// unbounded ends and are never moved.
func saturatingAdd(i, delta int64) int64 {
	if i == math.MinInt64 || i == math.MaxInt64 {
		return i
	}
	s := i + delta
	switch {
	case delta < 0 && s > i:
		return math.MinInt64
	case delta > 0 && s < i:
		return math.MaxInt64
	}
	return s
}

// Offset shifts both ends of the interval by delta, saturating at the int64 limits.
func (c ClosedInterval) Offset(delta int64) ClosedInterval {
	return ClosedInterval{saturatingAdd(c.Start, delta), saturatingAdd(c.End, delta)}
}

func (c ClosedInterval) String() string {
	if c.Start == c.End {
		return fmt.Sprintf("[%d]", c.Start)
	}
	return fmt.Sprintf("[%s,%s]", boundString(c.Start), boundString(c.End))
}

func boundString(v int64) string {
	switch v {
	case math.MinInt64:
		return "-inf"
	case math.MaxInt64:
		return "+inf"
	}
	return fmt.Sprint(v)
}

// Domain is a set of integers kept as a sorted list of disjoint, non-adjacent intervals.
type Domain struct {
	intervals []ClosedInterval
}

// normalize drops empty intervals, sorts the rest and merges the ones that overlap or touch.
func (d *Domain) normalize() {
	kept := d.intervals[:0:0]
	for _, itv := range d.intervals {
		if itv.Start <= itv.End {
			kept = append(kept, itv)
		}
	}
	if len(kept) == 0 {
		d.intervals = nil
		return
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Start != kept[j].Start {
			return kept[i].Start < kept[j].Start
		}
		return kept[i].End < kept[j].End
	})
	merged := []ClosedInterval{kept[0]}
	for _, itv := range kept[1:] {
		last := &merged[len(merged)-1]
		if last.End == math.MaxInt64 || last.End+1 >= itv.Start {
			if itv.End > last.End {
				last.End = itv.End
			}
			continue
		}
		merged = append(merged, itv)
	}
	d.intervals = merged
}

// NewEmptyDomain returns the empty set.
func NewEmptyDomain() Domain {
	return Domain{}
}

// NewSingleDomain returns `[val]`.
func NewSingleDomain(val int64) Domain {
	return Domain{[]ClosedInterval{{val, val}}}
}

// NewDomain returns `[left,right]`, or the empty domain when left > right.
func NewDomain(left, right int64) Domain {
	if left > right {
		return NewEmptyDomain()
	}
	return Domain{[]ClosedInterval{{left, right}}}
}

// NewUnboundedDomain returns the whole int64 range.
func NewUnboundedDomain() Domain {
	return NewDomain(math.MinInt64, math.MaxInt64)
}

// FromValues returns the set of values. Order and repetitions do not matter.
func FromValues(values []int64) Domain {
	var d Domain
	for _, v := range values {
		d.intervals = append(d.intervals, ClosedInterval{v, v})
	}
	d.normalize()
	return d
}

// FromIntervals returns the union of intervals.
func FromIntervals(intervals []ClosedInterval) Domain {
	d := Domain{append([]ClosedInterval(nil), intervals...)}
	d.normalize()
	return d
}

// FromFlatIntervals builds a domain from `[s0, e0, s1, e1, ...]`.
func FromFlatIntervals(values []int64) (Domain, error) {
	if len(values)%2 != 0 {
		return NewEmptyDomain(), fmt.Errorf("len(values)=%v must be a multiple of 2", len(values))
	}
	var d Domain
	for i := 0; i < len(values); i += 2 {
		d.intervals = append(d.intervals, ClosedInterval{values[i], values[i+1]})
	}
	d.normalize()
	return d, nil
}

// FlattenedIntervals returns `[s0, e0, s1, e1, ...]`.
func (d Domain) FlattenedIntervals() []int64 {
	var result []int64
	for _, itv := range d.intervals {
		result = append(result, itv.Start, itv.End)
	}
	return result
}

// Intervals returns a copy of the intervals of d in increasing order.
func (d Domain) Intervals() []ClosedInterval {
	return append([]ClosedInterval(nil), d.intervals...)
}

// IsEmpty reports whether d contains no value.
func (d Domain) IsEmpty() bool {
	return len(d.intervals) == 0
}

// Min returns the smallest value of d, or false if d is empty.
func (d Domain) Min() (int64, bool) {
	if d.IsEmpty() {
		return 0, false
	}
	return d.intervals[0].Start, true
}

// Max returns the largest value of d, or false if d is empty.
func (d Domain) Max() (int64, bool) {
	if d.IsEmpty() {
		return 0, false
	}
	return d.intervals[len(d.intervals)-1].End, true
}

// Contains reports whether v is in d.
func (d Domain) Contains(v int64) bool {
	i := sort.Search(len(d.intervals), func(i int) bool { return d.intervals[i].End >= v })
	return i < len(d.intervals) && d.intervals[i].Start <= v
}

// Size returns the number of values of d, saturated at math.MaxInt64.
func (d Domain) Size() int64 {
	var n int64
	for _, itv := range d.intervals {
		w := uint64(itv.End) - uint64(itv.Start) + 1
		if w == 0 || w > math.MaxInt64 || n > math.MaxInt64-int64(w) {
			return math.MaxInt64
		}
		n += int64(w)
	}
	return n
}

// Complement returns the values of the int64 range that are not in d.
func (d Domain) Complement() Domain {
	var out []ClosedInterval
	next := int64(math.MinInt64)
	open := true
	for _, itv := range d.intervals {
		if itv.Start > next {
			out = append(out, ClosedInterval{next, itv.Start - 1})
		}
		if itv.End == math.MaxInt64 {
			open = false
			break
		}
		next = itv.End + 1
	}
	if open {
		out = append(out, ClosedInterval{next, math.MaxInt64})
	}
	return FromIntervals(out)
}

// IntersectionWith returns the values both in d and in o.
func (d Domain) IntersectionWith(o Domain) Domain {
	var out []ClosedInterval
	i, j := 0, 0
	for i < len(d.intervals) && j < len(o.intervals) {
		a, b := d.intervals[i], o.intervals[j]
		lo, hi := max(a.Start, b.Start), min(a.End, b.End)
		if lo <= hi {
			out = append(out, ClosedInterval{lo, hi})
		}
		if a.End < b.End {
			i++
		} else {
			j++
		}
	}
	return Domain{out}
}

// Offset shifts every value of d by delta, saturating at the int64 limits.
func (d Domain) Offset(delta int64) Domain {
	out := make([]ClosedInterval, len(d.intervals))
	for i, itv := range d.intervals {
		out[i] = itv.Offset(delta)
	}
	return FromIntervals(out)
}

func (d Domain) String() string {
	if d.IsEmpty() {
		return "[]"
	}
	var sb strings.Builder
	for _, itv := range d.intervals {
		sb.WriteString(itv.String())
	}
	return sb.String()
}
