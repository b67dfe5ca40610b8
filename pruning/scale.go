// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pruning

import (
	"math"
	"time"

	"github.com/js-arias/covtree/dates"
)

// A Scale converts between calendar dates
// and branch distances on a tree.
// It is anchored on the reference terminal of the tree
// (the terminal closest to the root),
// and works with a whole-day granularity.
type Scale struct {
	date time.Time
	x    float64
}

// Scale returns the date scale of a tree.
// As the reference terminal is the earliest terminal,
// the scale is the same for any pruned snapshot
// that keeps at least one terminal.
func (t *Tree) Scale() Scale {
	ref := t.nodes[t.ref]
	return Scale{
		date: ref.first,
		x:    ref.x,
	}
}

// X returns the branch distance for a calendar date.
// The conversion is monotonic:
// a later date always maps to a larger distance.
func (s Scale) X(d time.Time) float64 {
	days := dates.Day(d).Sub(s.date).Hours() / 24
	return days/DaysPerYear + s.x
}

// Date returns the calendar date for a branch distance,
// rounded to a whole day.
func (s Scale) Date(x float64) time.Time {
	days := int(math.Round((x - s.x) * DaysPerYear))
	return s.date.AddDate(0, 0, days)
}
