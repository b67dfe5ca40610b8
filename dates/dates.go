// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dates provides collection date ranges
// for a set of lineage clusters.
package dates

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ISO is the layout of a collection date,
// with a whole day granularity.
const ISO = "2006-01-02"

// A Range is the collection date range
// of the samples assigned to a cluster.
type Range struct {
	// First and Last are the collection dates
	// of the earliest and most recent samples.
	First time.Time
	Last  time.Time
}

// Data is a collection of date ranges
// for a set of lineage clusters.
type Data struct {
	taxon map[string]Range
}

// New creates a new empty data set.
func New() *Data {
	return &Data{
		taxon: make(map[string]Range),
	}
}

// Add adds a collection date range for a given taxon.
// If the taxon is already in the data set,
// the stored range will be extended
// to include the new dates.
func (d *Data) Add(taxon string, first, last time.Time) error {
	taxon = canon(taxon)
	if taxon == "" {
		return nil
	}

	first = Day(first)
	last = Day(last)
	if last.Before(first) {
		return fmt.Errorf("taxon %q: last date %s before first date %s", taxon, Format(last), Format(first))
	}

	r, ok := d.taxon[taxon]
	if !ok {
		d.taxon[taxon] = Range{First: first, Last: last}
		return nil
	}
	if first.Before(r.First) {
		r.First = first
	}
	if last.After(r.Last) {
		r.Last = last
	}
	d.taxon[taxon] = r
	return nil
}

// Len returns the number of taxa in the data set.
func (d *Data) Len() int {
	return len(d.taxon)
}

// Range returns the collection date range for a taxon.
func (d *Data) Range(taxon string) (Range, bool) {
	taxon = canon(taxon)
	r, ok := d.taxon[taxon]
	return r, ok
}

// Taxa returns the taxa with defined date ranges
// in a data set.
func (d *Data) Taxa() []string {
	taxa := make([]string, 0, len(d.taxon))
	for tx := range d.taxon {
		taxa = append(taxa, tx)
	}
	slices.Sort(taxa)
	return taxa
}

// IsRecombinant returns true if a taxon name
// is the name of a recombinant cluster
// (i.e., it starts with the reserved marker "X",
// as in Pango nomenclature).
func IsRecombinant(name string) bool {
	name = canon(name)
	return strings.HasPrefix(name, "X")
}

// Day returns a date with a whole day granularity.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse returns the date defined by an ISO 8601 date string
// ("yyyy-mm-dd").
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(ISO, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// Format returns a date as an ISO 8601 date string.
func Format(t time.Time) string {
	return t.Format(ISO)
}

// Canon returns a taxon name in its canonical form
// (lineage names keep their case).
func canon(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
