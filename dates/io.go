// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadTSV reads a set of collection date ranges
// for a set of lineage clusters
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - taxon, the name of the cluster
//   - first, the collection date of the earliest sample
//   - last, the collection date of the most recent sample
//
// Dates must be in ISO 8601 format ("yyyy-mm-dd").
// If one of the dates is empty,
// the other date will be used for both ends of the range.
//
// Here is an example file:
//
//	taxon	first	last
//	B.1.1.7	2020-09-20	2021-01-11
//	B.1.351	2020-10-08	2021-01-04
//	P.1	2020-12-04	2021-01-12
//	XA	2020-12-18	2021-01-02
func ReadTSV(r io.Reader) (*Data, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range []string{"taxon", "first", "last"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	d := New()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "taxon"
		tax := canon(row[fields[f]])
		if tax == "" {
			continue
		}

		f = "first"
		fs := strings.TrimSpace(row[fields[f]])

		f = "last"
		ls := strings.TrimSpace(row[fields[f]])

		if fs == "" {
			fs = ls
		}
		if ls == "" {
			ls = fs
		}
		if fs == "" {
			continue
		}

		first, err := Parse(fs)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field \"first\": %v", ln, err)
		}
		last, err := Parse(ls)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field \"last\": %v", ln, err)
		}

		if err := d.Add(tax, first, last); err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	return d, nil
}

// TSV writes collection date ranges as a TSV file.
func (d *Data) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	// header
	header := []string{"taxon", "first", "last"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	taxa := d.Taxa()
	for _, tx := range taxa {
		r := d.taxon[tx]
		row := []string{
			tx,
			Format(r.First),
			Format(r.Last),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
