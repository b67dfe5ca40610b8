// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pruning

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/js-arias/covtree/dates"
)

// Tracks of a snapshot file.
const (
	treeTrack   = "tree"
	recombTrack = "recomb"
)

var snapHeader = []string{
	"tree",
	"track",
	"node",
	"parent",
	"taxon",
	"x",
	"y",
	"first",
	"last",
}

// ReadTSV reads a pruned snapshot from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - tree, the name of the source tree
//   - track, "tree" for tree nodes,
//     "recomb" for recombinant clusters
//   - node, the ID of the node
//   - parent, the ID of the parent node,
//     or -1 for the root and recombinant clusters
//   - taxon, the label of the cluster,
//     empty for unlabeled internal nodes
//   - x, the branch distance from the root, in years
//   - y, the vertical rank of the node
//   - first and last, the collection date range
//     in ISO 8601 format ("yyyy-mm-dd")
//
// Node IDs on each track must be dense,
// starting at 0.
// The cutoff date is not stored in the file.
func ReadTSV(r io.Reader) (*Snapshot, error) {
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
	for _, h := range snapHeader {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	s := &Snapshot{}
	nodes := make(map[int]Node)
	recomb := make(map[int]Node)
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "tree"
		name := strings.TrimSpace(row[fields[f]])
		if name == "" {
			continue
		}
		if s.name == "" {
			s.name = name
		}
		if name != s.name {
			return nil, fmt.Errorf("on row %d: tree %q: a snapshot must have a single tree", ln, name)
		}

		n, track, err := readNode(row, fields)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		switch track {
		case treeTrack:
			if _, dup := nodes[n.ID]; dup {
				return nil, fmt.Errorf("on row %d: node %d repeated", ln, n.ID)
			}
			nodes[n.ID] = n
		case recombTrack:
			if _, dup := recomb[n.ID]; dup {
				return nil, fmt.Errorf("on row %d: node %d repeated", ln, n.ID)
			}
			recomb[n.ID] = n
		default:
			return nil, fmt.Errorf("on row %d: unknown track %q", ln, track)
		}
	}

	s.nodes = make([]Node, len(nodes))
	for id, n := range nodes {
		if id < 0 || id >= len(nodes) {
			return nil, fmt.Errorf("tree %q: node %d: IDs must be dense", s.name, id)
		}
		s.nodes[id] = n
	}
	s.recomb = make([]Node, len(recomb))
	for id, n := range recomb {
		if id < 0 || id >= len(recomb) {
			return nil, fmt.Errorf("tree %q: node %d: IDs must be dense", s.name, id)
		}
		s.recomb[id] = n
	}

	// wire the children lists
	for i := range s.nodes {
		p := s.nodes[i].Parent
		if p < 0 {
			continue
		}
		if p >= len(s.nodes) {
			return nil, fmt.Errorf("tree %q: node %d: parent %d: %w", s.name, i, p, ErrDanglingNode)
		}
		s.nodes[p].Children = append(s.nodes[p].Children, i)
	}
	for i := range s.nodes {
		s.nodes[i].IsTip = len(s.nodes[i].Children) == 0
	}
	for i := range s.recomb {
		s.recomb[i].IsTip = true
		s.recomb[i].Parent = -1
	}

	return s, nil
}

func readNode(row []string, fields map[string]int) (Node, string, error) {
	track := strings.ToLower(strings.TrimSpace(row[fields["track"]]))

	f := "node"
	id, err := strconv.Atoi(strings.TrimSpace(row[fields[f]]))
	if err != nil {
		return Node{}, "", fmt.Errorf("field %q: %v", f, err)
	}

	f = "parent"
	p, err := strconv.Atoi(strings.TrimSpace(row[fields[f]]))
	if err != nil {
		return Node{}, "", fmt.Errorf("field %q: %v", f, err)
	}

	f = "x"
	x, err := strconv.ParseFloat(strings.TrimSpace(row[fields[f]]), 64)
	if err != nil {
		return Node{}, "", fmt.Errorf("field %q: %v", f, err)
	}

	f = "y"
	y, err := strconv.ParseFloat(strings.TrimSpace(row[fields[f]]), 64)
	if err != nil {
		return Node{}, "", fmt.Errorf("field %q: %v", f, err)
	}

	f = "first"
	first, err := dates.Parse(row[fields[f]])
	if err != nil {
		return Node{}, "", fmt.Errorf("field %q: %v", f, err)
	}

	f = "last"
	last, err := dates.Parse(row[fields[f]])
	if err != nil {
		return Node{}, "", fmt.Errorf("field %q: %v", f, err)
	}

	n := Node{
		ID:     id,
		Parent: p,
		X:      x,
		Y:      y,
		First:  first,
		Last:   last,
		Label:  strings.TrimSpace(row[fields["taxon"]]),
	}
	return n, track, nil
}

// TSV writes a pruned snapshot as a TSV file,
// ready to be consumed by a drawing layer.
func (s *Snapshot) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(snapHeader); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, n := range s.nodes {
		if err := writeNode(tab, s.name, treeTrack, n); err != nil {
			return err
		}
	}
	for _, n := range s.recomb {
		if err := writeNode(tab, s.name, recombTrack, n); err != nil {
			return err
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}

func writeNode(tab *csv.Writer, name, track string, n Node) error {
	row := []string{
		name,
		track,
		strconv.Itoa(n.ID),
		strconv.Itoa(n.Parent),
		n.Label,
		strconv.FormatFloat(n.X, 'f', 6, 64),
		strconv.FormatFloat(n.Y, 'f', 6, 64),
		dates.Format(n.First),
		dates.Format(n.Last),
	}
	if err := tab.Write(row); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
