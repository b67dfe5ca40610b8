// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package pruning implements date-based pruning
// of a time-scaled tree of lineage clusters.
//
// A tree is built from a source time tree
// in which node ages are given in days
// before the most recent sample,
// and from a table of collection dates
// for the tree terminals.
// Pruning a tree with a cutoff date
// produces an independent snapshot
// with the terminals collected on or after the cutoff,
// the internal nodes required to connect them to the root,
// and a fresh vertical layout.
// The source tree is never modified by a pruning pass.
package pruning

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/js-arias/covtree/dates"
	"github.com/js-arias/timetree"
)

// DaysPerYear is the length in days
// of a unit of branch length.
const DaysPerYear = 365.25

// ErrInvalidTopology is used to report a malformed source tree,
// such as a node visited twice during the tree copy,
// or a child that disagrees with its parent.
var ErrInvalidTopology = errors.New("invalid tree topology")

// ErrDanglingNode is used to report a node reference
// that cannot be resolved
// inside a pruned snapshot.
var ErrDanglingNode = errors.New("dangling node reference")

// Param is a collection of parameters
// for the initialization of a tree.
type Param struct {
	// Collection date ranges for the tree terminals
	Dates *dates.Data

	// Collection date ranges for recombinant clusters
	// (clusters kept outside of the tree)
	Recombinant *dates.Data
}

// A Tree is a time-scaled tree of lineage clusters
// annotated with collection dates.
type Tree struct {
	t      *timetree.Tree
	nodes  map[int]*node
	root   int
	ref    int // the reference terminal, used to anchor the date scale
	recomb []recombinant
}

// New creates a new tree by copying the indicated source tree.
// All nodes of the new tree are fresh records,
// so the source tree is never aliased.
// Every terminal of the source tree
// must have a collection date range
// defined in the parameters.
func New(t *timetree.Tree, p Param) (*Tree, error) {
	nt := &Tree{
		t:     t,
		nodes: make(map[int]*node, len(t.Nodes())),
		root:  t.Root(),
	}
	root := &node{
		id:     nt.root,
		parent: -1,
	}
	nt.nodes[root.id] = root
	rootAge := t.Age(nt.root)
	if err := root.copySource(nt, p.Dates, rootAge); err != nil {
		return nil, fmt.Errorf("tree %q: %v", t.Name(), err)
	}
	nt.ref = nt.referenceTip()

	if p.Recombinant != nil {
		for _, tx := range p.Recombinant.Taxa() {
			r, _ := p.Recombinant.Range(tx)
			nt.recomb = append(nt.recomb, recombinant{
				taxon: tx,
				first: r.First,
				last:  r.Last,
			})
		}
	}

	return nt, nil
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.t.Name()
}

// Len returns the number of nodes of the tree,
// without counting recombinant clusters.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Terms returns the name of the tree terminals,
// sorted alphabetically.
func (t *Tree) Terms() []string {
	var terms []string
	for _, n := range t.nodes {
		if n.isTip {
			terms = append(terms, n.taxon)
		}
	}
	slices.Sort(terms)
	return terms
}

// Range returns the collection date range
// of the samples descendant from a node,
// identified by a terminal name.
func (t *Tree) Range(taxon string) (dates.Range, bool) {
	for _, n := range t.nodes {
		if n.isTip && n.taxon == taxon {
			return dates.Range{First: n.first, Last: n.last}, true
		}
	}
	return dates.Range{}, false
}

// A node is a node in the annotated tree.
// Node records are owned by the tree
// and never escape to callers.
type node struct {
	id       int
	parent   int
	children []int
	taxon    string
	isTip    bool

	// branch distance from the root,
	// in years
	x float64

	// collection date range
	// of the descendant samples
	first time.Time
	last  time.Time
}

// A recombinant is a cluster kept outside of the tree.
type recombinant struct {
	taxon string
	first time.Time
	last  time.Time
}

func (n *node) copySource(t *Tree, d *dates.Data, rootAge int64) error {
	n.x = float64(rootAge-t.t.Age(n.id)) / DaysPerYear
	n.taxon = t.t.Taxon(n.id)

	children := t.t.Children(n.id)
	if len(children) == 0 {
		n.isTip = true
		if d == nil {
			return fmt.Errorf("terminal %q: no collection dates defined", n.taxon)
		}
		r, ok := d.Range(n.taxon)
		if !ok {
			return fmt.Errorf("terminal %q: no collection dates defined", n.taxon)
		}
		n.first = r.First
		n.last = r.Last
		return nil
	}

	for _, c := range children {
		if _, dup := t.nodes[c]; dup {
			return fmt.Errorf("node %d visited twice: %w", c, ErrInvalidTopology)
		}
		if p := t.t.Parent(c); p != n.id {
			return fmt.Errorf("node %d: parent %d, want %d: %w", c, p, n.id, ErrInvalidTopology)
		}
		nc := &node{
			id:     c,
			parent: n.id,
		}
		t.nodes[c] = nc
		if err := nc.copySource(t, d, rootAge); err != nil {
			return err
		}
		n.children = append(n.children, c)

		// the range of an internal node
		// is the union of its descendant ranges
		if n.first.IsZero() || nc.first.Before(n.first) {
			n.first = nc.first
		}
		if nc.last.After(n.last) {
			n.last = nc.last
		}
	}
	return nil
}

// ReferenceTip returns the terminal closest to the root,
// that is the terminal with the smallest branch distance,
// with ties broken by node ID.
func (t *Tree) referenceTip() int {
	ids := make([]int, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	ref := -1
	for _, id := range ids {
		n := t.nodes[id]
		if !n.isTip {
			continue
		}
		if ref < 0 || n.x < t.nodes[ref].x {
			ref = id
		}
	}
	return ref
}
