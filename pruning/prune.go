// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pruning

import (
	"fmt"
	"slices"
	"time"

	"github.com/js-arias/covtree/dates"
)

// Prune returns a new snapshot
// with the terminals whose most recent sample
// was collected on or after the cutoff date,
// and the internal nodes required
// to connect them to the root.
//
// Internal nodes left with a single child are removed,
// splicing the child to its nearest kept ancestor;
// the root is kept even if a single child remains.
// Node IDs of the snapshot are renumbered
// to a dense 0..N-1 range,
// following the ascending order of the source IDs,
// and vertical ranks are recomputed.
//
// If no terminal survives the cutoff,
// the snapshot contains the full tree,
// so a drawing layer always has a tree to show.
//
// The source tree is left untouched
// and can be pruned again with any other cutoff.
func (t *Tree) Prune(cutoff time.Time) (*Snapshot, error) {
	cutoff = dates.Day(cutoff)

	tips := t.survivors(cutoff)
	rec := t.survivingRecomb(cutoff)
	if len(tips) == 0 {
		// no survivors: fall back to the full tree
		tips = t.survivors(time.Time{})
		rec = t.survivingRecomb(time.Time{})
	}

	// walk from every surviving terminal to the root,
	// stopping at the first ancestor already selected
	sel := make(map[int]bool, len(t.nodes))
	for _, id := range tips {
		for c := id; !sel[c]; {
			sel[c] = true
			p := t.nodes[c].parent
			if p < 0 {
				break
			}
			c = p
		}
	}

	// retained children,
	// preserving the child order of the source tree
	kids := make(map[int][]int, len(sel))
	for id := range sel {
		for _, c := range t.nodes[id].children {
			if sel[c] {
				kids[id] = append(kids[id], c)
			}
		}
	}

	// a node is kept if it is a terminal,
	// the root,
	// or it retains at least two children
	keep := make(map[int]bool, len(sel))
	for id := range sel {
		n := t.nodes[id]
		if n.isTip || id == t.root || len(kids[id]) >= 2 {
			keep[id] = true
		}
	}

	ids := make([]int, 0, len(keep))
	for id := range keep {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	newID := make(map[int]int, len(ids))
	for i, id := range ids {
		newID[id] = i
	}

	nodes := make([]Node, len(ids))
	inherit := make(map[int]string)
	for i, id := range ids {
		n := t.nodes[id]
		sn := Node{
			ID:     i,
			Parent: -1,
			IsTip:  n.isTip,
			X:      n.x,
			First:  n.first,
			Last:   n.last,
			Label:  n.taxon,
		}
		if id != t.root {
			p := n.parent
			for p >= 0 && !keep[p] {
				p = t.nodes[p].parent
			}
			np, ok := newID[p]
			if !ok {
				return nil, fmt.Errorf("tree %q: node %d: parent of %d: %w", t.Name(), p, id, ErrDanglingNode)
			}
			sn.Parent = np
		}
		for _, c := range kids[id] {
			rc, label := t.spliceDown(c, kids, keep)
			if rc < 0 {
				return nil, fmt.Errorf("tree %q: node %d: child of %d: %w", t.Name(), c, id, ErrDanglingNode)
			}
			nc, ok := newID[rc]
			if !ok {
				return nil, fmt.Errorf("tree %q: node %d: child of %d: %w", t.Name(), rc, id, ErrDanglingNode)
			}
			sn.Children = append(sn.Children, nc)
			if label != "" {
				inherit[nc] = label
			}
		}
		nodes[i] = sn
	}

	// labels of removed single-child nodes
	// pass to their surviving children
	for id, label := range inherit {
		if nodes[id].Label == "" {
			nodes[id].Label = label
		}
	}

	layout(nodes)

	sc := t.Scale()
	recomb := make([]Node, 0, len(rec))
	for _, r := range rec {
		id := len(recomb)
		recomb = append(recomb, Node{
			ID:     id,
			Parent: -1,
			IsTip:  true,
			X:      sc.X(r.first),
			Y:      float64(id),
			First:  r.first,
			Last:   r.last,
			Label:  r.taxon,
		})
	}

	return &Snapshot{
		name:   t.Name(),
		cutoff: cutoff,
		nodes:  nodes,
		recomb: recomb,
	}, nil
}

// Survivors returns the terminals,
// in ascending ID order,
// whose most recent sample was collected
// on or after the cutoff date.
func (t *Tree) survivors(cutoff time.Time) []int {
	ids := make([]int, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var tips []int
	for _, id := range ids {
		n := t.nodes[id]
		if n.isTip && !n.last.Before(cutoff) {
			tips = append(tips, id)
		}
	}
	return tips
}

// SurvivingRecomb returns the recombinant clusters
// that pass the cutoff date,
// with the same rule used for the tree terminals.
func (t *Tree) survivingRecomb(cutoff time.Time) []recombinant {
	var rec []recombinant
	for _, r := range t.recomb {
		if !r.last.Before(cutoff) {
			rec = append(rec, r)
		}
	}
	return rec
}

// SpliceDown follows a run of removed single-child nodes,
// returning the first kept descendant
// and the label inherited from the run
// (the label of the topmost removed node that has one).
// It returns a negative ID if the run
// ends on a node without retained children,
// which means the selection is broken.
func (t *Tree) spliceDown(id int, kids map[int][]int, keep map[int]bool) (int, string) {
	label := ""
	for !keep[id] {
		if tx := t.nodes[id].taxon; tx != "" && label == "" {
			label = tx
		}
		cs := kids[id]
		if len(cs) == 0 {
			return -1, ""
		}
		id = cs[0]
	}
	return id, label
}
