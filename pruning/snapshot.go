// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pruning

import (
	"slices"
	"time"
)

// A Node is a node of a pruned snapshot.
// Node IDs are dense integers
// in the range 0..Len-1,
// and are only valid inside the snapshot
// that contains the node.
type Node struct {
	ID int

	// ID of the parent node,
	// or -1 for the root
	// and for recombinant clusters
	Parent int

	// IDs of the children nodes,
	// empty for terminals
	Children []int

	// IsTip is true for a terminal
	// (a lineage cluster with collected samples).
	IsTip bool

	// X is the branch distance from the root,
	// in years.
	X float64

	// Y is the vertical rank of the node.
	// It is only meaningful relative to other nodes
	// of the same snapshot.
	Y float64

	// Collection date range of the descendant samples
	First time.Time
	Last  time.Time

	// Label of a terminal cluster
	Label string
}

// A Snapshot is an independent pruned copy of a tree,
// ready to be consumed by a drawing layer.
// Snapshots are immutable:
// a new cutoff date requires a new pruning pass
// on the source tree.
type Snapshot struct {
	name   string
	cutoff time.Time
	nodes  []Node
	recomb []Node
}

// Name returns the name of the source tree.
func (s *Snapshot) Name() string {
	return s.name
}

// Cutoff returns the cutoff date used to build the snapshot.
// A zero time indicates that the cutoff is unknown
// (for example, in a snapshot read from a file).
func (s *Snapshot) Cutoff() time.Time {
	return s.cutoff
}

// Len returns the number of nodes of the snapshot,
// without counting recombinant clusters.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// Node returns a copy of the node with a given ID.
func (s *Snapshot) Node(id int) Node {
	return copyNode(s.nodes[id])
}

// Nodes returns a copy of the nodes of the snapshot,
// ordered by node ID.
func (s *Snapshot) Nodes() []Node {
	ns := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		ns[i] = copyNode(n)
	}
	return ns
}

// Recombinant returns a copy of the recombinant cluster track,
// ordered by node ID.
// Recombinant nodes have no tree position:
// their IDs are independent of the tree node IDs
// and their ranks are assigned by survival order.
func (s *Snapshot) Recombinant() []Node {
	ns := make([]Node, len(s.recomb))
	for i, n := range s.recomb {
		ns[i] = copyNode(n)
	}
	return ns
}

func copyNode(n Node) Node {
	n.Children = slices.Clone(n.Children)
	return n
}
