// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pruning

import "gonum.org/v1/gonum/stat"

// Layout assigns vertical ranks to the nodes of a snapshot.
// Terminals get sequential ranks (0, 1, 2, ...)
// in ascending ID order;
// each internal node gets the mean rank of its children,
// so its vertical position balances its subtree.
func layout(nodes []Node) {
	next := 0
	root := -1
	for i := range nodes {
		if nodes[i].IsTip {
			nodes[i].Y = float64(next)
			next++
		}
		if nodes[i].Parent < 0 {
			root = i
		}
	}
	if root < 0 {
		return
	}
	rank(nodes, root)
}

// Rank computes the rank of a node in post-order,
// so all children have their final ranks
// before the rank of the node is set.
func rank(nodes []Node, id int) float64 {
	n := &nodes[id]
	if n.IsTip {
		return n.Y
	}

	ys := make([]float64, 0, len(n.Children))
	for _, c := range n.Children {
		ys = append(ys, rank(nodes, c))
	}
	n.Y = stat.Mean(ys, nil)
	return n.Y
}
