// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pruning_test

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/covtree/pruning"
)

func TestSnapshotTSV(t *testing.T) {
	tr := newTree(t, invTree, invRanges, invRecomb)
	s := prune(t, tr, "2020-08-01")

	var buf bytes.Buffer
	if err := s.TSV(&buf); err != nil {
		t.Fatalf("unable to write snapshot: %v", err)
	}

	got, err := pruning.ReadTSV(&buf)
	if err != nil {
		t.Fatalf("unable to read snapshot: %v", err)
	}

	if g := got.Name(); g != s.Name() {
		t.Errorf("name: got %q, want %q", g, s.Name())
	}
	if g := got.Len(); g != s.Len() {
		t.Fatalf("length: got %d nodes, want %d", g, s.Len())
	}
	for _, w := range s.Nodes() {
		compareNode(t, got.Node(w.ID), w)
	}

	rec := got.Recombinant()
	wRec := s.Recombinant()
	if len(rec) != len(wRec) {
		t.Fatalf("recombinants: got %d clusters, want %d", len(rec), len(wRec))
	}
	for i, w := range wRec {
		compareNode(t, rec[i], w)
	}

	checkSnapshot(t, "round trip", got)
}

// the TSV file stores coordinates with six decimals,
// so the comparison must use a tolerance
func compareNode(t testing.TB, g, w pruning.Node) {
	t.Helper()

	if g.ID != w.ID || g.Parent != w.Parent || g.IsTip != w.IsTip || g.Label != w.Label {
		t.Errorf("node %d: got %+v, want %+v", w.ID, g, w)
	}
	if !reflect.DeepEqual(g.Children, w.Children) {
		t.Errorf("node %d: got children %v, want %v", w.ID, g.Children, w.Children)
	}
	if math.Abs(g.X-w.X) > 1e-5 {
		t.Errorf("node %d: got x = %.6f, want %.6f", w.ID, g.X, w.X)
	}
	if math.Abs(g.Y-w.Y) > 1e-5 {
		t.Errorf("node %d: got y = %.6f, want %.6f", w.ID, g.Y, w.Y)
	}
	if !g.First.Equal(w.First) || !g.Last.Equal(w.Last) {
		t.Errorf("node %d: got range %v-%v, want %v-%v", w.ID, g.First, g.Last, w.First, w.Last)
	}
}

func TestReadTSVErrors(t *testing.T) {
	header := "tree\ttrack\tnode\tparent\ttaxon\tx\ty\tfirst\tlast\n"

	data := map[string]string{
		"dangling parent": header +
			"inv\ttree\t0\t-1\t\t0.000000\t0.500000\t2020-01-01\t2020-06-01\n" +
			"inv\ttree\t1\t5\tT1\t0.500000\t0.000000\t2020-05-01\t2020-06-01\n",
		"repeated node": header +
			"inv\ttree\t0\t-1\t\t0.000000\t0.500000\t2020-01-01\t2020-06-01\n" +
			"inv\ttree\t0\t-1\tT1\t0.500000\t0.000000\t2020-05-01\t2020-06-01\n",
		"multiple trees": header +
			"inv\ttree\t0\t-1\t\t0.000000\t0.500000\t2020-01-01\t2020-06-01\n" +
			"other\ttree\t1\t0\tT1\t0.500000\t0.000000\t2020-05-01\t2020-06-01\n",
		"unknown track": header +
			"inv\tloop\t0\t-1\t\t0.000000\t0.500000\t2020-01-01\t2020-06-01\n",
		"sparse IDs": header +
			"inv\ttree\t0\t-1\t\t0.000000\t0.500000\t2020-01-01\t2020-06-01\n" +
			"inv\ttree\t5\t0\tT1\t0.500000\t0.000000\t2020-05-01\t2020-06-01\n",
		"bad date": header +
			"inv\ttree\t0\t-1\tT1\t0.000000\t0.000000\tnot-a-date\t2020-06-01\n",
		"no header": "taxon\tfirst\tlast\n",
	}

	for name, in := range data {
		if _, err := pruning.ReadTSV(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}

	if _, err := pruning.ReadTSV(strings.NewReader(data["dangling parent"])); !errors.Is(err, pruning.ErrDanglingNode) {
		t.Errorf("dangling parent: got error %q, want %q", err, pruning.ErrDanglingNode)
	}
}
