// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pruning_test

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/js-arias/covtree/dates"
	"github.com/js-arias/covtree/pruning"
	"github.com/js-arias/timetree"
)

// A tree with two clades:
// one with recent clusters (T1, T2, T3)
// and one with early clusters (T4, T5).
// Ages are in days before the most recent sample.
const invTree = `tree	node	parent	age	taxon
inv	0	-1	500	
inv	1	0	400	
inv	2	1	20	T1
inv	3	1	300	
inv	4	3	100	T2
inv	5	3	0	T3
inv	6	0	450	
inv	7	6	380	T4
inv	8	6	300	T5
`

var invRanges = map[string][2]string{
	"T1": {"2020-11-01", "2020-12-12"},
	"T2": {"2020-08-01", "2020-09-23"},
	"T3": {"2020-12-01", "2021-01-01"},
	"T4": {"2019-12-20", "2020-01-15"},
	"T5": {"2020-02-01", "2020-03-07"},
}

var invRecomb = map[string][2]string{
	"XA": {"2020-05-01", "2020-07-01"},
	"XB": {"2020-10-01", "2020-11-05"},
}

func TestPrune(t *testing.T) {
	tr := newTree(t, invTree, invRanges, invRecomb)
	sc := tr.Scale()

	want := []pruning.Node{
		{ID: 0, Parent: -1, Children: []int{1}, X: 0, Y: 0.75, First: date(t, "2019-12-20"), Last: date(t, "2021-01-01")},
		{ID: 1, Parent: 0, Children: []int{2, 3}, X: 100.0 / 365.25, Y: 0.75, First: date(t, "2020-08-01"), Last: date(t, "2021-01-01")},
		{ID: 2, Parent: 1, IsTip: true, X: 480.0 / 365.25, Y: 0, First: date(t, "2020-11-01"), Last: date(t, "2020-12-12"), Label: "T1"},
		{ID: 3, Parent: 1, Children: []int{4, 5}, X: 200.0 / 365.25, Y: 1.5, First: date(t, "2020-08-01"), Last: date(t, "2021-01-01")},
		{ID: 4, Parent: 3, IsTip: true, X: 400.0 / 365.25, Y: 1, First: date(t, "2020-08-01"), Last: date(t, "2020-09-23"), Label: "T2"},
		{ID: 5, Parent: 3, IsTip: true, X: 500.0 / 365.25, Y: 2, First: date(t, "2020-12-01"), Last: date(t, "2021-01-01"), Label: "T3"},
	}
	wantRec := []pruning.Node{
		{ID: 0, Parent: -1, IsTip: true, X: sc.X(date(t, "2020-10-01")), Y: 0, First: date(t, "2020-10-01"), Last: date(t, "2020-11-05"), Label: "XB"},
	}

	s := prune(t, tr, "2020-08-01")
	if g := s.Name(); g != "inv" {
		t.Errorf("prune: name: got %q, want %q", g, "inv")
	}
	if g := s.Cutoff(); !g.Equal(date(t, "2020-08-01")) {
		t.Errorf("prune: cutoff: got %s, want %s", dates.Format(g), "2020-08-01")
	}
	if g := s.Nodes(); !reflect.DeepEqual(g, want) {
		t.Errorf("prune: nodes: got %v, want %v", g, want)
	}
	if g := s.Recombinant(); !reflect.DeepEqual(g, wantRec) {
		t.Errorf("prune: recombinant: got %v, want %v", g, wantRec)
	}
	checkSnapshot(t, "prune", s)
}

func TestPruneSplice(t *testing.T) {
	tr := newTree(t, invTree, invRanges, invRecomb)

	// T4 is the only cluster that dies with this cutoff,
	// so its parent (node 6) is left with a single child
	// and must be spliced out
	want := []pruning.Node{
		{ID: 0, Parent: -1, Children: []int{1, 6}, X: 0, Y: 1.875, First: date(t, "2019-12-20"), Last: date(t, "2021-01-01")},
		{ID: 1, Parent: 0, Children: []int{2, 3}, X: 100.0 / 365.25, Y: 0.75, First: date(t, "2020-08-01"), Last: date(t, "2021-01-01")},
		{ID: 2, Parent: 1, IsTip: true, X: 480.0 / 365.25, Y: 0, First: date(t, "2020-11-01"), Last: date(t, "2020-12-12"), Label: "T1"},
		{ID: 3, Parent: 1, Children: []int{4, 5}, X: 200.0 / 365.25, Y: 1.5, First: date(t, "2020-08-01"), Last: date(t, "2021-01-01")},
		{ID: 4, Parent: 3, IsTip: true, X: 400.0 / 365.25, Y: 1, First: date(t, "2020-08-01"), Last: date(t, "2020-09-23"), Label: "T2"},
		{ID: 5, Parent: 3, IsTip: true, X: 500.0 / 365.25, Y: 2, First: date(t, "2020-12-01"), Last: date(t, "2021-01-01"), Label: "T3"},
		{ID: 6, Parent: 0, IsTip: true, X: 200.0 / 365.25, Y: 3, First: date(t, "2020-02-01"), Last: date(t, "2020-03-07"), Label: "T5"},
	}

	s := prune(t, tr, "2020-02-15")
	if g := s.Nodes(); !reflect.DeepEqual(g, want) {
		t.Errorf("prune: nodes: got %v, want %v", g, want)
	}
	if g := s.Recombinant(); len(g) != 2 {
		t.Errorf("prune: recombinant: got %d clusters, want %d", len(g), 2)
	}
	checkSnapshot(t, "splice", s)
}

func TestPruneFallback(t *testing.T) {
	tr := newTree(t, invTree, invRanges, invRecomb)

	// no cluster survives this cutoff:
	// the snapshot must contain the full tree
	s := prune(t, tr, "2021-06-01")
	full := prune(t, tr, "2019-01-01")

	if g := s.Len(); g != tr.Len() {
		t.Errorf("fallback: length: got %d nodes, want %d", g, tr.Len())
	}
	if g, w := s.Nodes(), full.Nodes(); !reflect.DeepEqual(g, w) {
		t.Errorf("fallback: nodes: got %v, want %v", g, w)
	}
	if g, w := s.Recombinant(), full.Recombinant(); !reflect.DeepEqual(g, w) {
		t.Errorf("fallback: recombinant: got %v, want %v", g, w)
	}
	checkSnapshot(t, "fallback", s)
}

func TestPruneScenario(t *testing.T) {
	tsv := `tree	node	parent	age	taxon
toy	0	-1	400	
toy	1	0	366	A
toy	2	0	214	B
toy	3	0	0	C
`
	ranges := map[string][2]string{
		"A": {"2020-01-01", "2020-01-01"},
		"B": {"2020-06-01", "2020-06-01"},
		"C": {"2021-01-01", "2021-01-01"},
	}
	tr := newTree(t, tsv, ranges, nil)

	// a cluster collected exactly at the cutoff is kept
	want := []pruning.Node{
		{ID: 0, Parent: -1, Children: []int{1, 2}, X: 0, Y: 0.5, First: date(t, "2020-01-01"), Last: date(t, "2021-01-01")},
		{ID: 1, Parent: 0, IsTip: true, X: 186.0 / 365.25, Y: 0, First: date(t, "2020-06-01"), Last: date(t, "2020-06-01"), Label: "B"},
		{ID: 2, Parent: 0, IsTip: true, X: 400.0 / 365.25, Y: 1, First: date(t, "2021-01-01"), Last: date(t, "2021-01-01"), Label: "C"},
	}
	s := prune(t, tr, "2020-06-01")
	if g := s.Nodes(); !reflect.DeepEqual(g, want) {
		t.Errorf("scenario: nodes: got %v, want %v", g, want)
	}
	checkSnapshot(t, "scenario", s)

	// cutoff after the most recent sample:
	// fall back to the full tree
	s = prune(t, tr, "2021-06-01")
	if g := s.Len(); g != 4 {
		t.Errorf("scenario: fallback length: got %d nodes, want %d", g, 4)
	}
	checkSnapshot(t, "scenario-fallback", s)
}

func TestPruneChain(t *testing.T) {
	tsv := `tree	node	parent	age	taxon
deep	0	-1	400	
deep	1	0	300	
deep	2	1	200	
deep	3	2	0	New
deep	4	2	180	OldA
deep	5	1	250	OldB
deep	6	0	350	OldC
`
	ranges := map[string][2]string{
		"New":  {"2020-10-10", "2021-01-01"},
		"OldA": {"2020-01-10", "2020-02-20"},
		"OldB": {"2020-01-05", "2020-02-01"},
		"OldC": {"2019-12-25", "2020-01-20"},
	}
	tr := newTree(t, tsv, ranges, nil)

	// only New survives,
	// leaving a chain of single-child ancestors
	// that must be spliced,
	// so the root is attached directly to the terminal;
	// the root is kept even with a single child
	want := []pruning.Node{
		{ID: 0, Parent: -1, Children: []int{1}, X: 0, Y: 0, First: date(t, "2019-12-25"), Last: date(t, "2021-01-01")},
		{ID: 1, Parent: 0, IsTip: true, X: 400.0 / 365.25, Y: 0, First: date(t, "2020-10-10"), Last: date(t, "2021-01-01"), Label: "New"},
	}
	s := prune(t, tr, "2020-06-01")
	if g := s.Nodes(); !reflect.DeepEqual(g, want) {
		t.Errorf("chain: nodes: got %v, want %v", g, want)
	}
	checkSnapshot(t, "chain", s)
}

func TestPruneDeterminism(t *testing.T) {
	tr := newTree(t, invTree, invRanges, invRecomb)

	s1 := prune(t, tr, "2020-08-01")
	s2 := prune(t, tr, "2020-08-01")
	if !reflect.DeepEqual(s1.Nodes(), s2.Nodes()) {
		t.Errorf("determinism: repeated passes are different")
	}
	if !reflect.DeepEqual(s1.Recombinant(), s2.Recombinant()) {
		t.Errorf("determinism: repeated recombinant tracks are different")
	}
}

func TestPruneCutoffMonotonic(t *testing.T) {
	tr := newTree(t, invTree, invRanges, invRecomb)

	cutoffs := []string{
		"2020-01-01",
		"2020-02-15",
		"2020-08-01",
		"2020-10-01",
		"2021-01-01",
	}

	var prev map[string]bool
	for _, c := range cutoffs {
		s := prune(t, tr, c)
		checkSnapshot(t, "cutoff "+c, s)

		tips := make(map[string]bool)
		for _, n := range s.Nodes() {
			if n.IsTip {
				tips[n.Label] = true
			}
		}
		if prev != nil {
			for tx := range tips {
				if !prev[tx] {
					t.Errorf("cutoff %s: surviving cluster %q not in a smaller cutoff", c, tx)
				}
			}
		}
		prev = tips

		// the source tree is never modified
		if g := tr.Len(); g != 9 {
			t.Errorf("cutoff %s: source tree: got %d nodes, want %d", c, g, 9)
		}
	}
}

// CheckSnapshot checks the structural invariants
// that any snapshot must have.
func checkSnapshot(t testing.TB, name string, s *pruning.Snapshot) {
	t.Helper()

	ns := s.Nodes()
	root := -1
	for i, n := range ns {
		if n.ID != i {
			t.Errorf("%s: node %d: got ID %d, want %d", name, i, n.ID, i)
		}
		if n.Parent < 0 {
			if root >= 0 {
				t.Errorf("%s: node %d: multiple roots (%d and %d)", name, i, root, i)
			}
			root = i
			continue
		}
		if n.Parent >= len(ns) {
			t.Errorf("%s: node %d: parent %d out of range", name, i, n.Parent)
			continue
		}
		times := 0
		for _, c := range ns[n.Parent].Children {
			if c == i {
				times++
			}
		}
		if times != 1 {
			t.Errorf("%s: node %d: found %d times in the children of %d, want 1", name, i, times, n.Parent)
		}
	}
	if root < 0 {
		t.Errorf("%s: snapshot without a root", name)
	}

	next := 0
	for i, n := range ns {
		if n.IsTip {
			if len(n.Children) > 0 {
				t.Errorf("%s: node %d: a terminal with %d children", name, i, len(n.Children))
			}
			if n.Y != float64(next) {
				t.Errorf("%s: node %d: terminal rank: got %.6f, want %d", name, i, n.Y, next)
			}
			next++
			continue
		}
		if len(n.Children) < 2 && i != root {
			t.Errorf("%s: node %d: internal node with %d children", name, i, len(n.Children))
		}
		sum := 0.0
		for _, c := range n.Children {
			if ns[c].Parent != i {
				t.Errorf("%s: node %d: child %d has parent %d", name, i, c, ns[c].Parent)
			}
			sum += ns[c].Y
		}
		if len(n.Children) == 0 {
			continue
		}
		mean := sum / float64(len(n.Children))
		if math.Abs(n.Y-mean) > 1e-9 {
			t.Errorf("%s: node %d: rank: got %.9f, want %.9f", name, i, n.Y, mean)
		}
	}

	for i, n := range s.Recombinant() {
		if n.ID != i {
			t.Errorf("%s: recombinant %d: got ID %d, want %d", name, i, n.ID, i)
		}
		if n.Parent != -1 {
			t.Errorf("%s: recombinant %d: got parent %d, want -1", name, i, n.Parent)
		}
		if n.Y != float64(i) {
			t.Errorf("%s: recombinant %d: rank: got %.6f, want %d", name, i, n.Y, i)
		}
	}
}

func prune(t testing.TB, tr *pruning.Tree, cutoff string) *pruning.Snapshot {
	t.Helper()

	s, err := tr.Prune(date(t, cutoff))
	if err != nil {
		t.Fatalf("unable to prune with cutoff %s: %v", cutoff, err)
	}
	return s
}

func newTree(t testing.TB, tsv string, ranges, recomb map[string][2]string) *pruning.Tree {
	t.Helper()

	c, err := timetree.ReadTSV(strings.NewReader(tsv))
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}
	name := c.Names()[0]

	p := pruning.Param{
		Dates: newData(t, ranges),
	}
	if recomb != nil {
		p.Recombinant = newData(t, recomb)
	}

	tr, err := pruning.New(c.Tree(name), p)
	if err != nil {
		t.Fatalf("unable to create tree %q: %v", name, err)
	}
	return tr
}

func newData(t testing.TB, ranges map[string][2]string) *dates.Data {
	t.Helper()

	d := dates.New()
	for tx, r := range ranges {
		if err := d.Add(tx, date(t, r[0]), date(t, r[1])); err != nil {
			t.Fatalf("unable to add taxon %q: %v", tx, err)
		}
	}
	return d
}

func date(t testing.TB, s string) time.Time {
	t.Helper()

	d, err := dates.Parse(s)
	if err != nil {
		t.Fatalf("invalid date %q: %v", s, err)
	}
	return d
}
