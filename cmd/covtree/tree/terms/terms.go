// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the list of the terminals in the trees of a CovTree project.
package terms

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/covtree/dates"
	"github.com/js-arias/covtree/project"
	"github.com/js-arias/timetree"
	"golang.org/x/exp/slices"
)

var Command = &command.Command{
	Usage: "terms [--tree <tree-name>] [--dates] <project-file>",
	Short: "print a list of tree terminals",
	Long: `
Command terms reads the trees from a CovTree project and print the name of
the terminals in the standard output.

The argument of the command is the name of the project file.

By default all terminals will be printed. If the flag --tree is set, only the
terminals of the indicated tree will be printed.

If the flag --dates is set, the collection date range of each terminal will
be printed after the terminal name, in tab-delimited columns.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var withDates bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().BoolVar(&withDates, "dates", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	tf := p.Path(project.Trees)
	if tf == "" {
		return nil
	}

	ls, err := makeTermList(tf)
	if err != nil {
		return err
	}

	if !withDates {
		for _, term := range ls {
			fmt.Fprintf(c.Stdout(), "%s\n", term)
		}
		return nil
	}

	d, err := readDates(p.Path(project.Dates))
	if err != nil {
		return err
	}
	for _, term := range ls {
		r, ok := d.Range(term)
		if !ok {
			fmt.Fprintf(c.Stdout(), "%s\t\t\n", term)
			continue
		}
		fmt.Fprintf(c.Stdout(), "%s\t%s\t%s\n", term, dates.Format(r.First), dates.Format(r.Last))
	}

	return nil
}

func makeTermList(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}

	var ls []string
	if treeName != "" {
		ls = append(ls, treeName)
	} else {
		ls = c.Names()
	}

	terms := make(map[string]bool)
	for _, tn := range ls {
		t := c.Tree(tn)
		if t == nil {
			continue
		}
		for _, tax := range t.Terms() {
			terms[tax] = true
		}
	}

	termList := make([]string, 0, len(terms))
	for tax := range terms {
		termList = append(termList, tax)
	}
	slices.Sort(termList)

	return termList, nil
}

func readDates(name string) (*dates.Data, error) {
	if name == "" {
		return dates.New(), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := dates.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return d, nil
}
