// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxa implements a command to print
// the list of taxa in a CovTree project
// with defined collection dates.
package taxa

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/covtree/dates"
	"github.com/js-arias/covtree/project"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: "taxa [--recomb] [--ranges] [--val] <project-file>",
	Short: "print a list of taxa with collection dates",
	Long: `
Command taxa reads the collection dates from a CovTree project and print the
name of the taxa in the standard output.

The argument of the command is the name of the project file.

By default, the taxa of the terminal dates will be printed. If the flag
--recomb is set, the recombinant clusters will be printed instead.

If the flag --ranges is defined, the collection date range will be printed
after each taxon name, in tab-delimited columns.

If the flag --val is defined, and all tree terminals have defined dates, the
command will finish silently. Otherwise, any terminal without dates will be
reported.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var recombFlag bool
var rangeFlag bool
var valFlag bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&recombFlag, "recomb", false, "")
	c.Flags().BoolVar(&rangeFlag, "ranges", false, "")
	c.Flags().BoolVar(&valFlag, "val", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	set := project.Dates
	if recombFlag {
		set = project.Recombinants
	}
	d, err := readDates(p.Path(set))
	if err != nil {
		return err
	}

	if valFlag {
		return validate(c, p, d)
	}

	for _, tx := range d.Taxa() {
		if !rangeFlag {
			fmt.Fprintf(c.Stdout(), "%s\n", tx)
			continue
		}
		r, _ := d.Range(tx)
		fmt.Fprintf(c.Stdout(), "%s\t%s\t%s\n", tx, dates.Format(r.First), dates.Format(r.Last))
	}
	return nil
}

func validate(c *command.Command, p *project.Project, d *dates.Data) error {
	tf := p.Path(project.Trees)
	if tf == "" {
		return nil
	}

	f, err := os.Open(tf)
	if err != nil {
		return err
	}
	defer f.Close()

	tc, err := timetree.ReadTSV(f)
	if err != nil {
		return fmt.Errorf("while reading file %q: %v", tf, err)
	}

	for _, tn := range tc.Names() {
		t := tc.Tree(tn)
		if t == nil {
			continue
		}
		for _, tax := range t.Terms() {
			if _, ok := d.Range(tax); !ok {
				fmt.Fprintf(c.Stdout(), "INVALID TAXON: no dates: %s\n", tax)
			}
		}
	}
	return nil
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
