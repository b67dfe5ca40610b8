// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add collection dates
// to a CovTree project.
package add

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/covtree/dates"
	"github.com/js-arias/covtree/project"
)

var Command = &command.Command{
	Usage: `add [--recomb] [-f|--file <dates-file>]
	<project-file> [<dates-file>...]`,
	Short: "add collection dates to a CovTree project",
	Long: `
Command add read collection date ranges from one or more tab-delimited files
and add the dates to a CovTree project.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created.

One or more date files can be given as arguments. If no file is given the
dates will be read from the standard input. Each file must have the fields
"taxon", "first", and "last", with the dates in ISO 8601 format
("yyyy-mm-dd"). If a taxon is repeated, its range will be extended with the
new dates.

By default, the dates are for the tree terminals, and taxon names must not
use the recombinant marker ("X" prefix). If the flag --recomb is set, the
dates are for recombinant clusters, kept outside of the trees, and all taxon
names must use the marker.

By default the dates will be stored in the dates file currently defined for
the project. If the project does not have a dates file, a new one will be
created with the name 'dates.tab' (or 'recombinants.tab' with the flag
--recomb). A different file name can be defined using the flag --file,
or -f.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var recombFlag bool
var outFile string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&recombFlag, "recomb", false, "")
	c.Flags().StringVar(&outFile, "file", "", "")
	c.Flags().StringVar(&outFile, "f", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	pFile := args[0]
	p, err := openProject(pFile)
	if err != nil {
		return err
	}

	set := project.Dates
	if recombFlag {
		set = project.Recombinants
	}

	d := dates.New()
	if df := p.Path(set); df != "" {
		d, err = readDatesFile(nil, df)
		if err != nil {
			return fmt.Errorf("on project %q: %v", df, err)
		}
	}

	args = args[1:]
	if len(args) == 0 {
		args = append(args, "-")
	}
	for _, a := range args {
		fn := a
		if fn == "-" {
			fn = ""
			a = "stdin"
		}
		nd, err := readDatesFile(c.Stdin(), fn)
		if err != nil {
			return err
		}
		for _, tx := range nd.Taxa() {
			if dates.IsRecombinant(tx) != recombFlag {
				if recombFlag {
					return fmt.Errorf("on file %q: taxon %q: expecting a recombinant cluster", a, tx)
				}
				return fmt.Errorf("on file %q: taxon %q: recombinant clusters must be added with --recomb", a, tx)
			}
			r, _ := nd.Range(tx)
			if err := d.Add(tx, r.First, r.Last); err != nil {
				return fmt.Errorf("on file %q: %v", a, err)
			}
		}
	}

	if outFile == "" {
		outFile = p.Path(set)
		if outFile == "" {
			outFile = string(set) + ".tab"
		}
	}

	if err := writeDates(d); err != nil {
		return err
	}
	p.Add(set, outFile)
	if err := p.Write(); err != nil {
		return err
	}

	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}

func readDatesFile(r io.Reader, name string) (*dates.Data, error) {
	if name != "" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		name = "stdin"
	}

	d, err := dates.ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return d, nil
}

func writeDates(d *dates.Data) (err error) {
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := d.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", outFile, err)
	}
	return nil
}
