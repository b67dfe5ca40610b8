// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prune implements a command to prune
// the trees of a CovTree project with a cutoff date.
package prune

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/covtree/dates"
	"github.com/js-arias/covtree/project"
	"github.com/js-arias/covtree/pruning"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: `prune --cutoff <date>
	[--tree <tree>]
	[-o|--output <out-prefix>]
	<project-file>`,
	Short: "prune project trees with a cutoff date",
	Long: `
Command prune reads a CovTree project and prunes each tree with a cutoff
date, keeping the terminals whose most recent sample was collected on or
after the cutoff, and the internal nodes required to connect them to the
root. If no terminal passes the cutoff, the full tree is used. Recombinant
clusters defined in the project pass the same cutoff and are written on a
separate track.

The resulting snapshots are written as tab-delimited files, with a row per
node giving its ID, parent, label, branch distance from the root (in years),
vertical rank, and collection date range, ready to be read by a drawing
program.

The argument of the command is the name of the project file.

The flag --cutoff is required and indicates the cutoff date in ISO 8601
format ("yyyy-mm-dd").

By default, all trees in the project will be pruned. If the flag --tree is
set, only the indicated tree will be pruned.

By default, the output file of a tree will be named '<tree>-pruned.tab'. Use
the flag -o, or --output, to define a prefix for the resulting files, in the
form '<out-prefix>-<tree>.tab'.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var cutoffFlag string
var treeName string
var outPrefix string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&cutoffFlag, "cutoff", "", "")
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&outPrefix, "output", "", "")
	c.Flags().StringVar(&outPrefix, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if cutoffFlag == "" {
		return c.UsageError("flag --cutoff must be defined")
	}
	cutoff, err := dates.Parse(cutoffFlag)
	if err != nil {
		return fmt.Errorf("flag --cutoff: %v", err)
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	tf := p.Path(project.Trees)
	if tf == "" {
		return nil
	}
	tc, err := readTreeFile(tf)
	if err != nil {
		return err
	}

	d, err := readDates(p.Path(project.Dates))
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("project %q: dates must be defined before pruning", args[0])
	}
	rec, err := readDates(p.Path(project.Recombinants))
	if err != nil {
		return err
	}

	param := pruning.Param{
		Dates:       d,
		Recombinant: rec,
	}

	ls := tc.Names()
	if treeName != "" {
		ls = []string{treeName}
	}
	for _, tn := range ls {
		st := tc.Tree(tn)
		if st == nil {
			continue
		}
		t, err := pruning.New(st, param)
		if err != nil {
			return err
		}
		s, err := t.Prune(cutoff)
		if err != nil {
			return err
		}
		if err := writeSnapshot(tn, s); err != nil {
			return err
		}
	}
	return nil
}

func writeSnapshot(name string, s *pruning.Snapshot) (err error) {
	if outPrefix != "" {
		name = fmt.Sprintf("%s-%s.tab", outPrefix, name)
	} else {
		name = fmt.Sprintf("%s-pruned.tab", name)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# pruned snapshot, cutoff: %s\n", dates.Format(s.Cutoff()))
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	if err := s.TSV(bw); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}

func readTreeFile(name string) (*timetree.Collection, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}

func readDates(name string) (*dates.Data, error) {
	if name == "" {
		return nil, nil
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
