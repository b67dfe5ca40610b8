// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// CovTree is a tool to explore time-scaled trees of lineage clusters.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/covtree/cmd/covtree/datecmd"
	"github.com/js-arias/covtree/cmd/covtree/tree"
)

var app = &command.Command{
	Usage: "covtree <command> [<argument>...]",
	Short: "a tool to explore time-scaled trees of lineage clusters",
}

func init() {
	app.Add(datecmd.Command)
	app.Add(tree.Command)
}

func main() {
	app.Main()
}
