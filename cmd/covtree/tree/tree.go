// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree is a metapackage for commands
// that dealt with time-scaled trees.
package tree

import (
	"github.com/js-arias/command"
	"github.com/js-arias/covtree/cmd/covtree/tree/add"
	"github.com/js-arias/covtree/cmd/covtree/tree/list"
	"github.com/js-arias/covtree/cmd/covtree/tree/prune"
	"github.com/js-arias/covtree/cmd/covtree/tree/terms"
)

var Command = &command.Command{
	Usage: "tree <command> [<argument>...]",
	Short: "commands for time-scaled trees",
}

func init() {
	Command.Add(add.Command)
	Command.Add(list.Command)
	Command.Add(prune.Command)
	Command.Add(terms.Command)
}
