// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package datecmd is a metapackage for commands
// that dealt with collection dates.
package datecmd

import (
	"github.com/js-arias/command"
	"github.com/js-arias/covtree/cmd/covtree/datecmd/add"
	"github.com/js-arias/covtree/cmd/covtree/datecmd/taxa"
)

var Command = &command.Command{
	Usage: "date <command> [<argument>...]",
	Short: "commands for collection dates",
}

func init() {
	Command.Add(add.Command)
	Command.Add(taxa.Command)
}
