// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// DistFit is a tool to fit probability distributions
// to user defined conditions.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/distfit/cmd/distfit/fitcmd"
	"github.com/js-arias/distfit/cmd/distfit/mle"
	"github.com/js-arias/distfit/cmd/distfit/plotcmd"
)

var app = &command.Command{
	Usage: "distfit <command> [<argument>...]",
	Short: "a tool to fit probability distributions to conditions",
}

func init() {
	app.Add(fitcmd.Command)
	app.Add(mle.Command)
	app.Add(plotcmd.Command)
}

func main() {
	app.Main()
}
