// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/xcherryio/ticksched/cmd/ticksched/bootstrap"

	_ "github.com/xcherryio/ticksched/extensions/postgres" // import postgres extension
	_ "github.com/xcherryio/ticksched/extensions/sqlite"   // import sqlite extension
)

func main() {
	app := &cli.App{
		Name:  "ticksched",
		Usage: "start the standalone scheduler tick driver",
		Action: func(c *cli.Context) error {
			bootstrap.StartTickSchedCli(c)
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  bootstrap.FlagConfig,
				Value: "./config/development.yaml",
				Usage: "the config to start the tick driver",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
