// Command jagdump reads a Jaguar stream and prints the Index produced by
// a structural decode as JSON, for inspecting a stream's shape without
// writing code against the library.
//
// cmd/genji is a thin main package wired to its library's public API and
// CLI surface via github.com/urfave/cli/v2; jagdump's flag shape is new
// (it has one job, not a shell), but the dependency and the "main just
// wires flags to the library" idiom carry over directly.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/RobotLeopard86/Jaguar/internal/jfixture"
	"github.com/RobotLeopard86/Jaguar/jdecode"
	"github.com/RobotLeopard86/Jaguar/jreader"
)

func main() {
	app := &cli.App{
		Name:  "jagdump",
		Usage: "decode a Jaguar stream and print its Index as JSON",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "omit insignificant whitespace (no effect: output is already compact)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "jagdump:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("expected exactly one argument: the path to a Jaguar stream", 2)
	}
	path := c.Args().Get(0)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := jreader.New(f)
	d := jdecode.New(r)

	if err := d.Parse(); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	idx, err := d.GetIndex()
	if err != nil {
		return err
	}

	node := jfixture.FromIndex(idx)
	os.Stdout.Write(jfixture.Encode(node))
	fmt.Println()
	return nil
}
