package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// parseCommand prints the AST of one file. YAML output is derived from the
// JSON encoding so both formats share the node field names.
func (c *cli) parseCommand(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	format := fs.String("format", "json", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "jscr parse requires exactly one file")
		return 1
	}
	if *format != "json" && *format != "yaml" {
		fmt.Fprintf(c.stderr, "unknown format %q\n", *format)
		return 1
	}

	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	program, ok := c.parseEntry(path)
	if !ok {
		return 1
	}

	data, err := json.MarshalIndent(program, "", "  ")
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	if *format == "yaml" {
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			fmt.Fprintln(c.stderr, err)
			return 1
		}
		out, err := yaml.Marshal(tree)
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			return 1
		}
		fmt.Fprint(c.stdout, string(out))
		return 0
	}
	fmt.Fprintln(c.stdout, string(data))
	return 0
}
