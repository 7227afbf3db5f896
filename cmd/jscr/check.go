package main

import (
	"fmt"

	"jscr/interpreter-go/pkg/typechecker"
)

func (c *cli) checkCommand(args []string) int {
	p, err := resolveProject(args)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	program, ok := c.parseEntry(p.entry)
	if !ok {
		return 1
	}

	diags := typechecker.New().CheckProgram(program)
	errorsFound := 0
	for _, d := range diags {
		fmt.Fprintln(c.stdout, d.String())
		if d.Severity == typechecker.SeverityError {
			errorsFound++
		}
	}
	c.logger.Debug("check finished", "file", p.entry, "diagnostics", len(diags), "errors", errorsFound)
	if errorsFound > 0 {
		return 1
	}
	return 0
}
