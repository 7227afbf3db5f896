package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"jscr/interpreter-go/pkg/interpreter"
	"jscr/interpreter-go/pkg/parser"
	"jscr/interpreter-go/pkg/runtime"
)

const (
	replFile    = "<repl>"
	historyFile = ".jscr_history"
	promptMain  = "jscr> "
	promptCont  = "  ... "
)

// prompter is the part of *liner.State the REPL reads through.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// replSession evaluates inputs against one persistent global scope.
type replSession struct {
	interp *interpreter.Interpreter
	env    *runtime.Environment
	out    io.Writer
	errOut io.Writer
}

func (c *cli) newReplSession() (*replSession, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	loader, err := c.newLoader(&project{entry: filepath.Join(cwd, replFile)})
	if err != nil {
		return nil, err
	}
	interp := c.newInterpreter(loader)
	return &replSession{
		interp: interp,
		env:    interp.NewGlobalEnvironment(replFile),
		out:    c.stdout,
		errOut: c.stderr,
	}, nil
}

func (c *cli) replCommand(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(c.stderr, "jscr repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	session, err := c.newReplSession()
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(c.stdout, "%s (type :quit to exit)\n", cliToolVersion)
	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(c.stdout)
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if session.handle(code) {
			return 0
		}
	}
}

// handle runs one complete input and reports whether the session should end.
func (s *replSession) handle(code string) bool {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, ":") {
		switch trimmed {
		case ":quit", ":q":
			return true
		case ":vars":
			for _, name := range s.env.Variables() {
				val, err := s.env.ResolveVar(name)
				if err != nil {
					continue
				}
				fmt.Fprintf(s.out, "%s = %s\n", name, runtime.Inspect(val))
			}
		case ":imports":
			for _, file := range s.env.Imports() {
				fmt.Fprintln(s.out, file)
			}
		default:
			fmt.Fprintln(s.out, "unknown command; try :vars, :imports or :quit")
		}
		return false
	}

	program, err := parser.ParseSource(replFile, code)
	if err != nil {
		fmt.Fprintln(s.errOut, err)
		return false
	}
	val, err := s.interp.EvaluateProgram(context.Background(), program, s.env)
	if err != nil {
		fmt.Fprintf(s.errOut, "runtime error: %v\n", err)
		return false
	}
	if _, isNull := val.(runtime.NullValue); !isNull {
		fmt.Fprintln(s.out, runtime.Inspect(val))
	}
	return false
}

// readByParseProbe keeps reading lines while the accumulated input fails to
// parse only because it ended early.
func readByParseProbe(p prompter, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		current := prompt
		if b.Len() > 0 {
			current = cont
		}
		line, err := p.Prompt(current)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := parser.ParseSource(replFile, src); perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
