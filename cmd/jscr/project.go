package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/driver"
	"jscr/interpreter-go/pkg/interpreter"
	"jscr/interpreter-go/pkg/lexer"
	"jscr/interpreter-go/pkg/parser"
)

// project is the entry file together with the manifest governing it, if any.
type project struct {
	entry    string
	manifest *driver.Manifest
}

// resolveProject picks the entry file: the explicit argument, or the
// manifest's main when none is given.
func resolveProject(args []string) (*project, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	if len(args) == 1 {
		entry, err := filepath.Abs(args[0])
		if err != nil {
			return nil, err
		}
		p := &project{entry: entry}
		if path, err := driver.FindManifest(filepath.Dir(entry)); err == nil {
			m, err := driver.LoadManifest(path)
			if err != nil {
				return nil, err
			}
			p.manifest = m
		}
		return p, nil
	}

	path, err := driver.FindManifest(".")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no source file given and %s not found", driver.ManifestName)
		}
		return nil, err
	}
	m, err := driver.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return &project{entry: m.MainPath(), manifest: m}, nil
}

// roots are the directories a watcher observes for this project.
func (p *project) roots() []string {
	if p.manifest != nil {
		return []string{p.manifest.Dir()}
	}
	return []string{filepath.Dir(p.entry)}
}

func (c *cli) newLoader(p *project) (*driver.Loader, error) {
	if p.manifest != nil {
		return driver.NewProjectLoader(p.manifest, c.cfg.Deps.CacheDir, c.logger)
	}
	return driver.NewLoader(driver.LoaderOptions{
		SearchRoots: []string{filepath.Dir(p.entry)},
		Logger:      c.logger,
	})
}

func (c *cli) newInterpreter(importer interpreter.Importer) *interpreter.Interpreter {
	return interpreter.New(interpreter.Options{
		Stdout:            c.stdout,
		LenientArithmetic: c.cfg.Runtime.LenientArithmetic,
		MaxCallDepth:      c.cfg.Runtime.MaxCallDepth,
		Importer:          importer,
		Logger:            c.logger,
	})
}

// parseEntry parses path, printing each syntax error as file:line:col.
func (c *cli) parseEntry(path string) (*ast.Program, bool) {
	result, err := parser.ParseFile(path, parser.Options{
		Report: func(syn *lexer.SyntaxError) {
			fmt.Fprintln(c.stderr, syn.Error())
		},
	})
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return nil, false
	}
	return result.Program, result.Success
}
