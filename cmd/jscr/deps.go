package main

import (
	"context"
	"fmt"
	"path/filepath"

	"jscr/interpreter-go/pkg/driver"
)

func (c *cli) depsCommand(args []string) int {
	if len(args) != 1 || args[0] != "install" {
		fmt.Fprintln(c.stderr, "usage: jscr deps install")
		return 1
	}
	path, err := driver.FindManifest(".")
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	m, err := driver.LoadManifest(path)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}

	cacheDir := c.cfg.Deps.CacheDir
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(m.Dir(), cacheDir)
	}
	installer := &driver.Installer{
		Git:    driver.NewGitFetcher(cacheDir),
		Tool:   cliToolVersion,
		Logger: c.logger,
	}
	lock, err := installer.Install(context.Background(), m)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	fmt.Fprintf(c.stdout, "locked %d package(s) in %s\n", len(lock.Packages), lock.Path)
	return 0
}
