package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jscr/interpreter-go/pkg/driver"
	"jscr/interpreter-go/pkg/interpreter"
	"jscr/interpreter-go/pkg/observability"
	"jscr/interpreter-go/pkg/watch"
)

func (c *cli) runCommand(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	watchMode := fs.Bool("watch", false, "re-run when source files change")
	metricsAddr := fs.String("metrics-addr", c.cfg.Metrics.Addr, "serve Prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, err := resolveProject(fs.Args())
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	loader, err := c.newLoader(p)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		srv := observability.NewServer(*metricsAddr, c.logger)
		if err := srv.Start(); err != nil {
			fmt.Fprintf(c.stderr, "metrics server: %v\n", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	interp := c.newInterpreter(loader)
	if !*watchMode {
		return c.execute(ctx, interp, p.entry)
	}
	return c.watch(ctx, interp, loader, p)
}

// execute runs the entry file once and reports failures. The exit code is 1
// on syntax or runtime errors.
func (c *cli) execute(ctx context.Context, interp *interpreter.Interpreter, entry string) int {
	program, ok := c.parseEntry(entry)
	if !ok {
		return 1
	}
	handle := interp.ExecuteAsync(ctx, program)
	if _, err := handle.Await(); err != nil {
		fmt.Fprintf(c.stderr, "runtime error: %v\n", err)
		return 1
	}
	return 0
}

// watch runs the entry file, then again after every batch of changes, until
// ctx is done. A run still in progress when a change arrives is cancelled.
func (c *cli) watch(ctx context.Context, interp *interpreter.Interpreter, loader *driver.Loader, p *project) int {
	runs := make(chan []string, 1)
	w, err := watch.New(watch.Options{
		Debounce:     c.cfg.Watch.Debounce,
		ExcludeDirs:  c.cfg.Watch.ExcludeDirs,
		ExcludeFiles: c.cfg.Watch.ExcludeFiles,
		Extensions:   []string{driver.SourceExt},
		Logger:       c.logger,
	}, func(paths []string) {
		select {
		case runs <- paths:
		case <-ctx.Done():
		}
	})
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	defer w.Close()
	if err := w.Watch(ctx, p.roots()); err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}

	var current *interpreter.Handle
	start := func() {
		program, ok := c.parseEntry(p.entry)
		if !ok {
			current = nil
			return
		}
		current = interp.ExecuteAsync(ctx, program)
		go func(h *interpreter.Handle) {
			if _, err := h.Await(); err != nil {
				fmt.Fprintf(c.stderr, "runtime error: %v\n", err)
			}
		}(current)
	}

	start()
	for {
		select {
		case <-ctx.Done():
			if current != nil {
				current.Cancel()
				<-current.Done()
			}
			return 0
		case paths := <-runs:
			c.logger.Info("change detected, re-running", "files", len(paths), "entry", p.entry)
			if current != nil {
				current.Cancel()
				<-current.Done()
			}
			c.logger.Debug("previous run stopped", "pending", interp.PendingExecutions())
			loader.Invalidate(paths...)
			start()
		}
	}
}
