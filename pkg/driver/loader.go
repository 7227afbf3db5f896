package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/parser"
)

// SourceExt is the extension of JScr source files.
const SourceExt = ".jscr"

var ErrModuleNotFound = errors.New("module not found")

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// SearchRoots are tried, in order, after the importing file's directory.
	SearchRoots []string
	// Dependencies maps a dependency name to its root; an import whose first
	// segment names a dependency also resolves against that root.
	Dependencies map[string]string
	Logger       *slog.Logger
}

// Loader resolves import paths to source files and parses them. Parsed
// programs are cached by absolute path until invalidated.
type Loader struct {
	roots  []string
	deps   map[string]string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*ast.Program
}

func NewLoader(opts LoaderOptions) (*Loader, error) {
	roots := make([]string, 0, len(opts.SearchRoots))
	seen := make(map[string]struct{}, len(opts.SearchRoots))
	for _, root := range opts.SearchRoots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search root %q: %w", root, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		roots = append(roots, abs)
	}
	deps := make(map[string]string, len(opts.Dependencies))
	for name, dir := range opts.Dependencies {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve dependency %s: %w", name, err)
		}
		deps[name] = abs
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{roots: roots, deps: deps, logger: logger, cache: make(map[string]*ast.Program)}, nil
}

// NewProjectLoader builds a loader for the project described by m, using the
// lockfile next to it (if any) for dependency roots.
func NewProjectLoader(m *Manifest, cacheDir string, logger *slog.Logger) (*Loader, error) {
	opts := LoaderOptions{SearchRoots: []string{m.SourceRoot()}, Logger: logger}
	lock, err := LoadLockfile(m.LockfilePath())
	switch {
	case err == nil:
		if !filepath.IsAbs(cacheDir) {
			cacheDir = filepath.Join(m.Dir(), cacheDir)
		}
		opts.Dependencies = DependencyRoots(lock, cacheDir)
	case errors.Is(err, os.ErrNotExist):
		if len(m.Dependencies) > 0 {
			return nil, fmt.Errorf("loader: %s has dependencies but no %s; run deps install", m.Path, LockfileName)
		}
	default:
		return nil, err
	}
	return NewLoader(opts)
}

// Candidates lists, in lookup order, the files an import path may refer to
// from the importing file.
func (l *Loader) Candidates(from string, path []string) []string {
	rel := filepath.Join(path...) + SourceExt
	var out []string
	if from != "" {
		if abs, err := filepath.Abs(from); err == nil {
			out = append(out, filepath.Join(filepath.Dir(abs), rel))
		}
	}
	for _, root := range l.roots {
		out = append(out, filepath.Join(root, rel))
	}
	if len(path) > 1 {
		if dir, ok := l.deps[path[0]]; ok {
			out = append(out, filepath.Join(dir, filepath.Join(path[1:]...)+SourceExt))
		}
	}
	return out
}

// Resolve implements interpreter.Importer.
func (l *Loader) Resolve(ctx context.Context, from string, path []string) (string, *ast.Program, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if len(path) == 0 {
		return "", nil, fmt.Errorf("loader: empty import path")
	}
	name := strings.Join(path, ".")
	candidates := l.Candidates(from, path)
	for _, file := range candidates {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		program, err := l.parse(file)
		if err != nil {
			return "", nil, err
		}
		return file, program, nil
	}
	return "", nil, fmt.Errorf("loader: %w: %s (searched %s)", ErrModuleNotFound, name, strings.Join(candidates, ", "))
}

func (l *Loader) parse(file string) (*ast.Program, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if program, ok := l.cache[file]; ok {
		return program, nil
	}
	result, err := parser.ParseFile(file, parser.Options{})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, result.Errors[0]
	}
	l.logger.Debug("module parsed", "path", file)
	l.cache[file] = result.Program
	return result.Program, nil
}

// Invalidate drops cached parses for the given files, or everything when
// called without arguments.
func (l *Loader) Invalidate(files ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(files) == 0 {
		clear(l.cache)
		return
	}
	for _, file := range files {
		if abs, err := filepath.Abs(file); err == nil {
			delete(l.cache, abs)
		}
	}
}
