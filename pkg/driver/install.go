package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const pathSourcePrefix = "path:"

// Installer resolves manifest dependencies into a lockfile.
type Installer struct {
	// Git fetches git dependencies. Manifests with git dependencies fail to
	// install when it is nil.
	Git    Fetcher
	Tool   string
	Logger *slog.Logger
}

// Install resolves every dependency of m, writes package.lock next to the
// manifest and returns it.
func (in *Installer) Install(ctx context.Context, m *Manifest) (*Lockfile, error) {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lock := NewLockfile(m.Name, in.Tool)
	for _, name := range sortedKeys(m.Dependencies) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spec := m.Dependencies[name]
		var pkg *LockedPackage
		var err error
		if spec.Path != "" {
			pkg, err = lockPathDependency(m, name, spec)
		} else {
			if in.Git == nil {
				return nil, fmt.Errorf("deps: %s: no git fetcher configured", name)
			}
			pkg, _, err = in.Git.Fetch(ctx, name, spec)
		}
		if err != nil {
			return nil, fmt.Errorf("deps: %s: %w", name, err)
		}
		logger.Info("dependency locked", "name", pkg.Name, "version", pkg.Version, "source", pkg.Source)
		lock.Put(pkg)
	}
	if err := WriteLockfile(lock, m.LockfilePath()); err != nil {
		return nil, err
	}
	return lock, nil
}

func lockPathDependency(m *Manifest, name string, spec *DependencySpec) (*LockedPackage, error) {
	dir := m.resolve(spec.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", dir)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, err
	}
	version := "0.0.0"
	if dep, err := LoadManifest(filepath.Join(dir, ManifestName)); err == nil && dep.Version != "" {
		version = dep.Version
	}
	return &LockedPackage{
		Name:     name,
		Version:  version,
		Source:   pathSourcePrefix + dir,
		Checksum: checksum,
	}, nil
}

// DependencyRoots maps each locked package name to the directory its imports
// resolve against. Git checkouts live under cacheDir. A dependency carrying
// its own package.yml contributes its source root.
func DependencyRoots(lock *Lockfile, cacheDir string) map[string]string {
	roots := make(map[string]string, len(lock.Packages))
	for _, pkg := range lock.Packages {
		var dir string
		switch {
		case strings.HasPrefix(pkg.Source, pathSourcePrefix):
			dir = strings.TrimPrefix(pkg.Source, pathSourcePrefix)
		case strings.HasPrefix(pkg.Source, "git+"):
			dir = filepath.Join(cacheDir, sanitizePathSegment(pkg.Name), sanitizePathSegment(pkg.Version))
		default:
			continue
		}
		if dep, err := LoadManifest(filepath.Join(dir, ManifestName)); err == nil {
			dir = dep.SourceRoot()
		}
		roots[pkg.Name] = dir
	}
	return roots
}
