package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the project manifest file name.
const ManifestName = "package.yml"

// Manifest represents the parsed contents of package.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Authors      []string
	Main         string
	SourceDir    string
	Dependencies map[string]*DependencySpec
}

// DependencySpec describes one entry under dependencies. Exactly one of Path
// and Git is set; git dependencies pin one of Rev, Tag or Branch.
type DependencySpec struct {
	Path   string `yaml:"path"`
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type manifestFile struct {
	Name         string                     `yaml:"name"`
	Version      string                     `yaml:"version"`
	Authors      []string                   `yaml:"authors"`
	Main         string                     `yaml:"main"`
	SourceDir    string                     `yaml:"source_dir"`
	Dependencies map[string]*DependencySpec `yaml:"dependencies"`
}

// LoadManifest parses and validates package.yml at path.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks from dir towards the filesystem root and returns the
// first package.yml found.
func FindManifest(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(current, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("manifest: no %s in %s or its parents: %w", ManifestName, dir, os.ErrNotExist)
		}
		current = parent
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	m := &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Main:         strings.TrimSpace(mf.Main),
		SourceDir:    strings.TrimSpace(mf.SourceDir),
		Dependencies: make(map[string]*DependencySpec, len(mf.Dependencies)),
	}
	for _, author := range mf.Authors {
		m.Authors = append(m.Authors, strings.TrimSpace(author))
	}
	for name, dep := range mf.Dependencies {
		if dep == nil {
			m.Dependencies[strings.TrimSpace(name)] = nil
			continue
		}
		m.Dependencies[strings.TrimSpace(name)] = &DependencySpec{
			Path:   strings.TrimSpace(dep.Path),
			Git:    strings.TrimSpace(dep.Git),
			Rev:    strings.TrimSpace(dep.Rev),
			Tag:    strings.TrimSpace(dep.Tag),
			Branch: strings.TrimSpace(dep.Branch),
		}
	}
	return m
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Main == "" {
		errs.Issues = append(errs.Issues, "main must be provided")
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	for _, name := range sortedKeys(m.Dependencies) {
		dep := m.Dependencies[name]
		if name == "" {
			errs.Issues = append(errs.Issues, "dependency names must be non-empty")
			continue
		}
		if dep == nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: must specify path or git", name))
			continue
		}
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	pins := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			pins++
		}
	}
	switch {
	case d.Path == "" && d.Git == "":
		return []string{"must specify path or git"}
	case d.Path != "" && d.Git != "":
		return []string{"cannot specify both path and git"}
	case d.Git != "" && pins != 1:
		return []string{"git dependencies require exactly one of rev, tag or branch"}
	case d.Path != "" && pins > 0:
		return []string{"path dependencies cannot pin rev, tag or branch"}
	}
	return nil
}

// Dir is the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// MainPath is the absolute path of the entry file.
func (m *Manifest) MainPath() string {
	return m.resolve(m.Main)
}

// SourceRoot is the absolute import root of the project: source_dir when set,
// otherwise the manifest directory.
func (m *Manifest) SourceRoot() string {
	if m.SourceDir == "" {
		return m.Dir()
	}
	return m.resolve(m.SourceDir)
}

// LockfilePath is package.lock next to the manifest.
func (m *Manifest) LockfilePath() string {
	return filepath.Join(m.Dir(), LockfileName)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Dir(), p)
}
