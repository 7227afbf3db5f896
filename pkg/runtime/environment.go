package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// ScopeKind tags what kind of construct opened a scope.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeClass
	ScopeMethod
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeClass:
		return "class"
	case ScopeMethod:
		return "method"
	default:
		return fmt.Sprintf("scope_kind_%d", int(k))
	}
}

type importEntry struct {
	file  string
	scope *Environment
}

// Environment is one node of the scope tree. It holds four independent
// declaration tables, so an enum, a record, a class and a variable may share
// a name.
type Environment struct {
	mu       sync.RWMutex
	parent   *Environment
	kind     ScopeKind
	file     string
	imported bool

	enums   map[string]*EnumDecl
	records map[string]*RecordDecl
	classes map[string]*ClassDecl
	vars    map[string]*Variable

	imports []importEntry
	aliases map[string]*Environment
}

func newEnvironment(parent *Environment, kind ScopeKind, file string, imported bool) *Environment {
	return &Environment{
		parent:   parent,
		kind:     kind,
		file:     file,
		imported: imported,
		enums:    make(map[string]*EnumDecl),
		records:  make(map[string]*RecordDecl),
		classes:  make(map[string]*ClassDecl),
		vars:     make(map[string]*Variable),
		aliases:  make(map[string]*Environment),
	}
}

// NewGlobalEnvironment creates the root scope for the file at path.
func NewGlobalEnvironment(file string) *Environment {
	return newEnvironment(nil, ScopeGlobal, file, false)
}

// NewImportedEnvironment creates the global scope of a module that will be
// imported by another scope. Unlike a root scope it may have a parent.
func NewImportedEnvironment(parent *Environment, file string) *Environment {
	return newEnvironment(parent, ScopeGlobal, file, true)
}

// NewChild opens a nested scope. Only root and imported scopes may be Global.
func (e *Environment) NewChild(kind ScopeKind) (*Environment, error) {
	if kind == ScopeGlobal {
		return nil, fmt.Errorf("%w: a global scope cannot have a parent", ErrScope)
	}
	return newEnvironment(e, kind, e.file, false), nil
}

// Parent exposes the lexical parent (nil when root).
func (e *Environment) Parent() *Environment { return e.parent }

func (e *Environment) Kind() ScopeKind { return e.kind }

// File is the source path this scope belongs to.
func (e *Environment) File() string { return e.file }

// IsImported reports whether the scope was created for, or registered as,
// an import.
func (e *Environment) IsImported() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.imported
}

//-----------------------------------------------------------------------------
// Declarations
//-----------------------------------------------------------------------------

func (e *Environment) DeclareEnum(decl *EnumDecl, annotations ...string) error {
	if err := e.validateAnnotations(DeclEnum, annotations); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return declareIn(e.enums, DeclEnum, decl)
}

func (e *Environment) DeclareRecord(decl *RecordDecl, annotations ...string) error {
	if err := e.validateAnnotations(DeclRecord, annotations); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return declareIn(e.records, DeclRecord, decl)
}

func (e *Environment) DeclareClass(decl *ClassDecl, annotations ...string) error {
	if err := e.validateAnnotations(DeclClass, annotations); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return declareIn(e.classes, DeclClass, decl)
}

// DeclareVar binds a variable or function in this scope. The initial value
// must match decl.Type.
func (e *Environment) DeclareVar(decl *Variable, annotations ...string) error {
	if err := e.validateAnnotations(DeclVar, annotations); err != nil {
		return err
	}
	if decl.Value == nil {
		decl.Value = NullValue{}
	}
	if actual := TypeOf(decl.Value); !decl.Type.Accepts(actual) {
		return fmt.Errorf("%w: cannot initialize '%s' of type %s with %s", ErrTypeMismatch, decl.Name, decl.Type, actual)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return declareIn(e.vars, DeclVar, decl)
}

//-----------------------------------------------------------------------------
// Resolution
//-----------------------------------------------------------------------------

// lookup walks the scope chain. At each scope the imports are searched
// first, and only their Public entries count; then the scope's own table is
// searched regardless of visibility.
func lookup[T Decl](e *Environment, table func(*Environment) map[string]T, name string) (T, *Environment, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		scope.mu.RLock()
		imports := scope.imports
		scope.mu.RUnlock()
		for _, imp := range imports {
			imp.scope.mu.RLock()
			decl, ok := table(imp.scope)[name]
			imp.scope.mu.RUnlock()
			if ok && decl.DeclVisibility() == Public {
				return decl, imp.scope, true
			}
		}
		scope.mu.RLock()
		decl, ok := table(scope)[name]
		scope.mu.RUnlock()
		if ok {
			return decl, scope, true
		}
	}
	var zero T
	return zero, nil, false
}

func enumTable(e *Environment) map[string]*EnumDecl     { return e.enums }
func recordTable(e *Environment) map[string]*RecordDecl { return e.records }
func classTable(e *Environment) map[string]*ClassDecl   { return e.classes }
func varTable(e *Environment) map[string]*Variable      { return e.vars }

func (e *Environment) ResolveEnum(name string) (*EnumDecl, error) {
	if decl, _, ok := lookup(e, enumTable, name); ok {
		return decl, nil
	}
	return nil, fmt.Errorf("%w: enum '%s'", ErrUnresolved, name)
}

func (e *Environment) ResolveRecord(name string) (*RecordDecl, error) {
	if decl, _, ok := lookup(e, recordTable, name); ok {
		return decl, nil
	}
	return nil, fmt.Errorf("%w: record '%s'", ErrUnresolved, name)
}

func (e *Environment) ResolveClass(name string) (*ClassDecl, error) {
	if decl, _, ok := lookup(e, classTable, name); ok {
		return decl, nil
	}
	return nil, fmt.Errorf("%w: class '%s'", ErrUnresolved, name)
}

// ResolveVar returns the current value bound to name.
func (e *Environment) ResolveVar(name string) (Value, error) {
	decl, owner, ok := lookup(e, varTable, name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnresolved, name)
	}
	owner.mu.RLock()
	defer owner.mu.RUnlock()
	return decl.Value, nil
}

// LookupVar returns the binding itself.
func (e *Environment) LookupVar(name string) (*Variable, error) {
	if decl, _, ok := lookup(e, varTable, name); ok {
		return decl, nil
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnresolved, name)
}

// AssignVar replaces the value of an existing, non-constant binding in the
// scope that declared it.
func (e *Environment) AssignVar(name string, value Value) error {
	decl, owner, ok := lookup(e, varTable, name)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrUnresolved, name)
	}
	if decl.IsConstant {
		return fmt.Errorf("%w '%s'", ErrConstAssignment, name)
	}
	if actual := TypeOf(value); !decl.Type.Accepts(actual) {
		return fmt.Errorf("%w: cannot assign %s to '%s' of type %s", ErrTypeMismatch, actual, name, decl.Type)
	}
	owner.mu.Lock()
	decl.Value = value
	owner.mu.Unlock()
	return nil
}

// Exported returns a Public variable from this scope's own table. Member
// access through an import alias goes through here.
func (e *Environment) Exported(name string) (Value, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	decl, ok := e.vars[name]
	if !ok || decl.Visibility != Public {
		return nil, fmt.Errorf("%w: '%s' is not exported by %s", ErrUnresolved, name, e.file)
	}
	return decl.Value, nil
}

// Variables returns the names declared directly in this scope, sorted.
func (e *Environment) Variables() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	e.mu.RUnlock()
	sort.Strings(names)
	return names
}

//-----------------------------------------------------------------------------
// Imports
//-----------------------------------------------------------------------------

// DeclareImport makes other's Public entries resolvable from e. It fails on a
// duplicate file, on a non-imported scope importing its own file, and on an
// alias that is already taken.
func (e *Environment) DeclareImport(other *Environment, otherFile, alias string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.imported && e.file == otherFile {
		return fmt.Errorf("%w: %s cannot import itself", ErrImport, otherFile)
	}
	for _, imp := range e.imports {
		if imp.file == otherFile {
			return fmt.Errorf("%w: %s is already imported", ErrImport, otherFile)
		}
	}
	if alias != "" {
		if _, taken := e.aliases[alias]; taken {
			return fmt.Errorf("%w: alias '%s' is already in use", ErrImport, alias)
		}
		e.aliases[alias] = other
	}
	e.imports = append(e.imports, importEntry{file: otherFile, scope: other})

	if other != e {
		other.mu.Lock()
		other.imported = true
		other.mu.Unlock()
	}
	return nil
}

// ResolveAlias finds the scope registered under an import alias, searching
// outward through the chain.
func (e *Environment) ResolveAlias(alias string) (*Environment, error) {
	for scope := e; scope != nil; scope = scope.parent {
		scope.mu.RLock()
		target, ok := scope.aliases[alias]
		scope.mu.RUnlock()
		if ok {
			return target, nil
		}
	}
	return nil, fmt.Errorf("%w: import alias '%s'", ErrUnresolved, alias)
}

// Imports lists the files imported directly into this scope, in order.
func (e *Environment) Imports() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	files := make([]string, len(e.imports))
	for i, imp := range e.imports {
		files[i] = imp.file
	}
	return files
}
