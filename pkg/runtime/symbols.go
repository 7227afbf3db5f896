package runtime

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrRedeclared      = errors.New("already declared")
	ErrUnresolved      = errors.New("unresolved symbol")
	ErrConstAssignment = errors.New("cannot assign to constant")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrAnnotation      = errors.New("invalid annotation")
	ErrImport          = errors.New("invalid import")
	ErrScope           = errors.New("invalid scope")
)

// Visibility gates whether an imported scope's entry can be resolved from
// the importing scope. Lexical parents ignore it.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// DeclKind names the four declaration namespaces.
type DeclKind int

const (
	DeclEnum DeclKind = iota
	DeclRecord
	DeclClass
	DeclVar
)

func (k DeclKind) String() string {
	switch k {
	case DeclEnum:
		return "enum"
	case DeclRecord:
		return "record"
	case DeclClass:
		return "class"
	case DeclVar:
		return "variable"
	default:
		return fmt.Sprintf("decl_kind_%d", int(k))
	}
}

// Decl is implemented by every entry of a scope table.
type Decl interface {
	DeclName() string
	DeclVisibility() Visibility
}

type EnumDecl struct {
	Name       string
	Members    []string
	Visibility Visibility
}

func (d *EnumDecl) DeclName() string           { return d.Name }
func (d *EnumDecl) DeclVisibility() Visibility { return d.Visibility }

type RecordDecl struct {
	Name       string
	Fields     []FieldType
	Visibility Visibility
}

func (d *RecordDecl) DeclName() string           { return d.Name }
func (d *RecordDecl) DeclVisibility() Visibility { return d.Visibility }

// ClassDecl describes a class. A class with IsAnnotation set may be used to
// annotate declarations of the kinds listed in Targets.
type ClassDecl struct {
	Name         string
	IsAnnotation bool
	Targets      []DeclKind
	Visibility   Visibility
}

func (d *ClassDecl) DeclName() string           { return d.Name }
func (d *ClassDecl) DeclVisibility() Visibility { return d.Visibility }

// Variable is a variable or function binding. Value is replaced in place on
// assignment; Type stays fixed for the binding's lifetime.
type Variable struct {
	Name       string
	Type       Type
	Value      Value
	IsConstant bool
	Visibility Visibility
}

func (d *Variable) DeclName() string           { return d.Name }
func (d *Variable) DeclVisibility() Visibility { return d.Visibility }

func declareIn[T Decl](table map[string]T, kind DeclKind, decl T) error {
	name := decl.DeclName()
	if _, exists := table[name]; exists {
		return fmt.Errorf("%s '%s' %w in this scope", kind, name, ErrRedeclared)
	}
	table[name] = decl
	return nil
}

// validateAnnotations resolves each annotation name from e and checks that
// it is an annotation class allowed on kind.
func (e *Environment) validateAnnotations(kind DeclKind, annotations []string) error {
	for _, name := range annotations {
		class, err := e.ResolveClass(name)
		if err != nil {
			return fmt.Errorf("%w: '%s' does not resolve to a class", ErrAnnotation, name)
		}
		if !class.IsAnnotation {
			return fmt.Errorf("%w: class '%s' is not an annotation", ErrAnnotation, name)
		}
		if !slices.Contains(class.Targets, kind) {
			return fmt.Errorf("%w: '%s' cannot annotate a %s", ErrAnnotation, name, kind)
		}
	}
	return nil
}
