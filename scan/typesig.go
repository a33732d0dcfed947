package scan

import (
	"fmt"
	"strings"
)

// TypeSignature is the parsed representation of a type: a primitive (base)
// type, a reference to a class, or an array. Signatures render to the
// canonical descriptor syntax via SignatureStr.
type TypeSignature interface {
	// SignatureStr returns the canonical descriptor string for the type,
	// e.g. "I", "Ljava/lang/String;" or "[[I".
	SignatureStr() string

	// bind attaches the signature to the scan result used for entity
	// lookups and runtime type loading. Sealed: only types in this
	// package implement TypeSignature.
	bind(res *Result)
}

// baseTypes maps primitive type names to their single-character descriptors.
var baseTypes = map[string]byte{
	"byte":    'B',
	"char":    'C',
	"double":  'D',
	"float":   'F',
	"int":     'I',
	"long":    'J',
	"short":   'S',
	"boolean": 'Z',
	"void":    'V',
}

// baseTypeNames is the reverse of baseTypes, keyed by descriptor character.
var baseTypeNames = func() map[byte]string {
	names := make(map[byte]string, len(baseTypes))
	for name, desc := range baseTypes {
		names[desc] = name
	}
	return names
}()

// BaseTypeSignature is the signature of a primitive type. Base types have
// no associated metadata entity.
type BaseTypeSignature struct {
	name       string
	descriptor byte
}

// NewBaseTypeSignature returns the signature for the named primitive type
// ("int", "boolean", ...). Returns an error for unknown names.
func NewBaseTypeSignature(name string) (*BaseTypeSignature, error) {
	desc, ok := baseTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown base type: %q", name)
	}
	return &BaseTypeSignature{name: name, descriptor: desc}, nil
}

// TypeName returns the primitive type name, e.g. "int".
func (b *BaseTypeSignature) TypeName() string { return b.name }

// SignatureStr returns the single-character descriptor, e.g. "I".
func (b *BaseTypeSignature) SignatureStr() string { return string(b.descriptor) }

func (b *BaseTypeSignature) bind(*Result) {}

// ClassRefTypeSignature is the signature of a reference type. The class
// name is stored in dotted form ("java.lang.String") and rendered in
// descriptor form ("Ljava/lang/String;").
type ClassRefTypeSignature struct {
	className string
	res       *Result
}

// NewClassRefTypeSignature returns a signature referencing the named class.
func NewClassRefTypeSignature(className string) (*ClassRefTypeSignature, error) {
	if className == "" {
		return nil, fmt.Errorf("class reference signature requires a class name")
	}
	return &ClassRefTypeSignature{className: className}, nil
}

// ClassName returns the referenced class name in dotted form.
func (c *ClassRefTypeSignature) ClassName() string { return c.className }

// SignatureStr returns the descriptor form, e.g. "Ljava/lang/String;".
func (c *ClassRefTypeSignature) SignatureStr() string {
	return "L" + strings.ReplaceAll(c.className, ".", "/") + ";"
}

// ClassInfo returns the metadata entity for the referenced class, or nil
// if the class was not discovered or the signature is not attached to a
// scan result. Absence is not an error: callers must nil-check.
func (c *ClassRefTypeSignature) ClassInfo() *ClassInfo {
	if c.res == nil {
		return nil
	}
	return c.res.Class(c.className)
}

func (c *ClassRefTypeSignature) bind(res *Result) { c.res = res }

// ArrayTypeSignature is the signature of an array type: the innermost
// (non-array) element signature plus the number of array nestings.
type ArrayTypeSignature struct {
	elem    TypeSignature
	numDims int
	res     *Result
}

// NewArrayTypeSignature builds an array signature with numDims nestings of
// elem. numDims must be at least 1 and elem must not itself be an array;
// nested arrays are expressed through numDims alone. Arrays of void are
// rejected.
func NewArrayTypeSignature(elem TypeSignature, numDims int) (*ArrayTypeSignature, error) {
	if elem == nil {
		return nil, fmt.Errorf("array signature requires an element signature")
	}
	if numDims < 1 {
		return nil, fmt.Errorf("array signature requires at least 1 dimension, got %d", numDims)
	}
	if _, ok := elem.(*ArrayTypeSignature); ok {
		return nil, fmt.Errorf("array element signature must not itself be an array")
	}
	if base, ok := elem.(*BaseTypeSignature); ok && base.descriptor == 'V' {
		return nil, fmt.Errorf("array of void is not a valid type")
	}
	return &ArrayTypeSignature{elem: elem, numDims: numDims}, nil
}

// ElementTypeSignature returns the innermost element signature.
func (a *ArrayTypeSignature) ElementTypeSignature() TypeSignature { return a.elem }

// NumDimensions returns the number of array nestings. Always >= 1.
func (a *ArrayTypeSignature) NumDimensions() int { return a.numDims }

// SignatureStr returns the canonical array descriptor: one "[" per
// dimension followed by the element descriptor, e.g. "[[I".
func (a *ArrayTypeSignature) SignatureStr() string {
	return strings.Repeat("[", a.numDims) + a.elem.SignatureStr()
}

// ClassName returns the class name of the array type, which equals its
// canonical descriptor string.
func (a *ArrayTypeSignature) ClassName() string { return a.SignatureStr() }

func (a *ArrayTypeSignature) bind(res *Result) {
	a.res = res
	a.elem.bind(res)
}

// elementTypeName returns the loadable name of the element type: the
// primitive name for base types, the dotted class name for references.
func (a *ArrayTypeSignature) elementTypeName() string {
	switch elem := a.elem.(type) {
	case *BaseTypeSignature:
		return elem.TypeName()
	case *ClassRefTypeSignature:
		return elem.ClassName()
	default:
		return elem.SignatureStr()
	}
}

// LoadClass resolves the runtime type handle for the array type itself.
// When ignoreFailures is true a failed load yields (nil, nil); otherwise
// the failure is returned as a *LoadError.
func (a *ArrayTypeSignature) LoadClass(ignoreFailures bool) (Handle, error) {
	if a.res == nil {
		return loadFailure(a.SignatureStr(), ErrUnboundSignature, ignoreFailures)
	}
	return a.res.loadHandle(a.SignatureStr(), ignoreFailures)
}

// LoadElementClass resolves the runtime type handle for the element type.
// Unlike element entity resolution, this works for primitive elements too.
// Same failure policy as LoadClass.
func (a *ArrayTypeSignature) LoadElementClass(ignoreFailures bool) (Handle, error) {
	if a.res == nil {
		return loadFailure(a.elementTypeName(), ErrUnboundSignature, ignoreFailures)
	}
	return a.res.loadHandle(a.elementTypeName(), ignoreFailures)
}
