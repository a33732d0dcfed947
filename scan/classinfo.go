package scan

import (
	"errors"
	"strings"
)

// Kind discriminates the two variants of a metadata entity.
type Kind int

const (
	// KindOrdinary is a normally scanned class.
	KindOrdinary Kind = iota
	// KindArray is an array type entity carrying an ArrayTypeSignature.
	KindArray
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Kind.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Kind.
func (k *Kind) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "array":
		*k = KindArray
	default:
		*k = KindOrdinary
	}
	return nil
}

// ModuleInfo identifies the module a type belongs to.
type ModuleInfo struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// PackageInfo identifies the package a type belongs to.
type PackageInfo struct {
	Name string `json:"name"`
}

// Provenance describes where and how a type was discovered. For array
// entities these fields are mirrored from the element entity at the moment
// its metadata is first resolved; until then they hold their unset defaults.
type Provenance struct {
	OriginArtifact string       `json:"origin_artifact,omitempty"` // classpath element the type came from
	Resource       string       `json:"resource,omitempty"`        // backing resource within the artifact
	Loader         string       `json:"loader,omitempty"`          // loader that would define the type
	Scanned        bool         `json:"scanned"`                   // discovered by the scan itself
	External       bool         `json:"external"`                  // reachable but outside the scan scope
	Module         *ModuleInfo  `json:"module,omitempty"`
	Package        *PackageInfo `json:"package,omitempty"`
}

// ClassTypeSignature is the parsed declaration signature of an ordinary
// class. Array types have no class signature.
type ClassTypeSignature struct {
	Raw string `json:"raw"`
}

// resolveState tracks a lazy cache field through its three states. A field
// transitions at most once from resolveUnresolved to one of the resolved
// states and never back.
type resolveState int

const (
	resolveUnresolved resolveState = iota
	resolveValue
	resolveAbsent
)

// ClassInfo is the metadata entity for a single discovered type. Identity
// is the type name: two entities are equal when their names are equal,
// regardless of variant payload.
//
// The exported fields are mutable slots owned by the discovery pipeline;
// the lazy caches (element entity, runtime type handle) transition at most
// once from unset to set. First access to the lazy caches is not
// synchronized; see the package documentation.
type ClassInfo struct {
	Name       string
	Modifiers  int
	Kind       Kind
	Provenance Provenance

	classSig *ClassTypeSignature // ordinary variant only
	arraySig *ArrayTypeSignature // array variant only
	res      *Result

	elemState   resolveState
	elem        *ClassInfo
	classHandle Handle
}

// NewClassInfo returns an ordinary metadata entity for the named type.
// The entity becomes queryable once registered with a Result.
func NewClassInfo(name string, modifiers int) *ClassInfo {
	return &ClassInfo{Name: name, Modifiers: modifiers, Kind: KindOrdinary}
}

// newArrayClassInfo builds the array variant. Callers go through
// Result.ArrayClass, which enforces the once-per-name lifecycle and the
// eager element resolution at construction.
func newArrayClassInfo(res *Result, sig *ArrayTypeSignature) *ClassInfo {
	return &ClassInfo{
		Name:     sig.SignatureStr(),
		Kind:     KindArray,
		arraySig: sig,
		res:      res,
	}
}

// IsArray reports whether this entity describes an array type.
func (c *ClassInfo) IsArray() bool { return c.Kind == KindArray }

// Equal reports whether two entities share the same identity. Identity is
// the type name; variant-specific fields do not participate.
func (c *ClassInfo) Equal(other *ClassInfo) bool {
	return other != nil && c.Name == other.Name
}

// String returns the type name.
func (c *ClassInfo) String() string { return c.Name }

// SetTypeSignature records the parsed class declaration signature. It is a
// no-op for the array variant, which has no class signature.
func (c *ClassInfo) SetTypeSignature(sig *ClassTypeSignature) {
	if c.Kind == KindArray {
		return
	}
	c.classSig = sig
}

// TypeSignature returns the parsed class declaration signature, or nil if
// none was recorded. Always nil for the array variant: array types have no
// class signature, and callers branching on signature kind rely on that.
func (c *ClassInfo) TypeSignature() *ClassTypeSignature {
	if c.Kind == KindArray {
		return nil
	}
	return c.classSig
}

// TypeSignatureStr returns the canonical signature string for the type.
// For arrays this is the array descriptor, e.g. "[[I".
func (c *ClassInfo) TypeSignatureStr() string {
	if c.Kind == KindArray {
		return c.arraySig.SignatureStr()
	}
	if c.classSig != nil {
		return c.classSig.Raw
	}
	return "L" + strings.ReplaceAll(c.Name, ".", "/") + ";"
}

// ArrayTypeSignature returns the owned array signature, or nil for the
// ordinary variant.
func (c *ClassInfo) ArrayTypeSignature() *ArrayTypeSignature {
	if c.Kind != KindArray {
		return nil
	}
	return c.arraySig
}

// ElementTypeSignature returns the innermost element signature of the
// array, or nil for the ordinary variant.
func (c *ClassInfo) ElementTypeSignature() TypeSignature {
	if c.Kind != KindArray {
		return nil
	}
	return c.arraySig.ElementTypeSignature()
}

// NumDimensions returns the array dimension count, or 0 for the ordinary
// variant.
func (c *ClassInfo) NumDimensions() int {
	if c.Kind != KindArray {
		return 0
	}
	return c.arraySig.NumDimensions()
}

// ElementClassInfo resolves and caches the metadata entity for the array's
// element type. The result is permanently nil when the element is a
// primitive type or when no entity was discovered for the element's
// reference type; absence is not an error.
//
// Resolution runs at most once. On first successful resolution the array
// entity adopts the element's provenance fields; the registry is never
// re-queried afterwards, and later mutation of the element's fields is not
// reflected.
func (c *ClassInfo) ElementClassInfo() *ClassInfo {
	if c.Kind != KindArray {
		return nil
	}
	switch c.elemState {
	case resolveValue:
		return c.elem
	case resolveAbsent:
		return nil
	}

	ref, ok := c.arraySig.ElementTypeSignature().(*ClassRefTypeSignature)
	if !ok {
		// Primitive element: no metadata entity exists.
		c.elemState = resolveAbsent
		return nil
	}
	elem := ref.ClassInfo()
	if elem == nil {
		c.elemState = resolveAbsent
		return nil
	}

	c.elem = elem
	c.elemState = resolveValue
	c.adoptProvenance(elem)
	return elem
}

// adoptProvenance copies the mirrored provenance field set from the
// element entity. This is the single place the field list lives: origin
// artifact, resource, loader, scanned flag, external flag, owning module,
// owning package. Called exactly once, at first successful element
// resolution.
func (c *ClassInfo) adoptProvenance(src *ClassInfo) {
	c.Provenance.OriginArtifact = src.Provenance.OriginArtifact
	c.Provenance.Resource = src.Provenance.Resource
	c.Provenance.Loader = src.Provenance.Loader
	c.Provenance.Scanned = src.Provenance.Scanned
	c.Provenance.External = src.Provenance.External
	c.Provenance.Module = src.Provenance.Module
	c.Provenance.Package = src.Provenance.Package
}

// errNotArray is the cause reported when an element load is requested on
// an ordinary entity.
var errNotArray = errors.New("not an array type")

// LoadClass resolves the runtime type handle for this type. The handle is
// cached after the first successful resolution and returned without
// re-resolving on subsequent calls. Failures are never cached. When
// ignoreFailures is true a failed load yields (nil, nil); otherwise the
// failure is returned as a *LoadError.
func (c *ClassInfo) LoadClass(ignoreFailures bool) (Handle, error) {
	if c.classHandle != nil {
		return c.classHandle, nil
	}

	var h Handle
	var err error
	if c.Kind == KindArray {
		h, err = c.arraySig.LoadClass(ignoreFailures)
	} else if c.res == nil {
		h, err = loadFailure(c.Name, ErrUnboundSignature, ignoreFailures)
	} else {
		h, err = c.res.loadHandle(c.Name, ignoreFailures)
	}
	if err != nil || h == nil {
		return nil, err
	}

	c.classHandle = h
	return h, nil
}

// LoadElementHandle resolves the runtime type handle for the array's
// element type. Unlike ElementClassInfo this works for primitive elements
// too, and the result is not cached; element-handle and array-handle
// resolution are independent. Same failure policy as LoadClass. Calling
// this on an ordinary entity is a failure.
func (c *ClassInfo) LoadElementHandle(ignoreFailures bool) (Handle, error) {
	if c.Kind != KindArray {
		return loadFailure(c.Name, errNotArray, ignoreFailures)
	}
	return c.arraySig.LoadElementClass(ignoreFailures)
}
