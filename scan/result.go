package scan

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Result is the registry of metadata entities produced by one scan of a
// type universe. Entities are keyed by canonical type name and kept in
// registration order. Registration and lookup are safe for concurrent use;
// the lazy caches on individual entities are not (see package docs).
type Result struct {
	mu        sync.RWMutex
	id        string
	generated time.Time
	loader    Loader
	classes   ClassInfoList
	byName    map[string]*ClassInfo
}

// NewResult returns an empty scan result. loader may be nil, in which case
// every runtime type load fails with ErrNoLoader.
func NewResult(loader Loader) *Result {
	return &Result{
		id:        uuid.NewString(),
		generated: time.Now().UTC(),
		loader:    loader,
		classes:   NewInfoList[*ClassInfo](),
		byName:    make(map[string]*ClassInfo),
	}
}

// ID returns the unique identifier of this scan.
func (r *Result) ID() string { return r.id }

// Generated returns the time the scan result was created.
func (r *Result) Generated() time.Time { return r.generated }

// AddClass registers an entity. The type name must be unique within the
// result.
func (r *Result) AddClass(ci *ClassInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[ci.Name]; exists {
		return fmt.Errorf("class %q already registered", ci.Name)
	}
	ci.res = r
	r.byName[ci.Name] = ci
	r.classes = append(r.classes, ci)
	return nil
}

// Class returns the entity for the named type, or nil if none was
// discovered. Absence is not an error.
func (r *Result) Class(name string) *ClassInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Remove deletes the entity for the named type from the registry. Entities
// that already resolved a reference to it keep their cached value.
func (r *Result) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; !exists {
		return
	}
	delete(r.byName, name)
	r.classes = r.classes.Filter(func(ci *ClassInfo) bool { return ci.Name != name })
}

// Len returns the number of registered entities.
func (r *Result) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}

// AllClasses returns all registered entities in registration order.
// The returned list is a copy; filtering it does not affect the registry.
func (r *Result) AllClasses() ClassInfoList {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return InfoListFrom(r.classes)
}

// ArrayClasses returns all array entities in registration order.
func (r *Result) ArrayClasses() ClassInfoList {
	return r.AllClasses().Filter(func(ci *ClassInfo) bool { return ci.IsArray() })
}

// ClassesInModule returns all entities owned by the named module.
func (r *Result) ClassesInModule(module string) ClassInfoList {
	return FilterByModule(r.AllClasses(), module)
}

// ClassesInPackage returns all entities owned by the named package.
func (r *Result) ClassesInPackage(pkg string) ClassInfoList {
	return FilterByPackage(r.AllClasses(), pkg)
}

// ArrayClass returns the array entity for the given signature, creating it
// if this is the first time the array type name is seen. A new entity
// eagerly resolves its element entity once, so provenance mirroring has
// happened before the entity is visible in any index.
func (r *Result) ArrayClass(sig *ArrayTypeSignature) *ClassInfo {
	sig.bind(r)
	name := sig.SignatureStr()

	r.mu.RLock()
	existing := r.byName[name]
	r.mu.RUnlock()
	if existing != nil {
		return existing
	}

	ci := newArrayClassInfo(r, sig)
	ci.ElementClassInfo()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.byName[name]; existing != nil {
		// Lost the race; keep the published entity.
		return existing
	}
	r.byName[name] = ci
	r.classes = append(r.classes, ci)
	return ci
}

// ParseTypeDescriptor parses a canonical descriptor and binds the
// resulting signature to this result, so class references resolve against
// the registry and loads go through the configured loader.
func (r *Result) ParseTypeDescriptor(desc string) (TypeSignature, error) {
	sig, err := ParseTypeDescriptor(desc)
	if err != nil {
		return nil, err
	}
	sig.bind(r)
	return sig, nil
}

// loadHandle resolves a runtime type handle through the configured loader,
// applying the caller-selected failure policy.
func (r *Result) loadHandle(typeName string, ignoreFailures bool) (Handle, error) {
	if r.loader == nil {
		return loadFailure(typeName, ErrNoLoader, ignoreFailures)
	}
	h, err := r.loader.Load(typeName)
	if err != nil {
		return loadFailure(typeName, err, ignoreFailures)
	}
	if h == nil {
		return loadFailure(typeName, fmt.Errorf("loader returned no handle"), ignoreFailures)
	}
	return h, nil
}

// resultJSON is the interchange form of a scan result.
type resultJSON struct {
	ID        string      `json:"id,omitempty"`
	Generated time.Time   `json:"generated"`
	Classes   []classJSON `json:"classes"`
}

// classJSON is the interchange form of a single entity.
type classJSON struct {
	Name          string     `json:"name"`
	Modifiers     int        `json:"modifiers,omitempty"`
	Kind          Kind       `json:"kind"`
	TypeSignature string     `json:"type_signature,omitempty"`
	Provenance    Provenance `json:"provenance"`
}

// MarshalJSON implements json.Marshaler. The output round-trips through
// LoadResultJSON.
func (r *Result) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc := resultJSON{
		ID:        r.id,
		Generated: r.generated,
		Classes:   make([]classJSON, 0, len(r.classes)),
	}
	for _, ci := range r.classes {
		cj := classJSON{
			Name:       ci.Name,
			Modifiers:  ci.Modifiers,
			Kind:       ci.Kind,
			Provenance: ci.Provenance,
		}
		if ci.IsArray() {
			cj.TypeSignature = ci.arraySig.SignatureStr()
		} else if sig := ci.TypeSignature(); sig != nil {
			cj.TypeSignature = sig.Raw
		}
		doc.Classes = append(doc.Classes, cj)
	}
	return json.Marshal(doc)
}

// LoadResultJSON rebuilds a scan result from its interchange form.
// Ordinary entities are registered first so that array entities can
// resolve their elements during the eager construction pass; array
// provenance is therefore re-derived from the element, not read from the
// document.
func LoadResultJSON(data []byte, loader Loader) (*Result, error) {
	var doc resultJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scan result: %w", err)
	}

	r := NewResult(loader)
	if doc.ID != "" {
		r.id = doc.ID
	}
	if !doc.Generated.IsZero() {
		r.generated = doc.Generated
	}

	for _, cj := range doc.Classes {
		if cj.Kind == KindArray {
			continue
		}
		ci := NewClassInfo(cj.Name, cj.Modifiers)
		ci.Provenance = cj.Provenance
		if cj.TypeSignature != "" {
			ci.SetTypeSignature(&ClassTypeSignature{Raw: cj.TypeSignature})
		}
		if err := r.AddClass(ci); err != nil {
			return nil, err
		}
	}

	for _, cj := range doc.Classes {
		if cj.Kind != KindArray {
			continue
		}
		desc := cj.TypeSignature
		if desc == "" {
			desc = cj.Name
		}
		sig, err := r.ParseTypeDescriptor(desc)
		if err != nil {
			return nil, fmt.Errorf("array class %q: %w", cj.Name, err)
		}
		arraySig, ok := sig.(*ArrayTypeSignature)
		if !ok {
			return nil, fmt.Errorf("array class %q: descriptor %q is not an array type", cj.Name, desc)
		}
		r.ArrayClass(arraySig)
	}

	return r, nil
}
