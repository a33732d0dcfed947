// Package scan provides the metadata model for a statically introspected
// type universe: class descriptors keyed by canonical type name, provenance
// information describing where each type was discovered, and generic
// filterable collections for querying sets of discovered entities.
//
// # Core Structures
//
// The package defines several key types:
//
//   - Result: registry of all entities discovered by one scan
//   - ClassInfo: metadata entity for a single type (ordinary or array)
//   - TypeSignature: parsed descriptor of a type (base, class reference, array)
//   - InfoList: ordered, duplicate-tolerant, filterable collection
//   - Loader / Handle: pluggable runtime type resolution
//
// # Array Descriptors
//
// Array types are first-class entities. An array entity is created once per
// distinct array type name (for example "[[I" or "[Ljava/lang/String;") and
// lazily resolves the metadata entity of its element type. On first
// successful resolution the array entity adopts the element's provenance
// fields, so downstream queries cannot tell an array entity apart from a
// normally scanned one with respect to its origin.
//
// Example usage:
//
//	res := scan.NewResult(loader)
//	res.AddClass(scan.NewClassInfo("com.example.Widget", 0x0001))
//
//	sig, _ := res.ParseTypeDescriptor("[[Lcom/example/Widget;")
//	arr := res.ArrayClass(sig.(*scan.ArrayTypeSignature))
//
//	fmt.Println(arr.NumDimensions())                // 2
//	fmt.Println(arr.ElementClassInfo().Name)        // com.example.Widget
//	fmt.Println(arr.Provenance.Module)              // mirrored from the element
//
// # Filtering
//
// InfoList is generic over the entity kind and filters into a new list of
// the same kind, preserving insertion order:
//
//	widgets := res.AllClasses().Filter(func(ci *scan.ClassInfo) bool {
//		return ci.Provenance.Scanned && !ci.IsArray()
//	})
//
// # Concurrency
//
// Registry registration and lookup are safe for concurrent use. The lazy
// per-entity caches (element entity, runtime type handle) are not: callers
// that resolve entities from multiple goroutines must serialize the first
// access to each entity, for example by running one resolution pass before
// sharing the result.
package scan
