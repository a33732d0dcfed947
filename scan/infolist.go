package scan

// InfoList is an ordered, duplicate-tolerant collection of metadata
// entities of one kind. It preserves insertion order and supports
// predicate-based filtering into a new list of the same kind.
type InfoList[T any] []T

// NewInfoList returns an empty list.
func NewInfoList[T any]() InfoList[T] {
	return InfoList[T]{}
}

// NewInfoListWithCapacity returns an empty list pre-sized for hint
// elements. The hint has no semantic effect.
func NewInfoListWithCapacity[T any](hint int) InfoList[T] {
	if hint < 0 {
		hint = 0
	}
	return make(InfoList[T], 0, hint)
}

// InfoListFrom returns a list containing the given elements in order.
// Duplicates are preserved. The input slice is copied, not aliased.
func InfoListFrom[T any](items []T) InfoList[T] {
	list := make(InfoList[T], len(items))
	copy(list, items)
	return list
}

// Filter returns a new list containing exactly the elements for which keep
// returns true, in their original relative order. The receiver is not
// modified. The result is never nil, even when empty. A predicate that
// panics propagates to the caller unchanged.
func (l InfoList[T]) Filter(keep func(T) bool) InfoList[T] {
	result := make(InfoList[T], 0)
	for _, item := range l {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

// ClassInfoList is the list kind used for class metadata entities.
type ClassInfoList = InfoList[*ClassInfo]

// Names returns the type names of the entities in list order.
func Names(list ClassInfoList) []string {
	names := make([]string, len(list))
	for i, ci := range list {
		names[i] = ci.Name
	}
	return names
}

// FilterByModule narrows a list to entities owned by the named module.
func FilterByModule(list ClassInfoList, module string) ClassInfoList {
	return list.Filter(func(ci *ClassInfo) bool {
		return ci.Provenance.Module != nil && ci.Provenance.Module.Name == module
	})
}

// FilterByPackage narrows a list to entities owned by the named package.
func FilterByPackage(list ClassInfoList, pkg string) ClassInfoList {
	return list.Filter(func(ci *ClassInfo) bool {
		return ci.Provenance.Package != nil && ci.Provenance.Package.Name == pkg
	})
}
