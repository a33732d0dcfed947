package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoList_FilterPreservesOrderAndOriginal(t *testing.T) {
	a := NewClassInfo("a", 0)
	b := NewClassInfo("b", 0)
	c := NewClassInfo("c", 0)
	d := NewClassInfo("d", 0)
	list := InfoListFrom([]*ClassInfo{a, b, c, d})

	filtered := list.Filter(func(ci *ClassInfo) bool {
		return ci.Name == "b" || ci.Name == "d"
	})

	require.Len(t, filtered, 2)
	assert.Same(t, b, filtered[0])
	assert.Same(t, d, filtered[1])

	// The input list is unmodified.
	require.Len(t, list, 4)
	assert.Equal(t, []string{"a", "b", "c", "d"}, Names(list))
}

func TestInfoList_FilterEmpty(t *testing.T) {
	empty := NewInfoList[*ClassInfo]()

	filtered := empty.Filter(func(*ClassInfo) bool { return true })
	assert.NotNil(t, filtered)
	assert.Len(t, filtered, 0)

	// Filtering everything out also yields an empty, non-nil list.
	list := InfoListFrom([]*ClassInfo{NewClassInfo("a", 0)})
	none := list.Filter(func(*ClassInfo) bool { return false })
	assert.NotNil(t, none)
	assert.Len(t, none, 0)
}

func TestInfoListFrom_CopiesAndKeepsDuplicates(t *testing.T) {
	a := NewClassInfo("a", 0)
	src := []*ClassInfo{a, a, a}

	list := InfoListFrom(src)
	require.Len(t, list, 3)

	// Mutating the source slice does not affect the list.
	src[0] = NewClassInfo("other", 0)
	assert.Same(t, a, list[0])
}

func TestNewInfoListWithCapacity(t *testing.T) {
	list := NewInfoListWithCapacity[*ClassInfo](16)
	assert.Len(t, list, 0)
	assert.Equal(t, 16, cap(list))

	// A negative hint is treated as zero, not an error.
	assert.Len(t, NewInfoListWithCapacity[*ClassInfo](-1), 0)
}

func TestFilterByModuleAndPackage(t *testing.T) {
	inMod := NewClassInfo("a.A", 0)
	inMod.Provenance.Module = &ModuleInfo{Name: "core"}
	inMod.Provenance.Package = &PackageInfo{Name: "a"}

	otherMod := NewClassInfo("b.B", 0)
	otherMod.Provenance.Module = &ModuleInfo{Name: "extras"}
	otherMod.Provenance.Package = &PackageInfo{Name: "b"}

	noMod := NewClassInfo("c.C", 0)

	list := InfoListFrom([]*ClassInfo{inMod, otherMod, noMod})

	byModule := FilterByModule(list, "core")
	require.Len(t, byModule, 1)
	assert.Same(t, inMod, byModule[0])

	byPackage := FilterByPackage(list, "b")
	require.Len(t, byPackage, 1)
	assert.Same(t, otherMod, byPackage[0])

	assert.Len(t, FilterByModule(list, "missing"), 0)
}
