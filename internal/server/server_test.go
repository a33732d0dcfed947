package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typegraph-io/typegraph/scan"
)

// testServerResult builds a result with two reference types in different
// modules and a couple of array types.
func testServerResult(t *testing.T) *scan.Result {
	t.Helper()
	r := scan.NewResult(nil)

	widget := scan.NewClassInfo("com.example.Widget", 0x0001)
	widget.Provenance.Module = &scan.ModuleInfo{Name: "widgets"}
	widget.Provenance.Package = &scan.PackageInfo{Name: "com.example"}
	require.NoError(t, r.AddClass(widget))

	gadget := scan.NewClassInfo("org.other.Gadget", 0x0001)
	gadget.Provenance.Module = &scan.ModuleInfo{Name: "gadgets"}
	gadget.Provenance.Package = &scan.PackageInfo{Name: "org.other"}
	require.NoError(t, r.AddClass(gadget))

	mustArray := func(desc string) {
		sig, err := r.ParseTypeDescriptor(desc)
		require.NoError(t, err)
		r.ArrayClass(sig.(*scan.ArrayTypeSignature))
	}
	mustArray("[Lcom/example/Widget;")
	mustArray("[[I")

	return r
}

func newTestServer(t *testing.T, config Config) *httptest.Server {
	t.Helper()
	s := New(testServerResult(t), config, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getViews(t *testing.T, url string) []classView {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views []classView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	return views
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ListClasses(t *testing.T) {
	ts := newTestServer(t, Config{})

	views := getViews(t, ts.URL+"/classes")
	require.Len(t, views, 4)
	assert.Equal(t, "com.example.Widget", views[0].Name)
	assert.Equal(t, "ordinary", views[0].Kind)
}

func TestServer_ListClassesFilters(t *testing.T) {
	ts := newTestServer(t, Config{})

	// The widget array mirrored the widget's module, so both match.
	byModule := getViews(t, ts.URL+"/classes?module=widgets")
	require.Len(t, byModule, 2)
	assert.Equal(t, "com.example.Widget", byModule[0].Name)
	assert.Equal(t, "[Lcom/example/Widget;", byModule[1].Name)

	byKind := getViews(t, ts.URL+"/classes?kind=array")
	require.Len(t, byKind, 2)
	assert.Equal(t, "array", byKind[0].Kind)

	byPrefix := getViews(t, ts.URL+"/classes?prefix=org.other")
	require.Len(t, byPrefix, 1)
	assert.Equal(t, "org.other.Gadget", byPrefix[0].Name)

	none := getViews(t, ts.URL+"/classes?module=missing")
	assert.Len(t, none, 0)
}

func TestServer_GetClass(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/classes/com.example.Widget")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view classView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "com.example.Widget", view.Name)
	assert.Equal(t, "widgets", view.Module)
	assert.Equal(t, "com.example", view.Package)
}

func TestServer_GetClassNotFound(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/classes/com.example.Missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListArrays(t *testing.T) {
	ts := newTestServer(t, Config{})

	all := getViews(t, ts.URL+"/arrays")
	require.Len(t, all, 2)

	byDims := getViews(t, ts.URL+"/arrays?dims=2")
	require.Len(t, byDims, 1)
	assert.Equal(t, "[[I", byDims[0].Name)
	assert.Equal(t, 2, byDims[0].Dims)
	assert.Equal(t, "I", byDims[0].Element)

	byElement := getViews(t, ts.URL+"/arrays?element=Lcom/example/Widget%3B")
	require.Len(t, byElement, 1)
	assert.Equal(t, "[Lcom/example/Widget;", byElement[0].Name)

	resp, err := http.Get(ts.URL + "/arrays?dims=two")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Auth(t *testing.T) {
	ts := newTestServer(t, Config{AuthSecret: "test-secret", TokenTTL: time.Hour})

	// No token: rejected.
	resp, err := http.Get(ts.URL + "/classes")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage token: rejected.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/classes", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid token: accepted.
	token, err := NewAuthService("test-secret", time.Hour).GenerateToken("test-client")
	require.NoError(t, err)

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/classes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Health stays open.
	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_AuthWrongSecret(t *testing.T) {
	ts := newTestServer(t, Config{AuthSecret: "right", TokenTTL: time.Hour})

	token, err := NewAuthService("wrong", time.Hour).GenerateToken("test-client")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/classes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_ResponseCaching(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewResponseCacheWithClient(client, time.Minute)
	t.Cleanup(func() { cache.Close() })

	ts := newTestServer(t, Config{Cache: cache})

	first, err := http.Get(ts.URL + "/classes")
	require.NoError(t, err)
	first.Body.Close()
	assert.Empty(t, first.Header.Get("X-Cache"))

	second, err := http.Get(ts.URL + "/classes")
	require.NoError(t, err)
	defer second.Body.Close()
	assert.Equal(t, "hit", second.Header.Get("X-Cache"))

	var views []classView
	require.NoError(t, json.NewDecoder(second.Body).Decode(&views))
	assert.Len(t, views, 4)
}
