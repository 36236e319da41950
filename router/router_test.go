package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaiiae/phonebook/datastores"
	"github.com/oaiiae/phonebook/handlers"
)

func newTestServer(t *testing.T, fallback http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New("Phonebook", "test",
		func(http.ResponseWriter, *http.Request) {},
		MetricsHandler(func(w io.Writer) { _, _ = io.WriteString(w, "up 1\n") }),
		fallback,
		OptGroup("/api", OptAutoRegister(&handlers.Persons{
			Store: datastores.NewPersonsInmem(&datastores.Person{Name: "Ada", Number: "111"}),
		})),
	))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint: noctx // test
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestUnknownEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, p := range []string{"/api/bogus", "/", "/api/persons/Ada/extra"} {
		code, body := get(t, srv.URL+p)
		assert.Equal(t, http.StatusNotFound, code, p)
		assert.JSONEq(t, `{"error":"Unknown endpoint"}`, body, p)
	}
}

func TestAmbientEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	code, _ := get(t, srv.URL+"/liveness")
	assert.Equal(t, http.StatusOK, code)

	code, _ = get(t, srv.URL+"/readiness")
	assert.Equal(t, http.StatusOK, code)

	code, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up 1\n", body)
}

func TestPersonsMounted(t *testing.T) {
	srv := newTestServer(t, nil)

	code, body := get(t, srv.URL+"/api/persons")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"id":1,"name":"Ada","number":"111"}]`, body)

	code, body = get(t, srv.URL+"/api/persons/Ada")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1,"name":"Ada","number":"111"}`, body)

	code, body = get(t, srv.URL+"/api/persons/Nobody")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"Person not found"}`, body)
}

func TestStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h2>Phonebook</h2>"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "assets"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("app()"), 0o600))
	srv := newTestServer(t, Static(dir))

	code, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "<h2>Phonebook</h2>", body)

	code, body = get(t, srv.URL+"/assets/app.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "app()", body)

	code, body = get(t, srv.URL+"/assets/")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"Unknown endpoint"}`, body)

	code, body = get(t, srv.URL+"/api/bogus")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"Unknown endpoint"}`, body)

	code, _ = get(t, srv.URL+"/api/persons")
	assert.Equal(t, http.StatusOK, code)
}

func TestStaticEmptyDir(t *testing.T) {
	rec := httptest.NewRecorder()
	Static("")(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	mux := New("Phonebook", "test",
		func(http.ResponseWriter, *http.Request) {},
		MetricsHandler(),
		nil,
		OptGroup("/api", OptAutoRegister(&handlers.Persons{
			Store: datastores.NewPersonsInmem(&datastores.Person{Name: "Ada", Number: "111"}),
		})),
	)
	assert.Same(t, mux, CORS(mux))

	h := CORS(mux, "http://localhost:5173")
	do := func(method, origin string, header ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/persons/1", nil)
		req.Header.Set("Origin", origin)
		for i := 0; i+1 < len(header); i += 2 {
			req.Header.Set(header[i], header[i+1])
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodOptions, "http://localhost:5173",
		"Access-Control-Request-Method", http.MethodPut,
		"Access-Control-Request-Headers", "content-type")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)

	rec = do(http.MethodDelete, "http://localhost:5173")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(http.MethodGet, "http://elsewhere.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
