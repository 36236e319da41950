package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaiiae/phonebook/datastores"
)

func newTestRouter(t *testing.T, options *RouterOptions, logs *bytes.Buffer) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewRouter(options, "Phonebook", "test", "abc", "today",
		datastores.NewPersonsInmem(&datastores.Person{Name: "Ada", Number: "111"}), logger)
}

func serve(h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterCRUD(t *testing.T) {
	h := newTestRouter(t, &RouterOptions{EndpointsPrefix: "/api"}, new(bytes.Buffer))

	rec := serve(h, http.MethodPost, "/api/persons", `{"name":"Bob","number":"222"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bob","number":"222"}`, rec.Body.String())

	rec = serve(h, http.MethodPut, "/api/persons/2", `{"name":"Bob","number":"333"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bob","number":"333"}`, rec.Body.String())

	rec = serve(h, http.MethodDelete, "/api/persons/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Ada","number":"111"}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/api/persons", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":2,"name":"Bob","number":"333"}]`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/api/bogus", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Unknown endpoint"}`, rec.Body.String())
}

func TestRouterPrefix(t *testing.T) {
	h := newTestRouter(t, &RouterOptions{EndpointsPrefix: "/v1"}, new(bytes.Buffer))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/v1/persons", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/persons", "").Code)
}

func TestRouterRequestID(t *testing.T) {
	logs := new(bytes.Buffer)
	h := newTestRouter(t, &RouterOptions{EndpointsPrefix: "/api"}, logs)

	rec := serve(h, http.MethodGet, "/api/persons", "", "X-Request-Id", "req-42")
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
	assert.Contains(t, logs.String(), `"x-request-id":"req-42"`)

	rec = serve(h, http.MethodGet, "/api/persons", "")
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}

func TestRouterErrorsLogged(t *testing.T) {
	logs := new(bytes.Buffer)
	h := newTestRouter(t, &RouterOptions{EndpointsPrefix: "/api"}, logs)

	rec := serve(h, http.MethodDelete, "/api/persons/42", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var found bool
	for line := range strings.Lines(logs.String()) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "error occurred" {
			found = true
			assert.Equal(t, "WARN", entry["level"])
			op, ok := entry["op"].(map[string]any)
			require.True(t, ok, line)
			assert.InDelta(t, http.StatusNotFound, op["status"], 0)
		}
	}
	assert.True(t, found, logs.String())
}

func TestRouterCORS(t *testing.T) {
	h := newTestRouter(t, &RouterOptions{EndpointsPrefix: "/api", CORSOrigins: "*"}, new(bytes.Buffer))
	rec := serve(h, http.MethodGet, "/api/persons", "", "Origin", "http://localhost:5173")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	h = newTestRouter(t, &RouterOptions{EndpointsPrefix: "/api"}, new(bytes.Buffer))
	rec = serve(h, http.MethodGet, "/api/persons", "", "Origin", "http://localhost:5173")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterOptionsOrigins(t *testing.T) {
	options := &RouterOptions{CORSOrigins: " http://a.example, ,http://b.example "}
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, options.origins())
	assert.Empty(t, (&RouterOptions{}).origins())
}

func TestRouterMetrics(t *testing.T) {
	h := newTestRouter(t, &RouterOptions{EndpointsPrefix: "/api"}, new(bytes.Buffer))
	serve(h, http.MethodGet, "/api/persons", "")

	rec := serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `build_info{goversion="`)
	assert.Regexp(t, `http_requests_total\{method="GET",path="(/api)?/persons",status="200"\} 1`, rec.Body.String())
}

func TestRouterRateLimit(t *testing.T) {
	h := newTestRouter(t, &RouterOptions{EndpointsPrefix: "/api", RateLimit: 1, RateBurst: 2}, new(bytes.Buffer))

	for range 2 {
		rec := serve(h, http.MethodPost, "/api/persons", `{"name":"Bob","number":"222"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := serve(h, http.MethodPost, "/api/persons", `{"name":"Bob","number":"222"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// reads are not limited
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/persons", "").Code)
}

func TestRecoverMiddleware(t *testing.T) {
	logs := new(bytes.Buffer)
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	_, api := humatest.New(t)
	api.UseMiddleware(ctxlog{}.loggerMiddleware(logger), ctxlog{}.recoverMiddleware(logger))
	huma.Get(api, "/panic", func(context.Context, *struct{}) (*struct{}, error) {
		panic("panic argument")
	})

	resp := api.Get("/panic")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Internal server error"}`, resp.Body.String())
	assert.Contains(t, logs.String(), `"recovered":"panic argument"`)
}

func TestErrorHandlerLevels(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want string
	}{
		{huma.Error500InternalServerError("boom"), "ERROR"},
		{huma.Error404NotFound("Person not found"), "WARN"},
		{assert.AnError, "ERROR"},
	} {
		logs := new(bytes.Buffer)
		ctxlog{}.errorHandler(slog.New(slog.NewJSONHandler(logs, nil)))(context.Background(), tc.err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
		assert.Equal(t, tc.want, entry["level"])
	}
}
