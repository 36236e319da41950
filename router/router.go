package router

import (
	"encoding/json"
	"io"
	"net/http"
	"path"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/cors"
)

// UnknownEndpoint answers 404 with {"error": "Unknown endpoint"}.
func UnknownEndpoint(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unknown endpoint"})
}

// Static serves files under dir and falls back to [UnknownEndpoint] for
// anything that is not a file. An empty dir serves nothing.
func Static(dir string) http.HandlerFunc {
	if dir == "" {
		return UnknownEndpoint
	}
	root := http.Dir(dir)
	files := http.FileServer(root)
	return func(w http.ResponseWriter, r *http.Request) {
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || !exists(root, r.URL.Path) {
			UnknownEndpoint(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}
}

// exists reports whether name is a file, or a directory holding an index.html.
func exists(root http.FileSystem, name string) bool {
	name = path.Clean("/" + name)
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	if fi.IsDir() {
		return exists(root, path.Join(name, "index.html"))
	}
	return true
}

func New(
	title, version string,
	readiness http.HandlerFunc,
	writeMetrics http.HandlerFunc,
	fallback http.HandlerFunc,
	opts ...func(huma.API),
) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /liveness", func(http.ResponseWriter, *http.Request) {})
	mux.HandleFunc("GET /readiness", readiness)
	mux.HandleFunc("GET /metrics", writeMetrics)
	if fallback == nil {
		fallback = UnknownEndpoint
	}
	mux.HandleFunc("/", fallback)

	config := huma.DefaultConfig(title, version)
	config.CreateHooks = nil // no $schema links in bodies
	api := humago.New(mux, config)
	for _, opt := range opts {
		opt(api)
	}

	return mux
}

// CORS lets browser pages served from origins call h. "*" allows any origin;
// no origins returns h unchanged.
func CORS(h http.Handler, origins ...string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
	}).Handler(h)
}

func OptUseMiddleware(middlewares ...func(huma.Context, func(huma.Context))) func(huma.API) {
	return func(api huma.API) { api.UseMiddleware(middlewares...) }
}

func OptGroup(prefix string, opts ...func(huma.API)) func(huma.API) {
	return func(api huma.API) {
		grp := huma.NewGroup(api, prefix)
		for _, opt := range opts {
			opt(grp)
		}
	}
}

func OptAutoRegister(server any) func(huma.API) {
	return func(api huma.API) { huma.AutoRegister(api, server) }
}

// MetricsHandler writes every writer's output in order.
func MetricsHandler(writers ...func(io.Writer)) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		for _, write := range writers {
			write(w)
		}
	}
}
