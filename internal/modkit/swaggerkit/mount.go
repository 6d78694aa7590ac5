// Package swaggerkit serves the OpenAPI document and the swagger UI
package swaggerkit

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"rowkeeper/internal/core/version"
	phttp "rowkeeper/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var rawDoc []byte

var (
	docOnce sync.Once
	docJSON []byte
	docErr  error
)

// Doc returns the OpenAPI document stamped with the build version
func Doc() ([]byte, error) {
	docOnce.Do(func() {
		var m map[string]any
		if docErr = json.Unmarshal(rawDoc, &m); docErr != nil {
			return
		}
		if info, ok := m["info"].(map[string]any); ok {
			info["version"] = version.Info().Version
		}
		docJSON, docErr = json.Marshal(m)
	})
	return docJSON, docErr
}

// Mount serves the UI at /api/docs/ and the document at /api/docs/doc.json when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		doc, err := Doc()
		if err != nil {
			http.Error(w, "openapi parse error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(doc)
	})
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
